package dom

import (
	"fmt"
	"sync"
)

// IDGenerator generates sequential element ids such as "o1", "o2".
type IDGenerator struct {
	prefix  string
	counter uint32
	mu      sync.Mutex
}

// NewIDGenerator creates an IDGenerator with the given prefix.
func NewIDGenerator(prefix string) *IDGenerator {
	return &IDGenerator{prefix: prefix}
}

// Next returns the next id.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s%d", g.prefix, g.counter)
}

// Current returns the last issued counter value.
func (g *IDGenerator) Current() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counter
}
