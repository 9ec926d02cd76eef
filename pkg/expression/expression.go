package expression

import (
	"strings"
	"sync"

	oerrors "github.com/vango-dev/orbit/internal/errors"
)

// Engine names.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
)

// Evaluator evaluates an expression against an environment.
type Evaluator interface {
	Evaluate(expression string, env map[string]any) (any, error)
}

// Config selects and configures an evaluator.
type Config struct {
	// Engine is "expr" or "cel". Empty selects "expr".
	Engine string

	// Allow lists the only expressions that may be evaluated. Empty allows
	// any expression the engine accepts.
	Allow []string
}

// New returns the evaluator described by cfg.
func New(cfg Config) (Evaluator, error) {
	opts := []Option{WithAllow(cfg.Allow...)}
	switch strings.ToLower(cfg.Engine) {
	case "", EngineExpr:
		return NewExpr(opts...), nil
	case EngineCEL:
		return NewCEL(opts...), nil
	default:
		return nil, oerrors.New("E022").WithDetail("engine " + cfg.Engine + " is not one of expr, cel")
	}
}

// Option configures an evaluator.
type Option func(*options)

type options struct {
	allow map[string]struct{}
	cache *Cache
}

// WithAllow restricts evaluation to the given expressions.
func WithAllow(expressions ...string) Option {
	return func(o *options) {
		for _, e := range expressions {
			e = strings.TrimSpace(e)
			if e == "" {
				continue
			}
			if o.allow == nil {
				o.allow = make(map[string]struct{})
			}
			o.allow[e] = struct{}{}
		}
	}
}

// WithCache shares a program cache.
func WithCache(cache *Cache) Option {
	return func(o *options) {
		if cache != nil {
			o.cache = cache
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{cache: NewCache()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// check validates expression against the allow-list.
func (o options) check(expression string) (string, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return "", oerrors.New("E021").WithDetail("expression must not be empty")
	}
	if o.allow != nil {
		if _, ok := o.allow[expression]; !ok {
			return "", oerrors.New("E020").WithAttribute("compute", expression)
		}
	}
	return expression, nil
}

// Cache stores compiled programs by key. It is safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	programs map[string]any
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{programs: make(map[string]any)}
}

// Get returns the program stored under key.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.programs[key]
	return p, ok
}

// Set stores program under key.
func (c *Cache) Set(key string, program any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.programs[key] = program
}

// Len returns the number of cached programs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}

func evaluationError(expression string, err error) error {
	return oerrors.New("E021").WithAttribute("compute", expression).Wrap(err)
}
