package store

import (
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/orbit/pkg/fieldpath"
	"github.com/vango-dev/orbit/pkg/telemetry"
)

// ErrInitialized is returned by Init when the store already holds a root.
var ErrInitialized = errors.New("store: already initialized")

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics wires notification and subscription metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// subscription is one registered callback.
type subscription struct {
	fn     func(any)
	active bool
}

// pathSet is an insertion-ordered set of paths.
type pathSet struct {
	order []string
	index map[string]struct{}
}

func (p *pathSet) add(path string) {
	if _, ok := p.index[path]; ok {
		return
	}
	p.index[path] = struct{}{}
	p.order = append(p.order, path)
}

func (p *pathSet) snapshot() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Store is a reactive tree of values addressed by field path.
type Store struct {
	root map[string]any

	// subs maps a path to its live subscriptions. Entries are deleted
	// when they become empty.
	subs map[string][]*subscription

	// deps maps a path to the computed paths that read it.
	deps map[string]*pathSet

	// callers is the stack of computed paths currently evaluating.
	callers []string

	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// New creates an empty, unpopulated store.
func New(opts ...Option) *Store {
	s := &Store{
		subs:   make(map[string][]*subscription),
		deps:   make(map[string]*pathSet),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init populates the store with its root value and replays every subscriber
// registered so far with its current value. It can be called once.
func (s *Store) Init(initial map[string]any) (*Object, error) {
	if s.root != nil {
		return nil, ErrInitialized
	}
	if initial == nil {
		initial = map[string]any{}
	}
	s.root = normalize(initial).(map[string]any)

	paths := make([]string, 0, len(s.subs))
	for path := range s.subs {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		subs := s.snapshotSubs(path)
		if len(subs) == 0 {
			continue
		}
		value := s.Read(path)
		n := 0
		for _, sub := range subs {
			if sub.active {
				sub.fn(value)
				n++
			}
		}
		s.metrics.Notified(n)
	}

	return s.Root(), nil
}

// Initialized reports whether Init has been called.
func (s *Store) Initialized() bool {
	return s.root != nil
}

// Root returns the view of the root object, or nil before Init.
func (s *Store) Root() *Object {
	if s.root == nil {
		return nil
	}
	return &Object{store: s, data: s.root}
}

// Read returns the value at path. Objects and arrays are returned as views,
// computed values are evaluated. Navigation through a scalar stops and
// returns that scalar; a missing key yields nil.
func (s *Store) Read(path string) any {
	root := s.Root()
	if root == nil {
		return nil
	}

	var current any = root
	for _, segment := range fieldpath.Extract(path) {
		switch c := current.(type) {
		case *Object:
			current = c.Get(segment)
		case *Array:
			i, ok := fieldpath.Index(segment, c.Len())
			if !ok {
				return nil
			}
			current = c.At(i)
		default:
			return current
		}
	}
	return current
}

// Write sets the value at path and notifies when it changed. Writes whose
// parent cannot be navigated are ignored.
func (s *Store) Write(path string, value any) {
	root := s.Root()
	if root == nil {
		return
	}

	segments := fieldpath.Extract(path)
	if len(segments) == 0 {
		return
	}

	var parent any = root
	for _, segment := range segments[:len(segments)-1] {
		switch c := parent.(type) {
		case *Object:
			parent = c.Get(segment)
		case *Array:
			i, ok := fieldpath.Index(segment, c.Len())
			if !ok {
				return
			}
			parent = c.At(i)
		default:
			return
		}
	}

	last := segments[len(segments)-1]
	switch c := parent.(type) {
	case *Object:
		c.Set(last, value)
	case *Array:
		n := c.Len()
		if i, ok := fieldpath.Index(last, n); ok {
			c.Set(i, value)
		} else if last == strconv.Itoa(n) {
			c.Set(n, value)
		}
	}
}

// Subscribe registers fn for changes at path. When the store is populated fn
// is called once immediately with the current value. The returned function
// removes the subscription and is safe to call more than once.
func (s *Store) Subscribe(path string, fn func(any)) func() {
	if s.root != nil {
		fn(s.Read(path))
	}

	sub := &subscription{fn: fn, active: true}
	s.subs[path] = append(s.subs[path], sub)
	s.metrics.Subscribed(1)

	return func() {
		if !sub.active {
			return
		}
		sub.active = false
		s.metrics.Subscribed(-1)

		subs := s.subs[path]
		for i, existing := range subs {
			if existing == sub {
				subs = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(subs) == 0 {
			delete(s.subs, path)
		} else {
			s.subs[path] = subs
		}
	}
}

// SubscriberCount returns the number of live subscriptions for path.
func (s *Store) SubscriberCount(path string) int {
	return len(s.subs[path])
}

// Dependents returns the computed paths recorded as reading path.
func (s *Store) Dependents(path string) []string {
	deps := s.deps[path]
	if deps == nil {
		return nil
	}
	return deps.snapshot()
}

// Snapshot returns a plain deep copy of the state read through the store's
// views. Computed values are evaluated and actions are left out.
func (s *Store) Snapshot() map[string]any {
	root := s.Root()
	if root == nil {
		return map[string]any{}
	}
	return plainObject(root)
}

// Notify triggers notification for path as if it had been written.
// Subscribers below path are notified after it, since the value they
// observe may have been replaced along with it.
func (s *Store) Notify(path string) {
	visited := make(map[string]struct{})
	s.propagate(path, visited)
	for _, child := range s.descendants(path) {
		s.propagate(child, visited)
	}
	for _, alias := range s.aliases(path) {
		s.propagate(alias, visited)
	}
}

// aliases returns the subscribed paths written with negative indices that
// currently resolve to path or below it, in sorted order.
func (s *Store) aliases(path string) []string {
	var out []string
	for sub := range s.subs {
		if !strings.Contains(sub, "[-") {
			continue
		}
		resolved := s.resolve(sub)
		if resolved == sub {
			continue
		}
		if resolved == path || path == "" || strings.HasPrefix(resolved, path) &&
			(resolved[len(path)] == '.' || resolved[len(path)] == '[') {
			out = append(out, sub)
		}
	}
	sort.Strings(out)
	return out
}

// resolve rewrites the negative indices in path against the current arrays.
// Segments past the first value that is not a container are kept as written.
func (s *Store) resolve(path string) string {
	segments := fieldpath.Extract(path)
	var current any = s.Root()
	for i, segment := range segments {
		switch c := current.(type) {
		case *Object:
			current = c.Get(segment)
		case *Array:
			n := c.Len()
			idx, ok := fieldpath.Index(segment, n)
			if !ok {
				return fieldpath.Join(segments)
			}
			segments[i] = strconv.Itoa(idx)
			current = c.At(idx)
		default:
			return fieldpath.Join(segments)
		}
	}
	return fieldpath.Join(segments)
}

// descendants returns the subscribed paths below path in sorted order.
func (s *Store) descendants(path string) []string {
	var out []string
	for sub := range s.subs {
		if len(sub) <= len(path) || !strings.HasPrefix(sub, path) {
			continue
		}
		if path == "" || sub[len(path)] == '.' || sub[len(path)] == '[' {
			out = append(out, sub)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Store) snapshotSubs(path string) []*subscription {
	subs := s.subs[path]
	if len(subs) == 0 {
		return nil
	}
	out := make([]*subscription, len(subs))
	copy(out, subs)
	return out
}

// propagate notifies path's subscribers and then, depth first, every path
// recorded as depending on it. visited stops the walk on cycles.
func (s *Store) propagate(path string, visited map[string]struct{}) {
	if _, seen := visited[path]; seen {
		return
	}
	visited[path] = struct{}{}

	if subs := s.snapshotSubs(path); len(subs) > 0 {
		value := s.Read(path)
		n := 0
		for _, sub := range subs {
			if sub.active {
				sub.fn(value)
				n++
			}
		}
		s.metrics.Notified(n)
	}

	deps := s.deps[path]
	if deps == nil {
		return
	}
	for _, dependent := range deps.snapshot() {
		if _, seen := visited[dependent]; seen {
			s.logger.Debug("store: dependency cycle", "path", path, "dependent", dependent)
			continue
		}
		s.propagate(dependent, visited)
	}
}

// track records that the current caller, if any, read path.
func (s *Store) track(path string) {
	if len(s.callers) == 0 {
		return
	}
	caller := s.callers[len(s.callers)-1]
	if caller == path {
		return
	}
	deps := s.deps[path]
	if deps == nil {
		deps = &pathSet{index: make(map[string]struct{})}
		s.deps[path] = deps
	}
	deps.add(caller)
}

// evaluate runs a computed value with path as the current caller. A
// computed value that reads itself, directly or through others, sees nil.
func (s *Store) evaluate(path string, fn Computed, this *Object) any {
	for _, caller := range s.callers {
		if caller == path {
			s.logger.Debug("store: computed value reads itself", "path", path)
			return nil
		}
	}
	s.callers = append(s.callers, path)
	defer func() {
		s.callers = s.callers[:len(s.callers)-1]
	}()
	return fn(this)
}
