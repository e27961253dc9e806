// Package memstore provides an in-process store.View.
package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/louisbranch/loadguard/internal/store"
)

// Reducer reacts to a dispatched action. It runs synchronously inside
// Dispatch, after the action is recorded and without the store lock held,
// so it may call back into the store or hand work to a goroutine.
type Reducer func(ctx context.Context, s *Store, action any) error

// Store keeps global state in memory.
type Store struct {
	mu         sync.RWMutex
	shape      store.Shape
	active     []string
	values     map[string]any
	dispatched []any
	reducer    Reducer
}

// Option configures a Store.
type Option func(*Store)

// WithShape sets how active requests appear in Read snapshots.
func WithShape(shape store.Shape) Option {
	return func(s *Store) { s.shape = shape }
}

// WithReducer sets the dispatch reducer.
func WithReducer(reducer Reducer) Option {
	return func(s *Store) { s.reducer = reducer }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{values: map[string]any{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns a snapshot of the store. The active requests entry is a fresh
// []string or map[string]bool depending on the configured shape.
func (s *Store) Read(context.Context) (store.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := make(store.State, len(s.values)+1)
	for key, value := range s.values {
		state[key] = value
	}
	switch s.shape {
	case store.ShapeMapping:
		active := make(map[string]bool, len(s.active))
		for _, name := range s.active {
			active[name] = true
		}
		state[store.ActiveRequestsKey] = active
	default:
		state[store.ActiveRequestsKey] = slices.Clone(s.active)
	}
	return state, nil
}

// Dispatch records the action and runs the reducer, if any.
func (s *Store) Dispatch(ctx context.Context, action any) error {
	s.mu.Lock()
	s.dispatched = append(s.dispatched, action)
	reducer := s.reducer
	s.mu.Unlock()

	if reducer == nil {
		return nil
	}
	return reducer(ctx, s, action)
}

// Begin marks a request kind as active. Repeated calls are no-ops.
func (s *Store) Begin(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.active, name) {
		s.active = append(s.active, name)
	}
}

// End clears an active request kind.
func (s *Store) End(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = slices.DeleteFunc(s.active, func(active string) bool { return active == name })
}

// Set stores a state value. The active requests key is owned by Begin/End
// and cannot be set.
func (s *Store) Set(key string, value any) {
	if key == store.ActiveRequestsKey {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Dispatched returns the actions dispatched so far, in order.
func (s *Store) Dispatched() []any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.dispatched)
}
