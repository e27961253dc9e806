package loader

import (
	"context"
	"slices"

	apperrors "github.com/louisbranch/loadguard/internal/platform/errors"
)

// DispatchFunc submits an action to the store.
type DispatchFunc func(ctx context.Context, a Action) error

// DispatchedSet records which actions an instance has already dispatched.
// It only grows.
type DispatchedSet struct {
	keys []ActionKey
	seen map[ActionKey]struct{}
}

// NewDispatchedSet returns an empty set.
func NewDispatchedSet() *DispatchedSet {
	return &DispatchedSet{seen: map[ActionKey]struct{}{}}
}

// Has reports whether key was dispatched.
func (s *DispatchedSet) Has(key ActionKey) bool {
	_, ok := s.seen[key]
	return ok
}

// Len returns the number of distinct dispatched actions.
func (s *DispatchedSet) Len() int {
	return len(s.keys)
}

// Keys returns the dispatched keys in dispatch order.
func (s *DispatchedSet) Keys() []ActionKey {
	return slices.Clone(s.keys)
}

func (s *DispatchedSet) add(key ActionKey) bool {
	if s.Has(key) {
		return false
	}
	s.seen[key] = struct{}{}
	s.keys = append(s.keys, key)
	return true
}

// Throttle dispatches, in order, every action whose key is not yet in set,
// adding it to set before calling dispatch. It returns how many actions were
// dispatched by this call.
//
// A failing dispatch stops the pass and returns the error; the failed action
// stays recorded and is never retried.
func Throttle(ctx context.Context, actions []Action, set *DispatchedSet, dispatch DispatchFunc) (int, error) {
	sent := 0
	for _, action := range actions {
		key, err := KeyOf(action)
		if err != nil {
			return sent, err
		}
		if !set.add(key) {
			continue
		}
		sent++
		if err := dispatch(ctx, action); err != nil {
			return sent, apperrors.WrapWithMetadata(apperrors.CodeDispatchFailed, "dispatch action",
				map[string]string{"Key": string(key)}, err)
		}
	}
	return sent, nil
}
