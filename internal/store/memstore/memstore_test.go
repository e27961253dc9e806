package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/louisbranch/loadguard/internal/store"
)

func TestReadSequenceShape(t *testing.T) {
	t.Parallel()

	s := New()
	s.Begin("FETCH_USER")
	s.Begin("FETCH_SETTINGS")
	s.Begin("FETCH_USER")
	s.Set("user", "ada")

	state, err := s.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := store.State{
		"user":                  "ada",
		store.ActiveRequestsKey: []string{"FETCH_USER", "FETCH_SETTINGS"},
	}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Fatalf("Read() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadMappingShape(t *testing.T) {
	t.Parallel()

	s := New(WithShape(store.ShapeMapping))
	s.Begin("FETCH_USER")
	s.Begin("FETCH_SETTINGS")
	s.End("FETCH_SETTINGS")

	state, err := s.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := map[string]bool{"FETCH_USER": true}
	if diff := cmp.Diff(want, state[store.ActiveRequestsKey]); diff != "" {
		t.Fatalf("active requests mismatch (-want +got):\n%s", diff)
	}
}

func TestReadReturnsSnapshot(t *testing.T) {
	t.Parallel()

	s := New()
	s.Begin("A")
	state, _ := s.Read(context.Background())
	s.End("A")

	if got := state[store.ActiveRequestsKey].([]string); len(got) != 1 {
		t.Fatalf("snapshot changed after End: %v", got)
	}
}

func TestSetIgnoresActiveRequestsKey(t *testing.T) {
	t.Parallel()

	s := New()
	s.Set(store.ActiveRequestsKey, "bogus")
	state, _ := s.Read(context.Background())
	if _, ok := state[store.ActiveRequestsKey].([]string); !ok {
		t.Fatalf("active requests = %#v, want []string", state[store.ActiveRequestsKey])
	}
}

func TestDispatchRecordsAndRunsReducer(t *testing.T) {
	t.Parallel()

	s := New(WithReducer(func(_ context.Context, s *Store, action any) error {
		s.Begin(action.(string))
		return nil
	}))
	if err := s.Dispatch(context.Background(), "FETCH_USER"); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if diff := cmp.Diff([]any{"FETCH_USER"}, s.Dispatched()); diff != "" {
		t.Fatalf("Dispatched() mismatch (-want +got):\n%s", diff)
	}
	state, _ := s.Read(context.Background())
	if diff := cmp.Diff([]string{"FETCH_USER"}, state[store.ActiveRequestsKey]); diff != "" {
		t.Fatalf("active requests mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatchReturnsReducerError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	s := New(WithReducer(func(context.Context, *Store, any) error { return boom }))
	if err := s.Dispatch(context.Background(), "X"); !errors.Is(err, boom) {
		t.Fatalf("Dispatch() error = %v, want %v", err, boom)
	}
	if got := len(s.Dispatched()); got != 1 {
		t.Fatalf("Dispatched() len = %d, want 1", got)
	}
}
