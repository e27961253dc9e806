package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/louisbranch/loadguard/internal/platform/errors"
)

type dispatchLog struct {
	got  []Action
	fail map[string]error
}

func (l *dispatchLog) dispatch(_ context.Context, a Action) error {
	l.got = append(l.got, a)
	if name, ok := a.(string); ok {
		return l.fail[name]
	}
	return nil
}

func TestThrottleDispatchesEachDistinctActionOnce(t *testing.T) {
	t.Parallel()

	actions := []Action{
		map[string]any{"type": "FETCH_USER", "id": 1},
		map[string]any{"id": 1, "type": "FETCH_USER"},
		"FETCH_SETTINGS",
		"FETCH_SETTINGS",
	}
	set := NewDispatchedSet()
	log := &dispatchLog{}

	for range 5 {
		if _, err := Throttle(context.Background(), actions, set, log.dispatch); err != nil {
			t.Fatalf("Throttle() error = %v", err)
		}
	}

	want := []Action{map[string]any{"type": "FETCH_USER", "id": 1}, "FETCH_SETTINGS"}
	if diff := cmp.Diff(want, log.got); diff != "" {
		t.Fatalf("dispatched mismatch (-want +got):\n%s", diff)
	}
	if set.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", set.Len())
	}
}

func TestThrottlePreservesOrder(t *testing.T) {
	t.Parallel()

	actions := []Action{"C", "A", "B"}
	log := &dispatchLog{}
	n, err := Throttle(context.Background(), actions, NewDispatchedSet(), log.dispatch)
	if err != nil {
		t.Fatalf("Throttle() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("Throttle() = %d, want 3", n)
	}
	if diff := cmp.Diff(actions, log.got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestThrottleDispatchFailureIsNotRetried(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	log := &dispatchLog{fail: map[string]error{"B": boom}}
	set := NewDispatchedSet()
	actions := []Action{"A", "B", "C"}

	_, err := Throttle(context.Background(), actions, set, log.dispatch)
	if !errors.Is(err, boom) {
		t.Fatalf("Throttle() error = %v, want %v", err, boom)
	}
	if got := apperrors.GetCode(err); got != apperrors.CodeDispatchFailed {
		t.Fatalf("code = %q, want %q", got, apperrors.CodeDispatchFailed)
	}
	if !set.Has(mustKey(t, "B")) {
		t.Fatal("failed action should stay recorded")
	}
	if set.Has(mustKey(t, "C")) {
		t.Fatal("actions after the failure should not be recorded yet")
	}

	if _, err := Throttle(context.Background(), actions, set, log.dispatch); err != nil {
		t.Fatalf("second Throttle() error = %v", err)
	}
	if diff := cmp.Diff([]Action{"A", "B", "C"}, log.got); diff != "" {
		t.Fatalf("dispatched mismatch (-want +got):\n%s", diff)
	}
}

func TestThrottleKeyFailureLeavesActionUnrecorded(t *testing.T) {
	t.Parallel()

	set := NewDispatchedSet()
	log := &dispatchLog{}
	_, err := Throttle(context.Background(), []Action{"A", make(chan int)}, set, log.dispatch)
	if got := apperrors.GetCode(err); got != apperrors.CodeActionUnsupported {
		t.Fatalf("code = %q, want %q", got, apperrors.CodeActionUnsupported)
	}
	if set.Len() != 1 || len(log.got) != 1 {
		t.Fatalf("set len = %d, dispatched = %d; want 1, 1", set.Len(), len(log.got))
	}
}

func TestThrottleSeesMutatedEntries(t *testing.T) {
	t.Parallel()

	action := map[string]any{"page": 1}
	set := NewDispatchedSet()
	log := &dispatchLog{}
	_, _ = Throttle(context.Background(), []Action{action}, set, log.dispatch)
	action["page"] = 2
	_, _ = Throttle(context.Background(), []Action{action}, set, log.dispatch)

	if len(log.got) != 2 {
		t.Fatalf("dispatched %d actions, want 2", len(log.got))
	}
	if diff := cmp.Diff(2, set.Len()); diff != "" {
		t.Fatalf("Len() mismatch (-want +got):\n%s", diff)
	}
}
