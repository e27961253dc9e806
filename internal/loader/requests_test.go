package loader

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/louisbranch/loadguard/internal/store"
)

type frozenList struct {
	items []string
}

func (f frozenList) Materialize() any { return f.items }

func TestClassifyRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  any
		want ActiveRequests
	}{
		{name: "nil", raw: nil, want: UnrecognizedRequests{}},
		{name: "string", raw: "FETCH_USER", want: UnrecognizedRequests{Raw: "FETCH_USER"}},
		{name: "number", raw: 42, want: UnrecognizedRequests{Raw: 42}},
		{name: "strings", raw: []string{"A", "B"}, want: SequenceRequests{"A", "B"}},
		{name: "request states", raw: []RequestState{"A"}, want: SequenceRequests{"A"}},
		{name: "mixed any slice", raw: []any{"A", 3, nil, "B"}, want: SequenceRequests{"A", "B"}},
		{name: "array", raw: [2]string{"A", "B"}, want: SequenceRequests{"A", "B"}},
		{name: "empty slice", raw: []string{}, want: SequenceRequests{}},
		{
			name: "bool map",
			raw:  map[string]bool{"A": true, "B": false},
			want: MappingRequests{"A": {}, "B": {}},
		},
		{
			name: "any map",
			raw:  map[string]any{"A": struct{}{}},
			want: MappingRequests{"A": {}},
		},
		{
			name: "named key map",
			raw:  map[RequestState]int{"A": 1},
			want: MappingRequests{"A": {}},
		},
		{name: "materialized", raw: frozenList{items: []string{"A"}}, want: SequenceRequests{"A"}},
		{name: "already classified", raw: MappingRequests{"A": {}}, want: MappingRequests{"A": {}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, ClassifyRequests(tt.raw)); diff != "" {
				t.Fatalf("ClassifyRequests() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassifyRequestsCopiesSequences(t *testing.T) {
	t.Parallel()

	raw := []RequestState{"A"}
	got := ClassifyRequests(raw).(SequenceRequests)
	raw[0] = "Z"
	if got[0] != "A" {
		t.Fatalf("classified sequence aliases input: %v", got)
	}
}

func TestDefaultSelector(t *testing.T) {
	t.Parallel()

	state := store.State{store.ActiveRequestsKey: []string{"A"}, "other": 1}
	if diff := cmp.Diff([]string{"A"}, DefaultSelector(state)); diff != "" {
		t.Fatalf("DefaultSelector() mismatch (-want +got):\n%s", diff)
	}
	if got := DefaultSelector(nil); got != nil {
		t.Fatalf("DefaultSelector(nil) = %v, want nil", got)
	}
}
