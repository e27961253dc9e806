package loader

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/louisbranch/loadguard/internal/store"
)

// RequestState names a kind of in-flight request, such as "FETCH_USER".
type RequestState string

// ActiveRequests is the store's view of in-flight request kinds. It is one
// of SequenceRequests, MappingRequests or UnrecognizedRequests.
type ActiveRequests interface {
	activeRequests()
}

// SequenceRequests lists active request kinds.
type SequenceRequests []RequestState

// MappingRequests holds active request kinds as keys.
type MappingRequests map[RequestState]struct{}

// UnrecognizedRequests wraps a raw value that is neither a sequence nor a
// mapping.
type UnrecognizedRequests struct {
	Raw any
}

func (SequenceRequests) activeRequests()     {}
func (MappingRequests) activeRequests()      {}
func (UnrecognizedRequests) activeRequests() {}

// Materializer is implemented by immutable or lazy collections that must be
// converted to plain slices or maps before they can be inspected.
type Materializer interface {
	Materialize() any
}

// Selector extracts the raw active requests value from global state.
type Selector func(state store.State) any

// DefaultSelector reads state[store.ActiveRequestsKey].
func DefaultSelector(state store.State) any {
	return state[store.ActiveRequestsKey]
}

// ClassifyRequests converts an untrusted raw value into ActiveRequests.
// Slices and arrays are sequences (non-string elements never match);
// maps are mappings keyed by their keys, regardless of values; anything
// else, including nil, is unrecognized.
func ClassifyRequests(raw any) ActiveRequests {
	if m, ok := raw.(Materializer); ok {
		raw = m.Materialize()
	}

	switch v := raw.(type) {
	case nil:
		return UnrecognizedRequests{}
	case ActiveRequests:
		return v
	case []RequestState:
		return SequenceRequests(slices.Clone(v))
	case []string:
		out := make(SequenceRequests, len(v))
		for i, name := range v {
			out[i] = RequestState(name)
		}
		return out
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make(SequenceRequests, 0, rv.Len())
		for i := range rv.Len() {
			item := rv.Index(i)
			if item.Kind() == reflect.Interface && !item.IsNil() {
				item = item.Elem()
			}
			if item.Kind() == reflect.String {
				out = append(out, RequestState(item.String()))
			}
		}
		return out
	case reflect.Map:
		out := make(MappingRequests, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key()
			if key.Kind() == reflect.Interface && !key.IsNil() {
				key = key.Elem()
			}
			if key.Kind() == reflect.String {
				out[RequestState(key.String())] = struct{}{}
				continue
			}
			out[RequestState(fmt.Sprint(key.Interface()))] = struct{}{}
		}
		return out
	default:
		return UnrecognizedRequests{Raw: raw}
	}
}
