// Package store defines the boundary between loaders and the state store
// that owns global state and the dispatch mechanism.
package store

import "context"

// ActiveRequestsKey is the state key holding the request kinds currently in
// flight.
const ActiveRequestsKey = "activeRequests"

// State is a read snapshot of global state.
type State map[string]any

// View is the store as seen by a loader: a state reader plus a dispatcher.
type View interface {
	// Read returns the current global state.
	Read(ctx context.Context) (State, error)
	// Dispatch submits an action for processing. Implementations queue work
	// and return without waiting for it to finish.
	Dispatch(ctx context.Context, action any) error
}

// Shape selects how a store exposes active requests.
type Shape int

const (
	// ShapeSequence exposes active requests as an ordered []string.
	ShapeSequence Shape = iota
	// ShapeMapping exposes active requests as a map keyed by request kind.
	ShapeMapping
)

// String returns the configuration name of the shape.
func (s Shape) String() string {
	switch s {
	case ShapeSequence:
		return "sequence"
	case ShapeMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// ParseShape parses a configuration name produced by Shape.String.
func ParseShape(name string) (Shape, bool) {
	switch name {
	case "sequence", "":
		return ShapeSequence, true
	case "mapping":
		return ShapeMapping, true
	default:
		return ShapeSequence, false
	}
}
