package loader

import (
	"log"
	"slices"
)

// Warner receives non-fatal diagnostics.
type Warner interface {
	Warnf(format string, args ...any)
}

// WarnerFunc adapts a function to Warner.
type WarnerFunc func(format string, args ...any)

// Warnf implements Warner.
func (f WarnerFunc) Warnf(format string, args ...any) {
	if f != nil {
		f(format, args...)
	}
}

var logWarner = WarnerFunc(func(format string, args ...any) {
	log.Printf("loader: "+format, args...)
})

// Busy reports whether any watched request kind is active. An unrecognized
// active requests value is not busy and is reported to warn (the standard
// logger when warn is nil).
func Busy(active ActiveRequests, watched []RequestState, warn Warner) bool {
	switch a := active.(type) {
	case SequenceRequests:
		for _, name := range watched {
			if slices.Contains(a, name) {
				return true
			}
		}
		return false
	case MappingRequests:
		for _, name := range watched {
			if _, ok := a[name]; ok {
				return true
			}
		}
		return false
	case UnrecognizedRequests:
		warnUnrecognized(warn, a.Raw)
		return false
	default:
		warnUnrecognized(warn, active)
		return false
	}
}

func warnUnrecognized(warn Warner, raw any) {
	if warn == nil {
		warn = logWarner
	}
	warn.Warnf("active requests is neither a sequence nor a mapping (%T); treating as not busy", raw)
}
