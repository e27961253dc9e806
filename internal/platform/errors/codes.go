// Package errors provides structured error handling for loader and store failures.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Configuration errors
	CodeConfigInvalid Code = "CONFIG_INVALID"

	// Action key errors
	CodeActionUnsupported Code = "ACTION_UNSUPPORTED"
	CodeActionCycle       Code = "ACTION_CYCLE"
	CodeActionTooDeep     Code = "ACTION_TOO_DEEP"
	CodeActionNotTracked  Code = "ACTION_NOT_TRACKED"

	// Store errors
	CodeDispatchFailed Code = "DISPATCH_FAILED"
	CodeStoreRead      Code = "STORE_READ"
	CodeStoreWrite     Code = "STORE_WRITE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// BadRequest - actions that can never be keyed or tracked
	case CodeActionUnsupported,
		CodeActionCycle,
		CodeActionTooDeep,
		CodeActionNotTracked:
		return http.StatusBadRequest

	// BadGateway - the store rejected or could not serve the call
	case CodeDispatchFailed,
		CodeStoreRead,
		CodeStoreWrite:
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
