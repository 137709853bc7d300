// Package errors defines the small closed set of error codes the BARS
// client engine can raise, following the teacher codebase's
// code+message+cause convention rather than ad-hoc sentinel values.
package errors

import "fmt"

// Code identifies the class of a DomainError.
type Code string

const (
	// ErrCodeDecodeFailed means a configuration container failed to
	// decode (bad magic, unsupported version, corrupt body). Client.Tick
	// logs a Config that fails to decode and drops it; it does not stop
	// the tick.
	ErrCodeDecodeFailed Code = "DECODE_FAILED"

	// ErrCodeEncodeFailed means a configuration value could not be
	// serialised.
	ErrCodeEncodeFailed Code = "ENCODE_FAILED"

	// ErrCodeChannelClosed means the transport to the server failed or
	// was closed. Dial and Send return it; Client.Tick logs a failed
	// send as a warning and carries on.
	ErrCodeChannelClosed Code = "CHANNEL_CLOSED"

	// ErrCodeUnknownProfile is a warning-level condition: a server patch
	// or operator command named a profile id/index the aerodrome does
	// not have.
	ErrCodeUnknownProfile Code = "UNKNOWN_PROFILE"

	// ErrCodeRouteOverflow is a debug-level condition: the route solver
	// either exceeded its 1000-hop reconstruction guard or found a
	// revisited chain. Non-fatal; no block state is written (§4.6, §7).
	ErrCodeRouteOverflow Code = "ROUTE_OVERFLOW"

	// ErrCodeMapParse names a TopSky map parse failure. The topsky
	// package does not use it: its Parse returns a *topsky.ParseError
	// carrying the offending line number.
	ErrCodeMapParse Code = "MAP_PARSE"
)

// DomainError is the engine's error type: a stable code, a human
// message, and an optional wrapped cause.
type DomainError struct {
	Code    Code
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error { return e.Err }

// New constructs a DomainError.
func New(code Code, message string, cause error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: cause}
}
