// Package lookup provides the Result type returned by every network-facing
// operation of the resolution engine.
//
// A Result is exactly one of three outcomes:
//
//   - OK: the call succeeded and produced a value
//   - Empty: the call succeeded but there was legitimately nothing to return
//     (unknown entity, ambiguous binding, missing claim)
//   - Failed: the call could not be completed (transport, HTTP status,
//     decoding); the error is retained for logging and tests
//
// None of the outcomes is ever raised as a Go error to the caller of the
// sync path; callers branch on the status instead.
package lookup

import "fmt"

// Status enumerates the outcome of a lookup.
type Status int

const (
	// StatusEmpty means nothing was found.
	StatusEmpty Status = iota
	// StatusOK means a value was produced.
	StatusOK
	// StatusFailed means the lookup could not be completed.
	StatusFailed
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is a sum type of OK(value), Empty(reason) and Failed(err).
// The zero value is an Empty result without a reason.
type Result[T any] struct {
	status Status
	value  T
	reason string
	err    error
}

// OK wraps a successfully produced value.
func OK[T any](value T) Result[T] {
	return Result[T]{status: StatusOK, value: value}
}

// Empty reports that nothing was found, with a human-readable reason.
func Empty[T any](reason string) Result[T] {
	return Result[T]{status: StatusEmpty, reason: reason}
}

// Emptyf is Empty with a formatted reason.
func Emptyf[T any](format string, args ...any) Result[T] {
	return Empty[T](fmt.Sprintf(format, args...))
}

// Failed reports that the lookup could not be completed.
func Failed[T any](err error) Result[T] {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	return Result[T]{status: StatusFailed, reason: reason, err: err}
}

// Status returns the outcome.
func (r Result[T]) Status() Status { return r.status }

// IsOK reports whether a value was produced.
func (r Result[T]) IsOK() bool { return r.status == StatusOK }

// IsEmpty reports whether nothing was found.
func (r Result[T]) IsEmpty() bool { return r.status == StatusEmpty }

// IsFailed reports whether the lookup failed.
func (r Result[T]) IsFailed() bool { return r.status == StatusFailed }

// Value returns the value, or the zero value of T unless the result is OK.
func (r Result[T]) Value() T { return r.value }

// Get returns the value and whether the result is OK.
func (r Result[T]) Get() (T, bool) { return r.value, r.status == StatusOK }

// Reason explains an Empty or Failed result.
func (r Result[T]) Reason() string { return r.reason }

// Err returns the underlying error of a Failed result.
func (r Result[T]) Err() error { return r.err }

// String implements fmt.Stringer.
func (r Result[T]) String() string {
	switch r.status {
	case StatusOK:
		return fmt.Sprintf("ok(%v)", r.value)
	default:
		if r.reason == "" {
			return r.status.String()
		}
		return fmt.Sprintf("%s(%s)", r.status, r.reason)
	}
}

// Map converts the value of an OK result and passes other outcomes through.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	switch r.status {
	case StatusOK:
		return OK(fn(r.value))
	case StatusFailed:
		return Result[U]{status: StatusFailed, reason: r.reason, err: r.err}
	default:
		return Empty[U](r.reason)
	}
}
