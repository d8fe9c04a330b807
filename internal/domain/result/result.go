// Package result provides the typed outcome returned by every data-fetch
// operation so callers can tell a missing resource from a failed upstream.
package result

// Status classifies how a fetch ended.
type Status int

const (
	// StatusFound means the value was resolved from upstream.
	StatusFound Status = iota
	// StatusEmpty means upstream answered but the resource does not exist.
	StatusEmpty
	// StatusFailed means upstream could not be reached or rejected the call.
	// The value is the safe default for the operation.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result carries a value together with the way it was obtained. Value is
// always usable: on StatusEmpty and StatusFailed it holds the default.
type Result[T any] struct {
	Value  T
	Status Status
	Err    error
}

// Found wraps a resolved value.
func Found[T any](v T) Result[T] {
	return Result[T]{Value: v, Status: StatusFound}
}

// Empty wraps the default returned for a missing resource.
func Empty[T any](v T) Result[T] {
	return Result[T]{Value: v, Status: StatusEmpty}
}

// Failed wraps the default returned when upstream failed with err.
func Failed[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, Status: StatusFailed, Err: err}
}

// IsFound reports whether the value was resolved.
func (r Result[T]) IsFound() bool { return r.Status == StatusFound }

// IsFailed reports whether upstream failed.
func (r Result[T]) IsFailed() bool { return r.Status == StatusFailed }
