package model

// Outcome is the tagged result of one upstream fetch: either a payload or a
// human-readable failure reason, never both. Failures are inspected through
// the discriminant rather than raised as errors past the fetch boundary.
type Outcome[T any] struct {
	value  T
	reason string
	ok     bool
}

// Ok wraps a successful payload.
func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{value: v, ok: true}
}

// Failed wraps a failure reason.
func Failed[T any](reason string) Outcome[T] {
	return Outcome[T]{reason: reason}
}

// OK reports whether the fetch succeeded.
func (o Outcome[T]) OK() bool { return o.ok }

// Value returns the payload; only meaningful when OK.
func (o Outcome[T]) Value() T { return o.value }

// Reason returns the failure reason; empty when OK.
func (o Outcome[T]) Reason() string { return o.reason }
