package rpc

// Unit is the result type of calls that return nothing useful, like stop.
type Unit struct{}

// Result is the outcome of one call. Exactly one of Value and Err is
// meaningful: Err is nil on success, and Value is the zero value on failure.
type Result[T any] struct {
	Value T
	Err   *Error
}

// OK reports success.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Unwrap converts the result into Go's (value, error) pair.
func (r Result[T]) Unwrap() (T, error) {
	if r.Err != nil {
		var zero T
		return zero, r.Err
	}
	return r.Value, nil
}

func succeed[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func fail[T any](err *Error) Result[T] {
	return Result[T]{Err: err}
}
