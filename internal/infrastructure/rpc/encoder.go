// Package rpc turns typed method calls into client command invocations and
// decodes the client's raw output back into typed results.
package rpc

import "fmt"

// DefaultSpaceSentinel replaces literal spaces in Message parameters.
const DefaultSpaceSentinel = "_"

// Encoder builds argument vectors following the client calling convention:
//
//	<method> <positional-args...> <target-identifier>
//
// It performs no domain validation; only malformed parameters fail.
type Encoder struct {
	SpaceSentinel string
}

// NewEncoder returns an Encoder using DefaultSpaceSentinel.
func NewEncoder() Encoder {
	return Encoder{SpaceSentinel: DefaultSpaceSentinel}
}

// Encode with the default encoder.
func Encode(method, target string, params ...Param) ([]string, error) {
	return NewEncoder().Encode(method, target, params...)
}

// Encode renders method, params and target as argv tokens. Trailing absent
// params are dropped; an absent param followed by a supplied one becomes an
// empty placeholder so later arguments keep their positions.
func (e Encoder) Encode(method, target string, params ...Param) ([]string, error) {
	if method == "" {
		return nil, &Error{Kind: KindEncoding, Message: "method name is required"}
	}
	if target == "" {
		return nil, &Error{Kind: KindEncoding, Method: method, Message: "target identifier is required"}
	}

	last := len(params) - 1
	for last >= 0 && params[last].IsAbsent() {
		last--
	}

	sentinel := e.SpaceSentinel
	if sentinel == "" {
		sentinel = DefaultSpaceSentinel
	}

	argv := make([]string, 0, last+3)
	argv = append(argv, method)
	for i := 0; i <= last; i++ {
		tok, err := params[i].token(sentinel)
		if err != nil {
			return nil, &Error{
				Kind:    KindEncoding,
				Method:  method,
				Message: fmt.Sprintf("parameter %d: %v", i, err),
				Err:     err,
			}
		}
		argv = append(argv, tok)
	}
	argv = append(argv, target)

	return argv, nil
}
