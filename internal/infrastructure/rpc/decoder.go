package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/process"
)

var errorCodePattern = regexp.MustCompile(`(?m)^error code:\s*(-?\d+)`)

// Decode turns the captured output of one client call into a Result.
//
// Any stderr text or a non-zero exit status is a remote error. Otherwise
// stdout is parsed as T: a bare scalar is trimmed, anything else is decoded
// as JSON. Empty output and null are only valid results for types with an
// empty representation (strings, slices, maps, pointers, interfaces and Unit).
func Decode[T any](method string, out process.CapturedOutput) Result[T] {
	if strings.TrimSpace(out.Stderr) != "" {
		return fail[T](remoteError(method, out.Stderr))
	}
	if out.ExitCode != 0 {
		msg := out.Stdout
		if strings.TrimSpace(msg) == "" {
			msg = fmt.Sprintf("exit status %d", out.ExitCode)
		}
		return fail[T](remoteError(method, msg))
	}

	if reflect.TypeFor[T]() == reflect.TypeFor[Unit]() {
		var unit T
		return succeed(unit)
	}

	payload := strings.TrimSpace(out.Stdout)
	result, rpcErr, isEnvelope := unwrapEnvelope(payload)
	if isEnvelope {
		if rpcErr != nil {
			return fail[T](remoteError(method, string(rpcErr)))
		}
		payload = strings.TrimSpace(string(result))
		if payload == "null" && admitsEmpty[T]() {
			var zero T
			return succeed(zero)
		}
	}

	if payload == "" {
		if admitsEmpty[T]() {
			var zero T
			return succeed(zero)
		}
		return fail[T](&Error{
			Kind:    KindDecode,
			Method:  method,
			Message: fmt.Sprintf("empty output cannot be decoded as %s", typeName[T]()),
		})
	}
	// json leaves the zero value in place for null, which would read as a
	// falsy result instead of a missing one.
	if payload == "null" && !admitsEmpty[T]() {
		return fail[T](&Error{
			Kind:    KindDecode,
			Method:  method,
			Message: fmt.Sprintf("null cannot be decoded as %s", typeName[T]()),
		})
	}

	v, err := decodeValue[T](payload)
	if err != nil {
		return fail[T](&Error{
			Kind:    KindDecode,
			Method:  method,
			Message: payload,
			Err:     err,
		})
	}
	return succeed(v)
}

func decodeValue[T any](payload string) (T, error) {
	var v T
	switch target := any(&v).(type) {
	case *string:
		if strings.HasPrefix(payload, `"`) {
			if err := json.Unmarshal([]byte(payload), target); err == nil {
				return v, nil
			}
		}
		*target = payload
		return v, nil
	case *json.RawMessage:
		*target = json.RawMessage(payload)
		return v, nil
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	err := dec.Decode(&v)
	if err == nil && dec.More() {
		err = fmt.Errorf("unexpected data after JSON value")
	}
	if err == nil {
		return v, nil
	}

	// A bare word requested as an untyped value is returned as text.
	var zero T
	if untyped, ok := any(&zero).(*any); ok {
		*untyped = payload
		return zero, nil
	}
	return zero, fmt.Errorf("cannot decode as %s: %w", typeName[T](), err)
}

// unwrapEnvelope recognizes a JSON-RPC response object. isEnvelope is false
// for any other payload, including plain result objects.
func unwrapEnvelope(payload string) (result, rpcErr json.RawMessage, isEnvelope bool) {
	if !strings.HasPrefix(payload, "{") {
		return nil, nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return nil, nil, false
	}
	result, hasResult := fields["result"]
	errField, hasError := fields["error"]
	if !hasResult || !hasError {
		return nil, nil, false
	}
	for key := range fields {
		if key != "result" && key != "error" && key != "id" {
			return nil, nil, false
		}
	}
	if len(errField) == 0 || bytes.Equal(bytes.TrimSpace(errField), []byte("null")) {
		return result, nil, true
	}
	return result, errField, true
}

// remoteError builds a KindRemote error keeping text verbatim and extracting
// the node's numeric error code when one is present.
func remoteError(method, text string) *Error {
	return &Error{
		Kind:    KindRemote,
		Method:  method,
		Message: text,
		Code:    parseErrorCode(text),
	}
}

func parseErrorCode(text string) *int {
	if m := errorCodePattern.FindStringSubmatch(text); m != nil {
		if code, err := strconv.Atoi(m[1]); err == nil {
			return &code
		}
	}

	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil
	}
	var obj struct {
		Code *int `json:"code"`
	}
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil
	}
	return obj.Code
}

func admitsEmpty[T any]() bool {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Pointer, reflect.Interface:
		return true
	default:
		return false
	}
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
