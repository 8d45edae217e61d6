package rpc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies every failure a call can produce.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindEncoding: a parameter could not be rendered. Never retried.
	KindEncoding
	// KindExecutableNotFound: the client or daemon binary is missing.
	KindExecutableNotFound
	// KindLaunch: the OS refused to start the process.
	KindLaunch
	// KindRemote: the process ran and reported failure.
	KindRemote
	// KindDecode: the process succeeded but its output has the wrong shape.
	KindDecode
	// KindConflict: provisioning found an artifact it must not overwrite.
	KindConflict
	// KindSourceNotFound: a provisioning prerequisite is missing.
	KindSourceNotFound
	// KindCancelled: the caller cancelled the call or its deadline passed.
	KindCancelled
)

var kindNames = map[ErrorKind]string{
	KindUnknown:            "unknown",
	KindEncoding:           "encoding fault",
	KindExecutableNotFound: "executable not found",
	KindLaunch:             "launch failure",
	KindRemote:             "remote error",
	KindDecode:             "decode failure",
	KindConflict:           "conflict",
	KindSourceNotFound:     "source not found",
	KindCancelled:          "cancelled",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinels for errors.Is. Only the kind is compared.
var (
	ErrEncoding           = &Error{Kind: KindEncoding}
	ErrExecutableNotFound = &Error{Kind: KindExecutableNotFound}
	ErrLaunch             = &Error{Kind: KindLaunch}
	ErrRemote             = &Error{Kind: KindRemote}
	ErrDecode             = &Error{Kind: KindDecode}
	ErrCancelled          = &Error{Kind: KindCancelled}
)

// Error is the failure detail of a Result.
type Error struct {
	Kind   ErrorKind
	Method string
	// Message is the raw diagnostic text, kept verbatim.
	Message string
	// Code is set when the diagnostic carried a machine-readable error code.
	Code *int
	Err  error
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Method != "" {
		sb.WriteString(e.Method)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Kind.String())
	if e.Code != nil {
		fmt.Fprintf(&sb, " (code %d)", *e.Code)
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		sb.WriteString(": ")
		sb.WriteString(msg)
	} else if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Kinded is implemented by errors from other packages that belong to the
// taxonomy, such as provisioning conflicts.
type Kinded interface {
	ErrorKind() ErrorKind
}

// KindOf returns the taxonomy kind of err, or KindUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr.Kind
	}
	var kinded Kinded
	if errors.As(err, &kinded) {
		return kinded.ErrorKind()
	}
	return KindUnknown
}
