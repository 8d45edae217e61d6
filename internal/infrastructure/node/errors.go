package node

import (
	"errors"
	"fmt"

	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/rpc"
)

// NodeError is returned when a node operation fails for a reason outside the
// provisioning taxonomy, such as an unreadable source file.
type NodeError struct {
	ID        string
	Operation string
	Message   string
	Err       error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s %s failed: %s", e.ID, e.Operation, e.Message)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// SourceNotFoundError is returned when cold provisioning cannot find the hot
// node's data directory or credential file.
type SourceNotFoundError struct {
	ID   string
	Path string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source for cold node %s not found at %s", e.ID, e.Path)
}

func (e *SourceNotFoundError) ErrorKind() rpc.ErrorKind { return rpc.KindSourceNotFound }

// ConflictError is returned when the cold node already has a credential file.
// The existing file is never overwritten.
type ConflictError struct {
	ID   string
	Path string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cold node %s already has a credential file at %s", e.ID, e.Path)
}

func (e *ConflictError) ErrorKind() rpc.ErrorKind { return rpc.KindConflict }

// AlreadyRunningError is returned when starting a node whose handle is
// still active.
type AlreadyRunningError struct {
	ID    string
	Role  Role
	State State
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("%s node %s is already %s", e.Role, e.ID, e.State)
}

// NotReadyError is returned by WaitReady when the context ends before the
// node became ready.
type NotReadyError struct {
	ID      string
	Role    Role
	LastErr error
	Err     error
}

func (e *NotReadyError) Error() string {
	msg := fmt.Sprintf("%s node %s not ready", e.Role, e.ID)
	if e.LastErr != nil {
		msg += ": " + e.LastErr.Error()
	}
	return msg
}

func (e *NotReadyError) Unwrap() []error {
	return []error{e.Err, e.LastErr}
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}

// IsSourceNotFound reports whether err is a SourceNotFoundError.
func IsSourceNotFound(err error) bool {
	var notFound *SourceNotFoundError
	return errors.As(err, &notFound)
}
