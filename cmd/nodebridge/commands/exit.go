package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/interactive"
	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/node"
	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/rpc"
)

// Exit statuses.
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitUsage          = 2
	ExitDecode         = 3
	ExitConflict       = 4
	ExitSourceNotFound = 5
	ExitLaunch         = 126
	ExitNotFound       = 127
	ExitCancelled      = 130
)

// usageError marks bad command-line input.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

// ExitCode maps err to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var usage *usageError
	if errors.As(err, &usage) {
		return ExitUsage
	}
	var cancelled *interactive.CancellationError
	if errors.As(err, &cancelled) {
		return ExitCancelled
	}
	var notReady *node.NotReadyError
	if errors.As(err, &notReady) {
		return ExitFailure
	}

	switch rpc.KindOf(err) {
	case rpc.KindEncoding:
		return ExitUsage
	case rpc.KindDecode:
		return ExitDecode
	case rpc.KindConflict:
		return ExitConflict
	case rpc.KindSourceNotFound:
		return ExitSourceNotFound
	case rpc.KindLaunch:
		return ExitLaunch
	case rpc.KindExecutableNotFound:
		return ExitNotFound
	case rpc.KindCancelled:
		return ExitCancelled
	}
	if errors.Is(err, context.Canceled) {
		return ExitCancelled
	}
	return ExitFailure
}

// usageArgs wraps a cobra argument validator so its failures exit with
// ExitUsage.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}
