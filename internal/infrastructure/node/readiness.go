package node

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/rpc"
)

// DefaultReadyInterval is the polling interval used when ReadyOptions leaves
// Interval unset.
const DefaultReadyInterval = 500 * time.Millisecond

// ReadyOptions controls WaitReady.
type ReadyOptions struct {
	Interval time.Duration
	// Probe additionally requires a successful getinfo call.
	Probe bool
}

// WaitReady polls until the daemon has written its runtime configuration
// file and, when requested, answers getinfo. It gives up when ctx ends.
// Errors that polling cannot fix, such as a missing client binary, stop the
// wait immediately.
func (o *Orchestrator) WaitReady(ctx context.Context, id string, role Role, opts ReadyOptions) error {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultReadyInterval
	}
	artifact := o.layout.ReadyArtifactPath(id, role.Cold())

	var lastErr error
	err := retry.Do(
		func() error {
			lastErr = o.checkReady(ctx, id, role, artifact, opts.Probe)
			return lastErr
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(interval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			o.logger.Debug("node not ready yet",
				"chain", id,
				"role", role,
				"attempt", n+1,
				"error", err)
		}),
	)
	if err == nil {
		o.logger.Info("node ready", "chain", id, "role", role)
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &NotReadyError{ID: id, Role: role, LastErr: lastErr, Err: ctxErr}
	}
	return err
}

func (o *Orchestrator) checkReady(ctx context.Context, id string, role Role, artifact string, probe bool) error {
	if _, err := os.Stat(artifact); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s not written yet", artifact)
		}
		return retry.Unrecoverable(err)
	}
	if !probe {
		return nil
	}

	result := rpc.Call[map[string]any](ctx, o.Client(id, role), "getinfo")
	if result.OK() {
		return nil
	}
	switch result.Err.Kind {
	case rpc.KindRemote, rpc.KindDecode:
		return result.Err
	default:
		return retry.Unrecoverable(result.Err)
	}
}
