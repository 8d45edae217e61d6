package node

import (
	"context"

	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/process"
)

// Launcher starts a detached process. *process.Invoker implements it.
type Launcher interface {
	Start(ctx context.Context, inv process.Invocation) (process.LaunchInfo, error)
}
