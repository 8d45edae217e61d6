package node

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/process"
	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/rpc"
)

func writeReadyArtifact(t *testing.T, f *fixture, id string, role Role) {
	t.Helper()
	require.NoError(t, os.MkdirAll(f.layout.DataDir(id, role.Cold()), 0700))
	require.NoError(t, os.WriteFile(f.layout.ReadyArtifactPath(id, role.Cold()), []byte("rpcuser=x\n"), 0600))
}

func TestWaitReady_ArtifactPresent(t *testing.T) {
	f := newFixture(t, nil)
	writeReadyArtifact(t, f, "chain1", RoleHot)

	err := f.orch.WaitReady(context.Background(), "chain1", RoleHot, ReadyOptions{Interval: 10 * time.Millisecond})
	assert.NoError(t, err)
	assert.Empty(t, f.runner.calls)
}

func TestWaitReady_ArtifactAppearsLater(t *testing.T) {
	f := newFixture(t, nil)
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = os.MkdirAll(f.layout.HotDir("chain1"), 0700)
		_ = os.WriteFile(f.layout.ReadyArtifactPath("chain1", false), nil, 0600)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, f.orch.WaitReady(ctx, "chain1", RoleHot, ReadyOptions{Interval: 20 * time.Millisecond}))
}

func TestWaitReady_Timeout(t *testing.T) {
	f := newFixture(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := f.orch.WaitReady(ctx, "chain1", RoleCold, ReadyOptions{Interval: 20 * time.Millisecond})

	var notReady *NotReadyError
	require.ErrorAs(t, err, &notReady)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), f.layout.ReadyArtifactPath("chain1", true))
}

func TestWaitReady_Probe(t *testing.T) {
	t.Run("hot getinfo", func(t *testing.T) {
		f := newFixture(t, nil)
		writeReadyArtifact(t, f, "chain1", RoleHot)
		f.runner.out = process.CapturedOutput{Stdout: `{"chainname":"chain1"}`}

		err := f.orch.WaitReady(context.Background(), "chain1", RoleHot, ReadyOptions{Interval: 10 * time.Millisecond, Probe: true})
		require.NoError(t, err)
		require.Len(t, f.runner.calls, 1)
		assert.Equal(t, []string{"getinfo", "chain1"}, f.runner.calls[0].Args)
	})

	t.Run("cold getinfo", func(t *testing.T) {
		f := newFixture(t, nil)
		writeReadyArtifact(t, f, "chain1", RoleCold)
		f.runner.out = process.CapturedOutput{Stdout: `{"chainname":"chain1"}`}

		require.NoError(t, f.orch.WaitReady(context.Background(), "chain1", RoleCold, ReadyOptions{Probe: true}))
		assert.Equal(t, []string{"-cold", "chain1", "getinfo"}, f.runner.calls[0].Args)
	})

	t.Run("remote errors are retried until timeout", func(t *testing.T) {
		f := newFixture(t, nil)
		writeReadyArtifact(t, f, "chain1", RoleHot)
		f.runner.out = process.CapturedOutput{Stderr: "error code: -28\nLoading block index...\n", ExitCode: 1}

		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
		defer cancel()
		err := f.orch.WaitReady(ctx, "chain1", RoleHot, ReadyOptions{Interval: 20 * time.Millisecond, Probe: true})
		var notReady *NotReadyError
		require.ErrorAs(t, err, &notReady)
		assert.Equal(t, rpc.KindRemote, rpc.KindOf(notReady.LastErr))
		assert.Greater(t, len(f.runner.calls), 1)
	})

	t.Run("missing client stops immediately", func(t *testing.T) {
		f := newFixture(t, func(c *Config) { c.Resolver = mapResolver{} })
		writeReadyArtifact(t, f, "chain1", RoleHot)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		begin := time.Now()
		err := f.orch.WaitReady(ctx, "chain1", RoleHot, ReadyOptions{Interval: 10 * time.Millisecond, Probe: true})
		require.Error(t, err)
		assert.Less(t, time.Since(begin), time.Second)
		assert.Equal(t, rpc.KindExecutableNotFound, rpc.KindOf(err))
	})
}
