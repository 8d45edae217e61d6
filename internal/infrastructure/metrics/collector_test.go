package metrics

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/process"
)

func TestCollector_ObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	cli := process.NewInvocation("/usr/local/bin/multichain-cli", "getinfo", "chain1")
	c.ObserveRun(cli, process.CapturedOutput{Stdout: "{}"}, nil, 20*time.Millisecond)
	c.ObserveRun(cli, process.CapturedOutput{Stderr: "error code: -1\n", ExitCode: 1}, nil, time.Millisecond)
	c.ObserveRun(cli, process.CapturedOutput{}, &process.ExecutionError{Operation: "run", Err: context.DeadlineExceeded}, time.Second)
	c.ObserveRun(cli, process.CapturedOutput{}, &process.LaunchError{Operation: "locate", Err: fs.ErrNotExist}, 0)
	c.ObserveRun(cli, process.CapturedOutput{}, errors.New("read failed"), 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.invocations.WithLabelValues("multichain-cli", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.invocations.WithLabelValues("multichain-cli", OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.invocations.WithLabelValues("multichain-cli", OutcomeCancelled)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.invocations.WithLabelValues("multichain-cli", OutcomeLaunch)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.invocations.WithLabelValues("multichain-cli", OutcomeError)))
	assert.Equal(t, 1, testutil.CollectAndCount(c.duration))
}

func TestCollector_ObserveStart(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObserveStart(process.NewInvocation("/opt/mc/multichaind.exe", "chain1", "-daemon"), nil)
	c.ObserveStart(process.NewInvocation("/opt/mc/multichaind-cold"), errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.launches.WithLabelValues("multichaind", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.launches.WithLabelValues("multichaind-cold", OutcomeLaunch)))
}

func TestNewCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.Error(t, err)
}

func TestWriteText(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	c.ObserveStart(process.NewInvocation("/opt/mc/multichaind"), nil)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, reg))
	assert.Contains(t, buf.String(), `nodebridge_launches_total{executable="multichaind",outcome="ok"} 1`)
}

func TestCollector_WithInvoker(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	inv := process.NewInvoker(process.Config{Observer: c})
	_, err = inv.Run(context.Background(), process.NewInvocation("/nonexistent/multichain-cli"))
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.invocations.WithLabelValues("multichain-cli", OutcomeLaunch)))
}
