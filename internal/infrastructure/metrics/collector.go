// Package metrics records process invocation metrics with Prometheus.
package metrics

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/process"
)

const namespace = "nodebridge"

// Outcome labels.
const (
	OutcomeOK        = "ok"
	OutcomeFailed    = "failed"
	OutcomeLaunch    = "launch_error"
	OutcomeCancelled = "cancelled"
	OutcomeError     = "error"
)

// Collector implements process.Observer.
type Collector struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	launches    *prometheus.CounterVec
}

var _ process.Observer = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_total",
			Help:      "Wait-for-exit process invocations by executable and outcome.",
		}, []string{"executable", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invocation_duration_seconds",
			Help:      "Wall time of wait-for-exit process invocations.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"executable"}),
		launches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "launches_total",
			Help:      "Detached process launches by executable and outcome.",
		}, []string{"executable", "outcome"}),
	}

	for _, col := range []prometheus.Collector{c.invocations, c.duration, c.launches} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) ObserveRun(inv process.Invocation, out process.CapturedOutput, err error, elapsed time.Duration) {
	exe := executable(inv)
	c.invocations.WithLabelValues(exe, runOutcome(out, err)).Inc()
	c.duration.WithLabelValues(exe).Observe(elapsed.Seconds())
}

func (c *Collector) ObserveStart(inv process.Invocation, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeLaunch
	}
	c.launches.WithLabelValues(executable(inv), outcome).Inc()
}

func runOutcome(out process.CapturedOutput, err error) string {
	if err != nil {
		var launchErr *process.LaunchError
		switch {
		case errors.As(err, &launchErr):
			return OutcomeLaunch
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return OutcomeCancelled
		default:
			return OutcomeError
		}
	}
	if out.ExitCode != 0 || strings.TrimSpace(out.Stderr) != "" {
		return OutcomeFailed
	}
	return OutcomeOK
}

func executable(inv process.Invocation) string {
	name := filepath.Base(inv.Path)
	return strings.TrimSuffix(name, ".exe")
}

// WriteText writes every metric family gathered from g in the Prometheus
// text format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
