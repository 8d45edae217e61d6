package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/altuslabsxyz/nodebridge/internal/config"
	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/binary"
	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/metrics"
	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/node"
	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/process"
	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/rpc"
	"github.com/altuslabsxyz/nodebridge/internal/output"
)

type globalFlags struct {
	configPath  string
	chain       string
	binariesDir string
	verbose     bool
	noColor     bool
	metrics     bool
}

// app holds the state shared by every command of one execution.
type app struct {
	out    io.Writer
	errOut io.Writer
	flags  globalFlags

	cfg      *config.Config
	log      *output.Logger
	slogger  *slog.Logger
	registry *prometheus.Registry
	resolver *binary.Resolver
	orch     *node.Orchestrator
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut}
}

// setup loads configuration and wires the orchestrator.
// Priority: defaults < config file < env < flags
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.log = output.NewLoggerWithWriters(a.out, a.errOut)
	a.log.SetNoColor(a.flags.noColor)
	a.log.SetVerbose(a.flags.verbose)

	if cmd.Annotations[annotationSkipSetup] != "" {
		return nil
	}

	loader := config.NewLoader(a.flags.configPath)
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	a.applyFlagOverrides(cmd, cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}
	a.cfg = cfg
	a.log.Debug("Using config file: %s", loader.Path())

	a.slogger = output.NewSlogLogger(a.log.ErrWriter(), cfg.Log.Level, cfg.Log.Format)

	invokerCfg := process.Config{Logger: a.slogger}
	if a.flags.metrics {
		a.registry = prometheus.NewRegistry()
		collector, err := metrics.NewCollector(a.registry)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		invokerCfg.Observer = collector
	}
	invoker := process.NewInvoker(invokerCfg)

	a.resolver = binary.NewResolver(cfg.Binaries.Dir)

	clientOpts := []rpc.Option{
		rpc.WithSpaceSentinel(cfg.Chain.SpaceSentinel),
		rpc.WithCallTimeout(cfg.Timeouts.Call),
	}
	if cfg.Limits.CallsPerSecond > 0 {
		clientOpts = append(clientOpts, rpc.WithRateLimit(
			rate.NewLimiter(rate.Limit(cfg.Limits.CallsPerSecond), cfg.Limits.Burst)))
	}

	a.orch = node.NewOrchestrator(node.Config{
		Layout:        cfg.Layout(),
		Resolver:      a.resolver,
		Runner:        invoker,
		Launcher:      invoker,
		Logger:        a.slogger,
		PassDataDir:   cfg.Node.PassDataDir,
		ClientOptions: clientOpts,
	})
	return nil
}

func (a *app) applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("chain") {
		cfg.Chain.Name = a.flags.chain
	}
	if cmd.Flags().Changed("binaries-dir") {
		cfg.Binaries.Dir = a.flags.binariesDir
	}
	if a.flags.verbose {
		cfg.Log.Level = "debug"
	}
}

// chainID returns the configured chain or a usage error.
func (a *app) chainID() (string, error) {
	if a.cfg.Chain.Name == "" {
		return "", &usageError{err: fmt.Errorf("no chain selected: pass --chain or set [chain] name in %s", config.NewLoader(a.flags.configPath).Path())}
	}
	return a.cfg.Chain.Name, nil
}

// logger returns the CLI logger, creating one if setup never ran.
func (a *app) logger() *output.Logger {
	if a.log == nil {
		a.log = output.NewLoggerWithWriters(a.out, a.errOut)
		a.log.SetNoColor(a.flags.noColor)
	}
	return a.log
}

func (a *app) flushMetrics() {
	if a.registry == nil {
		return
	}
	if err := metrics.WriteText(a.logger().ErrWriter(), a.registry); err != nil {
		a.logger().Warn("failed to write metrics: %v", err)
	}
}

func roleFor(cold bool) node.Role {
	if cold {
		return node.RoleCold
	}
	return node.RoleHot
}
