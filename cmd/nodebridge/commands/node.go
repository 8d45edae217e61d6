package commands

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/node"
	"github.com/altuslabsxyz/nodebridge/internal/output"
)

type readyFlags struct {
	wait    bool
	probe   bool
	timeout time.Duration
}

func (f *readyFlags) register(cmd *cobra.Command, withWait bool) {
	if withWait {
		cmd.Flags().BoolVar(&f.wait, "wait", false, "Wait until the node is ready")
	}
	cmd.Flags().BoolVar(&f.probe, "probe", false, "Also require a successful getinfo")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Readiness timeout (default from config, 0 waits forever)")
}

func (a *app) newStartCmd() *cobra.Command {
	var (
		cold   bool
		rpcssl bool
		params []string
		ready  readyFlags
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a node daemon in the background",
		Long: `Start the hot (or, with --cold, the cold) daemon for the selected chain.

Runtime parameters from [node.params] are passed as -name=value flags; --param
adds or overrides them. The command returns once the daemon process is
launched; use --wait to block until it has initialized.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := a.chainID()
			if err != nil {
				return err
			}
			runtimeParams, err := mergeParams(a.cfg.Node.Params, a.cfg.ParamNames(), params)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("rpcssl") {
				rpcssl = a.cfg.Node.RPCSSL
			}

			role := roleFor(cold)
			handle, err := a.orch.Start(cmd.Context(), chain, role, node.StartOptions{
				RPCSSL: rpcssl,
				Params: runtimeParams,
			})
			if err != nil {
				return err
			}
			a.log.Success("Started %s daemon for %s (pid %d)", role, chain, handle.PID)
			a.log.KeyValue("data dir", handle.DataDir)

			if !ready.wait {
				return nil
			}
			return a.waitReady(cmd, chain, role, ready)
		},
	}

	cmd.Flags().BoolVar(&cold, "cold", false, "Start the cold daemon")
	cmd.Flags().BoolVar(&rpcssl, "rpcssl", false, "Serve JSON-RPC over TLS")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Runtime parameter name=value (repeatable)")
	ready.register(cmd, true)
	return cmd
}

func (a *app) newConnectCmd() *cobra.Command {
	var (
		rpcssl bool
		ready  readyFlags
	)

	cmd := &cobra.Command{
		Use:   "connect [host:port]",
		Short: "Start the hot daemon by joining a remote peer",
		Long: `Start the hot daemon for the selected chain by connecting to an existing
peer. Without an argument the [remote] section of the config is used.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := a.chainID()
			if err != nil {
				return err
			}

			host, port := a.cfg.Remote.Host, a.cfg.Remote.Port
			if len(args) == 1 {
				host, port, err = splitHostPort(args[0])
				if err != nil {
					return err
				}
			}
			if host == "" || port == 0 {
				return &usageError{err: fmt.Errorf("no remote peer: pass host:port or set [remote] host and port")}
			}
			if !cmd.Flags().Changed("rpcssl") {
				rpcssl = a.cfg.Node.RPCSSL
			}

			handle, err := a.orch.ConnectToRemote(cmd.Context(), chain, host, port, node.ConnectOptions{RPCSSL: rpcssl})
			if err != nil {
				return err
			}
			a.log.Success("Connecting %s to %s (pid %d)", chain, handle.Remote, handle.PID)

			if !ready.wait {
				return nil
			}
			return a.waitReady(cmd, chain, node.RoleHot, ready)
		},
	}

	cmd.Flags().BoolVar(&rpcssl, "rpcssl", false, "Serve JSON-RPC over TLS")
	ready.register(cmd, true)
	return cmd
}

func (a *app) newStopCmd() *cobra.Command {
	var cold bool

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Ask a node daemon to shut down",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := a.chainID()
			if err != nil {
				return err
			}
			role := roleFor(cold)
			if res := a.orch.Stop(cmd.Context(), chain, role); !res.OK() {
				return res.Err
			}
			a.log.Success("Stop requested for %s daemon of %s", role, chain)
			return nil
		},
	}

	cmd.Flags().BoolVar(&cold, "cold", false, "Stop the cold daemon")
	return cmd
}

func (a *app) newWaitReadyCmd() *cobra.Command {
	var (
		cold  bool
		ready readyFlags
	)

	cmd := &cobra.Command{
		Use:   "wait-ready",
		Short: "Wait until a started daemon has initialized",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := a.chainID()
			if err != nil {
				return err
			}
			return a.waitReady(cmd, chain, roleFor(cold), ready)
		},
	}

	cmd.Flags().BoolVar(&cold, "cold", false, "Wait for the cold daemon")
	ready.register(cmd, false)
	return cmd
}

func (a *app) waitReady(cmd *cobra.Command, chain string, role node.Role, f readyFlags) error {
	timeout := a.cfg.Timeouts.Ready
	if cmd.Flags().Changed("timeout") {
		timeout = f.timeout
	}

	ctx := cmd.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	msg := fmt.Sprintf("Waiting for %s daemon of %s", role, chain)
	var spinner *output.Spinner
	if w := a.log.ErrWriter(); output.IsTerminal(w) && !a.log.IsVerbose() {
		spinner = output.NewSpinner(w)
		spinner.Start(msg)
	} else {
		a.log.Info("%s...", msg)
	}
	err := a.orch.WaitReady(ctx, chain, role, node.ReadyOptions{
		Interval: a.cfg.Timeouts.ReadyInterval,
		Probe:    f.probe,
	})
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	a.log.Success("%s daemon of %s is ready", role, chain)
	return nil
}

// mergeParams orders configured parameters by name, then applies name=value
// overrides from the command line. New names keep their flag order.
func mergeParams(configured map[string]string, names []string, overrides []string) ([]node.RuntimeParam, error) {
	out := make([]node.RuntimeParam, 0, len(names)+len(overrides))
	index := make(map[string]int, len(names)+len(overrides))
	for _, name := range names {
		index[name] = len(out)
		out = append(out, node.RuntimeParam{Name: name, Value: configured[name]})
	}

	for _, kv := range overrides {
		name, value, ok := strings.Cut(kv, "=")
		name = strings.TrimPrefix(name, "-")
		if !ok || name == "" {
			return nil, &usageError{err: fmt.Errorf("invalid --param %q: expected name=value", kv)}
		}
		switch name {
		case "daemon", "datadir", "rpcssl":
			return nil, &usageError{err: fmt.Errorf("--param %s is managed by nodebridge", name)}
		}
		if i, seen := index[name]; seen {
			out[i].Value = value
			continue
		}
		index[name] = len(out)
		out = append(out, node.RuntimeParam{Name: name, Value: value})
	}
	return out, nil
}

func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, &usageError{err: fmt.Errorf("invalid peer address %q: %w", addr, err)}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, &usageError{err: fmt.Errorf("invalid peer port %q", portStr)}
	}
	return host, port, nil
}
