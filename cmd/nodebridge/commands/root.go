// Package commands provides the nodebridge command tree.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/altuslabsxyz/nodebridge/internal/version"
)

// Command group IDs for organized help output.
const (
	GroupNode     = "node"
	GroupRPC      = "rpc"
	GroupSettings = "settings"
)

// annotationSkipSetup marks commands that run without a loaded configuration.
const annotationSkipSetup = "nodebridge/skip-setup"

// Execute runs the command tree with args and returns the process exit status.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) int {
	a := newApp(out, errOut)
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	a.flushMetrics()
	if err != nil {
		a.logger().PrintCallError(err)
	}
	return ExitCode(err)
}

func (a *app) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodebridge",
		Short: "Drive MultiChain node daemons and their command-line client",
		Long: `nodebridge runs MultiChain client commands as typed calls and manages the
lifecycle of hot and cold node daemons.

Examples:
  # Query the running node
  nodebridge call getinfo --chain chain1

  # Start the hot daemon and wait until it answers
  nodebridge start --chain chain1 --wait --probe

  # Provision a cold node from the hot node's credentials
  nodebridge cold create --chain chain1

  # Stop the cold daemon
  nodebridge stop --cold --chain chain1`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	cmd.PersistentFlags().StringVar(&a.flags.configPath, "config", "",
		"Path to nodebridge.toml")
	cmd.PersistentFlags().StringVarP(&a.flags.chain, "chain", "c", "",
		"Blockchain identifier")
	cmd.PersistentFlags().StringVar(&a.flags.binariesDir, "binaries-dir", "",
		"Directory holding the MultiChain executables")
	cmd.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false,
		"Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&a.flags.noColor, "no-color", false,
		"Disable colored output")
	cmd.PersistentFlags().BoolVar(&a.flags.metrics, "metrics", false,
		"Print invocation metrics on exit")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	cmd.AddGroup(&cobra.Group{ID: GroupNode, Title: "Node Commands:"})
	cmd.AddGroup(&cobra.Group{ID: GroupRPC, Title: "Client Commands:"})
	cmd.AddGroup(&cobra.Group{ID: GroupSettings, Title: "Settings Commands:"})

	for _, sub := range []*cobra.Command{a.newStartCmd(), a.newConnectCmd(), a.newStopCmd(), a.newWaitReadyCmd(), a.newColdCmd()} {
		sub.GroupID = GroupNode
		cmd.AddCommand(sub)
	}

	callCmd := a.newCallCmd()
	callCmd.GroupID = GroupRPC
	cmd.AddCommand(callCmd)

	versionCmd := version.NewCmd("nodebridge")
	versionCmd.Annotations = map[string]string{annotationSkipSetup: "true"}
	for _, sub := range []*cobra.Command{a.newPathsCmd(), a.newConfigCmd(), versionCmd} {
		sub.GroupID = GroupSettings
		cmd.AddCommand(sub)
	}

	return cmd
}
