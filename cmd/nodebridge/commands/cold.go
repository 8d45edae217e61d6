package commands

import (
	"github.com/spf13/cobra"

	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/interactive"
	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/node"
	"github.com/altuslabsxyz/nodebridge/internal/paths"
)

func (a *app) newColdCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cold",
		Short: "Manage the cold node",
	}
	cmd.AddCommand(a.newColdCreateCmd())
	return cmd
}

func (a *app) newColdCreateCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Provision the cold node from the hot node's credentials",
		Long: `Copy the hot node's ` + paths.CredentialFile + ` into the cold data directory.

The hot node must exist. An existing cold credential file is never
overwritten.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := a.chainID()
			if err != nil {
				return err
			}
			layout := a.orch.Layout()

			a.log.KeyValue("source", layout.HotCredentialPath(chain))
			a.log.KeyValue("target", layout.ColdCredentialPath(chain))
			ok, err := interactive.NewConfirmer(yes).Confirm("Create cold node for " + chain)
			if err != nil {
				return err
			}
			if !ok {
				a.log.Warn("Cold node creation aborted")
				return nil
			}

			target, err := a.orch.CreateColdNode(chain)
			switch {
			case node.IsSourceNotFound(err):
				a.log.Warn("Start the hot node for %s once so it writes %s", chain, paths.CredentialFile)
				return err
			case node.IsConflict(err):
				a.log.Warn("Remove %s to provision the cold node again", layout.ColdCredentialPath(chain))
				return err
			case err != nil:
				return err
			}
			a.log.Success("Cold node created: %s", target)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
