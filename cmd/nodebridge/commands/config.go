package commands

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/altuslabsxyz/nodebridge/internal/config"
)

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage nodebridge.toml",
	}
	cmd.AddCommand(a.newConfigInitCmd(), a.newConfigShowCmd())
	return cmd
}

func (a *app) newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented default config file",
		Args:        usageArgs(cobra.NoArgs),
		Annotations: map[string]string{annotationSkipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.NewLoader(a.flags.configPath).Path()
			if err := config.WriteDefault(path, a.flags.chain, force); err != nil {
				return err
			}
			a.log.Success("Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

func (a *app) newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Marshal(a.cfg)
			if err != nil {
				return err
			}
			a.log.Println("%s", bytes.TrimRight(data, "\n"))
			return nil
		},
	}
}
