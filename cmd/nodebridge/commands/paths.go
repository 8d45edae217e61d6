package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/binary"
	"github.com/altuslabsxyz/nodebridge/internal/paths"
)

func (a *app) newPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show resolved executables and data directories",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout := a.orch.Layout()

			a.log.Bold("Data directories")
			a.log.KeyValue("hot root", layout.HotRoot)
			a.log.KeyValue("cold root", layout.ColdRoot)
			if chain := a.cfg.Chain.Name; chain != "" {
				a.log.KeyValue("hot node", layout.HotDir(chain))
				a.log.KeyValue("cold node", layout.ColdDir(chain))
			}

			a.log.Bold("Executables")
			if dir := a.resolver.Override(); dir != "" {
				a.log.KeyValue("binaries dir", dir)
			}
			missing := 0
			for _, name := range []string{paths.DaemonBinary, paths.ColdDaemonBinary, paths.ClientBinary, paths.UtilBinary} {
				resolved, err := a.resolver.Resolve(name)
				if err == nil {
					a.log.KeyValue(name, resolved)
					continue
				}
				missing++
				a.log.KeyValue(name, "not found")
				var nf *binary.NotFoundError
				if errors.As(err, &nf) {
					for _, p := range nf.Tried {
						a.log.Debug("  tried %s", p)
					}
				}
			}
			if missing > 0 {
				a.log.Warn("%d executable(s) not found; run with --verbose to list searched paths", missing)
			}
			return nil
		},
	}
}
