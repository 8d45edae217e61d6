// Package version reports build metadata for the nodebridge binary.
package version

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Set at build time:
//
//	-X github.com/altuslabsxyz/nodebridge/internal/version.Version=...
//	-X github.com/altuslabsxyz/nodebridge/internal/version.GitCommit=...
//	-X github.com/altuslabsxyz/nodebridge/internal/version.BuildDate=...
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info describes one build of the bridge.
type Info struct {
	Name      string   `json:"name" yaml:"name"`
	Version   string   `json:"version" yaml:"version"`
	GitCommit string   `json:"commit" yaml:"commit"`
	BuildDate string   `json:"build_date,omitempty" yaml:"build_date,omitempty"`
	GoVersion string   `json:"go" yaml:"go"`
	Platform  string   `json:"platform" yaml:"platform"`
	BuildDeps []string `json:"build_deps,omitempty" yaml:"build_deps,omitempty"`
}

// NewInfo returns build metadata for the named binary.
func NewInfo(name string) Info {
	return Info{
		Name:      name,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// WithBuildDeps fills BuildDeps from the embedded module information.
func (i Info) WithBuildDeps() Info {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return i
	}
	deps := make([]string, 0, len(bi.Deps))
	for _, dep := range bi.Deps {
		s := dep.Path + "@" + dep.Version
		if dep.Replace != nil {
			s += " => " + dep.Replace.Path + "@" + dep.Replace.Version
		}
		deps = append(deps, s)
	}
	slices.Sort(deps)
	i.BuildDeps = deps
	return i
}

func (i Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s version %s\n", i.Name, i.Version)
	fmt.Fprintf(&sb, "  commit:     %s\n", i.GitCommit)
	fmt.Fprintf(&sb, "  build date: %s\n", i.BuildDate)
	fmt.Fprintf(&sb, "  go:         %s %s\n", i.GoVersion, i.Platform)
	return sb.String()
}

// Write renders i to w as text, YAML (long) or JSON.
func (i Info) Write(w io.Writer, long, asJSON bool) error {
	switch {
	case asJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(i)
	case long:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(i); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := io.WriteString(w, i.String())
		return err
	}
}

// NewCmd creates the version command.
func NewCmd(name string) *cobra.Command {
	var long, jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := NewInfo(name)
			if long {
				info = info.WithBuildDeps()
			}
			return info.Write(cmd.OutOrStdout(), long, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&long, "long", false, "Show build dependencies (YAML)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}
