package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Marshal renders cfg as TOML, durations as strings.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg.ToFile()); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDefault writes a commented configuration file for chain to path.
// An existing file is only replaced when force is set.
func WriteDefault(path, chain string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(defaultTOML(path, chain)), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func defaultTOML(path, chain string) string {
	d := DefaultConfig()
	var content string

	content += "# nodebridge configuration file\n"
	content += "# Priority: default < nodebridge.toml < environment < CLI flag\n"
	content += "#\n"
	content += fmt.Sprintf("# Location: %s\n", path)
	content += "# Override with: --config /path/to/nodebridge.toml\n\n"

	content += "[chain]\n"
	if chain != "" {
		content += fmt.Sprintf("name = %q\n", chain)
	} else {
		content += "# name = \"chain1\"\n"
	}
	content += fmt.Sprintf("# space_sentinel = %q\n\n", d.Chain.SpaceSentinel)

	content += "[binaries]\n"
	content += "# Directory holding multichaind, multichaind-cold and multichain-cli.\n"
	content += "# Empty searches the platform default install locations.\n"
	content += "# dir = \"/usr/local/bin\"\n\n"

	content += "[node]\n"
	content += fmt.Sprintf("# hot_dir = %q\n", d.Node.HotDir)
	content += fmt.Sprintf("# cold_dir = %q\n", d.Node.ColdDir)
	content += "# rpcssl = false\n"
	content += "# Pass -datadir to the binaries (needed when hot_dir/cold_dir are not the defaults).\n"
	content += "# pass_datadir = false\n\n"
	content += "# [node.params]\n"
	content += "# port = \"7447\"\n"
	content += "# rpcport = \"7446\"\n\n"

	content += "[remote]\n"
	content += "# host = \"10.0.0.5\"\n"
	content += "# port = 7447\n\n"

	content += "[log]\n"
	content += fmt.Sprintf("# level = %q\n", d.Log.Level)
	content += fmt.Sprintf("# format = %q\n\n", d.Log.Format)

	content += "[timeouts]\n"
	content += "# call = \"0s\"\n"
	content += fmt.Sprintf("# ready = %q\n", d.Timeouts.Ready.String())
	content += fmt.Sprintf("# ready_interval = %q\n\n", d.Timeouts.ReadyInterval.String())

	content += "[limits]\n"
	content += "# calls_per_second = 0\n"
	content += fmt.Sprintf("# burst = %d\n", d.Limits.Burst)

	return content
}
