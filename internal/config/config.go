// Package config loads nodebridge settings.
package config

import (
	"sort"
	"time"

	"github.com/altuslabsxyz/nodebridge/internal/paths"
)

// Config is the resolved configuration.
// Priority: defaults < config file < environment variables < CLI flags
type Config struct {
	Chain    ChainConfig    `toml:"chain"`
	Binaries BinariesConfig `toml:"binaries"`
	Node     NodeConfig     `toml:"node"`
	Remote   RemoteConfig   `toml:"remote"`
	Log      LogConfig      `toml:"log"`
	Timeouts TimeoutConfig  `toml:"timeouts"`
	Limits   LimitsConfig   `toml:"limits"`
}

// ChainConfig selects the chain the commands operate on.
type ChainConfig struct {
	Name string `toml:"name"`
	// SpaceSentinel replaces spaces in signed-message arguments.
	SpaceSentinel string `toml:"space_sentinel"`
}

// BinariesConfig locates the node executables. An empty Dir searches the
// platform default install locations.
type BinariesConfig struct {
	Dir string `toml:"dir"`
}

// NodeConfig holds daemon settings.
type NodeConfig struct {
	HotDir      string            `toml:"hot_dir"`
	ColdDir     string            `toml:"cold_dir"`
	RPCSSL      bool              `toml:"rpcssl"`
	PassDataDir bool              `toml:"pass_datadir"`
	Params      map[string]string `toml:"params"`
}

// RemoteConfig is the peer used by connect.
type RemoteConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// TimeoutConfig holds timeouts. Zero disables the call timeout.
type TimeoutConfig struct {
	Call          time.Duration `toml:"call"`
	Ready         time.Duration `toml:"ready"`
	ReadyInterval time.Duration `toml:"ready_interval"`
}

// LimitsConfig throttles client process spawning. Zero means unlimited.
type LimitsConfig struct {
	CallsPerSecond float64 `toml:"calls_per_second"`
	Burst          int     `toml:"burst"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	layout := paths.DefaultLayout()
	return &Config{
		Chain: ChainConfig{
			SpaceSentinel: "_",
		},
		Node: NodeConfig{
			HotDir:  layout.HotRoot,
			ColdDir: layout.ColdRoot,
			Params:  map[string]string{},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Timeouts: TimeoutConfig{
			Call:          0,
			Ready:         2 * time.Minute,
			ReadyInterval: 500 * time.Millisecond,
		},
		Limits: LimitsConfig{
			CallsPerSecond: 0,
			Burst:          1,
		},
	}
}

// Layout returns the data directory layout described by the node section.
func (c *Config) Layout() paths.Layout {
	return paths.Layout{HotRoot: c.Node.HotDir, ColdRoot: c.Node.ColdDir}
}

// ParamNames returns the runtime parameter names in sorted order so the
// daemon command line is stable.
func (c *Config) ParamNames() []string {
	names := make([]string, 0, len(c.Node.Params))
	for name := range c.Node.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
