package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nodebridge.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "_", cfg.Chain.SpaceSentinel)
	assert.Equal(t, 2*time.Minute, cfg.Timeouts.Ready)
	assert.Zero(t, cfg.Timeouts.Call)
	assert.NotEmpty(t, cfg.Node.HotDir)
	assert.NotEqual(t, cfg.Node.HotDir, cfg.Node.ColdDir)
	assert.NoError(t, Validate(cfg))
}

func TestFileConfigIsEmpty(t *testing.T) {
	fc := &FileConfig{}
	assert.True(t, fc.IsEmpty())

	level := "debug"
	fc.Log.Level = &level
	assert.False(t, fc.IsEmpty())

	fc = &FileConfig{Node: FileNodeConfig{Params: map[string]string{"port": "1"}}}
	assert.False(t, fc.IsEmpty())
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader(filepath.Join(t.TempDir(), "absent.toml")).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoader_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[chain]
name = "chain1"

[binaries]
dir = "/opt/multichain"

[node]
hot_dir = "/data/hot"
cold_dir = "/data/cold"
rpcssl = true
pass_datadir = true

[node.params]
port = "7447"
rpcport = "7446"

[remote]
host = "10.0.0.5"
port = 7447

[log]
level = "debug"
format = "json"

[timeouts]
call = "30s"
ready = "5m"
ready_interval = "250ms"

[limits]
calls_per_second = 20.5
burst = 4
`)

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "chain1", cfg.Chain.Name)
	assert.Equal(t, "_", cfg.Chain.SpaceSentinel)
	assert.Equal(t, "/opt/multichain", cfg.Binaries.Dir)
	assert.Equal(t, "/data/hot", cfg.Node.HotDir)
	assert.Equal(t, "/data/cold", cfg.Node.ColdDir)
	assert.True(t, cfg.Node.RPCSSL)
	assert.True(t, cfg.Node.PassDataDir)
	assert.Equal(t, map[string]string{"port": "7447", "rpcport": "7446"}, cfg.Node.Params)
	assert.Equal(t, []string{"port", "rpcport"}, cfg.ParamNames())
	assert.Equal(t, "10.0.0.5", cfg.Remote.Host)
	assert.Equal(t, 7447, cfg.Remote.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 30*time.Second, cfg.Timeouts.Call)
	assert.Equal(t, 5*time.Minute, cfg.Timeouts.Ready)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeouts.ReadyInterval)
	assert.Equal(t, 20.5, cfg.Limits.CallsPerSecond)
	assert.Equal(t, 4, cfg.Limits.Burst)

	layout := cfg.Layout()
	assert.Equal(t, "/data/hot", layout.HotRoot)
	assert.Equal(t, "/data/cold", layout.ColdRoot)
	assert.NoError(t, Validate(cfg))
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[chain]
name = "from-file"

[log]
level = "warn"
`)
	t.Setenv(EnvChain, "from-env")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvRPCSSL, "1")
	t.Setenv(EnvRemotePort, "9000")
	t.Setenv(EnvCallTimeout, "2s")
	t.Setenv(EnvCallsPerSecond, "5")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Chain.Name)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Node.RPCSSL)
	assert.Equal(t, 9000, cfg.Remote.Port)
	assert.Equal(t, 2*time.Second, cfg.Timeouts.Call)
	assert.Equal(t, 5.0, cfg.Limits.CallsPerSecond)
}

func TestLoader_Errors(t *testing.T) {
	t.Run("invalid TOML", func(t *testing.T) {
		path := writeConfig(t, "[chain\nname=")
		_, err := NewLoader(path).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid TOML")
	})

	t.Run("bad duration in file", func(t *testing.T) {
		path := writeConfig(t, "[timeouts]\ncall = \"soon\"\nready = \"later\"\n")
		_, err := NewLoader(path).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeouts.call")
		assert.Contains(t, err.Error(), "timeouts.ready")
	})

	t.Run("bad env port", func(t *testing.T) {
		t.Setenv(EnvRemotePort, "seventy")
		_, err := NewLoader(filepath.Join(t.TempDir(), "none.toml")).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvRemotePort)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "log level", mutate: func(c *Config) { c.Log.Level = "verbose" }, wantErr: "invalid log level"},
		{name: "log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "invalid log format"},
		{name: "chain with space", mutate: func(c *Config) { c.Chain.Name = "my chain" }, wantErr: "invalid chain name"},
		{name: "empty sentinel", mutate: func(c *Config) { c.Chain.SpaceSentinel = "" }, wantErr: "space_sentinel"},
		{name: "same roots", mutate: func(c *Config) { c.Node.ColdDir = c.Node.HotDir }, wantErr: "must differ"},
		{name: "managed param", mutate: func(c *Config) { c.Node.Params["daemon"] = "1" }, wantErr: "managed by nodebridge"},
		{name: "dashed param", mutate: func(c *Config) { c.Node.Params["-port"] = "1" }, wantErr: "invalid runtime parameter"},
		{name: "port", mutate: func(c *Config) { c.Remote.Port = 70000 }, wantErr: "remote port"},
		{name: "interval", mutate: func(c *Config) { c.Timeouts.ReadyInterval = 0 }, wantErr: "ready_interval"},
		{name: "burst", mutate: func(c *Config) { c.Limits.CallsPerSecond = 1; c.Limits.Burst = 0 }, wantErr: "burst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_AccumulatesErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "loud"
	cfg.Remote.Port = -1
	cfg.Timeouts.Call = -time.Second

	err := Validate(cfg)
	require.Error(t, err)
	assert.Equal(t, 3, strings.Count(err.Error(), "\n  - "))
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Chain.Name = "chain1"
	cfg.Node.Params["port"] = "7447"
	cfg.Timeouts.Call = 15 * time.Second

	data, err := Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "15s")

	path := writeConfig(t, string(data))
	loaded, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "nodebridge.toml")

	require.NoError(t, WriteDefault(path, "chain1", false))
	err := WriteDefault(path, "chain1", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	require.NoError(t, WriteDefault(path, "chain2", true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var fc FileConfig
	require.NoError(t, toml.Unmarshal(data, &fc))
	require.NotNil(t, fc.Chain.Name)
	assert.Equal(t, "chain2", *fc.Chain.Name)
	assert.Nil(t, fc.Log.Level)

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.NoError(t, Validate(cfg))
}
