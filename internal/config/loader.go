package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/altuslabsxyz/nodebridge/internal/paths"
)

// Environment variable names
const (
	EnvChain          = "NODEBRIDGE_CHAIN"
	EnvSpaceSentinel  = "NODEBRIDGE_SPACE_SENTINEL"
	EnvBinariesDir    = "NODEBRIDGE_BINARIES_DIR"
	EnvHotDir         = "NODEBRIDGE_HOT_DIR"
	EnvColdDir        = "NODEBRIDGE_COLD_DIR"
	EnvRPCSSL         = "NODEBRIDGE_RPCSSL"
	EnvPassDataDir    = "NODEBRIDGE_PASS_DATADIR"
	EnvRemoteHost     = "NODEBRIDGE_REMOTE_HOST"
	EnvRemotePort     = "NODEBRIDGE_REMOTE_PORT"
	EnvLogLevel       = "NODEBRIDGE_LOG_LEVEL"
	EnvLogFormat      = "NODEBRIDGE_LOG_FORMAT"
	EnvCallTimeout    = "NODEBRIDGE_CALL_TIMEOUT"
	EnvReadyTimeout   = "NODEBRIDGE_READY_TIMEOUT"
	EnvCallsPerSecond = "NODEBRIDGE_CALLS_PER_SECOND"
)

// Loader loads configuration from file, environment, and applies defaults.
type Loader struct {
	configPath string
}

// NewLoader creates a new config loader. An empty configPath uses
// paths.DefaultConfigPath().
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// Path returns the config file the loader reads.
func (l *Loader) Path() string {
	if l.configPath != "" {
		return l.configPath
	}
	return paths.DefaultConfigPath()
}

// Load loads configuration with priority: defaults < file < env.
// A missing config file is not an error; malformed values are.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	fileCfg, err := l.loadFile()
	if err != nil {
		return nil, err
	}
	if fileCfg != nil {
		if err := mergeFileConfig(cfg, fileCfg); err != nil {
			return nil, fmt.Errorf("invalid value in %s: %w", l.Path(), err)
		}
	}

	if err := applyEnvVars(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile returns nil if no config file exists.
func (l *Loader) loadFile() (*FileConfig, error) {
	path := l.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg FileConfig
	if err := toml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("invalid TOML in %s: %w", path, err)
	}
	return &fileCfg, nil
}

// mergeFileConfig merges non-nil FileConfig values into Config.
func mergeFileConfig(cfg *Config, file *FileConfig) error {
	var errs []error

	setString(&cfg.Chain.Name, file.Chain.Name)
	setString(&cfg.Chain.SpaceSentinel, file.Chain.SpaceSentinel)
	setString(&cfg.Binaries.Dir, file.Binaries.Dir)

	setString(&cfg.Node.HotDir, file.Node.HotDir)
	setString(&cfg.Node.ColdDir, file.Node.ColdDir)
	if file.Node.RPCSSL != nil {
		cfg.Node.RPCSSL = *file.Node.RPCSSL
	}
	if file.Node.PassDataDir != nil {
		cfg.Node.PassDataDir = *file.Node.PassDataDir
	}
	for k, v := range file.Node.Params {
		cfg.Node.Params[k] = v
	}

	setString(&cfg.Remote.Host, file.Remote.Host)
	if file.Remote.Port != nil {
		cfg.Remote.Port = *file.Remote.Port
	}

	setString(&cfg.Log.Level, file.Log.Level)
	setString(&cfg.Log.Format, file.Log.Format)

	errs = append(errs,
		setDuration(&cfg.Timeouts.Call, file.Timeouts.Call, "timeouts.call"),
		setDuration(&cfg.Timeouts.Ready, file.Timeouts.Ready, "timeouts.ready"),
		setDuration(&cfg.Timeouts.ReadyInterval, file.Timeouts.ReadyInterval, "timeouts.ready_interval"),
	)

	if file.Limits.CallsPerSecond != nil {
		cfg.Limits.CallsPerSecond = *file.Limits.CallsPerSecond
	}
	if file.Limits.Burst != nil {
		cfg.Limits.Burst = *file.Limits.Burst
	}

	return errors.Join(errs...)
}

// applyEnvVars applies environment variable overrides to config.
func applyEnvVars(cfg *Config) error {
	var errs []error

	if v := os.Getenv(EnvChain); v != "" {
		cfg.Chain.Name = v
	}
	if v := os.Getenv(EnvSpaceSentinel); v != "" {
		cfg.Chain.SpaceSentinel = v
	}
	if v := os.Getenv(EnvBinariesDir); v != "" {
		cfg.Binaries.Dir = v
	}
	if v := os.Getenv(EnvHotDir); v != "" {
		cfg.Node.HotDir = v
	}
	if v := os.Getenv(EnvColdDir); v != "" {
		cfg.Node.ColdDir = v
	}
	if v := os.Getenv(EnvRPCSSL); v != "" {
		cfg.Node.RPCSSL = isTrue(v)
	}
	if v := os.Getenv(EnvPassDataDir); v != "" {
		cfg.Node.PassDataDir = isTrue(v)
	}
	if v := os.Getenv(EnvRemoteHost); v != "" {
		cfg.Remote.Host = v
	}
	if v := os.Getenv(EnvRemotePort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvRemotePort, err))
		} else {
			cfg.Remote.Port = port
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv(EnvCallTimeout); v != "" {
		errs = append(errs, setDuration(&cfg.Timeouts.Call, &v, EnvCallTimeout))
	}
	if v := os.Getenv(EnvReadyTimeout); v != "" {
		errs = append(errs, setDuration(&cfg.Timeouts.Ready, &v, EnvReadyTimeout))
	}
	if v := os.Getenv(EnvCallsPerSecond); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvCallsPerSecond, err))
		} else {
			cfg.Limits.CallsPerSecond = rps
		}
	}

	return errors.Join(errs...)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, name string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}

func isTrue(v string) bool {
	v = strings.ToLower(v)
	return v == "true" || v == "1"
}
