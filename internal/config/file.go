package config

// FileConfig represents the raw nodebridge.toml file contents.
// All fields are pointers to distinguish "not set" from "set to zero/false".
type FileConfig struct {
	Chain    FileChainConfig    `toml:"chain"`
	Binaries FileBinariesConfig `toml:"binaries"`
	Node     FileNodeConfig     `toml:"node"`
	Remote   FileRemoteConfig   `toml:"remote"`
	Log      FileLogConfig      `toml:"log"`
	Timeouts FileTimeoutConfig  `toml:"timeouts"`
	Limits   FileLimitsConfig   `toml:"limits"`
}

type FileChainConfig struct {
	Name          *string `toml:"name,omitempty"`
	SpaceSentinel *string `toml:"space_sentinel,omitempty"`
}

type FileBinariesConfig struct {
	Dir *string `toml:"dir,omitempty"`
}

type FileNodeConfig struct {
	HotDir      *string           `toml:"hot_dir,omitempty"`
	ColdDir     *string           `toml:"cold_dir,omitempty"`
	RPCSSL      *bool             `toml:"rpcssl,omitempty"`
	PassDataDir *bool             `toml:"pass_datadir,omitempty"`
	Params      map[string]string `toml:"params,omitempty"`
}

type FileRemoteConfig struct {
	Host *string `toml:"host,omitempty"`
	Port *int    `toml:"port,omitempty"`
}

type FileLogConfig struct {
	Level  *string `toml:"level,omitempty"`
	Format *string `toml:"format,omitempty"`
}

// FileTimeoutConfig is the TOML representation of TimeoutConfig.
// Uses strings for duration values since TOML cannot decode directly to time.Duration.
type FileTimeoutConfig struct {
	Call          *string `toml:"call,omitempty"`
	Ready         *string `toml:"ready,omitempty"`
	ReadyInterval *string `toml:"ready_interval,omitempty"`
}

type FileLimitsConfig struct {
	CallsPerSecond *float64 `toml:"calls_per_second,omitempty"`
	Burst          *int     `toml:"burst,omitempty"`
}

// IsEmpty returns true if no configuration values are set.
func (f *FileConfig) IsEmpty() bool {
	return f.Chain.Name == nil &&
		f.Chain.SpaceSentinel == nil &&
		f.Binaries.Dir == nil &&
		f.Node.HotDir == nil &&
		f.Node.ColdDir == nil &&
		f.Node.RPCSSL == nil &&
		f.Node.PassDataDir == nil &&
		len(f.Node.Params) == 0 &&
		f.Remote.Host == nil &&
		f.Remote.Port == nil &&
		f.Log.Level == nil &&
		f.Log.Format == nil &&
		f.Timeouts.Call == nil &&
		f.Timeouts.Ready == nil &&
		f.Timeouts.ReadyInterval == nil &&
		f.Limits.CallsPerSecond == nil &&
		f.Limits.Burst == nil
}

// ToFile converts resolved values back to their file representation, with
// every field set.
func (c *Config) ToFile() *FileConfig {
	call := c.Timeouts.Call.String()
	ready := c.Timeouts.Ready.String()
	interval := c.Timeouts.ReadyInterval.String()
	params := make(map[string]string, len(c.Node.Params))
	for k, v := range c.Node.Params {
		params[k] = v
	}
	return &FileConfig{
		Chain: FileChainConfig{
			Name:          ptr(c.Chain.Name),
			SpaceSentinel: ptr(c.Chain.SpaceSentinel),
		},
		Binaries: FileBinariesConfig{Dir: ptr(c.Binaries.Dir)},
		Node: FileNodeConfig{
			HotDir:      ptr(c.Node.HotDir),
			ColdDir:     ptr(c.Node.ColdDir),
			RPCSSL:      ptr(c.Node.RPCSSL),
			PassDataDir: ptr(c.Node.PassDataDir),
			Params:      params,
		},
		Remote: FileRemoteConfig{
			Host: ptr(c.Remote.Host),
			Port: ptr(c.Remote.Port),
		},
		Log: FileLogConfig{
			Level:  ptr(c.Log.Level),
			Format: ptr(c.Log.Format),
		},
		Timeouts: FileTimeoutConfig{
			Call:          &call,
			Ready:         &ready,
			ReadyInterval: &interval,
		},
		Limits: FileLimitsConfig{
			CallsPerSecond: ptr(c.Limits.CallsPerSecond),
			Burst:          ptr(c.Limits.Burst),
		},
	}
}

func ptr[T any](v T) *T {
	return &v
}
