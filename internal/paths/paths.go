// Package paths provides the on-disk layout shared by hot and cold nodes.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Executable names.
const (
	DaemonBinary     = "multichaind"
	ColdDaemonBinary = "multichaind-cold"
	ClientBinary     = "multichain-cli"
	UtilBinary       = "multichain-util"
)

// File name constants.
const (
	// CredentialFile must be byte-identical between a hot node and its cold pair.
	CredentialFile = "params.dat"
	// ReadyArtifact is written by the daemon once it has initialized its data directory.
	ReadyArtifact = "multichain.conf"
	ConfigFile    = "nodebridge.toml"
)

const (
	hotDirName        = ".multichain"
	coldDirName       = ".multichain-cold"
	windowsHotDirName = "MultiChain"
	windowsColdDir    = "MultiChainCold"
)

// Layout holds the hot and cold data roots. Each root contains one
// subdirectory per blockchain identifier.
type Layout struct {
	HotRoot  string
	ColdRoot string
}

// DefaultLayout returns the data roots the MultiChain tools use when no
// -datadir flag is given.
func DefaultLayout() Layout {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return LayoutFor(runtime.GOOS, home, os.Getenv("APPDATA"))
}

// LayoutFor computes the default layout for a platform without touching the
// environment.
func LayoutFor(goos, home, appData string) Layout {
	if goos == "windows" {
		base := appData
		if base == "" {
			base = filepath.Join(home, "AppData", "Roaming")
		}
		return Layout{
			HotRoot:  filepath.Join(base, windowsHotDirName),
			ColdRoot: filepath.Join(base, windowsColdDir),
		}
	}
	return Layout{
		HotRoot:  filepath.Join(home, hotDirName),
		ColdRoot: filepath.Join(home, coldDirName),
	}
}

func (l Layout) HotDir(chain string) string {
	return filepath.Join(l.HotRoot, chain)
}

func (l Layout) ColdDir(chain string) string {
	return filepath.Join(l.ColdRoot, chain)
}

func (l Layout) HotCredentialPath(chain string) string {
	return filepath.Join(l.HotDir(chain), CredentialFile)
}

func (l Layout) ColdCredentialPath(chain string) string {
	return filepath.Join(l.ColdDir(chain), CredentialFile)
}

// DataDir returns the chain directory for the hot or cold side.
func (l Layout) DataDir(chain string, cold bool) string {
	if cold {
		return l.ColdDir(chain)
	}
	return l.HotDir(chain)
}

// Root returns the hot or cold data root.
func (l Layout) Root(cold bool) string {
	if cold {
		return l.ColdRoot
	}
	return l.HotRoot
}

// ReadyArtifactPath returns the path of the file whose presence signals that
// the daemon has initialized the chain directory.
func (l Layout) ReadyArtifactPath(chain string, cold bool) string {
	return filepath.Join(l.DataDir(chain, cold), ReadyArtifact)
}

// DefaultConfigPath returns $HOME/.multichain/nodebridge.toml.
func DefaultConfigPath() string {
	return filepath.Join(DefaultLayout().HotRoot, ConfigFile)
}
