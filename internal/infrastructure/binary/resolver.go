// Package binary locates the node executables on disk.
package binary

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform describes the host the candidate list is computed for.
type Platform struct {
	GOOS string
	Home string
	// ProgramFiles is only consulted on windows.
	ProgramFiles string
}

// HostPlatform returns the Platform of the running process.
func HostPlatform() Platform {
	home, _ := os.UserHomeDir()
	return Platform{
		GOOS:         runtime.GOOS,
		Home:         home,
		ProgramFiles: os.Getenv("ProgramFiles"),
	}
}

// CandidatePaths returns, in lookup order, every absolute path at which the
// named executable may be installed. When override is set it is the only
// directory considered.
func CandidatePaths(p Platform, override, name string) []string {
	fileName := name
	if p.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		fileName = name + ".exe"
	}

	if override != "" {
		return []string{filepath.Join(override, fileName)}
	}

	var dirs []string
	switch p.GOOS {
	case "windows":
		dirs = append(dirs, `C:\multichain`)
		if p.ProgramFiles != "" {
			dirs = append(dirs, filepath.Join(p.ProgramFiles, "MultiChain"))
		}
		if p.Home != "" {
			dirs = append(dirs, filepath.Join(p.Home, "multichain"))
		}
	case "darwin":
		dirs = append(dirs, "/usr/local/bin", "/opt/homebrew/bin", "/usr/bin")
		if p.Home != "" {
			dirs = append(dirs, filepath.Join(p.Home, "multichain"))
		}
	default:
		dirs = append(dirs, "/usr/local/bin", "/usr/bin")
		if p.Home != "" {
			dirs = append(dirs, filepath.Join(p.Home, "multichain"), filepath.Join(p.Home, ".local", "bin"))
		}
	}

	paths := make([]string, 0, len(dirs))
	for _, d := range dirs {
		paths = append(paths, filepath.Join(d, fileName))
	}
	return paths
}

// Resolver yields absolute, existence-checked executable paths.
type Resolver struct {
	platform Platform
	override string
	// searchPath enables a final $PATH lookup when no candidate matched.
	searchPath bool
}

// NewResolver creates a resolver for the host platform. An empty override
// falls back to the platform default install locations and then $PATH.
func NewResolver(override string) *Resolver {
	return &Resolver{
		platform:   HostPlatform(),
		override:   override,
		searchPath: override == "",
	}
}

// NewResolverFor creates a resolver for an explicit platform without a $PATH
// fallback. Mostly useful in tests.
func NewResolverFor(p Platform, override string) *Resolver {
	return &Resolver{platform: p, override: override}
}

// Override returns the configured override directory.
func (r *Resolver) Override() string {
	return r.override
}

// Resolve returns the absolute path of the named executable.
func (r *Resolver) Resolve(name string) (string, error) {
	tried := CandidatePaths(r.platform, r.override, name)
	for _, candidate := range tried {
		if err := checkExecutable(candidate); err == nil {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				return candidate, nil
			}
			return abs, nil
		}
	}

	if r.searchPath {
		tried = append(tried, "$PATH/"+name)
		if found, err := exec.LookPath(name); err == nil {
			abs, err := filepath.Abs(found)
			if err != nil {
				return found, nil
			}
			return abs, nil
		}
	}

	return "", &NotFoundError{Name: name, Tried: tried}
}

// checkExecutable verifies that path is a regular file the current user may run.
func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a binary: %s", path)
	}
	if runtime.GOOS != "windows" && info.Mode()&0111 == 0 {
		return fmt.Errorf("binary is not executable: %s (use chmod +x to fix)", path)
	}
	return nil
}
