// Package node starts, stops and provisions node daemons.
package node

import (
	"fmt"
	"time"

	"github.com/altuslabsxyz/nodebridge/internal/paths"
)

// Role distinguishes a hot node from its offline signing counterpart.
type Role string

const (
	RoleHot  Role = "hot"
	RoleCold Role = "cold"
)

// ParseRole accepts "hot" or "cold".
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleHot, RoleCold:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown node role %q (expected hot or cold)", s)
	}
}

// Cold reports whether r is RoleCold.
func (r Role) Cold() bool { return r == RoleCold }

// DaemonBinary returns the daemon executable name for r.
func (r Role) DaemonBinary() string {
	if r.Cold() {
		return paths.ColdDaemonBinary
	}
	return paths.DaemonBinary
}

// State is the inferred lifecycle state of a node. The daemon is detached,
// so Running means "launched" rather than "confirmed up".
type State string

const (
	StateNotStarted State = "not-started"
	StateStarting   State = "starting"
	StateRunning    State = "running"
	StateStopping   State = "stopping"
	StateStopped    State = "stopped"
)

// Active reports whether a start request must be refused in this state.
func (s State) Active() bool {
	return s == StateStarting || s == StateRunning || s == StateStopping
}

// NodeHandle describes one node known to the orchestrator.
type NodeHandle struct {
	ID            string    `json:"id"`
	Role          Role      `json:"role"`
	ExecutableDir string    `json:"executable_dir,omitempty"`
	DataDir       string    `json:"data_dir"`
	State         State     `json:"state"`
	Remote        string    `json:"remote,omitempty"`
	PID           int       `json:"pid,omitempty"`
	InvocationID  string    `json:"invocation_id,omitempty"`
	StartedAt     time.Time `json:"started_at,omitempty"`
	StoppedAt     time.Time `json:"stopped_at,omitempty"`
}

type handleKey struct {
	id   string
	role Role
}
