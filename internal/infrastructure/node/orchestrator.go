package node

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/process"
	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/rpc"
	"github.com/altuslabsxyz/nodebridge/internal/paths"
)

// RuntimeParam is one -name=value flag passed to the daemon.
type RuntimeParam struct {
	Name  string
	Value string
}

func (p RuntimeParam) flag() string {
	return fmt.Sprintf("-%s=%s", p.Name, p.Value)
}

// StartOptions controls the daemon command line.
type StartOptions struct {
	RPCSSL bool
	Params []RuntimeParam
}

// ConnectOptions controls the command line used to join a remote peer.
type ConnectOptions struct {
	RPCSSL bool
}

// Config configures an Orchestrator.
type Config struct {
	Layout   paths.Layout
	Resolver rpc.Resolver
	Runner   rpc.Runner
	Launcher Launcher
	Logger   *slog.Logger
	// PassDataDir appends -datadir=<root> to daemon and client command lines
	// so a non-default layout is honoured by the binaries.
	PassDataDir bool
	// ClientOptions are applied to every client built by the orchestrator.
	ClientOptions []rpc.Option
}

// Orchestrator manages node daemons. Running is inferred from a successful
// detached launch; the orchestrator does not own the daemon process.
type Orchestrator struct {
	layout        paths.Layout
	resolver      rpc.Resolver
	runner        rpc.Runner
	launcher      Launcher
	logger        *slog.Logger
	passDataDir   bool
	clientOptions []rpc.Option

	mu      sync.Mutex
	handles map[handleKey]*NodeHandle
}

// NewOrchestrator creates an Orchestrator. Runner and Launcher are required.
func NewOrchestrator(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		layout:        cfg.Layout,
		resolver:      cfg.Resolver,
		runner:        cfg.Runner,
		launcher:      cfg.Launcher,
		logger:        logger,
		passDataDir:   cfg.PassDataDir,
		clientOptions: append([]rpc.Option(nil), cfg.ClientOptions...),
		handles:       make(map[handleKey]*NodeHandle),
	}
}

// Layout returns the data directory layout in use.
func (o *Orchestrator) Layout() paths.Layout {
	return o.layout
}

// Start launches the daemon for id in the background:
//
//	<id> [-rpcssl] [-<param>=<value> ...] -daemon
//
// It returns as soon as the process exists. Use WaitReady to wait for the
// daemon to finish initializing.
func (o *Orchestrator) Start(ctx context.Context, id string, role Role, opts StartOptions) (NodeHandle, error) {
	if id == "" {
		return NodeHandle{}, &rpc.Error{Kind: rpc.KindEncoding, Method: "start", Message: "chain identifier is required"}
	}
	for _, p := range opts.Params {
		if p.Name == "" {
			return NodeHandle{}, &rpc.Error{Kind: rpc.KindEncoding, Method: "start", Message: "runtime parameter name is required"}
		}
	}

	args := []string{id}
	if opts.RPCSSL {
		args = append(args, "-rpcssl")
	}
	for _, p := range opts.Params {
		args = append(args, p.flag())
	}
	return o.launch(ctx, id, role, "", args)
}

// ConnectToRemote launches a hot daemon that joins the chain id through the
// peer at host:port:
//
//	<id>@<host>:<port> [-rpcssl] -daemon
func (o *Orchestrator) ConnectToRemote(ctx context.Context, id, host string, port int, opts ConnectOptions) (NodeHandle, error) {
	if id == "" || host == "" {
		return NodeHandle{}, &rpc.Error{Kind: rpc.KindEncoding, Method: "connect", Message: "chain identifier and host are required"}
	}
	if port <= 0 || port > 65535 {
		return NodeHandle{}, &rpc.Error{Kind: rpc.KindEncoding, Method: "connect", Message: fmt.Sprintf("invalid port %d", port)}
	}

	remote := fmt.Sprintf("%s:%d", host, port)
	args := []string{id + "@" + remote}
	if opts.RPCSSL {
		args = append(args, "-rpcssl")
	}
	return o.launch(ctx, id, RoleHot, remote, args)
}

func (o *Orchestrator) launch(ctx context.Context, id string, role Role, remote string, args []string) (NodeHandle, error) {
	key := handleKey{id: id, role: role}

	o.mu.Lock()
	previous, known := o.handles[key]
	if known && previous.State.Active() {
		state := previous.State
		o.mu.Unlock()
		return NodeHandle{}, &AlreadyRunningError{ID: id, Role: role, State: state}
	}
	handle := &NodeHandle{
		ID:      id,
		Role:    role,
		DataDir: o.layout.DataDir(id, role.Cold()),
		State:   StateStarting,
		Remote:  remote,
	}
	o.handles[key] = handle
	o.mu.Unlock()

	restore := func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.handles[key] != handle || handle.State != StateStarting {
			return
		}
		if known {
			o.handles[key] = previous
		} else {
			delete(o.handles, key)
		}
	}

	method := "start"
	if remote != "" {
		method = "connect"
	}

	path, err := o.resolve(role.DaemonBinary())
	if err != nil {
		restore()
		return NodeHandle{}, rpc.Classify(method, err)
	}

	if o.passDataDir {
		args = append(args, "-datadir="+o.layout.Root(role.Cold()))
	}
	args = append(args, "-daemon")

	info, err := o.launcher.Start(ctx, process.NewInvocation(path, args...))
	if err != nil {
		restore()
		o.logger.Warn("daemon launch failed",
			"chain", id,
			"role", role,
			"error", err)
		return NodeHandle{}, rpc.Classify(method, err)
	}

	o.mu.Lock()
	handle.ExecutableDir = filepath.Dir(info.Path)
	handle.PID = info.PID
	handle.InvocationID = info.ID
	handle.StartedAt = info.StartedAt
	// A Stop issued while the launch was in flight wins.
	superseded := o.handles[key] != handle || handle.State != StateStarting
	if !superseded {
		handle.State = StateRunning
	}
	snapshot := *handle
	o.mu.Unlock()

	if superseded {
		o.logger.Warn("daemon launched after stop was requested",
			"chain", id,
			"role", role,
			"pid", info.PID,
			"state", snapshot.State)
		return snapshot, nil
	}

	o.logger.Info("daemon launched",
		"chain", id,
		"role", role,
		"pid", info.PID,
		"invocationID", info.ID)

	return snapshot, nil
}

// Stop asks the node to shut down through the client binary. A hot node is
// stopped with "stop <id>", a cold node with "-cold <id> stop". The handle is
// Stopped once the request returns, whatever its outcome.
func (o *Orchestrator) Stop(ctx context.Context, id string, role Role) rpc.Result[rpc.Unit] {
	key := handleKey{id: id, role: role}

	o.mu.Lock()
	handle, ok := o.handles[key]
	if !ok {
		handle = &NodeHandle{ID: id, Role: role, DataDir: o.layout.DataDir(id, role.Cold())}
		o.handles[key] = handle
	}
	handle.State = StateStopping
	o.mu.Unlock()

	var result rpc.Result[rpc.Unit]
	if id == "" {
		result = rpc.Result[rpc.Unit]{Err: &rpc.Error{Kind: rpc.KindEncoding, Method: "stop", Message: "chain identifier is required"}}
	} else {
		result = o.Client(id, role).Stop(ctx)
	}

	o.mu.Lock()
	handle.State = StateStopped
	handle.StoppedAt = time.Now()
	o.mu.Unlock()

	if result.OK() {
		o.logger.Info("stop requested", "chain", id, "role", role)
	} else {
		o.logger.Warn("stop request failed", "chain", id, "role", role, "error", result.Err)
	}
	return result
}

// Client returns a client bound to id. A cold client sends every call in the
// -cold <id> <method> form.
func (o *Orchestrator) Client(id string, role Role) *rpc.Client {
	opts := make([]rpc.Option, 0, len(o.clientOptions)+3)
	opts = append(opts, rpc.WithLogger(o.logger))
	opts = append(opts, o.clientOptions...)
	if role.Cold() {
		opts = append(opts, rpc.WithColdTarget())
	}
	if o.passDataDir {
		opts = append(opts, rpc.WithFlags("-datadir="+o.layout.Root(role.Cold())))
	}
	return rpc.NewClient(id, o.runner, o.resolver, opts...)
}

// Node returns the handle for id and role.
func (o *Orchestrator) Node(id string, role Role) (NodeHandle, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	h, ok := o.handles[handleKey{id: id, role: role}]
	if !ok {
		return NodeHandle{ID: id, Role: role, DataDir: o.layout.DataDir(id, role.Cold()), State: StateNotStarted}, false
	}
	return *h, true
}

// Nodes returns every known handle ordered by id then role.
func (o *Orchestrator) Nodes() []NodeHandle {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]NodeHandle, 0, len(o.handles))
	for _, h := range o.handles {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Role < out[j].Role
	})
	return out
}

func (o *Orchestrator) resolve(name string) (string, error) {
	if o.resolver == nil {
		return name, nil
	}
	return o.resolver.Resolve(name)
}
