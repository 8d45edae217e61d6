// Package process spawns child processes and captures their output.
//
// Every invocation owns its process, both pipes and both buffers. The two
// output streams are drained by independent reader goroutines that are
// attached before the process starts, so a child filling one pipe can never
// stall behind a parent blocked on the other.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultWaitDelay bounds how long Run keeps reading after cancellation
// when a descendant of the killed child still holds the pipes open.
const DefaultWaitDelay = 2 * time.Second

// Invocation describes one child process. It is built fresh per call and is
// not modified once handed to the Invoker.
type Invocation struct {
	ID   string
	Path string
	Args []string
	Dir  string
	// Env entries are appended to the parent environment.
	Env []string
}

// NewInvocation creates an Invocation with a fresh correlation ID.
func NewInvocation(path string, args ...string) Invocation {
	return Invocation{
		ID:   uuid.NewString(),
		Path: path,
		Args: append([]string(nil), args...),
	}
}

// String renders the command line for diagnostics.
func (inv Invocation) String() string {
	if len(inv.Args) == 0 {
		return inv.Path
	}
	return inv.Path + " " + strings.Join(inv.Args, " ")
}

// CapturedOutput is the full output of a process run in wait-for-exit mode.
type CapturedOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports a zero exit status.
func (o CapturedOutput) Success() bool {
	return o.ExitCode == 0
}

// Mode selects how an invocation is run.
type Mode int

const (
	// ModeWait blocks until the child exits and captures its output.
	ModeWait Mode = iota
	// ModeDetached returns as soon as the child is running.
	ModeDetached
)

func (m Mode) String() string {
	if m == ModeDetached {
		return "detached"
	}
	return "wait"
}

// Config configures an Invoker.
type Config struct {
	Logger   *slog.Logger
	Observer Observer
	// WaitDelay defaults to DefaultWaitDelay.
	WaitDelay time.Duration
	// DetachedOutput, when set, receives a copy of every detached process's
	// stdout and stderr.
	DetachedOutput io.Writer
}

// Invoker runs child processes. It holds no per-invocation state and is safe
// for concurrent use.
type Invoker struct {
	config Config
}

// NewInvoker creates a new Invoker.
func NewInvoker(config Config) *Invoker {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Observer == nil {
		config.Observer = nopObserver{}
	}
	if config.WaitDelay <= 0 {
		config.WaitDelay = DefaultWaitDelay
	}
	return &Invoker{config: config}
}

// Run starts the process and blocks until it exits, returning everything it
// wrote. A non-zero exit status is not an error; it is reported in
// CapturedOutput.ExitCode. Cancelling ctx kills the child and releases its
// pipes.
func (i *Invoker) Run(ctx context.Context, inv Invocation) (CapturedOutput, error) {
	start := time.Now()
	out, err := i.run(ctx, inv)
	elapsed := time.Since(start)

	i.config.Observer.ObserveRun(inv, out, err, elapsed)
	if err != nil {
		i.config.Logger.Debug("invocation failed",
			"invocationID", inv.ID,
			"mode", ModeWait,
			"path", inv.Path,
			"error", err,
		)
	} else {
		i.config.Logger.Debug("invocation finished",
			"invocationID", inv.ID,
			"path", inv.Path,
			"exitCode", out.ExitCode,
			"elapsed", elapsed,
		)
	}
	return out, err
}

// Invoke runs inv in mode. A detached invocation reports only whether the
// launch succeeded; its CapturedOutput is empty.
func (i *Invoker) Invoke(ctx context.Context, inv Invocation, mode Mode) (CapturedOutput, error) {
	if mode == ModeDetached {
		_, err := i.Start(ctx, inv)
		return CapturedOutput{}, err
	}
	return i.Run(ctx, inv)
}

func (i *Invoker) run(ctx context.Context, inv Invocation) (CapturedOutput, error) {
	out := CapturedOutput{ExitCode: -1}

	if err := ctx.Err(); err != nil {
		return out, err
	}

	path, err := locate(inv.Path)
	if err != nil {
		return out, err
	}

	cmd := exec.CommandContext(ctx, path, inv.Args...)
	configure(cmd, inv)

	streams, err := openStreams()
	if err != nil {
		return out, &LaunchError{Operation: "start", Path: path, Err: err}
	}
	cmd.Stdout = streams.stdoutW
	cmd.Stderr = streams.stderrW

	var stdoutBuf, stderrBuf bytes.Buffer
	readers := streams.drain(&stdoutBuf, &stderrBuf)

	if err := cmd.Start(); err != nil {
		streams.closeWriters()
		streams.closeReaders()
		<-readers
		return out, &LaunchError{Operation: "start", Path: path, Err: err}
	}
	streams.closeWriters()

	i.config.Logger.Debug("invocation started",
		"invocationID", inv.ID,
		"path", path,
		"pid", cmd.Process.Pid,
	)

	var readErr error
	select {
	case readErr = <-readers:
	case <-ctx.Done():
		// CommandContext kills the child; descendants may still hold the pipes.
		select {
		case readErr = <-readers:
		case <-time.After(i.config.WaitDelay):
			streams.closeReaders()
			readErr = <-readers
		}
	}
	waitErr := cmd.Wait()
	streams.closeReaders()

	out.Stdout = stdoutBuf.String()
	out.Stderr = stderrBuf.String()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, &ExecutionError{
			Operation: "run",
			Message:   fmt.Sprintf("%s cancelled: %v", filepath.Base(path), ctxErr),
			Err:       ctxErr,
		}
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return out, &ExecutionError{
				Operation: "wait",
				Message:   waitErr.Error(),
				Err:       waitErr,
			}
		}
		out.ExitCode = exitErr.ExitCode()
	} else {
		out.ExitCode = 0
	}

	if readErr != nil {
		return out, &ExecutionError{
			Operation: "read",
			Message:   readErr.Error(),
			Err:       readErr,
		}
	}

	return out, nil
}

// locate checks that the executable exists before anything is spawned.
func locate(path string) (string, error) {
	if path == "" {
		return "", &LaunchError{Operation: "locate", Path: path, Err: fmt.Errorf("%w: empty executable path", fs.ErrNotExist)}
	}

	if !strings.ContainsRune(path, os.PathSeparator) && !strings.ContainsRune(path, '/') {
		found, err := exec.LookPath(path)
		if err != nil {
			return "", &LaunchError{
				Operation: "locate",
				Path:      path,
				Tried:     []string{"$PATH/" + path},
				Err:       fmt.Errorf("%w: %v", fs.ErrNotExist, err),
			}
		}
		return found, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", &LaunchError{Operation: "locate", Path: path, Tried: []string{path}, Err: err}
	}
	if info.IsDir() {
		return "", &LaunchError{Operation: "locate", Path: path, Tried: []string{path}, Err: fmt.Errorf("path is a directory, not a binary")}
	}
	return path, nil
}

func configure(cmd *exec.Cmd, inv Invocation) {
	if inv.Dir != "" {
		cmd.Dir = inv.Dir
	}
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}
}

// streams holds the two OS pipes of one invocation.
type streams struct {
	stdoutR, stdoutW *os.File
	stderrR, stderrW *os.File
}

func openStreams() (*streams, error) {
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	return &streams{
		stdoutR: stdoutR,
		stdoutW: stdoutW,
		stderrR: stderrR,
		stderrW: stderrW,
	}, nil
}

// drain starts one reader per stream and returns a channel that yields the
// first read error once both readers hit EOF.
func (s *streams) drain(stdout, stderr io.Writer) <-chan error {
	var g errgroup.Group
	g.Go(func() error { return copyStream(stdout, s.stdoutR) })
	g.Go(func() error { return copyStream(stderr, s.stderrR) })

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()
	return done
}

// closeWriters releases the parent's copies of the write ends so the readers
// see EOF once the child exits.
func (s *streams) closeWriters() {
	s.stdoutW.Close()
	s.stderrW.Close()
}

func (s *streams) closeReaders() {
	s.stdoutR.Close()
	s.stderrR.Close()
}

func copyStream(dst io.Writer, src io.Reader) error {
	_, err := io.Copy(dst, src)
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}
