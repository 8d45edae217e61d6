package process

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"time"
)

// LaunchInfo describes a detached process right after it was spawned.
type LaunchInfo struct {
	ID        string
	PID       int
	Path      string
	StartedAt time.Time
}

// Start spawns the process and returns as soon as it is running, without
// waiting for it to exit. The process is reaped when it exits. The child is
// not bound to ctx: ctx only aborts the launch itself.
//
// When DetachedOutput is set or debug logging is enabled, the child's stdout
// and stderr are pipes drained in the background for as long as this process
// lives; a long-running child should redirect its own stdio, as multichaind
// does with -daemon. Otherwise the child's stdio is the null device.
func (i *Invoker) Start(ctx context.Context, inv Invocation) (LaunchInfo, error) {
	info, err := i.start(ctx, inv)
	i.config.Observer.ObserveStart(inv, err)
	if err != nil {
		i.config.Logger.Debug("detached launch failed",
			"invocationID", inv.ID,
			"mode", ModeDetached,
			"path", inv.Path,
			"error", err,
		)
	}
	return info, err
}

func (i *Invoker) start(ctx context.Context, inv Invocation) (LaunchInfo, error) {
	if err := ctx.Err(); err != nil {
		return LaunchInfo{}, err
	}

	path, err := locate(inv.Path)
	if err != nil {
		return LaunchInfo{}, err
	}

	cmd := exec.Command(path, inv.Args...)
	configure(cmd, inv)
	cmd.SysProcAttr = detachedAttr()

	if i.config.DetachedOutput == nil && !i.config.Logger.Enabled(ctx, slog.LevelDebug) {
		return i.startSilent(cmd, inv, path)
	}

	streams, err := openStreams()
	if err != nil {
		return LaunchInfo{}, &LaunchError{Operation: "start", Path: path, Err: err}
	}
	cmd.Stdout = streams.stdoutW
	cmd.Stderr = streams.stderrW

	logger := i.config.Logger.With("invocationID", inv.ID, "path", path)
	stdoutSink := i.detachedSink(logger, "stdout")
	stderrSink := i.detachedSink(logger, "stderr")
	readers := streams.drain(stdoutSink, stderrSink)

	if err := cmd.Start(); err != nil {
		streams.closeWriters()
		streams.closeReaders()
		<-readers
		return LaunchInfo{}, &LaunchError{Operation: "start", Path: path, Err: err}
	}
	streams.closeWriters()

	info := LaunchInfo{
		ID:        inv.ID,
		PID:       cmd.Process.Pid,
		Path:      path,
		StartedAt: time.Now(),
	}
	logger.Info("detached process launched", "pid", info.PID)

	// Reap the child as soon as it exits. A daemonizing child may hand its
	// pipes to a grandchild, so the readers are left running until EOF and
	// never closed early: closing them would kill the daemon on its next write.
	go func() {
		waitErr := cmd.Wait()
		exitCode := 0
		if waitErr != nil {
			var exitErr *exec.ExitError
			if errors.As(waitErr, &exitErr) {
				exitCode = exitErr.ExitCode()
			} else {
				exitCode = -1
			}
		}
		logger.Debug("detached process exited", "pid", info.PID, "exitCode", exitCode)
	}()
	go func() {
		readErr := <-readers
		streams.closeReaders()
		stdoutSink.flush()
		stderrSink.flush()
		if readErr != nil {
			logger.Debug("detached output drain stopped", "error", readErr)
		}
	}()

	return info, nil
}

// startSilent launches cmd with its stdio on the null device.
func (i *Invoker) startSilent(cmd *exec.Cmd, inv Invocation, path string) (LaunchInfo, error) {
	if err := cmd.Start(); err != nil {
		return LaunchInfo{}, &LaunchError{Operation: "start", Path: path, Err: err}
	}
	info := LaunchInfo{
		ID:        inv.ID,
		PID:       cmd.Process.Pid,
		Path:      path,
		StartedAt: time.Now(),
	}
	logger := i.config.Logger.With("invocationID", inv.ID, "path", path)
	logger.Info("detached process launched", "pid", info.PID)
	go func() {
		_ = cmd.Wait()
	}()
	return info, nil
}

func (i *Invoker) detachedSink(logger *slog.Logger, stream string) *lineLogger {
	return &lineLogger{
		logger: logger,
		stream: stream,
		copyTo: i.config.DetachedOutput,
	}
}

// maxLineLength caps a buffered partial line; longer lines are logged in pieces.
const maxLineLength = 64 * 1024

// lineLogger forwards complete output lines to the logger at debug level.
// Each instance is written to by a single reader goroutine.
type lineLogger struct {
	logger *slog.Logger
	stream string
	copyTo io.Writer
	buf    []byte
}

func (l *lineLogger) Write(p []byte) (int, error) {
	if l.copyTo != nil {
		// A broken log sink must not stop the daemon's pipes from being drained.
		_, _ = l.copyTo.Write(p)
	}

	l.buf = append(l.buf, p...)
	for {
		idx := bytes.IndexByte(l.buf, '\n')
		if idx < 0 {
			break
		}
		l.emit(l.buf[:idx])
		l.buf = l.buf[idx+1:]
	}
	if len(l.buf) > maxLineLength {
		l.emit(l.buf)
		l.buf = nil
	}
	return len(p), nil
}

func (l *lineLogger) flush() {
	if len(l.buf) > 0 {
		l.emit(l.buf)
		l.buf = nil
	}
}

func (l *lineLogger) emit(line []byte) {
	line = bytes.TrimRight(line, "\r")
	if len(line) == 0 {
		return
	}
	l.logger.Debug("daemon output", "stream", l.stream, "line", string(line))
}
