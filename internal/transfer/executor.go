// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package transfer delivers one file to the destination through an external
// copy tool (rsync) and reports the tool's output and exit status.
package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/installd/internal/log"
	"github.com/ManuGH/installd/internal/procgroup"
)

const (
	// DefaultBin is the copy tool used when none is configured.
	DefaultBin = "rsync"

	// DefaultKillGrace is how long a timed-out copy gets between SIGTERM and SIGKILL.
	DefaultKillGrace = 2 * time.Second

	// ExitCodeNotStarted is reported when the tool could not be launched at all,
	// matching the shell convention for "command not found".
	ExitCodeNotStarted = 127
)

// archiveFlags selects archive mode (permissions, times, recursion) and makes
// rsync copy the target of a symlinked source rather than the link.
var archiveFlags = []string{"-aL"}

// Result holds the captured output and exit status of one copy.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	// TimedOut is set when the copy was terminated by the configured timeout.
	TimedOut bool
	// Aborted is set when the copy was stopped or refused by Abort.
	Aborted bool
	// Bin and Timeout describe the invocation for diagnostics.
	Bin     string
	Timeout time.Duration
}

// Succeeded reports whether the copy finished with exit code 0.
func (r Result) Succeeded() bool {
	return r.ExitCode == 0 && !r.TimedOut && !r.Aborted
}

// Diagnostic returns the text reported to the caller for a failed copy: the
// captured stderr, or a synthesized message when stderr is empty or the copy
// timed out. It returns "" for a successful copy.
func (r Result) Diagnostic() string {
	switch {
	case r.Succeeded():
		return ""
	case r.TimedOut:
		return fmt.Sprintf("copy timed out after %s", r.Timeout)
	case r.Aborted:
		return "copy aborted: server is shutting down"
	case strings.TrimSpace(r.Stderr) != "":
		return r.Stderr
	}
	bin := r.Bin
	if bin == "" {
		bin = "copy tool"
	}
	return fmt.Sprintf("%s exited with code %d", bin, r.ExitCode)
}

// Copier copies one local source to a target.
type Copier interface {
	Copy(ctx context.Context, src string, dst Target) (Result, error)
}

// Options configures an Executor.
type Options struct {
	// Bin is the copy tool binary (defaults to DefaultBin).
	Bin string
	// Timeout bounds a single copy. Zero means no limit.
	Timeout time.Duration
	// KillGrace is the SIGTERM to SIGKILL delay for timed-out copies.
	KillGrace time.Duration
	// Logger defaults to the "transfer" component logger.
	Logger *zerolog.Logger
}

// Executor runs the copy tool synchronously on the calling goroutine.
type Executor struct {
	bin       string
	timeout   time.Duration
	killGrace time.Duration
	logger    zerolog.Logger
	mkdirAll  func(string, os.FileMode) error

	abortOnce sync.Once
	aborted   chan struct{}
}

var _ Copier = (*Executor)(nil)

// NewExecutor creates an Executor.
func NewExecutor(opts Options) *Executor {
	bin := strings.TrimSpace(opts.Bin)
	if bin == "" {
		bin = DefaultBin
	}
	grace := opts.KillGrace
	if grace <= 0 {
		grace = DefaultKillGrace
	}
	logger := log.WithComponent("transfer")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Executor{
		bin:       bin,
		timeout:   opts.Timeout,
		killGrace: grace,
		logger:    logger,
		mkdirAll:  os.MkdirAll,
		aborted:   make(chan struct{}),
	}
}

// Bin returns the configured copy tool.
func (e *Executor) Bin() string { return e.bin }

// Abort terminates the process group of every running copy and makes later
// copies fail without starting the tool. It is safe to call more than once.
func (e *Executor) Abort() {
	e.abortOnce.Do(func() {
		e.logger.Warn().Msg("aborting running copies")
		close(e.aborted)
	})
}

// Copy installs src at dst. A non-zero exit of the tool is not an error: it is
// reported through Result so the caller can surface it as response data. The
// returned error is non-nil only when the destination directory could not be
// prepared.
//
// Cancellation of ctx does not abort a running copy; only the configured
// timeout or Abort does.
func (e *Executor) Copy(ctx context.Context, src string, dst Target) (Result, error) {
	if err := e.ensureParent(dst); err != nil {
		return Result{}, fmt.Errorf("%w %s: %w", ErrCreateParent, dst.Parent(), err)
	}

	copyCtx := context.WithoutCancel(ctx)
	if e.timeout > 0 {
		var cancel context.CancelFunc
		copyCtx, cancel = context.WithTimeout(copyCtx, e.timeout)
		defer cancel()
	}

	return e.run(copyCtx, e.args(src, dst)), nil
}

func (e *Executor) args(src string, dst Target) []string {
	args := make([]string, 0, 5)
	args = append(args, archiveFlags...)
	if dst.IsRemote() {
		// The remote parent is created on the far side before rsync starts.
		args = append(args, "--rsync-path", "mkdir -p "+shellQuote(dst.Parent())+" && rsync")
	}
	return append(args, src, dst.String())
}

func (e *Executor) ensureParent(dst Target) error {
	if dst.IsRemote() {
		return nil
	}
	return e.mkdirAll(dst.Parent(), 0o755)
}

func (e *Executor) run(ctx context.Context, args []string) Result {
	logger := log.WithContext(ctx, e.logger)

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(e.bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	procgroup.Set(cmd)

	start := time.Now()
	select {
	case <-e.aborted:
		return Result{ExitCode: -1, Aborted: true, Bin: e.bin, Timeout: e.timeout}
	default:
	}
	if err := cmd.Start(); err != nil {
		logger.Warn().Err(err).Str("bin", e.bin).Msg("copy tool could not be started")
		return Result{
			Stderr:   err.Error(),
			ExitCode: ExitCodeNotStarted,
			Duration: time.Since(start),
			Bin:      e.bin,
			Timeout:  e.timeout,
		}
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	var (
		err      error
		timedOut bool
		aborted  bool
	)
	select {
	case err = <-waitCh:
	case <-ctx.Done():
		timedOut = true
		logger.Warn().
			Int(log.FieldPID, cmd.Process.Pid).
			Dur("timeout", e.timeout).
			Msg("copy timed out, terminating process group")
		err = procgroup.Terminate(cmd, waitCh, e.killGrace)
	case <-e.aborted:
		aborted = true
		logger.Warn().
			Int(log.FieldPID, cmd.Process.Pid).
			Msg("copy aborted, terminating process group")
		err = procgroup.Terminate(cmd, waitCh, e.killGrace)
	}

	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(err),
		Duration: time.Since(start),
		TimedOut: timedOut,
		Aborted:  aborted,
		Bin:      e.bin,
		Timeout:  e.timeout,
	}
	if (timedOut || aborted) && res.ExitCode == 0 {
		res.ExitCode = -1
	}
	return res
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// -1 when the process was killed by a signal.
		return exitErr.ExitCode()
	}
	return -1
}

// shellQuote wraps s in single quotes for the remote shell used by --rsync-path.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
