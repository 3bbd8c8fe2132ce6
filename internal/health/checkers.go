// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// WritableDirChecker checks that the destination root accepts new files.
type WritableDirChecker struct {
	name string
	path string
}

// NewWritableDirChecker creates a checker for a local directory. A missing
// directory is degraded rather than unhealthy: the installer creates it on
// the first copy.
func NewWritableDirChecker(name, path string) *WritableDirChecker {
	return &WritableDirChecker{name: name, path: path}
}

func (c *WritableDirChecker) Name() string { return c.name }

func (c *WritableDirChecker) Check(_ context.Context) CheckResult {
	info, err := os.Stat(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return CheckResult{
				Status:  StatusDegraded,
				Message: "directory does not exist yet: " + c.path,
			}
		}
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	if !info.IsDir() {
		return CheckResult{
			Status:  StatusUnhealthy,
			Error:   "not a directory",
			Message: c.path,
		}
	}

	f, err := os.CreateTemp(c.path, ".installd-probe-*")
	if err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Error:   err.Error(),
			Message: "directory is not writable",
		}
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)

	return CheckResult{Status: StatusHealthy, Message: "directory is writable"}
}

// BinaryChecker checks that an executable can be resolved.
type BinaryChecker struct {
	name     string
	bin      string
	lookPath func(string) (string, error)
}

// NewBinaryChecker creates a checker for bin, resolved through PATH unless it
// contains a path separator.
func NewBinaryChecker(name, bin string) *BinaryChecker {
	return &BinaryChecker{name: name, bin: bin, lookPath: exec.LookPath}
}

func (c *BinaryChecker) Name() string { return c.name }

func (c *BinaryChecker) Check(_ context.Context) CheckResult {
	p, err := c.lookPath(c.bin)
	if err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Error:   err.Error(),
			Message: fmt.Sprintf("%s not found", c.bin),
		}
	}
	return CheckResult{Status: StatusHealthy, Message: filepath.Clean(p)}
}

// StateChecker reports the lifecycle state of a component.
type StateChecker struct {
	name  string
	state func() (string, bool)
}

// NewStateChecker creates a checker from a function returning the current
// state name and whether that state accepts work.
func NewStateChecker(name string, state func() (string, bool)) *StateChecker {
	return &StateChecker{name: name, state: state}
}

func (c *StateChecker) Name() string { return c.name }

func (c *StateChecker) Check(_ context.Context) CheckResult {
	s, ok := c.state()
	if !ok {
		return CheckResult{Status: StatusUnhealthy, Message: s}
	}
	return CheckResult{Status: StatusHealthy, Message: s}
}

// informational downgrades an unhealthy result to degraded so the checker is
// reported without affecting readiness.
type informational struct {
	Checker
}

// Informational wraps c so that failures never make the process unready.
func Informational(c Checker) Checker {
	return informational{Checker: c}
}

func (i informational) Check(ctx context.Context) CheckResult {
	res := i.Checker.Check(ctx)
	if res.Status == StatusUnhealthy {
		res.Status = StatusDegraded
	}
	return res
}
