// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/ManuGH/installd/internal/log"
	"github.com/ManuGH/installd/internal/metrics"
)

const (
	defaultDrainGrace  = time.Second
	defaultStopWait    = 5 * time.Second
	defaultHookTimeout = 10 * time.Second
)

// State is the lifecycle state of a Coordinator. States only move forward.
type State int32

const (
	StateStarting State = iota
	StateServing
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateServing:
		return "serving"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown(" + strconv.Itoa(int(s)) + ")"
	}
}

// ShutdownHook is a function that performs cleanup during shutdown.
// Hooks are executed in reverse registration order (LIFO).
type ShutdownHook func(ctx context.Context) error

// namedHook represents a shutdown hook with a name for logging
type namedHook struct {
	name string
	hook ShutdownHook
}

// Coordinator binds the RPC listener, serves until the shutdown signal fires,
// then drains in-flight calls and runs the shutdown hooks.
type Coordinator struct {
	opts   Options
	deps   Deps
	logger zerolog.Logger

	state atomic.Int32
	ready chan struct{}

	mu         sync.Mutex
	started    bool
	hooks      []namedHook
	forceStops []func()
	addr       net.Addr
	opsAddr    net.Addr
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(opts Options, deps Deps) (*Coordinator, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	if opts.DrainGrace <= 0 {
		opts.DrainGrace = defaultDrainGrace
	}
	if opts.StopWait <= 0 {
		opts.StopWait = defaultStopWait
	}
	if opts.HookTimeout <= 0 {
		opts.HookTimeout = defaultHookTimeout
	}
	c := &Coordinator{
		opts:   opts,
		deps:   deps,
		logger: deps.Logger.With().Str(log.FieldComponent, "coordinator").Logger(),
		ready:  make(chan struct{}),
	}
	c.setState(StateStarting)
	return c, nil
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Ready is closed once the coordinator is serving.
func (c *Coordinator) Ready() <-chan struct{} {
	return c.ready
}

// Addr returns the bound RPC address, or nil before Ready.
func (c *Coordinator) Addr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addr
}

// OpsAddr returns the bound ops HTTP address, or nil when disabled.
func (c *Coordinator) OpsAddr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opsAddr
}

// RegisterShutdownHook registers a cleanup function to be called after the
// RPC server has stopped. Hooks are executed in reverse registration order.
func (c *Coordinator) RegisterShutdownHook(name string, hook ShutdownHook) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hooks = append(c.hooks, namedHook{name: name, hook: hook})
	c.logger.Debug().Str("hook", name).Msg("Registered shutdown hook")
}

// OnForceStop registers fn to run when the drain grace period elapses with
// calls still in flight, before their connections are closed. fn should make
// stuck handlers return.
func (c *Coordinator) OnForceStop(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forceStops = append(c.forceStops, fn)
}

func (c *Coordinator) setState(next State) {
	prev := State(c.state.Swap(int32(next)))
	metrics.SetServerState(int(next))
	if prev != next {
		c.logger.Debug().
			Str(log.FieldOldState, prev.String()).
			Str(log.FieldNewState, next.String()).
			Msg("lifecycle transition")
	}
}

// Run binds the listeners and blocks until the shutdown signal fires, ctx is
// cancelled or a server fails. It returns after the RPC server has stopped
// and every shutdown hook has run.
func (c *Coordinator) Run(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("run context is nil")
	}

	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.mu.Unlock()

	ln, err := net.Listen("tcp", c.opts.ListenAddr)
	if err != nil {
		return c.abort(ctx, fmt.Errorf("%w %s: %w", ErrBind, c.opts.ListenAddr, err))
	}

	var opsLn net.Listener
	if c.opts.OpsListenAddr != "" && c.deps.OpsHandler != nil {
		opsLn, err = net.Listen("tcp", c.opts.OpsListenAddr)
		if err != nil {
			_ = ln.Close()
			return c.abort(ctx, fmt.Errorf("%w %s: %w", ErrBind, c.opts.OpsListenAddr, err))
		}
	}

	c.mu.Lock()
	c.addr = ln.Addr()
	if opsLn != nil {
		c.opsAddr = opsLn.Addr()
	}
	c.mu.Unlock()

	if c.opts.PIDFile != "" {
		if err := c.writePIDFile(); err != nil {
			// Not fatal.
			c.logger.Warn().Err(err).Str(log.FieldPath, c.opts.PIDFile).Msg("failed to write pid file")
		}
	}

	pid := os.Getpid()
	c.logger.Info().
		Str(log.FieldEvent, "server.started").
		Str(log.FieldAddr, ln.Addr().String()).
		Int(log.FieldPID, pid).
		Msgf("Started server on %s w/ pid %d", ln.Addr(), pid)

	var g errgroup.Group
	serveErr := make(chan error, 2)

	// Serve is not part of g: with a stuck handler it may outlive Run.
	rpcDone := make(chan error, 1)
	go func() {
		if err := c.deps.RPC.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErr <- err
			rpcDone <- fmt.Errorf("rpc server: %w", err)
			return
		}
		rpcDone <- nil
	}()

	if opsLn != nil {
		opsServer := &http.Server{
			Handler:           c.deps.OpsHandler,
			ReadHeaderTimeout: 5 * time.Second,
		}
		c.RegisterShutdownHook("ops-server", opsServer.Shutdown)
		c.logger.Info().Str(log.FieldAddr, opsLn.Addr().String()).Msg("Ops server listening")

		g.Go(func() error {
			if err := opsServer.Serve(opsLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
				return fmt.Errorf("ops server: %w", err)
			}
			return nil
		})
	}

	c.setState(StateServing)
	close(c.ready)

	select {
	case <-c.deps.Signal.Done():
	case err := <-serveErr:
		c.logger.Error().Err(err).Str(log.FieldEvent, "server.failed").Msg("Server error, initiating shutdown")
		c.deps.Signal.Fire("serve error")
	case <-ctx.Done():
		c.deps.Signal.Fire("interrupt")
	}

	c.logger.Info().
		Str(log.FieldEvent, "shutdown.requested").
		Str("reason", c.deps.Signal.Reason()).
		Msg("Shutdown requested")

	var errs []error
	if c.drain() {
		if err := <-rpcDone; err != nil {
			errs = append(errs, err)
		}
	} else {
		select {
		case err := <-rpcDone:
			if err != nil {
				errs = append(errs, err)
			}
		default:
		}
	}

	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.HookTimeout)
	defer cancel()

	if err := c.runHooks(hookCtx); err != nil {
		errs = append(errs, err)
	}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}

	c.setState(StateStopped)
	c.logger.Info().Str(log.FieldEvent, "server.stopped").Msg("Exiting installer")
	return errors.Join(errs...)
}

// abort releases registered resources after a startup failure.
func (c *Coordinator) abort(ctx context.Context, cause error) error {
	c.logger.Error().Err(cause).Str(log.FieldEvent, "server.start_failed").Msg("Failed to start server")

	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.HookTimeout)
	defer cancel()
	err := errors.Join(cause, c.runHooks(hookCtx))

	c.setState(StateStopped)
	return err
}

// drain stops accepting calls and gives in-flight calls DrainGrace to finish.
// After that the force-stop callbacks run, connections are closed and drain
// waits at most StopWait for the handlers. It reports whether the RPC server
// stopped.
func (c *Coordinator) drain() bool {
	c.setState(StateDraining)
	c.logger.Info().
		Str(log.FieldEvent, "server.draining").
		Dur("grace", c.opts.DrainGrace).
		Msg("Stopped RPC server, Waiting for RPCs to complete...")

	stopped := make(chan struct{})
	go func() {
		c.deps.RPC.GracefulStop()
		close(stopped)
	}()

	timer := time.NewTimer(c.opts.DrainGrace)
	defer timer.Stop()

	select {
	case <-stopped:
		return true
	case <-timer.C:
	}

	c.logger.Warn().
		Str(log.FieldEvent, "server.force_stop").
		Msg("Drain grace elapsed, closing remaining connections")
	c.forceStop()
	// Stop blocks until a pending GracefulStop has returned.
	go c.deps.RPC.Stop()

	wait := time.NewTimer(c.opts.StopWait)
	defer wait.Stop()

	select {
	case <-stopped:
		return true
	case <-wait.C:
		c.logger.Error().
			Str(log.FieldEvent, "server.stop_abandoned").
			Dur("stop_wait", c.opts.StopWait).
			Msg("RPC handlers still running after forced stop, exiting without them")
		return false
	}
}

func (c *Coordinator) forceStop() {
	c.mu.Lock()
	fns := make([]func(), len(c.forceStops))
	copy(fns, c.forceStops)
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (c *Coordinator) runHooks(ctx context.Context) error {
	c.mu.Lock()
	hooks := make([]namedHook, len(c.hooks))
	copy(hooks, c.hooks)
	c.mu.Unlock()

	c.logger.Debug().Int("hooks", len(hooks)).Msg("Executing shutdown hooks")

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		hookStart := time.Now()
		if err := h.hook(ctx); err != nil {
			c.logger.Error().
				Err(err).
				Str("hook", h.name).
				Dur(log.FieldDuration, time.Since(hookStart)).
				Msg("Shutdown hook failed")
			errs = append(errs, fmt.Errorf("hook %s: %w", h.name, err))
			continue
		}
		c.logger.Debug().
			Str("hook", h.name).
			Dur(log.FieldDuration, time.Since(hookStart)).
			Msg("Shutdown hook completed")
	}
	return errors.Join(errs...)
}

func (c *Coordinator) writePIDFile() error {
	path := c.opts.PIDFile
	if err := renameio.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		return err
	}
	c.RegisterShutdownHook("pid-file", func(context.Context) error {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	})
	return nil
}
