// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// RPCServer is the part of *grpc.Server the coordinator drives.
type RPCServer interface {
	Serve(net.Listener) error
	GracefulStop()
	Stop()
}

// Deps contains dependencies required by the Coordinator.
type Deps struct {
	// Logger is the structured logger for the daemon
	Logger *zerolog.Logger

	// RPC serves the installer service on the bound listener.
	RPC RPCServer

	// Signal is observed for shutdown requests. The coordinator fires it on
	// interrupt and on serve failure.
	Signal *ShutdownSignal

	// OpsHandler serves health and metrics when Options.OpsListenAddr is set.
	OpsHandler http.Handler
}

// Validate checks if the dependencies are valid.
func (d *Deps) Validate() error {
	if d.Logger == nil {
		return ErrMissingLogger
	}
	if d.RPC == nil {
		return ErrMissingRPCServer
	}
	if d.Signal == nil {
		return ErrMissingSignal
	}
	return nil
}

// Options holds the listener and shutdown settings of a Coordinator.
type Options struct {
	// ListenAddr is the RPC listen address (e.g. ":50051").
	ListenAddr string

	// OpsListenAddr enables the ops HTTP server when non-empty.
	OpsListenAddr string

	// DrainGrace bounds how long in-flight RPCs may run once draining starts.
	DrainGrace time.Duration
	// StopWait bounds how long handlers may keep running after the grace
	// period has elapsed and connections were closed.
	StopWait time.Duration

	// PIDFile receives the process id while serving when non-empty.
	PIDFile string

	// HookTimeout bounds the shutdown hooks as a whole.
	HookTimeout time.Duration
}
