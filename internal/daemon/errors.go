// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import "errors"

var (
	// ErrMissingLogger is returned when logger is not provided
	ErrMissingLogger = errors.New("logger is required")

	// ErrMissingRPCServer is returned when no RPC server is provided
	ErrMissingRPCServer = errors.New("rpc server is required")

	// ErrMissingSignal is returned when no shutdown signal is provided
	ErrMissingSignal = errors.New("shutdown signal is required")

	// ErrAlreadyStarted is returned when Run is called more than once.
	ErrAlreadyStarted = errors.New("coordinator already started")

	// ErrBind is returned when a listen address cannot be bound.
	ErrBind = errors.New("failed to bind listen address")
)
