// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "errors"

var (
	// ErrMissingPort is returned when no TCP port was configured.
	ErrMissingPort = errors.New("tcp port is required")

	// ErrInvalidPort is returned for ports outside 1-65535 or non-numeric values.
	ErrInvalidPort = errors.New("invalid tcp port")

	// ErrMissingDst is returned when the destination root is empty.
	ErrMissingDst = errors.New("destination root is required")

	// ErrInvalidDuration is returned for negative durations.
	ErrInvalidDuration = errors.New("duration must not be negative")

	// ErrInvalidTelemetry is returned for unusable tracing settings.
	ErrInvalidTelemetry = errors.New("invalid telemetry configuration")
)
