// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package installer

import "errors"

// Sentinel errors returned by the installer service.
var (
	// ErrMissingCopier is returned when a service is built without a copier.
	ErrMissingCopier = errors.New("installer: copier is required")

	// ErrMissingShutdown is returned when a service is built without a shutdown signal.
	ErrMissingShutdown = errors.New("installer: shutdown signal is required")

	// ErrMissingDestination is returned when the destination root is empty.
	ErrMissingDestination = errors.New("installer: destination root is required")
)
