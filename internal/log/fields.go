// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldInstallID = "install_id"
	FieldRequestID = "request_id"
	FieldMethod    = "method"

	// Process / lifecycle fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldPID       = "pid"
	FieldOldState  = "old_state"
	FieldNewState  = "new_state"

	// Transfer fields
	FieldFileName    = "file_name"
	FieldFileCount   = "file_count"
	FieldPath        = "path"
	FieldDestination = "destination"
	FieldExitCode    = "exit_code"
	FieldDuration    = "duration"

	// Network fields
	FieldAddr = "addr"
)
