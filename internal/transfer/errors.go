// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transfer

import "errors"

var (
	// ErrCreateParent is returned when the destination's parent directory
	// cannot be created. It is the only fault Copy reports as an error.
	ErrCreateParent = errors.New("create destination directory")
)
