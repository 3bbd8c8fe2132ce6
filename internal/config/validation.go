// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate checks the resolved configuration. All problems are reported at once.
func (c Config) Validate() error {
	var errs []error

	switch {
	case c.TCPPort == 0:
		errs = append(errs, ErrMissingPort)
	case c.TCPPort < 0 || c.TCPPort > 65535:
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidPort, c.TCPPort))
	}

	if strings.TrimSpace(c.Dst) == "" {
		errs = append(errs, ErrMissingDst)
	}

	for name, d := range map[string]time.Duration{
		"copy.timeout":      c.Copy.Timeout,
		"copy.killGrace":    c.Copy.KillGrace,
		"server.drainGrace": c.Server.DrainGrace,
		"server.sessionTTL": c.Server.SessionTTL,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%w: %s=%s", ErrInvalidDuration, name, d))
		}
	}

	if c.Ops.RatePerMinute < 0 {
		errs = append(errs, fmt.Errorf("ops.ratePerMinute must not be negative: %d", c.Ops.RatePerMinute))
	}

	if c.Telemetry.Enabled {
		switch c.Telemetry.Exporter {
		case "grpc", "http":
		default:
			errs = append(errs, fmt.Errorf("%w: exporter %q (supported: grpc, http)", ErrInvalidTelemetry, c.Telemetry.Exporter))
		}
		if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
			errs = append(errs, fmt.Errorf("%w: samplingRate %v not in [0,1]", ErrInvalidTelemetry, c.Telemetry.SamplingRate))
		}
	}

	return errors.Join(errs...)
}
