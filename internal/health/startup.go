// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"os"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/ManuGH/installd/internal/config"
	"github.com/ManuGH/installd/internal/log"
)

// PerformStartupChecks inspects the environment before the server binds and
// logs what it finds. Nothing here is fatal: a bad destination root or a
// missing copy tool is reported again by every FileReady call.
func PerformStartupChecks(_ context.Context, cfg config.Config) {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("running pre-flight startup checks")

	dst := cfg.Destination()
	if !dst.IsRemote() {
		checkDestinationRoot(logger, dst.Path())
	} else {
		logger.Info().Str(log.FieldDestination, dst.Root()).Msg("remote destination, skipping local directory check")
	}

	if p, err := exec.LookPath(cfg.Copy.Bin); err != nil {
		logger.Warn().Err(err).Str("bin", cfg.Copy.Bin).Msg("copy tool not found; file installs will fail")
	} else {
		logger.Info().Str("bin", p).Msg("copy tool available")
	}

	logger.Info().Msg("startup checks finished")
}

func checkDestinationRoot(logger zerolog.Logger, path string) {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		logger.Info().Str(log.FieldPath, path).Msg("destination root will be created on first install")
	case err != nil:
		logger.Warn().Err(err).Str(log.FieldPath, path).Msg("destination root cannot be inspected; file installs may fail")
	case !info.IsDir():
		logger.Warn().Str(log.FieldPath, path).Msg("destination root is not a directory; file installs will fail")
	default:
		logger.Info().Str(log.FieldPath, path).Msg("destination root exists")
	}
}
