// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package daemon wires the installer together and drives the server
// lifecycle: bind, serve, drain, stop.
package daemon

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ManuGH/installd/internal/api"
	"github.com/ManuGH/installd/internal/config"
	"github.com/ManuGH/installd/internal/health"
	"github.com/ManuGH/installd/internal/installer"
	"github.com/ManuGH/installd/internal/log"
	"github.com/ManuGH/installd/internal/rpc"
	"github.com/ManuGH/installd/internal/telemetry"
	"github.com/ManuGH/installd/internal/transfer"
)

// Daemon is a fully wired installer process.
type Daemon struct {
	Coordinator *Coordinator
	Service     *installer.Service
	Signal      *ShutdownSignal
	Health      *health.Manager
}

// New builds the installer from a resolved configuration. Nothing is bound
// until Run.
func New(ctx context.Context, cfg config.Config, version string) (*Daemon, error) {
	logger := log.WithComponent("daemon")

	tp, err := telemetry.NewProvider(ctx, telemetry.FromSettings(
		cfg.Telemetry.Enabled,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
		cfg.Telemetry.SamplingRate,
		version,
	))
	if err != nil {
		logger.Warn().Err(err).Msg("Telemetry initialization failed, continuing without tracing")
		tp, _ = telemetry.NewProvider(ctx, telemetry.Config{})
	} else if cfg.Telemetry.Enabled {
		logger.Info().
			Str("exporter", cfg.Telemetry.Exporter).
			Str("endpoint", cfg.Telemetry.Endpoint).
			Float64("sampling_rate", cfg.Telemetry.SamplingRate).
			Msg("Telemetry initialized")
	}

	copyLogger := log.WithComponent("transfer")
	executor := transfer.NewExecutor(transfer.Options{
		Bin:       cfg.Copy.Bin,
		Timeout:   cfg.Copy.Timeout,
		KillGrace: cfg.Copy.KillGrace,
		Logger:    &copyLogger,
	})

	sig := NewShutdownSignal()
	registry := installer.NewRegistry(cfg.Server.SessionTTL)
	dst := cfg.Destination()

	svc, err := installer.NewService(installer.Options{
		Destination: dst,
		Copier:      executor,
		Shutdown:    sig,
		Registry:    registry,
	})
	if err != nil {
		registry.Stop()
		return nil, fmt.Errorf("installer service: %w", err)
	}

	rpcLogger := log.WithComponent("rpc")
	grpcServer := rpc.NewServer(svc, rpc.ServerOptions{Logger: &rpcLogger})

	hm := health.NewManager(version)
	var opsHandler http.Handler
	if cfg.Ops.ListenAddr != "" {
		tracingService := ""
		if cfg.Telemetry.Enabled {
			tracingService = "installd-ops"
		}
		opsHandler = api.NewOpsHandler(api.OpsDeps{
			Health:         hm,
			RatePerMinute:  cfg.Ops.RatePerMinute,
			TracingService: tracingService,
		})
	}

	coord, err := NewCoordinator(Options{
		ListenAddr:    cfg.ListenAddr(),
		OpsListenAddr: cfg.Ops.ListenAddr,
		DrainGrace:    cfg.Server.DrainGrace,
		PIDFile:       cfg.Server.PIDFile,
	}, Deps{
		Logger:     &logger,
		RPC:        grpcServer,
		Signal:     sig,
		OpsHandler: opsHandler,
	})
	if err != nil {
		_ = svc.Close()
		return nil, err
	}

	hm.RegisterChecker(health.NewStateChecker("server", func() (string, bool) {
		s := coord.State()
		return s.String(), s == StateServing
	}))
	hm.RegisterChecker(health.Informational(health.NewBinaryChecker("copy_tool", executor.Bin())))
	if !dst.IsRemote() {
		hm.RegisterChecker(health.Informational(health.NewWritableDirChecker("destination", dst.Path())))
	}

	coord.OnForceStop(executor.Abort)
	coord.RegisterShutdownHook("telemetry", tp.Shutdown)
	coord.RegisterShutdownHook("sessions", func(context.Context) error {
		return svc.Close()
	})

	logger.Info().
		Str(log.FieldDestination, dst.Root()).
		Str("copy_bin", executor.Bin()).
		Dur("copy_timeout", cfg.Copy.Timeout).
		Msg("Installer configured")

	return &Daemon{
		Coordinator: coord,
		Service:     svc,
		Signal:      sig,
		Health:      hm,
	}, nil
}

// Run serves until shutdown; see Coordinator.Run.
func (d *Daemon) Run(ctx context.Context) error {
	return d.Coordinator.Run(ctx)
}
