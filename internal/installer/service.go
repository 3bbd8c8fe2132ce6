// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package installer implements the install protocol: sessions are opened with
// Install, each file is delivered by FileReady, and ShutdownServer asks the
// process to drain and exit.
package installer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/installd/internal/log"
	"github.com/ManuGH/installd/internal/metrics"
	"github.com/ManuGH/installd/internal/telemetry"
	"github.com/ManuGH/installd/internal/transfer"
)

// Shutdowner is the process-wide shutdown signal. Fire must be idempotent and
// safe for concurrent use; it reports whether this call set the signal.
type Shutdowner interface {
	Fire(reason string) bool
}

// Options configures a Service.
type Options struct {
	Destination transfer.Destination
	Copier      transfer.Copier
	Shutdown    Shutdowner
	// Registry records sessions. A registry without expiry is created when nil.
	Registry *Registry
	// Tracer defaults to the global provider's "installd/installer" tracer.
	Tracer trace.Tracer
}

// Service implements the three installer operations. All methods are safe for
// concurrent use.
type Service struct {
	dst      transfer.Destination
	copier   transfer.Copier
	shutdown Shutdowner
	registry *Registry
	tracer   trace.Tracer
}

// NewService validates opts and returns a ready Service.
func NewService(opts Options) (*Service, error) {
	if opts.Copier == nil {
		return nil, ErrMissingCopier
	}
	if opts.Shutdown == nil {
		return nil, ErrMissingShutdown
	}
	if opts.Destination.Path() == "" {
		return nil, ErrMissingDestination
	}
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry(0)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = telemetry.Tracer("installd/installer")
	}
	return &Service{
		dst:      opts.Destination,
		copier:   opts.Copier,
		shutdown: opts.Shutdown,
		registry: reg,
		tracer:   tracer,
	}, nil
}

// Destination returns the root every file is installed under.
func (s *Service) Destination() transfer.Destination { return s.dst }

// Registry returns the session registry.
func (s *Service) Registry() *Registry { return s.registry }

// Install records the session and echoes its id. It never fails and touches
// no files.
func (s *Service) Install(ctx context.Context, req *InstallRequest) (*InstallResponse, error) {
	logger := log.FromContext(ctx).With().
		Str(log.FieldComponent, "installer").
		Str(log.FieldInstallID, req.InstallID).
		Logger()

	s.registry.Open(req.InstallID, req.Files)
	metrics.IncInstallRequest(len(req.Files))

	logger.Info().
		Str(log.FieldEvent, "install.received").
		Int(log.FieldFileCount, len(req.Files)).
		Msg("received install request")

	return &InstallResponse{InstallID: req.InstallID}, nil
}

// FileReady copies req.Path to destination_root/req.Name. A failed copy is
// reported through the response's ErrorDetail; the returned error is non-nil
// only when the destination directory could not be created.
func (s *Service) FileReady(ctx context.Context, req *FileReadyRequest) (*FileResponse, error) {
	target := s.dst.Join(req.Name)

	ctx, span := s.tracer.Start(ctx, "installer.FileReady",
		trace.WithAttributes(telemetry.FileAttributes(req.InstallID, req.Name, req.Path, target.String())...),
	)
	defer span.End()

	logger := log.FromContext(ctx).With().
		Str(log.FieldComponent, "installer").
		Str(log.FieldInstallID, req.InstallID).
		Str(log.FieldFileName, req.Name).
		Logger()

	if known, declared := s.registry.Declared(req.InstallID, req.Name); known && !declared {
		logger.Debug().Msg("file was not declared by install request")
	}

	logger.Info().
		Str(log.FieldEvent, "file.ready").
		Str(log.FieldPath, req.Path).
		Str(log.FieldDestination, target.String()).
		Msg("received file ready notification")

	res, err := s.copier.Copy(log.ContextWithInstallID(ctx, req.InstallID), req.Path, target)
	if err != nil {
		metrics.ObserveFileReady(metrics.ResultError, 0)
		span.SetAttributes(telemetry.ErrorAttributes(err, "create_parent")...)
		span.SetStatus(codes.Error, err.Error())
		logger.Error().Err(err).Str(log.FieldDestination, target.String()).Msg("failed to prepare destination")
		return nil, fmt.Errorf("install %s: %w", req.Name, err)
	}

	span.SetAttributes(telemetry.CopyAttributes(res.Bin, res.ExitCode, res.TimedOut, res.Duration.Milliseconds())...)

	resp := NewFileResponse(req)
	if res.Succeeded() {
		metrics.ObserveFileReady(metrics.ResultSuccess, res.Duration)
		logger.Info().
			Str(log.FieldEvent, "file.installed").
			Str(log.FieldDestination, target.String()).
			Dur(log.FieldDuration, res.Duration).
			Msg("installed file")
		return resp, nil
	}

	resp.Fail(res.Diagnostic())
	span.SetStatus(codes.Error, "copy failed")

	result := metrics.ResultFailure
	switch {
	case res.TimedOut:
		result = metrics.ResultTimeout
	case res.Aborted:
		result = metrics.ResultAborted
	}
	metrics.ObserveFileReady(result, res.Duration)

	logger.Warn().
		Str(log.FieldEvent, "file.failed").
		Int(log.FieldExitCode, res.ExitCode).
		Bool("timed_out", res.TimedOut).
		Str("stderr", res.Stderr).
		Dur(log.FieldDuration, res.Duration).
		Msg("file installation failed")
	return resp, nil
}

// ShutdownServer fires the shutdown signal and returns at once. Repeated calls
// are no-ops.
func (s *Service) ShutdownServer(ctx context.Context, _ *ShutdownRequest) (*ShutdownResponse, error) {
	logger := log.FromContext(ctx).With().Str(log.FieldComponent, "installer").Logger()

	if s.shutdown.Fire("rpc") {
		logger.Info().Str(log.FieldEvent, "shutdown.requested").Msg("shutdown requested")
	} else {
		logger.Debug().Msg("shutdown already in progress")
	}
	return &ShutdownResponse{}, nil
}

// Close releases the registry's janitor.
func (s *Service) Close() error {
	s.registry.Stop()
	return nil
}
