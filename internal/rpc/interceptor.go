// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package rpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/ManuGH/installd/internal/log"
	"github.com/ManuGH/installd/internal/metrics"
	"github.com/ManuGH/installd/internal/telemetry"
)

// RequestIDHeader is the metadata key a caller may use to supply its own
// request id.
const RequestIDHeader = "x-request-id"

// dispatchInterceptor bounds the number of handlers running at once and
// attaches a request id, a request-scoped logger and metrics to every call.
// Calls beyond the limit wait for a free slot or for their context to end.
func dispatchInterceptor(sem *semaphore.Weighted, logger zerolog.Logger) grpc.UnaryServerInterceptor {
	tracer := telemetry.Tracer("installd/rpc")
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		start := time.Now()
		requestID := requestIDFrom(ctx)

		ctx = log.ContextWithRequestID(ctx, requestID)
		ctx, span := tracer.Start(ctx, info.FullMethod,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(telemetry.RPCAttributes(info.FullMethod, requestID)...),
		)
		defer span.End()

		reqLogger := log.WithTraceContext(ctx).With().
			Str(log.FieldMethod, info.FullMethod).
			Logger()
		ctx = reqLogger.WithContext(ctx)

		callLogger := logger.With().
			Str(log.FieldRequestID, requestID).
			Str(log.FieldMethod, info.FullMethod).
			Logger()

		defer func() {
			code := status.Code(err)
			if code != codes.OK {
				span.SetStatus(otelcodes.Error, code.String())
			}
			metrics.RPCHandledTotal.WithLabelValues(info.FullMethod, code.String()).Inc()
			metrics.RPCDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())

			ev := callLogger.Debug()
			if code != codes.OK {
				ev = callLogger.Warn().Err(err)
			}
			ev.Str("code", code.String()).
				Dur(log.FieldDuration, time.Since(start)).
				Msg("rpc completed")
		}()

		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, status.FromContextError(err).Err()
		}
		defer sem.Release(1)

		metrics.RPCInFlight.Inc()
		defer metrics.RPCInFlight.Dec()

		resp, err = handler(ctx, req)
		return resp, toStatus(err)
	}
}

// toStatus maps handler errors onto gRPC status codes. Errors that already
// carry a status pass through; anything else is an internal fault of that
// single call.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if ctxErr := status.FromContextError(err); ctxErr.Code() != codes.Unknown {
		return ctxErr.Err()
	}
	return status.Error(codes.Internal, err.Error())
}

func requestIDFrom(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(RequestIDHeader); len(vals) > 0 && vals[0] != "" {
			return vals[0]
		}
	}
	return uuid.NewString()
}
