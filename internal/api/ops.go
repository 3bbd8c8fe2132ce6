// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the ops HTTP endpoints of the installer: liveness,
// readiness and Prometheus metrics.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/installd/internal/api/middleware"
	"github.com/ManuGH/installd/internal/health"
)

// OpsDeps contains what the ops router serves.
type OpsDeps struct {
	Health *health.Manager
	// Metrics defaults to the default Prometheus registry handler.
	Metrics http.Handler
	// RatePerMinute limits requests per client IP; zero disables limiting.
	RatePerMinute int
	// TracingService enables otelhttp spans under this service name.
	TracingService string
}

// NewOpsHandler builds the ops router.
func NewOpsHandler(deps OpsDeps) http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableMetrics:  true,
		TracingService: deps.TracingService,
		RatePerMinute:  deps.RatePerMinute,
	})

	hm := deps.Health
	if hm == nil {
		hm = health.NewManager("")
	}
	metricsHandler := deps.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r.Get("/healthz", hm.ServeHealth)
	r.Get("/readyz", hm.ServeReady)
	r.Method(http.MethodGet, "/metrics", metricsHandler)
	return r
}
