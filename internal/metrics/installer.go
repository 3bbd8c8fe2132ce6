// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics holds the Prometheus collectors exported by installd.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// File transfer outcomes used as the result label.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultTimeout = "timeout"
	ResultAborted = "aborted"
	ResultError   = "error"
)

var (
	// InstallRequestsTotal counts Install calls (session opens).
	InstallRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "installd_install_requests_total",
		Help: "Total number of Install requests received",
	})

	// DeclaredFilesTotal counts file names announced through Install.
	DeclaredFilesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "installd_declared_files_total",
		Help: "Total number of files declared by Install requests",
	})

	// FileReadyTotal counts FileReady outcomes.
	FileReadyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "installd_file_ready_total",
		Help: "Total number of FileReady requests by result",
	}, []string{"result"})

	// CopyDuration tracks wall time spent in the copy tool.
	CopyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "installd_copy_duration_seconds",
		Help:    "Duration of copy tool invocations",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"result"})

	// SessionsActive reports the number of install sessions tracked by the registry.
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "installd_sessions_active",
		Help: "Install sessions currently tracked by the session registry",
	})
)

// IncInstallRequest records an Install call that declared n files.
func IncInstallRequest(n int) {
	InstallRequestsTotal.Inc()
	if n > 0 {
		DeclaredFilesTotal.Add(float64(n))
	}
}

// ObserveFileReady records a FileReady outcome and, when a copy ran, its duration.
func ObserveFileReady(result string, duration time.Duration) {
	FileReadyTotal.WithLabelValues(result).Inc()
	if duration > 0 {
		CopyDuration.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// SetSessionsActive publishes the current registry size.
func SetSessionsActive(n int) {
	SessionsActive.Set(float64(n))
}
