// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ServerState reports the lifecycle state as an ordinal
	// (0 starting, 1 serving, 2 draining, 3 stopped).
	ServerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "installd_server_state",
		Help: "Lifecycle state of the installer server",
	})

	// RPCInFlight tracks handlers currently holding a dispatch slot.
	RPCInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "installd_rpc_in_flight",
		Help: "RPC handlers currently executing",
	})

	// RPCHandledTotal counts completed RPCs by method and status code.
	RPCHandledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "installd_rpc_handled_total",
		Help: "Completed RPCs by method and gRPC status code",
	}, []string{"method", "code"})

	// RPCDuration tracks handler latency including time spent waiting for a slot.
	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "installd_rpc_duration_seconds",
		Help:    "RPC handler latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

// SetServerState publishes the lifecycle ordinal.
func SetServerState(ordinal int) {
	ServerState.Set(float64(ordinal))
}
