// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"net"
	"strconv"
	"time"

	"github.com/ManuGH/installd/internal/transfer"
)

// Transport limits. These are fixed, not runtime-tunable.
const (
	// MaxMessageSize bounds inbound and outbound RPC messages (500 MiB).
	MaxMessageSize = 500 * 1024 * 1024

	// DispatchWorkers is the number of RPC handlers allowed to run at once.
	DispatchWorkers = 50
)

const (
	DefaultDst             = "/tmp/buck2install/"
	DefaultLogLevel        = "info"
	DefaultDrainGrace      = 1 * time.Second
	DefaultSessionTTL      = 1 * time.Hour
	DefaultOpsRatePerMin   = 600
	DefaultTracingExporter = "grpc"
)

// Config is the resolved runtime configuration.
type Config struct {
	// InstallLocation is an optional remote host; empty means local filesystem.
	InstallLocation string `yaml:"installLocation"`
	// Dst is the destination root path.
	Dst string `yaml:"dst"`
	// TCPPort is the RPC listen port (required).
	TCPPort  int    `yaml:"tcpPort"`
	LogLevel string `yaml:"logLevel"`

	Copy      CopyConfig      `yaml:"copy"`
	Server    ServerConfig    `yaml:"server"`
	Ops       OpsConfig       `yaml:"ops"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// CopyConfig controls the Transfer Executor.
type CopyConfig struct {
	Bin string `yaml:"bin"`
	// Timeout bounds a single copy; zero disables the limit.
	Timeout   time.Duration `yaml:"timeout"`
	KillGrace time.Duration `yaml:"killGrace"`
}

// ServerConfig controls the lifecycle coordinator.
type ServerConfig struct {
	// DrainGrace is how long in-flight calls may run after shutdown is requested.
	DrainGrace time.Duration `yaml:"drainGrace"`
	// SessionTTL is how long an idle install session is remembered.
	SessionTTL time.Duration `yaml:"sessionTTL"`
	// PIDFile, when set, receives the process id while serving.
	PIDFile string `yaml:"pidFile"`
}

// OpsConfig controls the optional health/metrics HTTP listener.
type OpsConfig struct {
	ListenAddr string `yaml:"listenAddr"`
	// RatePerMinute limits requests per client IP; zero disables limiting.
	RatePerMinute int `yaml:"ratePerMinute"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Dst:      DefaultDst,
		LogLevel: DefaultLogLevel,
		Copy: CopyConfig{
			Bin:       transfer.DefaultBin,
			KillGrace: transfer.DefaultKillGrace,
		},
		Server: ServerConfig{
			DrainGrace: DefaultDrainGrace,
			SessionTTL: DefaultSessionTTL,
		},
		Ops: OpsConfig{
			RatePerMinute: DefaultOpsRatePerMin,
		},
		Telemetry: TelemetryConfig{
			Exporter:     DefaultTracingExporter,
			SamplingRate: 1.0,
		},
	}
}

// Destination composes the fixed destination root from InstallLocation and Dst.
func (c Config) Destination() transfer.Destination {
	return transfer.NewDestination(c.InstallLocation, c.Dst)
}

// ListenAddr returns the RPC listen address on all interfaces.
func (c Config) ListenAddr() string {
	return net.JoinHostPort("", strconv.Itoa(c.TCPPort))
}
