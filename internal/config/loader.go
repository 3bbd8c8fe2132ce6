// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvInstallLocation  = "INSTALLD_INSTALL_LOCATION"
	EnvDst              = "INSTALLD_DST"
	EnvTCPPort          = "INSTALLD_TCP_PORT"
	EnvLogLevel         = "INSTALLD_LOG_LEVEL"
	EnvRsyncBin         = "INSTALLD_RSYNC_BIN"
	EnvCopyTimeout      = "INSTALLD_COPY_TIMEOUT"
	EnvCopyKillGrace    = "INSTALLD_COPY_KILL_GRACE"
	EnvDrainGrace       = "INSTALLD_DRAIN_GRACE"
	EnvSessionTTL       = "INSTALLD_SESSION_TTL"
	EnvPIDFile          = "INSTALLD_PID_FILE"
	EnvOpsListen        = "INSTALLD_OPS_LISTEN"
	EnvOpsRatePerMinute = "INSTALLD_OPS_RATE_PER_MINUTE"
	EnvTracingEnabled   = "INSTALLD_TRACING_ENABLED"
	EnvTracingExporter  = "INSTALLD_TRACING_EXPORTER"
	EnvTracingEndpoint  = "INSTALLD_TRACING_ENDPOINT"
	EnvTracingSampling  = "INSTALLD_TRACING_SAMPLING_RATE"
)

// Loader handles configuration loading with precedence ENV > File > Defaults.
type Loader struct {
	configPath string
}

// NewLoader creates a new configuration loader. An empty path skips the file layer.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: strings.TrimSpace(configPath)}
}

// Load resolves defaults, the optional YAML file and the environment.
// Flags are applied by the caller (see Args.Apply) and validation runs last.
func (l *Loader) Load() (Config, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnv(&cfg)
	return cfg, nil
}

// loadFile decodes a YAML file over cfg with STRICT parsing.
// Unknown fields cause an error to prevent silent misconfiguration.
func (l *Loader) loadFile(path string, cfg *Config) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) mergeEnv(cfg *Config) {
	cfg.InstallLocation = ParseString(EnvInstallLocation, cfg.InstallLocation)
	cfg.Dst = ParseString(EnvDst, cfg.Dst)
	cfg.TCPPort = ParseInt(EnvTCPPort, cfg.TCPPort)
	cfg.LogLevel = ParseString(EnvLogLevel, cfg.LogLevel)

	cfg.Copy.Bin = ParseString(EnvRsyncBin, cfg.Copy.Bin)
	cfg.Copy.Timeout = ParseDuration(EnvCopyTimeout, cfg.Copy.Timeout)
	cfg.Copy.KillGrace = ParseDuration(EnvCopyKillGrace, cfg.Copy.KillGrace)

	cfg.Server.DrainGrace = ParseDuration(EnvDrainGrace, cfg.Server.DrainGrace)
	cfg.Server.SessionTTL = ParseDuration(EnvSessionTTL, cfg.Server.SessionTTL)
	cfg.Server.PIDFile = ParseString(EnvPIDFile, cfg.Server.PIDFile)

	cfg.Ops.ListenAddr = ParseString(EnvOpsListen, cfg.Ops.ListenAddr)
	cfg.Ops.RatePerMinute = ParseInt(EnvOpsRatePerMinute, cfg.Ops.RatePerMinute)

	cfg.Telemetry.Enabled = ParseBool(EnvTracingEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = ParseString(EnvTracingExporter, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = ParseString(EnvTracingEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = ParseFloat(EnvTracingSampling, cfg.Telemetry.SamplingRate)
}
