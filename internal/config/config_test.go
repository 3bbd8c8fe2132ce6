// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "installd.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestDestinationComposition(t *testing.T) {
	cfg := Defaults()
	cfg.InstallLocation = "host1"
	cfg.Dst = "/tmp/x"
	assert.Equal(t, "host1:/tmp/x", cfg.Destination().Root())

	cfg.InstallLocation = ""
	assert.Equal(t, "/tmp/x", cfg.Destination().Root())
}

func TestListenAddr(t *testing.T) {
	cfg := Defaults()
	cfg.TCPPort = 50051
	assert.Equal(t, ":50051", cfg.ListenAddr())
}

func TestLoader_DefaultsOnly(t *testing.T) {
	cfg, err := NewLoader("").Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultDst, cfg.Dst)
	assert.Equal(t, "", cfg.InstallLocation)
	assert.Equal(t, DefaultDrainGrace, cfg.Server.DrainGrace)
	assert.Equal(t, "rsync", cfg.Copy.Bin)
	assert.Zero(t, cfg.Copy.Timeout)
}

func TestLoader_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
installLocation: devserver
dst: /srv/install
tcpPort: 4000
copy:
  timeout: 30s
server:
  drainGrace: 3s
telemetry:
  enabled: true
  exporter: http
  endpoint: localhost:4318
`)
	t.Setenv(EnvTCPPort, "5000")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "devserver", cfg.InstallLocation)
	assert.Equal(t, "/srv/install", cfg.Dst)
	assert.Equal(t, 5000, cfg.TCPPort, "environment overrides file")
	assert.Equal(t, 30*time.Second, cfg.Copy.Timeout)
	assert.Equal(t, 3*time.Second, cfg.Server.DrainGrace)
	assert.Equal(t, DefaultSessionTTL, cfg.Server.SessionTTL, "unset keys keep defaults")
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "http", cfg.Telemetry.Exporter)
}

func TestLoader_StrictUnknownField(t *testing.T) {
	path := writeConfig(t, "tcpPort: 1\nunknownKey: true\n")
	_, err := NewLoader(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict config parse error")
}

func TestLoader_RejectsNonYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "installd.json")
	require.NoError(t, os.WriteFile(p, []byte("{}"), 0o600))
	_, err := NewLoader(p).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestLoader_EmptyFile(t *testing.T) {
	cfg, err := NewLoader(writeConfig(t, "")).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultDst, cfg.Dst)
}

func TestLoader_MultipleDocuments(t *testing.T) {
	_, err := NewLoader(writeConfig(t, "tcpPort: 1\n---\ntcpPort: 2\n")).Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Defaults()
	valid.TCPPort = 50051

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.TCPPort = 0 }, wantErr: ErrMissingPort},
		{name: "port out of range", mutate: func(c *Config) { c.TCPPort = 70000 }, wantErr: ErrInvalidPort},
		{name: "empty dst", mutate: func(c *Config) { c.Dst = "  " }, wantErr: ErrMissingDst},
		{name: "negative timeout", mutate: func(c *Config) { c.Copy.Timeout = -time.Second }, wantErr: ErrInvalidDuration},
		{
			name: "bad exporter",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Exporter = "zipkin"
			},
			wantErr: ErrInvalidTelemetry,
		},
		{
			name:   "disabled telemetry ignores exporter",
			mutate: func(c *Config) { c.Telemetry.Exporter = "zipkin" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}
