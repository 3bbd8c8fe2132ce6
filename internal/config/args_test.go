// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs_KnownFlags(t *testing.T) {
	args, err := ParseArgs("installd", []string{"--tcp-port", "50051", "--dst", "/tmp/out", "--install-location", "host1"})
	require.NoError(t, err)

	cfg := Defaults()
	require.NoError(t, args.Apply(&cfg))
	assert.Equal(t, 50051, cfg.TCPPort)
	assert.Equal(t, "/tmp/out", cfg.Dst)
	assert.Equal(t, "host1", cfg.InstallLocation)
	assert.Equal(t, "host1:/tmp/out", cfg.Destination().Root())
}

func TestParseArgs_IgnoresUnknownFlags(t *testing.T) {
	args, err := ParseArgs("installd", []string{
		"--device", "emulator-5554",
		"--tcp-port=6000",
		"--verbose",
		"-x",
		"--dst", "/tmp/y",
	})
	require.NoError(t, err)

	cfg := Defaults()
	require.NoError(t, args.Apply(&cfg))
	assert.Equal(t, 6000, cfg.TCPPort)
	assert.Equal(t, "/tmp/y", cfg.Dst)
}

func TestArgs_ApplyOnlyChangedFlags(t *testing.T) {
	args, err := ParseArgs("installd", []string{"--tcp-port", "1234"})
	require.NoError(t, err)

	cfg := Defaults()
	cfg.Dst = "/from/env"
	cfg.InstallLocation = "envhost"
	require.NoError(t, args.Apply(&cfg))
	assert.Equal(t, "/from/env", cfg.Dst, "flag default must not override env")
	assert.Equal(t, "envhost", cfg.InstallLocation)
}

func TestArgs_InvalidPort(t *testing.T) {
	args, err := ParseArgs("installd", []string{"--tcp-port", "http"})
	require.NoError(t, err)

	cfg := Defaults()
	err = args.Apply(&cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPort))
}

func TestLoad_RequiresPort(t *testing.T) {
	_, _, err := Load("installd", []string{"--dst", "/tmp/out"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingPort))
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv(EnvDst, "/env/dst")
	t.Setenv(EnvTCPPort, "7000")

	cfg, _, err := Load("installd", []string{"--tcp-port", "7001"})
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.TCPPort)
	assert.Equal(t, "/env/dst", cfg.Dst)
}

func TestLoad_HelpShortCircuits(t *testing.T) {
	_, args, err := Load("installd", []string{"-h"})
	require.NoError(t, err)
	require.True(t, args.Help)

	var buf bytes.Buffer
	args.Usage(&buf)
	assert.Contains(t, buf.String(), "--tcp-port")
	assert.Contains(t, buf.String(), "--install-location")
}
