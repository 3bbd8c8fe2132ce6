// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build unix

package daemon

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/installd/internal/config"
	"github.com/ManuGH/installd/internal/installer"
	"github.com/ManuGH/installd/internal/rpc"
)

// cpTool writes a copy tool that accepts the rsync argument shape used for
// local destinations and copies with cp.
func cpTool(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "fake-rsync")
	script := "#!/bin/sh\n[ \"$1\" = \"-aL\" ] && shift\nexec cp -L \"$1\" \"$2\"\n"
	require.NoError(t, os.WriteFile(p, []byte(script), 0o755))
	return p
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.TCPPort = 0
	cfg.Dst = t.TempDir()
	cfg.Copy.Bin = cpTool(t)
	cfg.Ops.ListenAddr = "127.0.0.1:0"
	cfg.Server.DrainGrace = 200 * time.Millisecond
	return cfg
}

func TestDaemon_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	d, err := New(ctx, cfg, "test")
	require.NoError(t, err)
	done := start(t, ctx, d.Coordinator)

	port := d.Coordinator.Addr().(*net.TCPAddr).Port
	client, err := rpc.Dial(fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, err)
	defer client.Close()

	callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	installResp, err := client.Install(callCtx, &installer.InstallRequest{
		InstallID: "install-1",
		Files:     []string{"app/hello.txt"},
	})
	require.NoError(t, err)
	assert.Equal(t, "install-1", installResp.InstallID)

	src := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0o644))

	resp, err := client.FileReady(callCtx, &installer.FileReadyRequest{
		InstallID: "install-1",
		Name:      "app/hello.txt",
		Path:      src,
	})
	require.NoError(t, err)
	assert.False(t, resp.HasError(), "unexpected error detail: %+v", resp.ErrorDetail)

	got, err := os.ReadFile(filepath.Join(cfg.Dst, "app", "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	resp, err = client.FileReady(callCtx, &installer.FileReadyRequest{
		InstallID: "install-1",
		Name:      "missing.txt",
		Path:      filepath.Join(t.TempDir(), "does-not-exist"),
	})
	require.NoError(t, err)
	require.True(t, resp.HasError())
	assert.NotEmpty(t, resp.ErrorDetail.Message)
	assert.NoFileExists(t, filepath.Join(cfg.Dst, "missing.txt"))

	opsURL := "http://" + d.Coordinator.OpsAddr().String()
	readyResp, err := http.Get(opsURL + "/readyz")
	require.NoError(t, err)
	readyResp.Body.Close()
	assert.Equal(t, http.StatusOK, readyResp.StatusCode)

	_, err = client.ShutdownServer(callCtx)
	require.NoError(t, err)
	_, err = client.ShutdownServer(callCtx)
	if err != nil {
		// The server may already be draining.
		t.Logf("second shutdown: %v", err)
	}

	require.NoError(t, waitRun(t, done))
	assert.Equal(t, StateStopped, d.Coordinator.State())
	assert.Equal(t, "rpc", d.Signal.Reason())
}

func TestDaemon_BindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig(t)
	cfg.Ops.ListenAddr = ""
	cfg.TCPPort = ln.Addr().(*net.TCPAddr).Port

	d, err := New(context.Background(), cfg, "test")
	require.NoError(t, err)
	assert.ErrorIs(t, d.Run(context.Background()), ErrBind)
}
