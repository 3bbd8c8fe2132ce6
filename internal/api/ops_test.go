// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/installd/internal/health"
	_ "github.com/ManuGH/installd/internal/metrics"
)

func TestOpsHandler_Endpoints(t *testing.T) {
	var serving atomic.Bool
	serving.Store(true)
	hm := health.NewManager("test")
	hm.RegisterChecker(health.NewStateChecker("server", func() (string, bool) {
		if serving.Load() {
			return "serving", true
		}
		return "draining", false
	}))

	srv := httptest.NewServer(NewOpsHandler(OpsDeps{Health: hm}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	var h health.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "test", h.Version)

	resp, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	serving.Store(false)
	resp, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "installd_server_state")
}

func TestOpsHandler_RateLimited(t *testing.T) {
	h := NewOpsHandler(OpsDeps{RatePerMinute: 1})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "10.1.1.1:1000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestOpsHandler_UnknownRoute(t *testing.T) {
	w := httptest.NewRecorder()
	NewOpsHandler(OpsDeps{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v3/anything", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
