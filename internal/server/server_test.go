package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhangjie25/VideoBoard-Develop/internal/infrastructure/config"
	"github.com/zhangjie25/VideoBoard-Develop/internal/testutil"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.Server.ShutdownTimeout = 2 * time.Second
	cfg.RateLimit.Enabled = false
	cfg.Logging.Development = true
	return cfg
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRoutes(t *testing.T) {
	srv, err := NewServer(testConfig(), nil, testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "One", "")))
	require.NoError(t, err)
	t.Cleanup(func() { srv.Workspace().Close() })

	for _, path := range []string{"/", "/health", "/palette", "/nodes", "/nodes/A", "/drag", "/metrics/json"} {
		w := get(t, srv.Handler(), path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), path)
	}

	w := get(t, srv.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "canvas_graph_nodes 1"))
}

func TestRateLimitFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.RequestsPerSecond = 1
	cfg.RateLimit.Burst = 1

	srv, err := NewServer(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Workspace().Close() })

	assert.Equal(t, http.StatusOK, get(t, srv.Handler(), "/").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(t, srv.Handler(), "/").Code)
}

func TestPaletteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items:\n  - kind: anchor-card\n    label: Pin\n"), 0o600))

	cfg := testConfig()
	cfg.Palette.File = path
	srv, err := NewServer(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Workspace().Close() })

	items := srv.Workspace().Palette()
	require.Len(t, items, 1)
	assert.Equal(t, "Pin", items[0].Label)

	cfg.Palette.File = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = NewServer(cfg, nil)
	assert.Error(t, err)
}

func TestRunFlushesPendingEditsOnShutdown(t *testing.T) {
	srv, err := NewServer(testConfig(), nil, testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "One", "")))
	require.NoError(t, err)

	require.NoError(t, srv.Workspace().EditText("A", "T1", "draft"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	nodes := srv.Workspace().Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, "draft", nodes[0].Tabs[0].Content.TextValue())
}
