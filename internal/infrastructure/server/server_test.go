package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/LogViewer/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/LogViewer/backend/internal/infrastructure/logging"
)

func testServer(t *testing.T, root string) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.RateLimit.Enabled = false
	cfg.Navigation.Roots = []string{root}

	logger, err := logging.New(logging.Config{Level: "error"})
	require.NoError(t, err)

	srv, err := newServer(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func get(t *testing.T, srv *Server, path string, query url.Values) *httptest.ResponseRecorder {
	t.Helper()
	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestServerRoutes(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.log"), []byte("INFO ok\nERROR disk full\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "quiet.log"), []byte("INFO ok\n"), 0o644))

	srv := testServer(t, root)

	t.Run("health", func(t *testing.T) {
		w := get(t, srv, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("roots", func(t *testing.T) {
		w := get(t, srv, "/api/fs/children", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Children []struct {
				Path string `json:"path"`
			} `json:"children"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Children, 1)
		assert.Equal(t, root, body.Children[0].Path)
	})

	t.Run("filtered listing", func(t *testing.T) {
		w := get(t, srv, "/api/fs/children", url.Values{"path": {root}, "text": {"ERROR"}})
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Children []struct {
				Name string `json:"name"`
			} `json:"children"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Children, 1)
		assert.Equal(t, "app.log", body.Children[0].Name)
	})

	t.Run("outside roots", func(t *testing.T) {
		outside := t.TempDir()
		w := get(t, srv, "/api/fs/children", url.Values{"path": {outside}})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("trace header", func(t *testing.T) {
		w := get(t, srv, "/api/fs/default-directory", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
	})

	t.Run("metrics", func(t *testing.T) {
		w := get(t, srv, "/metrics", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "log_viewer_http_requests_total")
	})
}

func TestNewServerRejectsInvalidConfig(t *testing.T) {
	logger, err := logging.New(logging.Config{Level: "error"})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Navigation.Roots = []string{"relative/logs"}
	_, err = newServer(cfg, logger)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Navigation.ScanWorkers = -1
	_, err = newServer(cfg, logger)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Navigation.PolicyFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = newServer(cfg, logger)
	assert.Error(t, err)
}

func TestBuildPolicyFromFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(file, []byte("roots:\n  - "+root+"\nexclude:\n  - \"*.key\"\n"), 0o644))

	p, err := buildPolicy(config.NavigationConfig{PolicyFile: file, Roots: []string{"/"}})
	require.NoError(t, err)
	assert.Equal(t, []string{root}, p.Roots())
	assert.False(t, p.IsFileVisible(filepath.Join(root, "tls.key")))
	assert.True(t, p.IsFileVisible(filepath.Join(root, "app.log")))
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := testServer(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSymlinkOutsideRootIsDenied(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "logs")
	secret := filepath.Join(base, "secret")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.MkdirAll(secret, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(secret, "passwd.txt"), []byte("TOPSECRET\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.log"), []byte("INFO ok\n"), 0o644))
	require.NoError(t, os.Symlink(secret, filepath.Join(root, "link")))
	require.NoError(t, os.Symlink(filepath.Join(secret, "passwd.txt"), filepath.Join(root, "passwd.log")))

	srv := testServer(t, root)

	w := get(t, srv, "/api/fs/children", url.Values{"path": {filepath.Join(root, "link")}, "text": {"TOPSECRET"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "passwd.txt")

	w = get(t, srv, "/api/fs/children", url.Values{"path": {root}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "app.log")
	assert.NotContains(t, w.Body.String(), "passwd.log")
	assert.NotContains(t, w.Body.String(), `"name":"link"`)

	w = get(t, srv, "/api/fs/find", url.Values{"path": {root}, "text": {"TOPSECRET"}, "depth": {"3"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "passwd")
}
