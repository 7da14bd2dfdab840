package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"no roots", Config{}, "at least one root"},
		{"blank roots", Config{Roots: []string{" ", ""}}, "at least one root"},
		{"relative root", Config{Roots: []string{"var/log"}}, "must be absolute"},
		{"bad include", Config{Roots: []string{"/var/log"}, Include: []string{"[a-"}}, "invalid glob"},
		{"bad exclude", Config{Roots: []string{"/var/log"}, Exclude: []string{"{a,b"}}, "invalid glob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRootsAreCleanedAndDeduplicated(t *testing.T) {
	p, err := New(Config{Roots: []string{"/var/log/", "/srv/app", "/var/log"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"/var/log", "/srv/app"}, p.Roots())

	roots := p.Roots()
	roots[0] = "/etc"
	assert.Equal(t, "/var/log", p.Roots()[0])
}

func TestVisibility(t *testing.T) {
	p, err := New(Config{
		Roots:   []string{"/var/log", "/srv/app/logs"},
		Include: []string{"*.log", "*.log.[0-9]*", "*.{gz,zst}", "archive/**"},
		Exclude: []string{"secrets", "*.key"},
	})
	require.NoError(t, err)

	dirs := map[string]bool{
		"/var/log":                 true,
		"/var/log/nginx":           true,
		"/var/log/nginx/../apt":    true,
		"/var":                     true,
		"/":                        true,
		"/srv/app":                 true,
		"/etc":                     false,
		"/var/lib":                 false,
		"/var/log/.cache":          false,
		"/var/log/secrets":         false,
		"/var/log/nginx/secrets":   false,
		"/var/logs":                false,
		"var/log":                  false,
		"/srv/app/logs/../private": false,
	}
	for path, want := range dirs {
		assert.Equal(t, want, p.IsDirectoryVisible(path), path)
	}

	files := map[string]bool{
		"/var/log/syslog.log":        true,
		"/var/log/app.log.3":         true,
		"/var/log/app.log.3.gz":      true,
		"/var/log/archive/2023/dump": true,
		"/var/log/syslog":            false,
		"/var/log/.hidden.log":       false,
		"/var/log/.git/HEAD.log":     false,
		"/var/log/tls.key":           false,
		"/var/log/secrets/app.log":   false,
		"/etc/passwd":                false,
		"/var/app.log":               false,
		"/srv/app/logs/worker-1.log": true,
		"relative.log":               false,
	}
	for path, want := range files {
		assert.Equal(t, want, p.IsFileVisible(path), path)
	}
}

func TestHiddenEnabled(t *testing.T) {
	p, err := New(Config{Roots: []string{"/var/log"}, Hidden: true})
	require.NoError(t, err)

	assert.True(t, p.IsDirectoryVisible("/var/log/.cache"))
	assert.True(t, p.IsFileVisible("/var/log/.cache/state"))
	assert.True(t, p.IsFileVisible("/var/log/anything"))
}

func TestDenialReason(t *testing.T) {
	p, err := New(Config{Roots: []string{"/var/log"}, Exclude: []string{"private"}})
	require.NoError(t, err)

	assert.Equal(t, "path must be absolute", p.DenialReason("log"))
	assert.Equal(t, "/etc is outside of the allowed directories", p.DenialReason("/etc"))
	assert.Equal(t, "/var/log/.ssh is hidden", p.DenialReason("/var/log/.ssh"))
	assert.Equal(t, "/var/log/private is excluded by the access policy", p.DenialReason("/var/log/private"))
	assert.Empty(t, p.DenialReason("/var/log/nginx"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	content := `roots:
  - /var/log
  - /opt/service/logs
include:
  - "*.log"
exclude:
  - "*.key"
hidden: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/var/log", "/opt/service/logs"}, cfg.Roots)
	assert.Equal(t, []string{"*.log"}, cfg.Include)
	assert.Equal(t, []string{"*.key"}, cfg.Exclude)
	assert.True(t, cfg.Hidden)

	p, err := New(cfg)
	require.NoError(t, err)
	assert.True(t, p.IsFileVisible("/opt/service/logs/api.log"))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roots: [unterminated\n"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSymlinksAreResolved(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "logs")
	secret := filepath.Join(base, "secret")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nginx"), 0o755))
	require.NoError(t, os.MkdirAll(secret, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(secret, "passwd.txt"), []byte("TOPSECRET\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "nginx", "access.log"), []byte("GET /\n"), 0o644))

	links := map[string]string{
		"escape":      secret,
		"escape.log":  filepath.Join(secret, "passwd.txt"),
		"up":          base,
		"current":     filepath.Join(root, "nginx"),
		"current.log": filepath.Join(root, "nginx", "access.log"),
		"loop-a":      filepath.Join(root, "loop-b"),
		"loop-b":      filepath.Join(root, "loop-a"),
	}
	for name, target := range links {
		require.NoError(t, os.Symlink(target, filepath.Join(root, name)))
	}

	p, err := New(Config{Roots: []string{root}})
	require.NoError(t, err)

	assert.False(t, p.IsDirectoryVisible(filepath.Join(root, "escape")))
	assert.False(t, p.IsFileVisible(filepath.Join(root, "escape", "passwd.txt")))
	assert.False(t, p.IsFileVisible(filepath.Join(root, "escape.log")))
	assert.False(t, p.IsDirectoryVisible(filepath.Join(root, "up")))
	assert.False(t, p.IsFileVisible(filepath.Join(root, "loop-a")))

	assert.True(t, p.IsDirectoryVisible(filepath.Join(root, "current")))
	assert.True(t, p.IsFileVisible(filepath.Join(root, "current.log")))
	assert.True(t, p.IsFileVisible(filepath.Join(root, "nginx", "access.log")))
	assert.True(t, p.IsFileVisible(filepath.Join(root, "not-yet-written.log")))

	escape := filepath.Join(root, "escape")
	assert.Equal(t, escape+" is outside of the allowed directories", p.DenialReason(escape))
	loop := filepath.Join(root, "loop-a")
	assert.Equal(t, loop+" cannot be resolved", p.DenialReason(loop))
}

func TestSymlinkedRoot(t *testing.T) {
	base := t.TempDir()
	data := filepath.Join(base, "data")
	require.NoError(t, os.MkdirAll(data, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "app.log"), []byte("ok\n"), 0o644))
	root := filepath.Join(base, "logs")
	require.NoError(t, os.Symlink(data, root))

	p, err := New(Config{Roots: []string{root}})
	require.NoError(t, err)

	assert.Equal(t, []string{root}, p.Roots())
	assert.True(t, p.IsDirectoryVisible(root))
	assert.True(t, p.IsFileVisible(filepath.Join(root, "app.log")))
}
