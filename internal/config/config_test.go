package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TADA_CONFIG", "TADA_ADDR", "TADA_LISTEN", "TADA_SERVER_TOKEN", "TADA_STORE",
		"TADA_DB", "TADA_LOG_LEVEL", "TADA_LOG_FORMAT", "TADA_LOG_FILE", "TADA_THEME", "TADA_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
}

// chdir switches the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://"+DefaultAddr, cfg.Client.Addr)
	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultStoreKind, cfg.Store.Kind)
	assert.Equal(t, "db.sqlite", filepath.Base(cfg.Store.Path))
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultTheme, cfg.UI.Theme)
	assert.Zero(t, cfg.Client.Timeout)
	assert.Empty(t, cfg.Source)
}

func TestLoadTOML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	content := `
[client]
addr = "http://10.0.0.2:9000"
timeout = "5s"

[store]
kind = "json"
path = "/tmp/todos.json"

[ui]
theme = "neon"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2:9000", cfg.Client.Addr)
	assert.Equal(t, 5*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "json", cfg.Store.Kind)
	assert.Equal(t, "/tmp/todos.json", cfg.Store.Path)
	assert.Equal(t, "neon", cfg.UI.Theme)
	assert.Equal(t, DefaultAddr, cfg.Server.Addr, "unset keys keep defaults")
	assert.Equal(t, DefaultConfigFile, cfg.Source)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "tada.yaml")
	content := "server:\n  addr: 0.0.0.0:8080\n  token: s3cret\nlog:\n  level: debug\n  format: json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, "s3cret", cfg.Server.Token)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[client]\naddr = \"http://file\"\n"), 0o644))
	t.Setenv("TADA_CONFIG", path)
	t.Setenv("TADA_ADDR", "http://env:1")
	t.Setenv("TADA_TIMEOUT", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://env:1", cfg.Client.Addr)
	assert.Equal(t, 3*time.Second, cfg.Client.Timeout)
	assert.Equal(t, path, cfg.Source)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{"missing explicit file", "", nil},
		{"bad toml", "[client\n", nil},
		{"bad store kind", "[store]\nkind = \"redis\"\n", nil},
		{"bad log format", "[log]\nformat = \"xml\"\n", nil},
		{"bad timeout env", "", map[string]string{"TADA_TIMEOUT": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "tada.toml")
			if tt.content != "" || tt.env != nil {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestClientBase(t *testing.T) {
	cfg := Default()
	cfg.Client.Addr = "localhost:7420/"
	assert.Equal(t, "http://localhost:7420", cfg.ClientBase())
	cfg.Client.Addr = "https://todo.example"
	assert.Equal(t, "https://todo.example", cfg.ClientBase())
}
