package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFrom_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".tunneldesk", "config.yaml")

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultProfileName, cfg.ActiveProfile)
	assert.Equal(t, DefaultBackendURL, cfg.Current().BackendURL)
	assert.FileExists(t, path)

	wsURL, err := cfg.WebSocketURL()
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:12346/ws", wsURL)
}

func TestLoadConfigFrom_ReadsYAMLAndFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
active_profile: remote
profiles:
  remote:
    backend_url: https://desk.example.com/
    max_retries: 5
    reconnect_delay: 10s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)

	p := cfg.Current()
	assert.Equal(t, 5, p.MaxRetries)
	assert.Equal(t, 10*time.Second, p.ReconnectDelay)
	assert.Equal(t, DefaultLogBufferSize, p.LogBufferSize)
	assert.Equal(t, DefaultMetricsURL, p.MetricsURL)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)

	wsURL, err := cfg.WebSocketURL()
	require.NoError(t, err)
	assert.Equal(t, "wss://desk.example.com/ws", wsURL)
}

func TestLoadConfigFrom_UnknownActiveProfileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
active_profile: gone
profiles:
  beta:
    backend_url: ws://b:1
  alpha:
    backend_url: ws://a:1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "alpha", cfg.ActiveProfile)
}

func TestLoadConfigFrom_NoProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("active_profile: x\n"), 0600))

	_, err := LoadConfigFrom(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)

	cfg.Profiles["lab"] = Profile{BackendURL: "ws://lab:9000"}
	require.NoError(t, cfg.Use("lab"))
	require.NoError(t, cfg.Save())

	reloaded, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "lab", reloaded.ActiveProfile)
	assert.Equal(t, "ws://lab:9000", reloaded.Current().BackendURL)
	assert.Equal(t, []string{"default", "lab"}, reloaded.ProfileNames())

	assert.Error(t, reloaded.Use("missing"))
}

func TestSocketURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"ws://127.0.0.1:12346", "ws://127.0.0.1:12346/ws", false},
		{"http://localhost:8080/", "ws://localhost:8080/ws", false},
		{"https://desk.example.com/base", "wss://desk.example.com/base/ws", false},
		{"wss://desk.example.com/ws", "wss://desk.example.com/ws", false},
		{"ftp://nope", "", true},
		{"ws://", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := SocketURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadConfig_UsesHomeOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TUNNELDESK_HOME", dir)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, ".tunneldesk", "config.yaml"))

	got, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".tunneldesk"), got)
	assert.NotNil(t, cfg)
}
