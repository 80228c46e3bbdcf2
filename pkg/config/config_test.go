package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fieldsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoad tests reading a full config file over the defaults
func TestLoad(t *testing.T) {
	path := writeConfig(t, `
backend_url: https://ops.example.org
backend_token: secret-token
feed_url: wss://ops.example.org/feed
team_id: 7
actor_id: user-9
data_dir: /var/lib/fieldsync
listen_addr: "localhost:9191"
coalesce_window: 900ms
reconnect_delay: 10s
log_level: debug
log_json: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://ops.example.org", cfg.BackendURL)
	assert.Equal(t, "wss://ops.example.org/feed", cfg.FeedURL)
	assert.Equal(t, int64(7), cfg.TeamID)
	assert.Equal(t, "user-9", cfg.ActorID)
	assert.Equal(t, "localhost:9191", cfg.ListenAddr)
	assert.Equal(t, Duration(900*time.Millisecond), cfg.CoalesceWindow)
	assert.Equal(t, Duration(10*time.Second), cfg.ReconnectDelay)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogJSON)

	// derived defaults
	assert.Equal(t, "secret-token", cfg.FeedToken)
	assert.Equal(t, "https://ops.example.org", cfg.ProbeURL)
	assert.Equal(t, Duration(30*time.Second), cfg.ProbeInterval)
}

// TestLoadMinimal tests that only the required fields are needed
func TestLoadMinimal(t *testing.T) {
	path := writeConfig(t, `
backend_url: https://ops.example.org
feed_url: wss://ops.example.org/feed
team_id: 7
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "localhost:9090", cfg.ListenAddr)
}

// TestLoadMissingFile tests the error for an absent config file
func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// TestLoadBadYAML tests the error for an unparsable file
func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "backend_url: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

// TestValidate tests the required-field and range checks
func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			BackendURL: "https://ops.example.org",
			FeedURL:    "wss://ops.example.org/feed",
			TeamID:     7,
			DataDir:    "/var/lib/fieldsync",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:    "missing backend_url",
			mutate:  func(c *Config) { c.BackendURL = "" },
			wantErr: "backend_url is required",
		},
		{
			name:    "missing feed_url",
			mutate:  func(c *Config) { c.FeedURL = "" },
			wantErr: "feed_url is required",
		},
		{
			name:    "zero team_id",
			mutate:  func(c *Config) { c.TeamID = 0 },
			wantErr: "team_id must be a positive team identifier",
		},
		{
			name:    "negative team_id",
			mutate:  func(c *Config) { c.TeamID = -3 },
			wantErr: "team_id must be a positive team identifier",
		},
		{
			name:    "missing data_dir",
			mutate:  func(c *Config) { c.DataDir = "" },
			wantErr: "data_dir is required",
		},
		{
			name:    "negative coalesce_window",
			mutate:  func(c *Config) { c.CoalesceWindow = Duration(-time.Second) },
			wantErr: "coalesce_window must not be negative",
		},
		{
			name:    "negative reconnect_delay",
			mutate:  func(c *Config) { c.ReconnectDelay = Duration(-time.Second) },
			wantErr: "reconnect_delay must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

// TestValidateFeedTokenFallback tests that the feed token inherits the
// backend token when unset
func TestValidateFeedTokenFallback(t *testing.T) {
	cfg := &Config{
		BackendURL:   "https://ops.example.org",
		BackendToken: "secret",
		FeedURL:      "wss://ops.example.org/feed",
		TeamID:       7,
		DataDir:      "/var/lib/fieldsync",
	}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "secret", cfg.FeedToken)

	cfg.FeedToken = "feed-only"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "feed-only", cfg.FeedToken)
}
