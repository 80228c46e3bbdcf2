package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "900ms" or "10s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("duration must be a string like \"900ms\": %v", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %v", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds the runtime settings for a fieldsync agent.
type Config struct {
	// BackendURL is the base URL of the incident backend, e.g. https://ops.example.org.
	BackendURL string `yaml:"backend_url"`
	// BackendToken is the bearer token presented on backend requests.
	BackendToken string `yaml:"backend_token"`
	// FeedURL is the websocket endpoint of the change feed.
	FeedURL string `yaml:"feed_url"`
	// FeedToken overrides BackendToken for the feed connection when set.
	FeedToken string `yaml:"feed_token,omitempty"`

	// TeamID is the responder team this agent tracks.
	TeamID int64 `yaml:"team_id"`
	// ActorID identifies the local user so self-originated writes can be attributed.
	ActorID string `yaml:"actor_id,omitempty"`

	// DataDir holds the durable snapshot cache.
	DataDir string `yaml:"data_dir"`
	// ListenAddr serves /metrics and /health, empty disables the listener.
	ListenAddr string `yaml:"listen_addr,omitempty"`

	// CoalesceWindow bounds how often feed activity may trigger a reconcile.
	CoalesceWindow Duration `yaml:"coalesce_window,omitempty"`
	// ReconnectDelay is the fixed pause between feed reconnect attempts.
	ReconnectDelay Duration `yaml:"reconnect_delay,omitempty"`

	// ProbeURL is checked to decide online/offline. Defaults to BackendURL.
	ProbeURL string `yaml:"probe_url,omitempty"`
	// ProbeInterval is how often connectivity is re-checked.
	ProbeInterval Duration `yaml:"probe_interval,omitempty"`

	LogLevel string `yaml:"log_level,omitempty"`
	LogJSON  bool   `yaml:"log_json,omitempty"`
}

// Default returns a Config with the stock tunables filled in.
func Default() *Config {
	return &Config{
		DataDir:       defaultDataDir(),
		ListenAddr:    "localhost:9090",
		ProbeInterval: Duration(30 * time.Second),
		LogLevel:      "info",
	}
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %v", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and normalizes derived ones.
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend_url is required")
	}
	if c.FeedURL == "" {
		return fmt.Errorf("feed_url is required")
	}
	if c.TeamID <= 0 {
		return fmt.Errorf("team_id must be a positive team identifier")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.CoalesceWindow < 0 {
		return fmt.Errorf("coalesce_window must not be negative")
	}
	if c.ReconnectDelay < 0 {
		return fmt.Errorf("reconnect_delay must not be negative")
	}
	if c.FeedToken == "" {
		c.FeedToken = c.BackendToken
	}
	if c.ProbeURL == "" {
		c.ProbeURL = c.BackendURL
	}
	if c.ProbeInterval <= 0 {
		c.ProbeInterval = Duration(30 * time.Second)
	}
	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/var/lib/fieldsync"
	}
	return home + "/.fieldsync"
}
