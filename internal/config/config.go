package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// AppName names the per-user config and state directories.
const AppName = "zeromail"

// Backend modes selectable from the config file or --mode.
const (
	ModeFixture = "fixture"
	ModeGmail   = "gmail"
)

// Config holds all zeromail configuration.
type Config struct {
	Mode    string        `toml:"mode"`
	Inbox   InboxConfig   `toml:"inbox"`
	Fixture FixtureConfig `toml:"fixture"`
	Gmail   GmailConfig   `toml:"gmail"`
}

// InboxConfig controls how much of the inbox is fetched.
type InboxConfig struct {
	MaxResults       int `toml:"max_results"`
	FetchConcurrency int `toml:"fetch_concurrency"`
}

// FixtureConfig tunes the in-memory demo backend. Latency, when set,
// replaces all three per-operation delays.
type FixtureConfig struct {
	Latency     string `toml:"latency"`
	ListLatency string `toml:"list_latency"`
	GetLatency  string `toml:"get_latency"`
	SendLatency string `toml:"send_latency"`
}

// FixtureDelays are the parsed per-operation fixture delays.
type FixtureDelays struct {
	List time.Duration
	Get  time.Duration
	Send time.Duration
}

// GmailConfig holds Gmail OAuth settings.
// Client credentials may also come from env vars or the OS keyring.
type GmailConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	CallbackAddr string `toml:"callback_addr"`
	AuthTimeout  string `toml:"auth_timeout"`
}

func defaults() Config {
	return Config{
		Mode: ModeFixture,
		Inbox: InboxConfig{
			MaxResults:       50,
			FetchConcurrency: 5,
		},
		Fixture: FixtureConfig{
			ListLatency: "300ms",
			GetLatency:  "200ms",
			SendLatency: "500ms",
		},
		Gmail: GmailConfig{
			CallbackAddr: "localhost:3000",
			AuthTimeout:  "5m",
		},
	}
}

// Load reads config from path. If path is empty, returns defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be clamped to something sensible.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeFixture, ModeGmail:
	default:
		return fmt.Errorf("invalid mode %q (use %s or %s)", c.Mode, ModeFixture, ModeGmail)
	}
	if _, err := c.FixtureDelays(); err != nil {
		return err
	}
	if _, err := c.AuthTimeout(); err != nil {
		return err
	}
	return nil
}

// FixtureDelays parses the fixture latencies. Empty values mean no delay.
func (c *Config) FixtureDelays() (FixtureDelays, error) {
	if c.Fixture.Latency != "" {
		d, err := parseDuration("fixture.latency", c.Fixture.Latency)
		if err != nil {
			return FixtureDelays{}, err
		}
		return FixtureDelays{List: d, Get: d, Send: d}, nil
	}

	var out FixtureDelays
	var err error
	if out.List, err = parseDuration("fixture.list_latency", c.Fixture.ListLatency); err != nil {
		return FixtureDelays{}, err
	}
	if out.Get, err = parseDuration("fixture.get_latency", c.Fixture.GetLatency); err != nil {
		return FixtureDelays{}, err
	}
	if out.Send, err = parseDuration("fixture.send_latency", c.Fixture.SendLatency); err != nil {
		return FixtureDelays{}, err
	}
	return out, nil
}

// AuthTimeout parses gmail.auth_timeout. An empty value means no timeout.
func (c *Config) AuthTimeout() (time.Duration, error) {
	return parseDuration("gmail.auth_timeout", c.Gmail.AuthTimeout)
}

func parseDuration(key, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}

// ConfigDir returns the zeromail config directory path.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultPath returns the config file used when --config is not given.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}
