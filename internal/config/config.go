// Package config loads quill.json, the panel server's configuration file.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/quill-ui/quill/internal/errors"
)

const (
	// FileName is the name of the configuration file.
	FileName = "quill.json"

	// DefaultAddr is the default listen address.
	DefaultAddr = ":8420"
)

// Config is the complete quill.json schema.
type Config struct {
	// Addr is the listen address, e.g. ":8420".
	Addr string `json:"addr,omitempty"`

	// StaticDir serves extra assets under /static when set.
	StaticDir string `json:"staticDir,omitempty"`

	// Debug enables hook-order validation and verbose logging.
	Debug bool `json:"debug,omitempty"`

	// LogFile additionally writes JSON logs to this path when set.
	LogFile string `json:"logFile,omitempty"`

	// Session controls live-session limits.
	Session SessionConfig `json:"session,omitempty"`

	// Store selects and configures the persistence backend.
	Store StoreConfig `json:"store,omitempty"`
}

// SessionConfig controls live-session limits.
type SessionConfig struct {
	// Max is the maximum number of concurrent sessions.
	Max int `json:"max,omitempty"`

	// PingIntervalSec is the websocket keepalive interval in seconds.
	PingIntervalSec int `json:"pingIntervalSec,omitempty"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Backend is "memory" or "s3".
	Backend string `json:"backend,omitempty"`

	// Bucket is the S3 bucket name, s3 backend only.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the S3 key prefix, s3 backend only.
	Prefix string `json:"prefix,omitempty"`
}

// Default returns the configuration used when no quill.json exists.
func Default() *Config {
	return &Config{
		Addr: DefaultAddr,
		Session: SessionConfig{
			Max:             1024,
			PingIntervalSec: 30,
		},
		Store: StoreConfig{Backend: "memory"},
	}
}

// Load reads quill.json from dir, falling back to defaults when the file
// does not exist.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile reads a specific configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.New("E201").Wrap(err)
	}
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E201").
			WithDetail("%s is not valid JSON", path).
			Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants the decoder cannot express.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "", "memory":
	case "s3":
		if c.Store.Bucket == "" {
			return errors.New("E201").
				WithDetail("store.backend is s3 but store.bucket is empty").
				WithSuggestion("set store.bucket to the target S3 bucket")
		}
	default:
		return errors.Newf("E201", "unknown store backend %q", c.Store.Backend)
	}
	if c.Session.Max < 0 {
		return errors.Newf("E201", "session.max must not be negative")
	}
	if c.Session.PingIntervalSec < 0 {
		return errors.Newf("E201", "session.pingIntervalSec must not be negative")
	}
	return nil
}

// PingInterval returns the keepalive interval as a duration.
func (c *Config) PingInterval() time.Duration {
	return time.Duration(c.Session.PingIntervalSec) * time.Second
}
