// Package config holds runtime settings for the engine service.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/jaminalder/ultimate-tic-tac-toe/internal/domain"
)

// Config is the service configuration. Zero values are replaced by the
// defaults when loaded. HeartbeatInterval is in nanoseconds in JSON.
type Config struct {
	Addr              string        `json:"addr"`
	LogLevel          string        `json:"log_level"`
	LogJSON           bool          `json:"log_json"`
	DefaultDepth      int           `json:"default_depth"`
	BatchWorkers      int           `json:"batch_workers"`
	BatchLimit        int           `json:"batch_limit"`
	FeedBuffer        int           `json:"feed_buffer"`
	HeartbeatInterval time.Duration `json:"heartbeat_interval"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:              ":8080",
		LogLevel:          "info",
		DefaultDepth:      6,
		BatchWorkers:      runtime.GOMAXPROCS(0),
		BatchLimit:        64,
		FeedBuffer:        1,
		HeartbeatInterval: 15 * time.Second,
	}
}

// Load reads the JSON file at path over the defaults, then applies UTTT_*
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.fill()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("UTTT_ADDR"); ok {
		c.Addr = v
	}
	if v, ok := lookup("UTTT_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup("UTTT_LOG_JSON"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("UTTT_LOG_JSON: %w", err)
		}
		c.LogJSON = b
	}
	ints := []struct {
		key string
		dst *int
	}{
		{"UTTT_DEFAULT_DEPTH", &c.DefaultDepth},
		{"UTTT_BATCH_WORKERS", &c.BatchWorkers},
		{"UTTT_BATCH_LIMIT", &c.BatchLimit},
		{"UTTT_FEED_BUFFER", &c.FeedBuffer},
	}
	for _, e := range ints {
		if v, ok := lookup(e.key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = n
		}
	}
	if v, ok := lookup("UTTT_HEARTBEAT_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("UTTT_HEARTBEAT_INTERVAL: %w", err)
		}
		c.HeartbeatInterval = d
	}
	return nil
}

func (c *Config) fill() {
	def := Default()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.DefaultDepth == 0 {
		c.DefaultDepth = def.DefaultDepth
	}
	if c.BatchWorkers == 0 {
		c.BatchWorkers = def.BatchWorkers
	}
	if c.BatchLimit == 0 {
		c.BatchLimit = def.BatchLimit
	}
	if c.FeedBuffer == 0 {
		c.FeedBuffer = def.FeedBuffer
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = def.HeartbeatInterval
	}
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.DefaultDepth < 1 || c.DefaultDepth > domain.MaxPly {
		errs = append(errs, fmt.Errorf("default_depth %d outside 1..%d", c.DefaultDepth, domain.MaxPly))
	}
	if c.BatchWorkers < 1 {
		errs = append(errs, fmt.Errorf("batch_workers must be positive, got %d", c.BatchWorkers))
	}
	if c.BatchLimit < 1 {
		errs = append(errs, fmt.Errorf("batch_limit must be positive, got %d", c.BatchLimit))
	}
	if c.FeedBuffer < 1 {
		errs = append(errs, fmt.Errorf("feed_buffer must be positive, got %d", c.FeedBuffer))
	}
	if c.HeartbeatInterval <= 0 {
		errs = append(errs, fmt.Errorf("heartbeat_interval must be positive, got %s", c.HeartbeatInterval))
	}
	return errors.Join(errs...)
}
