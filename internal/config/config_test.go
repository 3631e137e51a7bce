package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uttt.json")
	if err := os.WriteFile(path, []byte(`{"addr":":9000","default_depth":4}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.DefaultDepth != 4 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.BatchLimit != Default().BatchLimit {
		t.Fatalf("expected default batch limit, got %d", cfg.BatchLimit)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		"UTTT_ADDR":               "127.0.0.1:1",
		"UTTT_DEFAULT_DEPTH":      "9",
		"UTTT_LOG_JSON":           "true",
		"UTTT_HEARTBEAT_INTERVAL": "2s",
	}
	cfg := Default()
	err := cfg.applyEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok })
	if err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Addr != "127.0.0.1:1" || cfg.DefaultDepth != 9 || !cfg.LogJSON || cfg.HeartbeatInterval != 2*time.Second {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestEnvRejectsBadNumbers(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(func(k string) (string, bool) {
		if k == "UTTT_BATCH_WORKERS" {
			return "many", true
		}
		return "", false
	})
	if err == nil || !strings.Contains(err.Error(), "UTTT_BATCH_WORKERS") {
		t.Fatalf("expected UTTT_BATCH_WORKERS error, got %v", err)
	}
}

func TestValidateDepthBounds(t *testing.T) {
	for _, d := range []int{-1, 33} {
		cfg := Default()
		cfg.DefaultDepth = d
		if err := cfg.Validate(); err == nil {
			t.Fatalf("expected depth %d to be rejected", d)
		}
	}
}
