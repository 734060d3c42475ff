package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pipeline.PollIntervalMs != 200 || cfg.Pipeline.DedupWindowMs != 600 {
		t.Fatalf("pipeline defaults: %+v", cfg.Pipeline)
	}
	if cfg.Transcription.Backend != "whisper-http" {
		t.Fatalf("backend default: %q", cfg.Transcription.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[logging]
level = "debug"

[pipeline]
dedup_window_ms = 900

[separation]
endpoint = "http://sep.internal:9000/separate"

[server]
enabled = true
port = 9090
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging.level: %q", cfg.Logging.Level)
	}
	if cfg.Pipeline.DedupWindowMs != 900 {
		t.Fatalf("dedup_window_ms: %d", cfg.Pipeline.DedupWindowMs)
	}
	// Untouched sections keep their defaults.
	if cfg.Pipeline.PollIntervalMs != 200 {
		t.Fatalf("poll_interval_ms lost default: %d", cfg.Pipeline.PollIntervalMs)
	}
	if cfg.Separation.Endpoint != "http://sep.internal:9000/separate" {
		t.Fatalf("separation.endpoint: %q", cfg.Separation.Endpoint)
	}
	if !cfg.Server.Enabled || cfg.Server.Port != 9090 {
		t.Fatalf("server: %+v", cfg.Server)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero poll interval", func(c *Config) { c.Pipeline.PollIntervalMs = 0 }},
		{"zero dedup window", func(c *Config) { c.Pipeline.DedupWindowMs = 0 }},
		{"unknown backend", func(c *Config) { c.Transcription.Backend = "carrier-pigeon" }},
		{"whisper without endpoint", func(c *Config) { c.Transcription.Endpoint = "" }},
		{"no separation endpoint", func(c *Config) { c.Separation.Endpoint = "" }},
		{"storage without path", func(c *Config) { c.Storage.Enabled = true; c.Storage.Path = "" }},
		{"server port out of range", func(c *Config) { c.Server.Enabled = true; c.Server.Port = 70000 }},
	}
	for _, c := range cases {
		cfg := Default()
		c.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", c.name)
		}
	}
}

func TestAPIKeyPrefersConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")

	tc := TranscriptionConfig{OpenAIAPIKey: "from-file"}
	if got := tc.APIKey(); got != "from-file" {
		t.Fatalf("APIKey: want=from-file got=%s", got)
	}
	tc.OpenAIAPIKey = ""
	if got := tc.APIKey(); got != "from-env" {
		t.Fatalf("APIKey: want=from-env got=%s", got)
	}
}
