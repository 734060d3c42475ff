// Package config loads the process configuration from a TOML file. The
// per-session pipeline options (model names, window geometry) arrive over
// the protocol in the init message; this file holds everything else.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration.
type Config struct {
	Logging       LoggingConfig       `toml:"logging"`
	Pipeline      PipelineConfig      `toml:"pipeline"`
	Separation    SeparationConfig    `toml:"separation"`
	Transcription TranscriptionConfig `toml:"transcription"`
	Storage       StorageConfig       `toml:"storage"`
	Server        ServerConfig        `toml:"server"`
}

// LoggingConfig configures the logger. Logs go to stderr; stdout carries
// the message protocol.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// PipelineConfig holds pipeline tunables.
type PipelineConfig struct {
	PollIntervalMs int `toml:"poll_interval_ms"`
	DedupWindowMs  int `toml:"dedup_window_ms"`
}

// SeparationConfig points at the vocal-separation service.
type SeparationConfig struct {
	Endpoint         string `toml:"endpoint"`
	NativeSampleRate int    `toml:"native_sample_rate"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
}

// TranscriptionConfig selects and configures the speech backend.
type TranscriptionConfig struct {
	Backend        string `toml:"backend"` // "whisper-http" or "openai"
	Endpoint       string `toml:"endpoint"`
	OpenAIAPIKey   string `toml:"openai_api_key"`
	OpenAIBaseURL  string `toml:"openai_base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// StorageConfig configures transcript persistence.
type StorageConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// ServerConfig configures the read-only HTTP observer API.
type ServerConfig struct {
	Enabled            bool     `toml:"enabled"`
	Host               string   `toml:"host"`
	Port               int      `toml:"port"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Pipeline: PipelineConfig{
			PollIntervalMs: 200,
			DedupWindowMs:  600,
		},
		Separation: SeparationConfig{
			Endpoint:         "http://localhost:8950/separate",
			NativeSampleRate: 44100,
			TimeoutSeconds:   120,
		},
		Transcription: TranscriptionConfig{
			Backend:        "whisper-http",
			Endpoint:       "http://localhost:8960/transcribe",
			TimeoutSeconds: 120,
		},
		Storage: StorageConfig{
			Enabled: false,
			Path:    "voxd.db",
		},
		Server: ServerConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    8970,
		},
	}
}

// Load reads the TOML file at path over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not accessible: %w", err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the process cannot run with.
func (c *Config) Validate() error {
	if c.Pipeline.PollIntervalMs <= 0 {
		return fmt.Errorf("pipeline.poll_interval_ms must be positive")
	}
	if c.Pipeline.DedupWindowMs <= 0 {
		return fmt.Errorf("pipeline.dedup_window_ms must be positive")
	}
	switch c.Transcription.Backend {
	case "whisper-http":
		if c.Transcription.Endpoint == "" {
			return fmt.Errorf("transcription.endpoint required for the whisper-http backend")
		}
	case "openai":
		if c.Transcription.OpenAIAPIKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("transcription.openai_api_key or OPENAI_API_KEY required for the openai backend")
		}
	default:
		return fmt.Errorf("unknown transcription backend: %s", c.Transcription.Backend)
	}
	if c.Separation.Endpoint == "" {
		return fmt.Errorf("separation.endpoint is required")
	}
	if c.Storage.Enabled && c.Storage.Path == "" {
		return fmt.Errorf("storage.path required when storage is enabled")
	}
	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// APIKey resolves the OpenAI API key, preferring the config file over the
// environment.
func (c *TranscriptionConfig) APIKey() string {
	if c.OpenAIAPIKey != "" {
		return c.OpenAIAPIKey
	}
	return os.Getenv("OPENAI_API_KEY")
}
