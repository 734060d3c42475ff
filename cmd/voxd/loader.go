package main

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/voxproc/voxd/internal/config"
	"github.com/voxproc/voxd/internal/pipeline"
	"github.com/voxproc/voxd/internal/separation"
	"github.com/voxproc/voxd/internal/transcription"
	"github.com/voxproc/voxd/pkg/logger"
)

// modelLoader builds the external model adapters from the process
// configuration plus the per-init pipeline options.
type modelLoader struct {
	cfg    *config.Config
	logger *logger.Logger
}

func newModelLoader(cfg *config.Config, log *logger.Logger) *modelLoader {
	return &modelLoader{cfg: cfg, logger: log.Named("models")}
}

// LoadSeparator wires the HTTP separation service behind the vocals
// adapter.
func (l *modelLoader) LoadSeparator(ctx context.Context, opts pipeline.Options) (*separation.Adapter, error) {
	if _, err := url.ParseRequestURI(l.cfg.Separation.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid separation endpoint: %w", err)
	}
	model := separation.NewHTTPModel(
		l.cfg.Separation.Endpoint,
		opts.DemucsModel,
		l.cfg.Separation.NativeSampleRate,
		time.Duration(l.cfg.Separation.TimeoutSeconds)*time.Second,
		l.logger,
	)
	return separation.NewAdapter(model, l.logger)
}

// LoadTranscriber selects the configured speech backend.
func (l *modelLoader) LoadTranscriber(ctx context.Context, opts pipeline.Options) (transcription.Model, error) {
	timeout := time.Duration(l.cfg.Transcription.TimeoutSeconds) * time.Second
	switch l.cfg.Transcription.Backend {
	case "whisper-http":
		if _, err := url.ParseRequestURI(l.cfg.Transcription.Endpoint); err != nil {
			return nil, fmt.Errorf("invalid transcription endpoint: %w", err)
		}
		return transcription.NewWhisperHTTPModel(l.cfg.Transcription.Endpoint, opts.Model, timeout, l.logger), nil
	case "openai":
		return transcription.NewOpenAIModel(l.cfg.Transcription.APIKey(), l.cfg.Transcription.OpenAIBaseURL, opts.Model, l.logger), nil
	default:
		return nil, fmt.Errorf("unknown transcription backend: %s", l.cfg.Transcription.Backend)
	}
}
