package transcription

import (
	"context"
	"fmt"

	"github.com/voxproc/voxd/internal/audio"
	"github.com/voxproc/voxd/pkg/logger"
)

// Adapter feeds isolated vocal audio into the speech model. It owns the
// resample to the model's fixed rate; callers hand it audio at whatever
// rate the separation stage produced.
type Adapter struct {
	model    Model
	language string
	logger   *logger.Logger
}

// NewAdapter creates a transcription adapter around an external speech
// model. language is an optional hint, empty for auto-detect.
func NewAdapter(model Model, language string, logger *logger.Logger) *Adapter {
	return &Adapter{
		model:    model,
		language: language,
		logger:   logger.Named("transcribe"),
	}
}

// Transcribe resamples the track to ModelSampleRate and runs the speech
// model with word timestamps and voice-activity filtering requested. A
// track that resamples to nothing yields no results and no error.
func (a *Adapter) Transcribe(ctx context.Context, track []float32, sampleRate int) ([]Result, error) {
	resampled := audio.Resample(track, sampleRate, ModelSampleRate)
	if len(resampled) == 0 {
		return nil, nil
	}

	results, err := a.model.Transcribe(ctx, resampled, ModelSampleRate, ModelOptions{
		Language:       a.language,
		WordTimestamps: true,
		VADFilter:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("speech model: %w", err)
	}
	return results, nil
}
