// Package separation isolates the vocal stem from mixed audio segments.
// The actual source-separation model is an external collaborator; this
// package normalizes audio into the shape the model expects and extracts
// the vocals from whichever output shape the model produces.
package separation

import (
	"context"
	"fmt"

	"github.com/voxproc/voxd/pkg/logger"
)

// Stems maps stem name to channel-major samples (channels x samples).
type Stems map[string][][]float32

// StemSeparator is the capability shape of models that separate a waveform
// and return named stems directly.
type StemSeparator interface {
	// SampleRate is the model's native output rate.
	SampleRate() int
	// SeparateStems splits a channel-major waveform into named stems.
	SeparateStems(ctx context.Context, wav [][]float32, sampleRate int) (Stems, error)
}

// SourceSeparator is the capability shape of models that declare a source
// list and return a stacked tensor of all sources per batch item.
type SourceSeparator interface {
	SampleRate() int
	// Sources returns the model's declared source names, in output order.
	Sources() []string
	// Apply runs the model over a batch (batch x channels x samples) and
	// returns batch x sources x channels x samples.
	Apply(ctx context.Context, batch [][][]float32) ([][][][]float32, error)
}

// vocalsStem is the stem name both model shapes use for isolated voice.
const vocalsStem = "vocals"

// Adapter wraps either model shape behind a single vocals-extraction call.
type Adapter struct {
	stem   StemSeparator
	source SourceSeparator
	logger *logger.Logger
}

// NewAdapter selects the concrete adapter for whichever capability shape
// the supplied model exposes. Models exposing both are treated as stem
// separators.
func NewAdapter(model any, logger *logger.Logger) (*Adapter, error) {
	a := &Adapter{logger: logger.Named("separation")}
	switch m := model.(type) {
	case StemSeparator:
		a.stem = m
	case SourceSeparator:
		a.source = m
	default:
		return nil, fmt.Errorf("model %T exposes no supported separation capability", model)
	}
	return a, nil
}

// SampleRate returns the model's native output rate.
func (a *Adapter) SampleRate() int {
	if a.stem != nil {
		return a.stem.SampleRate()
	}
	return a.source.SampleRate()
}

// Separate isolates the vocal track from a mono segment. The segment is
// duplicated into two channels (the models expect stereo) and batched as a
// single item. The returned track is channel-averaged mono at the model's
// native rate. A missing vocals stem or unexpected output shape yields an
// empty track, never an error: the caller treats an empty track as nothing
// to transcribe.
func (a *Adapter) Separate(ctx context.Context, segment []float32, sampleRate int) ([]float32, int, error) {
	stereo := [][]float32{segment, segment}
	nativeRate := a.SampleRate()

	if a.stem != nil {
		stems, err := a.stem.SeparateStems(ctx, stereo, sampleRate)
		if err != nil {
			return nil, nativeRate, fmt.Errorf("stem separation: %w", err)
		}
		vocals, ok := stems[vocalsStem]
		if !ok {
			a.logger.Debug("Model returned no vocals stem")
			return nil, nativeRate, nil
		}
		return mixdown(vocals), nativeRate, nil
	}

	out, err := a.source.Apply(ctx, [][][]float32{stereo})
	if err != nil {
		return nil, nativeRate, fmt.Errorf("source separation: %w", err)
	}
	if len(out) == 0 {
		return nil, nativeRate, nil
	}
	sources := out[0]
	index := -1
	for i, name := range a.source.Sources() {
		if name == vocalsStem {
			index = i
			break
		}
	}
	if index < 0 || index >= len(sources) {
		a.logger.Debug("Model declares no vocals source",
			logger.Int("source_count", len(sources)),
		)
		return nil, nativeRate, nil
	}
	return mixdown(sources[index]), nativeRate, nil
}

// mixdown averages channel-major samples into mono.
func mixdown(channels [][]float32) []float32 {
	if len(channels) == 0 || len(channels[0]) == 0 {
		return nil
	}
	out := make([]float32, len(channels[0]))
	for _, ch := range channels {
		for i := 0; i < len(out) && i < len(ch); i++ {
			out[i] += ch[i]
		}
	}
	scale := float32(1) / float32(len(channels))
	for i := range out {
		out[i] *= scale
	}
	return out
}
