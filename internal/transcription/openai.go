package transcription

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/voxproc/voxd/internal/audio"
	"github.com/voxproc/voxd/pkg/logger"
)

// OpenAIModel transcribes via an OpenAI-compatible audio transcriptions
// endpoint. Useful when no local whisper service is deployed; the tradeoff
// is that the API returns no word-level timing or probabilities, so word
// hypotheses are synthesized by splitting the text and spreading it evenly
// over the track.
type OpenAIModel struct {
	client openai.Client
	model  string
	logger *logger.Logger
}

// NewOpenAIModel creates an OpenAI-backed speech model. baseURL may be
// empty for the default API host, or point at any compatible server.
func NewOpenAIModel(apiKey, baseURL, model string, logger *logger.Logger) *OpenAIModel {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}
	return &OpenAIModel{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger.Named("openai-stt"),
	}
}

// Transcribe uploads the samples as WAV and returns a single result
// covering the whole track.
func (m *OpenAIModel) Transcribe(ctx context.Context, samples []float32, sampleRate int, opts ModelOptions) ([]Result, error) {
	wav := audio.EncodeWAV(samples, sampleRate)

	params := openai.AudioTranscriptionNewParams{
		File:  bytes.NewReader(wav),
		Model: openai.AudioModel(m.model),
	}
	if opts.Language != "" {
		params.Language = openai.String(opts.Language)
	}

	resp, err := m.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil, nil
	}

	// No word-level detail from this endpoint: spread the words evenly
	// across the track and treat them as fully confident.
	tokens := strings.Fields(text)
	duration := float64(len(samples)) / float64(sampleRate)
	result := Result{Text: text}
	for i, tok := range tokens {
		start := duration * float64(i) / float64(len(tokens))
		end := duration * float64(i+1) / float64(len(tokens))
		result.Words = append(result.Words, WordHypothesis{
			Text:        tok,
			Probability: 1.0,
			Start:       start,
			End:         end,
		})
	}
	return []Result{result}, nil
}
