package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/voxproc/voxd/internal/audio"
	"github.com/voxproc/voxd/pkg/logger"
)

// WhisperHTTPModel talks to a faster-whisper style HTTP service: WAV body
// in, JSON segments with word-level timestamps out.
type WhisperHTTPModel struct {
	endpoint   string
	model      string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewWhisperHTTPModel creates a client for the given transcription service
// endpoint. model names the whisper model size the service should use.
func NewWhisperHTTPModel(endpoint, model string, timeout time.Duration, logger *logger.Logger) *WhisperHTTPModel {
	return &WhisperHTTPModel{
		endpoint: endpoint,
		model:    model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("whisper-http"),
	}
}

// whisperResponse mirrors the service's JSON output.
type whisperResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Text  string `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Words []struct {
			Word        string  `json:"word"`
			Start       float64 `json:"start"`
			End         float64 `json:"end"`
			Probability float64 `json:"probability"`
		} `json:"words"`
	} `json:"segments"`
}

// Transcribe wraps the samples into a WAV container and POSTs it to the
// service. Word timestamps, VAD filtering, and the language hint are passed
// as query parameters.
func (m *WhisperHTTPModel) Transcribe(ctx context.Context, samples []float32, sampleRate int, opts ModelOptions) ([]Result, error) {
	u, err := url.Parse(m.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	q := u.Query()
	if m.model != "" {
		q.Set("model", m.model)
	}
	if opts.Language != "" {
		q.Set("language", opts.Language)
	}
	if opts.WordTimestamps {
		q.Set("word_timestamps", "1")
	}
	if opts.VADFilter {
		q.Set("vad_filter", "1")
	}
	u.RawQuery = q.Encode()

	wav := audio.EncodeWAV(samples, sampleRate)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(wav))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "audio/wav")

	m.logger.Debug("Sending audio to transcription service",
		logger.Int("samples", len(samples)),
		logger.Int("sample_rate", sampleRate),
	)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("transcription service status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Segments))
	for _, seg := range parsed.Segments {
		result := Result{Text: strings.TrimSpace(seg.Text)}
		for _, w := range seg.Words {
			result.Words = append(result.Words, WordHypothesis{
				Text:        w.Word,
				Probability: w.Probability,
				Start:       w.Start,
				End:         w.End,
			})
		}
		results = append(results, result)
	}
	return results, nil
}
