package separation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/voxproc/voxd/pkg/logger"
)

// HTTPModel is a client for a demucs-style separation service, implementing
// the named-stem capability shape. Audio crosses the wire as base64 raw
// little-endian float32 PCM, the same encoding the ingestion protocol uses.
type HTTPModel struct {
	endpoint   string
	model      string
	sampleRate int
	httpClient *http.Client
	logger     *logger.Logger
}

// NewHTTPModel creates a separation service client. model names the
// separation model the service should load (e.g. "htdemucs");
// nativeRate is the rate the service outputs stems at, typically 44100.
func NewHTTPModel(endpoint, model string, nativeRate int, timeout time.Duration, logger *logger.Logger) *HTTPModel {
	if nativeRate <= 0 {
		nativeRate = 44100
	}
	return &HTTPModel{
		endpoint:   endpoint,
		model:      model,
		sampleRate: nativeRate,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("demucs-http"),
	}
}

// SampleRate returns the service's native stem output rate.
func (m *HTTPModel) SampleRate() int {
	return m.sampleRate
}

type separateRequest struct {
	Model      string   `json:"model,omitempty"`
	SampleRate int      `json:"sampleRate"`
	Channels   []string `json:"channels"` // base64 float32 LE per channel
}

type separateResponse struct {
	SampleRate int                 `json:"sampleRate"`
	Stems      map[string][]string `json:"stems"` // stem -> base64 float32 LE per channel
}

// SeparateStems posts the waveform to the service and decodes the returned
// stems.
func (m *HTTPModel) SeparateStems(ctx context.Context, wav [][]float32, sampleRate int) (Stems, error) {
	reqBody := separateRequest{
		Model:      m.model,
		SampleRate: sampleRate,
		Channels:   make([]string, 0, len(wav)),
	}
	for _, ch := range wav {
		reqBody.Channels = append(reqBody.Channels, encodeSamples(ch))
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	m.logger.Debug("Sending segment to separation service",
		logger.Int("channels", len(wav)),
		logger.Int("sample_rate", sampleRate),
	)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("separation service status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed separateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.SampleRate > 0 {
		m.sampleRate = parsed.SampleRate
	}

	stems := make(Stems, len(parsed.Stems))
	for name, channels := range parsed.Stems {
		decoded := make([][]float32, 0, len(channels))
		for _, ch := range channels {
			samples, err := decodeSamples(ch)
			if err != nil {
				return nil, fmt.Errorf("failed to decode stem %q: %w", name, err)
			}
			decoded = append(decoded, samples)
		}
		stems[name] = decoded
	}
	return stems, nil
}

func encodeSamples(samples []float32) string {
	buf := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(s))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func decodeSamples(encoded string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("sample payload length %d is not float32-aligned", len(raw))
	}
	samples := make([]float32, len(raw)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return samples, nil
}
