// Package protocol implements the line-delimited JSON message protocol
// spoken over stdin/stdout: one UTF-8 JSON object per line.
package protocol

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/voxproc/voxd/internal/transcription"
)

// Inbound message types.
const (
	TypeInit     = "init"
	TypeEnable   = "enable"
	TypeDisable  = "disable"
	TypeAudio    = "audio"
	TypeShutdown = "shutdown"
)

// Status values reported on the outbound side. The model-loading names are
// wire-level contract with existing consumers.
const (
	StatusLoadingDemucs  = "loading-demucs"
	StatusLoadingWhisper = "loading-whisper"
	StatusReady          = "ready"
	StatusEnabled        = "enabled"
	StatusDisabled       = "disabled"
)

// InboundMessage is the union of all inbound message shapes.
type InboundMessage struct {
	Type string `json:"type"`

	// init fields
	Model          string  `json:"model,omitempty"`
	Language       string  `json:"language,omitempty"`
	DemucsModel    string  `json:"demucsModel,omitempty"`
	SegmentSeconds float64 `json:"segmentSeconds,omitempty"`
	StepSeconds    float64 `json:"stepSeconds,omitempty"`

	// audio fields
	Samples    string `json:"samples,omitempty"`
	SampleRate int    `json:"sampleRate,omitempty"`
}

// ParseLine decodes one protocol line.
func ParseLine(line []byte) (*InboundMessage, error) {
	var msg InboundMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return &msg, nil
}

// DecodeAudio extracts the sample payload of an audio message: base64 of
// raw little-endian 32-bit float PCM. A missing payload, non-positive
// sample rate, or undecodable payload returns ok=false; such messages are
// dropped without an error message.
func (m *InboundMessage) DecodeAudio() (samples []float32, sampleRate int, ok bool) {
	if m.Samples == "" || m.SampleRate <= 0 {
		return nil, 0, false
	}
	raw, err := base64.StdEncoding.DecodeString(m.Samples)
	if err != nil || len(raw)%4 != 0 {
		return nil, 0, false
	}
	samples = make([]float32, len(raw)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return samples, m.SampleRate, true
}

// Outbound message shapes.

type statusMessage struct {
	Type     string `json:"type"`
	Status   string `json:"status"`
	Progress int    `json:"progress,omitempty"`
}

type readyMessage struct {
	Type string `json:"type"`
}

type wordMessage struct {
	Type string `json:"type"`
	transcription.WordEvent
}

type transcriptMessage struct {
	Type string `json:"type"`
	transcription.TranscriptEvent
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
