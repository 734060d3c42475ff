package transcription

import (
	"context"
)

// WordEvent is a single admitted word, timestamped at capture time.
type WordEvent struct {
	Word       string  `json:"word"`
	Timestamp  int64   `json:"timestamp"` // capture time, unix ms
	Confidence float64 `json:"confidence"`
}

// TranscriptEvent is the joined text of all admitted words from one
// processed segment.
type TranscriptEvent struct {
	Text      string      `json:"text"`
	Words     []WordEvent `json:"words"`
	Timestamp int64       `json:"timestamp"`
}

// WordHypothesis is a raw word-level result from the speech model, with a
// source-relative time range in seconds.
type WordHypothesis struct {
	Text        string
	Probability float64
	Start       float64
	End         float64
}

// Result is one raw segment produced by the speech model.
type Result struct {
	Text  string
	Words []WordHypothesis
}

// ModelOptions carries per-call hints to the speech model.
type ModelOptions struct {
	Language       string // optional language hint, empty for auto-detect
	WordTimestamps bool
	VADFilter      bool
}

// Model is the boundary to the external speech-to-text model. The returned
// slice is finite and consumed exactly once per segment. Implementations
// receive audio at ModelSampleRate.
type Model interface {
	Transcribe(ctx context.Context, samples []float32, sampleRate int, opts ModelOptions) ([]Result, error)
}

// ModelSampleRate is the fixed rate the speech model requires.
const ModelSampleRate = 16000
