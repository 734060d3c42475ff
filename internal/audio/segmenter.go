package audio

import (
	"math"
)

// Chunk is a run of float32 samples at a single sample rate, as delivered by
// the ingestion boundary.
type Chunk struct {
	Samples    []float32
	SampleRate int
}

// Segment is a fixed-length window of samples cut from the pending buffer.
type Segment struct {
	Samples    []float32
	SampleRate int
}

// Segmenter accumulates incoming chunks and cuts fixed-length, fixed-step
// overlapping windows out of them. All buffered chunks share one sample
// rate; appending a chunk at a different rate discards whatever partial
// window was pending, since samples at two rates cannot be windowed
// together.
//
// Segmenter is not safe for concurrent use. The pipeline worker is its only
// caller.
type Segmenter struct {
	segmentSeconds float64
	stepSeconds    float64

	pending        [][]float32
	pendingSamples int
	sampleRate     int // 0 until the first append
}

// NewSegmenter creates a segmenter cutting windows of segmentSeconds,
// advancing by stepSeconds per window. Callers validate the window
// geometry up front (see pipeline.Options.Validate); a non-positive step
// would loop forever in Cut.
func NewSegmenter(segmentSeconds, stepSeconds float64) *Segmenter {
	return &Segmenter{
		segmentSeconds: segmentSeconds,
		stepSeconds:    stepSeconds,
	}
}

// Append adds a chunk to the pending buffer. A sample rate different from
// the buffered one resets the buffer first.
func (s *Segmenter) Append(chunk Chunk) {
	if s.sampleRate == 0 || s.sampleRate != chunk.SampleRate {
		s.sampleRate = chunk.SampleRate
		s.pending = nil
		s.pendingSamples = 0
	}
	s.pending = append(s.pending, chunk.Samples)
	s.pendingSamples += len(chunk.Samples)
}

// Cut returns zero or more full segments from the pending buffer. After the
// last cut window, the unconsumed tail becomes the new pending buffer. Cut
// never fails; short buffers simply yield nothing.
func (s *Segmenter) Cut() []Segment {
	if s.sampleRate == 0 {
		return nil
	}
	segmentSamples := int(math.Round(s.segmentSeconds * float64(s.sampleRate)))
	stepSamples := int(math.Round(s.stepSeconds * float64(s.sampleRate)))
	if s.pendingSamples < segmentSamples || segmentSamples <= 0 || stepSamples <= 0 {
		return nil
	}

	// Concatenate once, then slice windows off the front.
	buffer := make([]float32, 0, s.pendingSamples)
	for _, chunk := range s.pending {
		buffer = append(buffer, chunk...)
	}

	var segments []Segment
	for len(buffer) >= segmentSamples {
		window := make([]float32, segmentSamples)
		copy(window, buffer[:segmentSamples])
		segments = append(segments, Segment{Samples: window, SampleRate: s.sampleRate})
		buffer = buffer[stepSamples:]
	}

	if len(buffer) > 0 {
		remainder := make([]float32, len(buffer))
		copy(remainder, buffer)
		s.pending = [][]float32{remainder}
	} else {
		s.pending = nil
	}
	s.pendingSamples = len(buffer)
	return segments
}

// Reset discards all pending samples and forgets the sample rate.
func (s *Segmenter) Reset() {
	s.pending = nil
	s.pendingSamples = 0
	s.sampleRate = 0
}

// PendingSamples returns the number of buffered, not-yet-windowed samples.
func (s *Segmenter) PendingSamples() int {
	return s.pendingSamples
}
