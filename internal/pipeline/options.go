package pipeline

import (
	"fmt"
)

// Default windowing and model parameters, applied by Validate when an init
// request leaves them unset.
const (
	DefaultModel          = "small"
	DefaultDemucsModel    = "htdemucs"
	DefaultSegmentSeconds = 6.0
	DefaultStepSeconds    = 1.5
)

// Options configures one pipeline initialization. Immutable once accepted.
type Options struct {
	Model          string  // speech model identifier
	Language       string  // optional language hint
	DemucsModel    string  // separation model identifier
	SegmentSeconds float64 // window length
	StepSeconds    float64 // window advance; must be < SegmentSeconds
}

// Validate fills defaults and rejects window geometry that could never
// advance. A zero or negative step would cut the same window forever.
func (o *Options) Validate() error {
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.DemucsModel == "" {
		o.DemucsModel = DefaultDemucsModel
	}
	if o.SegmentSeconds == 0 {
		o.SegmentSeconds = DefaultSegmentSeconds
	}
	if o.StepSeconds == 0 {
		o.StepSeconds = DefaultStepSeconds
	}
	if o.SegmentSeconds <= 0 {
		return fmt.Errorf("segmentSeconds must be positive, got %v", o.SegmentSeconds)
	}
	if o.StepSeconds <= 0 {
		return fmt.Errorf("stepSeconds must be positive, got %v", o.StepSeconds)
	}
	if o.StepSeconds >= o.SegmentSeconds {
		return fmt.Errorf("stepSeconds (%v) must be smaller than segmentSeconds (%v)", o.StepSeconds, o.SegmentSeconds)
	}
	return nil
}
