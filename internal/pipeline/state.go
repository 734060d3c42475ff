package pipeline

import (
	"fmt"
)

// State is the lifecycle state of the pipeline controller.
type State int

const (
	// StateUninitialized - no init received yet, or model loading failed.
	StateUninitialized State = iota
	// StateLoadingModels - separation and speech models are loading.
	StateLoadingModels
	// StateReady - models loaded, not accepting audio.
	StateReady
	// StateEnabled - accepting and processing audio.
	StateEnabled
	// StateShuttingDown - worker stops after its current iteration. Terminal.
	StateShuttingDown
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "UNINITIALIZED"
	case StateLoadingModels:
		return "LOADING_MODELS"
	case StateReady:
		return "READY"
	case StateEnabled:
		return "ENABLED"
	case StateShuttingDown:
		return "SHUTTING_DOWN"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}
