package pipeline

import (
	"github.com/voxproc/voxd/internal/transcription"
)

// Emitter receives the pipeline's outbound events. The protocol writer is
// the primary implementation; websocket broadcast and transcript storage
// subscribe through MultiEmitter.
type Emitter interface {
	EmitStatus(status string, progress int)
	EmitReady()
	EmitWord(event transcription.WordEvent)
	EmitTranscript(event transcription.TranscriptEvent)
	EmitError(message string)
}

// MultiEmitter fans every event out to all members, in order.
type MultiEmitter []Emitter

func (m MultiEmitter) EmitStatus(status string, progress int) {
	for _, e := range m {
		e.EmitStatus(status, progress)
	}
}

func (m MultiEmitter) EmitReady() {
	for _, e := range m {
		e.EmitReady()
	}
}

func (m MultiEmitter) EmitWord(event transcription.WordEvent) {
	for _, e := range m {
		e.EmitWord(event)
	}
}

func (m MultiEmitter) EmitTranscript(event transcription.TranscriptEvent) {
	for _, e := range m {
		e.EmitTranscript(event)
	}
}

func (m MultiEmitter) EmitError(message string) {
	for _, e := range m {
		e.EmitError(message)
	}
}
