package websocket

import (
	"github.com/voxproc/voxd/internal/transcription"
)

// EventEmitter forwards pipeline events to the broadcast hub.
type EventEmitter struct {
	server *Server
}

// NewEventEmitter creates an emitter broadcasting through server.
func NewEventEmitter(server *Server) *EventEmitter {
	return &EventEmitter{server: server}
}

type statusData struct {
	Status   string `json:"status"`
	Progress int    `json:"progress,omitempty"`
}

func (e *EventEmitter) EmitStatus(status string, progress int) {
	e.server.Broadcast("status", statusData{Status: status, Progress: progress})
}

func (e *EventEmitter) EmitReady() {
	e.server.Broadcast("ready", nil)
}

func (e *EventEmitter) EmitWord(event transcription.WordEvent) {
	e.server.Broadcast("word", event)
}

func (e *EventEmitter) EmitTranscript(event transcription.TranscriptEvent) {
	e.server.Broadcast("transcript", event)
}

func (e *EventEmitter) EmitError(message string) {
	e.server.Broadcast("error", map[string]string{"message": message})
}
