package protocol

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/voxproc/voxd/internal/transcription"
	"github.com/voxproc/voxd/pkg/logger"
)

// Writer serializes outbound messages onto a stream, one JSON object per
// line. Both the control path and the pipeline worker emit through it, so
// writes are mutex-guarded to keep lines whole.
type Writer struct {
	mu     sync.Mutex
	enc    *json.Encoder
	logger *logger.Logger
}

// NewWriter creates a protocol writer on w, normally stdout.
func NewWriter(w io.Writer, logger *logger.Logger) *Writer {
	return &Writer{
		enc:    json.NewEncoder(w),
		logger: logger.Named("protocol"),
	}
}

func (w *Writer) send(v any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	// Encode appends the newline that delimits protocol lines. A write
	// failure means the peer is gone; nothing useful to do but log.
	if err := w.enc.Encode(v); err != nil {
		w.logger.Error("Failed to write protocol message", logger.Error(err))
	}
}

// EmitStatus reports a lifecycle status, with an optional progress
// percentage (0 omits the field).
func (w *Writer) EmitStatus(status string, progress int) {
	w.send(statusMessage{Type: "status", Status: status, Progress: progress})
}

// EmitReady reports that model loading completed. Fires once, after
// status=ready.
func (w *Writer) EmitReady() {
	w.send(readyMessage{Type: "ready"})
}

// EmitWord reports one admitted word.
func (w *Writer) EmitWord(event transcription.WordEvent) {
	w.send(wordMessage{Type: "word", WordEvent: event})
}

// EmitTranscript reports the joined transcript of one segment.
func (w *Writer) EmitTranscript(event transcription.TranscriptEvent) {
	w.send(transcriptMessage{Type: "transcript", TranscriptEvent: event})
}

// EmitError reports a non-fatal error to the peer.
func (w *Writer) EmitError(message string) {
	w.send(errorMessage{Type: "error", Message: message})
}
