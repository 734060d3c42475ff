package sqlite

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/voxproc/voxd/internal/transcription"
	"github.com/voxproc/voxd/pkg/logger"
)

// StoreEmitter subscribes transcript storage to the pipeline's event
// stream. Only transcript events are persisted; everything else passes
// through untouched.
type StoreEmitter struct {
	storage *TranscriptStorage
	logger  *logger.Logger
}

// NewStoreEmitter creates a storing emitter over storage.
func NewStoreEmitter(storage *TranscriptStorage, log *logger.Logger) *StoreEmitter {
	return &StoreEmitter{
		storage: storage,
		logger:  log.Named("store-emitter"),
	}
}

func (e *StoreEmitter) EmitStatus(status string, progress int) {}

func (e *StoreEmitter) EmitReady() {}

func (e *StoreEmitter) EmitWord(event transcription.WordEvent) {}

// EmitTranscript persists the transcript. Storage failures are logged and
// swallowed; persistence is best-effort and never stalls the pipeline.
func (e *StoreEmitter) EmitTranscript(event transcription.TranscriptEvent) {
	words, err := json.Marshal(event.Words)
	if err != nil {
		e.logger.Error("Failed to marshal transcript words", logger.Error(err))
		return
	}
	record := &TranscriptRecord{
		UUID:      uuid.NewString(),
		Text:      event.Text,
		WordsJSON: string(words),
		Timestamp: time.UnixMilli(event.Timestamp).UTC(),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := e.storage.StoreTranscript(record); err != nil {
		e.logger.Error("Failed to store transcript", logger.Error(err))
	}
}

func (e *StoreEmitter) EmitError(message string) {}
