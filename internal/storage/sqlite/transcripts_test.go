package sqlite

import (
	"testing"
	"time"

	"github.com/voxproc/voxd/internal/transcription"
	"github.com/voxproc/voxd/pkg/logger"
)

func newTestStorage(t *testing.T) *TranscriptStorage {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	storage, err := NewTranscriptStorage(db, logger.Nop())
	if err != nil {
		t.Fatalf("creating storage: %v", err)
	}
	return storage
}

func TestStoreAndGetRecent(t *testing.T) {
	storage := newTestStorage(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, text := range []string{"first", "second", "third"} {
		id, err := storage.StoreTranscript(&TranscriptRecord{
			UUID:      "uuid-" + text,
			Text:      text,
			WordsJSON: "[]",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			CreatedAt: base,
		})
		if err != nil {
			t.Fatalf("storing %q: %v", text, err)
		}
		if id <= 0 {
			t.Fatalf("row id for %q: %d", text, id)
		}
	}

	records, err := storage.GetRecentTranscripts(2)
	if err != nil {
		t.Fatalf("GetRecentTranscripts: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records: want=2 got=%d", len(records))
	}
	// Newest first.
	if records[0].Text != "third" || records[1].Text != "second" {
		t.Fatalf("order: got %q, %q", records[0].Text, records[1].Text)
	}
	if !records[0].Timestamp.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("timestamp roundtrip: %v", records[0].Timestamp)
	}
}

func TestGetByTimeRange(t *testing.T) {
	storage := newTestStorage(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := storage.StoreTranscript(&TranscriptRecord{
			UUID:      "u",
			Text:      "t",
			WordsJSON: "[]",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			CreatedAt: base,
		})
		if err != nil {
			t.Fatalf("storing: %v", err)
		}
	}

	records, err := storage.GetTranscriptsByTimeRange(base.Add(1*time.Hour), base.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("GetTranscriptsByTimeRange: %v", err)
	}
	// The range is inclusive on both ends, oldest first.
	if len(records) != 3 {
		t.Fatalf("records: want=3 got=%d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Before(records[i-1].Timestamp) {
			t.Fatalf("not in ascending order: %v before %v", records[i].Timestamp, records[i-1].Timestamp)
		}
	}
}

func TestStoreEmitterPersistsTranscripts(t *testing.T) {
	storage := newTestStorage(t)
	emitter := NewStoreEmitter(storage, logger.Nop())

	emitter.EmitTranscript(transcription.TranscriptEvent{
		Text:      "hello world",
		Words:     []transcription.WordEvent{{Word: "hello", Confidence: 0.9}, {Word: "world", Confidence: 0.8}},
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli(),
	})
	// Non-transcript events are ignored.
	emitter.EmitWord(transcription.WordEvent{Word: "hello"})
	emitter.EmitStatus("enabled", 0)

	records, err := storage.GetRecentTranscripts(10)
	if err != nil {
		t.Fatalf("GetRecentTranscripts: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records: want=1 got=%d", len(records))
	}
	if records[0].Text != "hello world" || records[0].UUID == "" {
		t.Fatalf("record: %+v", records[0])
	}
	if records[0].WordsJSON == "[]" || records[0].WordsJSON == "" {
		t.Fatalf("words not serialized: %q", records[0].WordsJSON)
	}
}
