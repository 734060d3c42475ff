package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/voxproc/voxd/internal/config"
	"github.com/voxproc/voxd/internal/pipeline"
	"github.com/voxproc/voxd/internal/separation"
	"github.com/voxproc/voxd/internal/storage/sqlite"
	"github.com/voxproc/voxd/internal/transcription"
	"github.com/voxproc/voxd/internal/websocket"
	"github.com/voxproc/voxd/pkg/logger"
)

type noopEmitter struct{}

func (noopEmitter) EmitStatus(string, int)                       {}
func (noopEmitter) EmitReady()                                   {}
func (noopEmitter) EmitWord(transcription.WordEvent)             {}
func (noopEmitter) EmitTranscript(transcription.TranscriptEvent) {}
func (noopEmitter) EmitError(string)                             {}

type noopLoader struct{}

func (noopLoader) LoadSeparator(context.Context, pipeline.Options) (*separation.Adapter, error) {
	return nil, nil
}

func (noopLoader) LoadTranscriber(context.Context, pipeline.Options) (transcription.Model, error) {
	return nil, nil
}

func newTestServer(t *testing.T, storage *sqlite.TranscriptStorage) *httptest.Server {
	t.Helper()
	controller := pipeline.NewController(noopLoader{}, noopEmitter{}, pipeline.Config{}, logger.Nop())
	wsServer := websocket.NewServer(logger.Nop())
	t.Cleanup(wsServer.Close)

	router := NewRouter(controller, storage, wsServer, &config.ServerConfig{}, logger.Nop())
	server := httptest.NewServer(router.Routes())
	t.Cleanup(server.Close)
	return server
}

func newTestStorage(t *testing.T) *sqlite.TranscriptStorage {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	storage, err := sqlite.NewTranscriptStorage(db, logger.Nop())
	if err != nil {
		t.Fatalf("creating storage: %v", err)
	}
	return storage
}

func getJSON(t *testing.T, url string, wantStatus int) map[string]any {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: status want=%d got=%d", url, wantStatus, resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	return body
}

func TestGetHealth(t *testing.T) {
	server := newTestServer(t, nil)

	body := getJSON(t, server.URL+"/api/v1/health", http.StatusOK)
	if body["status"] != "ok" {
		t.Fatalf("status: %v", body["status"])
	}
	if body["state"] != "UNINITIALIZED" {
		t.Fatalf("state: %v", body["state"])
	}
	if body["queue_depth"] != float64(0) {
		t.Fatalf("queue_depth: %v", body["queue_depth"])
	}
}

func TestGetTranscriptsWithoutStorage(t *testing.T) {
	server := newTestServer(t, nil)
	getJSON(t, server.URL+"/api/v1/transcripts", http.StatusNotFound)
}

func TestGetRecentTranscripts(t *testing.T) {
	storage := newTestStorage(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, text := range []string{"one", "two", "three"} {
		_, err := storage.StoreTranscript(&sqlite.TranscriptRecord{
			UUID:      "u",
			Text:      text,
			WordsJSON: `[{"word":"` + text + `"}]`,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			CreatedAt: base,
		})
		if err != nil {
			t.Fatalf("storing: %v", err)
		}
	}
	server := newTestServer(t, storage)

	body := getJSON(t, server.URL+"/api/v1/transcripts?limit=2", http.StatusOK)
	transcripts, ok := body["transcripts"].([]any)
	if !ok || len(transcripts) != 2 {
		t.Fatalf("transcripts: %v", body["transcripts"])
	}
	first := transcripts[0].(map[string]any)
	if first["text"] != "three" {
		t.Fatalf("newest first: got %v", first["text"])
	}
	// Stored words JSON is passed through, not double-encoded.
	if _, ok := first["words"].([]any); !ok {
		t.Fatalf("words shape: %T", first["words"])
	}

	getJSON(t, server.URL+"/api/v1/transcripts?limit=bogus", http.StatusBadRequest)
}

func TestGetTranscriptsByTimeRange(t *testing.T) {
	storage := newTestStorage(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := storage.StoreTranscript(&sqlite.TranscriptRecord{
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
	server := newTestServer(t, storage)

	url := server.URL + "/api/v1/transcripts/time-range?start=" +
		base.Format(time.RFC3339) + "&end=" + base.Add(time.Hour).Format(time.RFC3339)
	body := getJSON(t, url, http.StatusOK)
	transcripts, ok := body["transcripts"].([]any)
	if !ok || len(transcripts) != 2 {
		t.Fatalf("transcripts: %v", body["transcripts"])
	}

	getJSON(t, server.URL+"/api/v1/transcripts/time-range?start=bogus", http.StatusBadRequest)
}
