package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/voxproc/voxd/internal/pipeline"
	"github.com/voxproc/voxd/internal/storage/sqlite"
	"github.com/voxproc/voxd/internal/websocket"
	"github.com/voxproc/voxd/pkg/logger"
)

// Handler serves the read-only observer endpoints.
type Handler struct {
	controller *pipeline.Controller
	storage    *sqlite.TranscriptStorage // nil when persistence is disabled
	wsServer   *websocket.Server
	logger     *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(controller *pipeline.Controller, storage *sqlite.TranscriptStorage, wsServer *websocket.Server, logger *logger.Logger) *Handler {
	return &Handler{
		controller: controller,
		storage:    storage,
		wsServer:   wsServer,
		logger:     logger.Named("api-handler"),
	}
}

// GetHealth reports process and pipeline status.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"state":       h.controller.State().String(),
		"queue_depth": h.controller.QueueDepth(),
	})
}

// GetRecentTranscripts returns the most recent transcripts. Query param
// "limit" caps the count, default 50.
func (h *Handler) GetRecentTranscripts(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		h.writeError(w, http.StatusNotFound, "transcript storage is disabled")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	records, err := h.storage.GetRecentTranscripts(limit)
	if err != nil {
		h.logger.Error("Failed to query transcripts", logger.Error(err))
		h.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	h.writeTranscripts(w, records)
}

// GetTranscriptsByTimeRange returns transcripts between "start" and "end"
// (RFC3339 query params).
func (h *Handler) GetTranscriptsByTimeRange(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		h.writeError(w, http.StatusNotFound, "transcript storage is disabled")
		return
	}
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid start time")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid end time")
		return
	}
	records, err := h.storage.GetTranscriptsByTimeRange(start, end)
	if err != nil {
		h.logger.Error("Failed to query transcripts", logger.Error(err))
		h.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	h.writeTranscripts(w, records)
}

// HandleWebSocket upgrades to the live event feed.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.wsServer.HandleWS(w, r)
}

// transcriptView is the wire shape of one stored transcript.
type transcriptView struct {
	ID        int64           `json:"id"`
	UUID      string          `json:"uuid"`
	Text      string          `json:"text"`
	Words     json.RawMessage `json:"words"`
	Timestamp time.Time       `json:"timestamp"`
}

func (h *Handler) writeTranscripts(w http.ResponseWriter, records []*sqlite.TranscriptRecord) {
	views := make([]transcriptView, 0, len(records))
	for _, rec := range records {
		views = append(views, transcriptView{
			ID:        rec.ID,
			UUID:      rec.UUID,
			Text:      rec.Text,
			Words:     json.RawMessage(rec.WordsJSON),
			Timestamp: rec.Timestamp,
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"transcripts": views})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to write response", logger.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
