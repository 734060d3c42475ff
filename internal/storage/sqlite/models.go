package sqlite

import (
	"time"
)

// TranscriptRecord is one persisted transcript event.
type TranscriptRecord struct {
	ID        int64     `json:"id"`
	UUID      string    `json:"uuid"`
	Text      string    `json:"text"`
	WordsJSON string    `json:"-"`     // raw JSON of the word list
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}
