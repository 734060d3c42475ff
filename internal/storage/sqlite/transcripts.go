// Package sqlite persists emitted transcripts for the observer API.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/voxproc/voxd/pkg/logger"
)

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// The writer is a single goroutine; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return db, nil
}

// TranscriptStorage handles storage of transcript records.
type TranscriptStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewTranscriptStorage creates a new SQLite transcript storage.
func NewTranscriptStorage(db *sql.DB, log *logger.Logger) (*TranscriptStorage, error) {
	storage := &TranscriptStorage{
		db:     db,
		logger: log.Named("sqlite-transcripts"),
	}
	if err := storage.initDB(); err != nil {
		return nil, fmt.Errorf("failed to initialize transcript storage: %w", err)
	}
	return storage, nil
}

// initDB initializes the database tables
func (s *TranscriptStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS transcripts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL,
			text TEXT NOT NULL,
			words TEXT NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create transcripts table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_transcripts_timestamp ON transcripts(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_transcripts_uuid ON transcripts(uuid)`,
	}
	for _, indexSQL := range indexes {
		if _, err := s.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create transcript index: %w", err)
		}
	}
	return nil
}

// StoreTranscript stores a transcript record and returns its row ID.
func (s *TranscriptStorage) StoreTranscript(record *TranscriptRecord) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO transcripts (uuid, text, words, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		record.UUID,
		record.Text,
		record.WordsJSON,
		record.Timestamp.Format(time.RFC3339Nano),
		record.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transcript: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// GetRecentTranscripts returns the most recent transcripts, newest first.
func (s *TranscriptStorage) GetRecentTranscripts(limit int) ([]*TranscriptRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, uuid, text, words, timestamp, created_at
		FROM transcripts
		ORDER BY timestamp DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent transcripts: %w", err)
	}
	defer rows.Close()

	return s.scanTranscriptRows(rows)
}

// GetTranscriptsByTimeRange returns transcripts within [start, end],
// oldest first.
func (s *TranscriptStorage) GetTranscriptsByTimeRange(start, end time.Time) ([]*TranscriptRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, uuid, text, words, timestamp, created_at
		FROM transcripts
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC`,
		start.Format(time.RFC3339Nano),
		end.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcripts by time range: %w", err)
	}
	defer rows.Close()

	return s.scanTranscriptRows(rows)
}

// scanTranscriptRows scans query rows into records
func (s *TranscriptStorage) scanTranscriptRows(rows *sql.Rows) ([]*TranscriptRecord, error) {
	var records []*TranscriptRecord
	for rows.Next() {
		var record TranscriptRecord
		var timestamp, createdAt string
		if err := rows.Scan(
			&record.ID,
			&record.UUID,
			&record.Text,
			&record.WordsJSON,
			&timestamp,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transcript row: %w", err)
		}
		var err error
		record.Timestamp, err = time.Parse(time.RFC3339Nano, timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to parse transcript timestamp: %w", err)
		}
		record.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse transcript created_at: %w", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transcript rows: %w", err)
	}
	return records, nil
}
