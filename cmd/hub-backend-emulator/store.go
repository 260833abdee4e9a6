package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// progressStore keeps one saved state per (game, session) pair, matching the
// hub's last-write-wins save semantics.
type progressStore struct {
	db *sql.DB
}

func newProgressStore(path string) (*progressStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open progress database: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS progress (
			game_id    TEXT NOT NULL,
			session_id TEXT NOT NULL,
			data       TEXT NOT NULL,
			timestamp  INTEGER NOT NULL,
			PRIMARY KEY (game_id, session_id)
		)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create progress table: %v", err)
	}

	return &progressStore{db: db}, nil
}

func (s *progressStore) Save(
	ctx context.Context,
	gameID string,
	sessionID string,
	data json.RawMessage,
	timestamp int64,
) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO progress (game_id, session_id, data, timestamp)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (game_id, session_id)
		DO UPDATE SET data = excluded.data, timestamp = excluded.timestamp`,
		gameID, sessionID, string(data), timestamp)
	if err != nil {
		return fmt.Errorf("failed to save progress: %v", err)
	}
	return nil
}

// Load returns nil without error when nothing was saved for the session.
func (s *progressStore) Load(
	ctx context.Context,
	gameID string,
	sessionID string,
) (json.RawMessage, int64, error) {
	var data string
	var timestamp int64
	err := s.db.QueryRowContext(ctx, `
		SELECT data, timestamp FROM progress
		WHERE game_id = ? AND session_id = ?`,
		gameID, sessionID).Scan(&data, &timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load progress: %v", err)
	}
	return json.RawMessage(data), timestamp, nil
}

func (s *progressStore) Close() error {
	return s.db.Close()
}
