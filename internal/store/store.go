// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/verte-zerg/streakline/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// historyKey is the well-known record holding the full learning history.
const historyKey = "history"

// Store wraps SQLite access for tracker data. All records live in a
// single string-keyed kv table so the engine sees a plain key-value
// store.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// GetSetting returns the stored value for a settings key, with
// ok=false when the key has never been written.
func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetSetting writes a settings key, replacing any previous value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}

// LoadHistory reads the persisted learning history. A missing record
// or one that fails to decode yields an empty history, never an
// error: first run and corruption both degrade to a fresh start.
func (s *Store) LoadHistory(ctx context.Context) (model.LearningHistory, error) {
	raw, ok, err := s.GetSetting(ctx, historyKey)
	if err != nil {
		return model.NewLearningHistory(), err
	}
	if !ok {
		return model.NewLearningHistory(), nil
	}
	var hist model.LearningHistory
	if err := json.Unmarshal([]byte(raw), &hist); err != nil {
		return model.NewLearningHistory(), nil
	}
	if hist.LearnedDates == nil {
		hist.LearnedDates = map[string]bool{}
	}
	if hist.FreezedDates == nil {
		hist.FreezedDates = map[string]bool{}
	}
	return hist, nil
}

// SaveHistory merges the given history into the stored record and
// writes it back. True flags accumulate across saves; a date marked
// learned drops any stored frozen flag and vice versa, so the two
// maps never both hold the same key.
func (s *Store) SaveHistory(ctx context.Context, hist model.LearningHistory) (model.LearningHistory, error) {
	stored, err := s.LoadHistory(ctx)
	if err != nil {
		return stored, err
	}
	for key, set := range hist.FreezedDates {
		if !set {
			continue
		}
		stored.FreezedDates[key] = true
		delete(stored.LearnedDates, key)
	}
	for key, set := range hist.LearnedDates {
		if !set {
			continue
		}
		stored.LearnedDates[key] = true
		delete(stored.FreezedDates, key)
	}
	stored.LastStats = hist.LastStats

	encoded, err := json.Marshal(stored)
	if err != nil {
		return stored, err
	}
	if err := s.SetSetting(ctx, historyKey, string(encoded)); err != nil {
		return stored, err
	}
	return stored, nil
}

// ReplaceHistory overwrites the stored record without merging. Used
// when a recomputed stats snapshot must be persisted verbatim.
func (s *Store) ReplaceHistory(ctx context.Context, hist model.LearningHistory) error {
	encoded, err := json.Marshal(hist)
	if err != nil {
		return err
	}
	return s.SetSetting(ctx, historyKey, string(encoded))
}
