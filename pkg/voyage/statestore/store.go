// Package statestore persists back stacks and the signed in user in SQLite
// so the client can restore where it was after the process is killed.
package statestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/BrandonKowalski/voyage/pkg/voyage/model"
	"github.com/BrandonKowalski/voyage/pkg/voyage/router"
)

var ErrNotFound = errors.New("not found")

// DefaultSlot is the slot used by the main window.
const DefaultSlot = "main"

const schema = `
CREATE TABLE IF NOT EXISTS stacks (
	slot TEXT PRIMARY KEY,
	active INTEGER NOT NULL CHECK(active >= 0),
	saved_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS stack_entries (
	slot TEXT NOT NULL,
	position INTEGER NOT NULL,
	config TEXT NOT NULL,
	PRIMARY KEY(slot, position),
	FOREIGN KEY(slot) REFERENCES stacks(slot) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS session (
	id INTEGER PRIMARY KEY CHECK(id = 1),
	user_id TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

type Store struct {
	db *sql.DB
}

func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save replaces the stack stored under slot.
func (s *Store) Save(ctx context.Context, slot string, state router.SavedState) error {
	if len(state.Configs) == 0 {
		return fmt.Errorf("save %s: empty stack", slot)
	}
	if state.Active < 0 || state.Active >= len(state.Configs) {
		return fmt.Errorf("save %s: active index %d out of range", slot, state.Active)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM stacks WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("save %s: %w", slot, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO stacks(slot, active, saved_at) VALUES (?, ?, ?)`,
		slot, state.Active, ts(time.Now())); err != nil {
		return fmt.Errorf("save %s: %w", slot, err)
	}
	for i, raw := range state.Configs {
		if !json.Valid(raw) {
			return fmt.Errorf("save %s: entry %d is not valid JSON", slot, i)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO stack_entries(slot, position, config) VALUES (?, ?, ?)`,
			slot, i, string(raw)); err != nil {
			return fmt.Errorf("save %s: entry %d: %w", slot, i, err)
		}
	}
	return tx.Commit()
}

// Load returns the stack stored under slot, or ErrNotFound.
func (s *Store) Load(ctx context.Context, slot string) (router.SavedState, error) {
	var state router.SavedState
	err := s.db.QueryRowContext(ctx, `SELECT active FROM stacks WHERE slot = ?`, slot).Scan(&state.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return router.SavedState{}, ErrNotFound
	}
	if err != nil {
		return router.SavedState{}, fmt.Errorf("load %s: %w", slot, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT config FROM stack_entries WHERE slot = ? ORDER BY position`, slot)
	if err != nil {
		return router.SavedState{}, fmt.Errorf("load %s: %w", slot, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return router.SavedState{}, fmt.Errorf("load %s: %w", slot, err)
		}
		state.Configs = append(state.Configs, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return router.SavedState{}, fmt.Errorf("load %s: %w", slot, err)
	}
	if len(state.Configs) == 0 {
		return router.SavedState{}, ErrNotFound
	}
	return state, nil
}

func (s *Store) Delete(ctx context.Context, slot string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM stacks WHERE slot = ?`, slot)
	return err
}

// SetUser records the signed in user. An empty id signs out.
func (s *Store) SetUser(ctx context.Context, id model.UserID) error {
	if id == "" {
		_, err := s.db.ExecContext(ctx, `DELETE FROM session`)
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO session(id, user_id, updated_at) VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id, updated_at=excluded.updated_at`,
		string(id), ts(time.Now()))
	return err
}

// User returns the signed in user, or ErrNotFound.
func (s *Store) User(ctx context.Context) (model.UserID, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM session WHERE id = 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return model.UserID(id), err
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
