package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"scicalc/internal/accumulator"
	"scicalc/internal/evaluator"
	"scicalc/internal/history"
)

// SchemaVersion is the current database layout.
const SchemaVersion = "1"

const driverName = "sqlite"

// SQLite is a SQLite-backed store. History entries are stored one row per
// entry, position 0 being the most recent.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create metadata table: %w", err)
	}

	s := &SQLite{db: db}

	version, err := s.metadata("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}

	switch version {
	case "":
		if err := s.migrateToV1(); err != nil {
			db.Close()
			return nil, err
		}
		if err := s.setMetadata("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	case SchemaVersion:
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}

	return s, nil
}

func (s *SQLite) migrateToV1() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			buffer TEXT NOT NULL,
			mode TEXT NOT NULL,
			angle TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS history (
			session_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			expression TEXT NOT NULL,
			result TEXT NOT NULL,
			PRIMARY KEY (session_id, position),
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate to schema v1: %w", err)
	}
	return nil
}

// Get retrieves a session and its history.
func (s *SQLite) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buffer, mode, angle, created, updated string
	err := s.db.QueryRowContext(ctx,
		"SELECT buffer, mode, angle, created_at, updated_at FROM sessions WHERE id = ?", id,
	).Scan(&buffer, &mode, &angle, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	entries, err := s.history(ctx, id)
	if err != nil {
		return nil, err
	}

	m, ok := accumulator.ParseMode(mode)
	if !ok {
		return nil, fmt.Errorf("session %s: unknown mode %q", id, mode)
	}
	a, err := evaluator.ParseAngleMode(angle)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}

	sess := &Session{
		ID:    id,
		State: accumulator.Restore(buffer, m, a, history.FromEntries(entries)),
	}
	if sess.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("session %s: created_at: %w", id, err)
	}
	if sess.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("session %s: updated_at: %w", id, err)
	}
	return sess, nil
}

func (s *SQLite) history(ctx context.Context, id string) ([]history.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT expression, result FROM history WHERE session_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", id, err)
	}
	defer rows.Close()

	var entries []history.Entry
	for rows.Next() {
		var e history.Entry
		if err := rows.Scan(&e.Expression, &e.Result); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Put writes the session row and replaces its history in one transaction.
func (s *SQLite) Put(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, buffer, mode, angle, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			buffer = excluded.buffer,
			mode = excluded.mode,
			angle = excluded.angle,
			updated_at = excluded.updated_at
	`,
		sess.ID,
		sess.State.Buffer,
		sess.State.Mode.String(),
		string(sess.State.Angle),
		sess.CreatedAt.UTC().Format(time.RFC3339Nano),
		sess.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM history WHERE session_id = ?", sess.ID); err != nil {
		return fmt.Errorf("reset history %s: %w", sess.ID, err)
	}
	for i, e := range sess.State.History.Entries() {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO history (session_id, position, expression, result) VALUES (?, ?, ?, ?)",
			sess.ID, i, e.Expression, e.Result,
		)
		if err != nil {
			return fmt.Errorf("save history %s: %w", sess.ID, err)
		}
	}

	return tx.Commit()
}

// Delete removes a session and its history.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM history WHERE session_id = ?", id); err != nil {
		return fmt.Errorf("delete history %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) metadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read metadata %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLite) setMetadata(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("write metadata %s: %w", key, err)
	}
	return nil
}
