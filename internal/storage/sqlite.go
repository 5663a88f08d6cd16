package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/linkify/internal/model"
)

// SQLiteOutbox implements Outbox using a SQLite database.
type SQLiteOutbox struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLiteOutbox opens or creates the outbox database at path.
func NewSQLiteOutbox(path string) (*SQLiteOutbox, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create outbox dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open outbox: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("outbox %s: %w", pragma, err)
		}
	}

	s := &SQLiteOutbox{db: db, path: path, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate outbox: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteOutbox) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteOutbox) Close() error {
	return s.db.Close()
}

func (s *SQLiteOutbox) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the pending_reads table.
func (s *SQLiteOutbox) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS pending_reads (
			link_id TEXT PRIMARY KEY NOT NULL,
			href TEXT NOT NULL DEFAULT '',
			queued_at TEXT NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 1
		);

		CREATE INDEX IF NOT EXISTS idx_pending_reads_queued_at ON pending_reads(queued_at);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Enqueue records a read-mark for later delivery. Queuing the same link
// again bumps its attempt counter and keeps the original queue time.
func (s *SQLiteOutbox) Enqueue(ctx context.Context, id model.ID, href string) error {
	if id.IsZero() {
		return errors.New("enqueue read: missing link id")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_reads (link_id, href, queued_at, attempts)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(link_id) DO UPDATE SET
			attempts = attempts + 1,
			href = CASE WHEN excluded.href != '' THEN excluded.href ELSE href END
	`, id.String(), href, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("enqueue read %s: %w", id, err)
	}
	return nil
}

// Pending returns all queued read-marks, oldest first.
func (s *SQLiteOutbox) Pending(ctx context.Context) ([]PendingRead, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT link_id, href, queued_at, attempts
		FROM pending_reads
		ORDER BY queued_at, link_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list pending reads: %w", err)
	}
	defer rows.Close()

	var pending []PendingRead
	for rows.Next() {
		var p PendingRead
		var id, queuedAt string
		if err := rows.Scan(&id, &p.Href, &queuedAt, &p.Attempts); err != nil {
			return nil, fmt.Errorf("scan pending read: %w", err)
		}
		p.LinkID = model.ID(id)
		p.QueuedAt, _ = time.Parse(time.RFC3339Nano, queuedAt)
		pending = append(pending, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pending, nil
}

// Remove drops a delivered read-mark. Removing an unknown id is not an error.
func (s *SQLiteOutbox) Remove(ctx context.Context, id model.ID) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM pending_reads WHERE link_id = ?", id.String()); err != nil {
		return fmt.Errorf("remove pending read %s: %w", id, err)
	}
	return nil
}
