package state

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at dbPath, creating parent directories
// as needed. Use ":memory:" for a throwaway database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, ferrors.FileSystemError("failed to create state directory").
				WithCause(err).
				WithContext("path", dbPath).
				Build()
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, storeError("open sqlite database", err)
	}
	// One connection serializes writers and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, storeError("initialize schema", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		source TEXT PRIMARY KEY,
		output TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		build_id TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		rendered INTEGER NOT NULL,
		unchanged INTEGER NOT NULL,
		drafts INTEGER NOT NULL,
		failed INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) PageFingerprint(ctx context.Context, source string) (string, bool, error) {
	var fp string
	err := s.db.QueryRowContext(ctx, "SELECT fingerprint FROM pages WHERE source = ?", source).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeError("query page fingerprint", err)
	}
	return fp, true, nil
}

func (s *SQLiteStore) RecordPage(ctx context.Context, rec PageRecord) error {
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (source, output, fingerprint, build_id, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			output = excluded.output,
			fingerprint = excluded.fingerprint,
			build_id = excluded.build_id,
			updated_at = excluded.updated_at`,
		rec.Source, rec.Output, rec.Fingerprint, rec.BuildID, updated.UnixNano(),
	)
	if err != nil {
		return storeError("upsert page", err)
	}
	return nil
}

func (s *SQLiteStore) ForgetPage(ctx context.Context, source string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM pages WHERE source = ?", source); err != nil {
		return storeError("delete page", err)
	}
	return nil
}

func (s *SQLiteStore) RecordBuild(ctx context.Context, rec BuildRecord) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (id, started_at, duration_ms, outcome, rendered, unchanged, drafts, failed) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.StartedAt.UnixNano(), rec.Duration.Milliseconds(), rec.Outcome,
		rec.Rendered, rec.Unchanged, rec.Drafts, rec.Failed,
	)
	if err != nil {
		return storeError("insert build", err)
	}
	return nil
}

func (s *SQLiteStore) LastBuild(ctx context.Context) (*BuildRecord, bool, error) {
	var (
		rec        BuildRecord
		startedAt  int64
		durationMS int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, started_at, duration_ms, outcome, rendered, unchanged, drafts, failed FROM builds ORDER BY started_at DESC LIMIT 1",
	).Scan(&rec.ID, &startedAt, &durationMS, &rec.Outcome, &rec.Rendered, &rec.Unchanged, &rec.Drafts, &rec.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storeError("query last build", err)
	}
	rec.StartedAt = time.Unix(0, startedAt)
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	return &rec, true, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func storeError(op string, err error) error {
	return ferrors.StoreError("state store: " + op).WithCause(err).Build()
}
