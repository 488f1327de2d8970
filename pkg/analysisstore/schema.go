package analysisstore

import (
	"context"
	"fmt"
)

const SchemaVersion = 1

// Migrate creates (or upgrades) the analysis schema in-place.
//
// The uniqueness constraint over (video_id, model, prompt_hash) enforces
// the idempotent-cache invariant at the storage layer.
func Migrate(ctx context.Context, s *Store) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("store is nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS schema_meta (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			schema_version INTEGER NOT NULL
		);`,
		`INSERT INTO schema_meta (id, schema_version)
			VALUES (1, 0)
			ON CONFLICT(id) DO NOTHING;`,

		`CREATE TABLE IF NOT EXISTS videos (
			id TEXT PRIMARY KEY,
			youtube_id TEXT NOT NULL UNIQUE,
			title TEXT,
			channel_id TEXT,
			duration_sec INTEGER,
			-- unix epoch seconds for SQLite simplicity
			published_at INTEGER,
			owner_id TEXT
		);`,

		`CREATE TABLE IF NOT EXISTS video_analyses (
			id TEXT PRIMARY KEY,
			video_id TEXT NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
			model TEXT NOT NULL,
			prompt_version INTEGER NOT NULL DEFAULT 1,
			prompt_hash TEXT NOT NULL,
			summary TEXT NOT NULL,
			-- JSON string for portability across backends
			insights_json TEXT NOT NULL,
			tokens_in INTEGER,
			tokens_out INTEGER,
			created_at TEXT NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS video_analyses_unique
			ON video_analyses(video_id, model, prompt_hash);`,

		`CREATE TABLE IF NOT EXISTS transcript_caches (
			id TEXT PRIMARY KEY,
			video_id TEXT NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
			lang TEXT NOT NULL DEFAULT 'en',
			source TEXT NOT NULL,
			content TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS transcript_caches_unique
			ON transcript_caches(video_id, lang, source);`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE schema_meta SET schema_version = ? WHERE id = 1 AND schema_version < ?`,
		SchemaVersion, SchemaVersion); err != nil {
		return fmt.Errorf("bump schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
