// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

// migrations.go implements the versioned migration list spec.md §9's
// DESIGN NOTES call for ("Schema migrations expressed as many scattered
// ADD COLUMN probes. Replace with a versioned migration list keyed by
// user_version; idempotent execution remains."), grounded on the
// teacher's internal/database/migrations.go schema_migrations table and
// its pre-release "consolidate into one CREATE TABLE" approach: there
// is exactly one migration today because this is a first release.
package store

import (
	"context"
	"fmt"

	"github.com/romariozh/vim-deepl-go/internal/apperr"
)

// Migration is one versioned, idempotent schema change.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);`

func migrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "initial_schema",
			SQL: `
CREATE TABLE IF NOT EXISTS entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	term TEXT NOT NULL,
	translation TEXT NOT NULL,
	src_lang TEXT NOT NULL,
	dst_lang TEXT NOT NULL,
	detected_raw TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
	last_used INTEGER,
	count INTEGER NOT NULL DEFAULT 0,
	hard INTEGER NOT NULL DEFAULT 0,
	ignore INTEGER NOT NULL DEFAULT 0,
	UNIQUE(term, src_lang, dst_lang)
);
CREATE INDEX IF NOT EXISTS idx_entries_term ON entries(term);

CREATE TABLE IF NOT EXISTS context_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	term TEXT NOT NULL,
	translation TEXT NOT NULL,
	src_lang TEXT NOT NULL,
	dst_lang TEXT NOT NULL,
	ctx_hash TEXT NOT NULL,
	ctx_text TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
	last_used INTEGER,
	count INTEGER NOT NULL DEFAULT 0,
	UNIQUE(term, src_lang, dst_lang, ctx_hash)
);
CREATE INDEX IF NOT EXISTS idx_context_entries_lookup ON context_entries(term, src_lang, dst_lang);

CREATE TABLE IF NOT EXISTS translation_variants (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	term TEXT NOT NULL,
	translation TEXT NOT NULL,
	src_lang TEXT NOT NULL,
	dst_lang TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
	last_used INTEGER,
	count INTEGER NOT NULL DEFAULT 0,
	UNIQUE(term, src_lang, dst_lang, translation)
);

CREATE TABLE IF NOT EXISTS definition_sets (
	term TEXT NOT NULL,
	src_lang TEXT NOT NULL,
	noun TEXT NOT NULL DEFAULT '[]',
	verb TEXT NOT NULL DEFAULT '[]',
	adjective TEXT NOT NULL DEFAULT '[]',
	adverb TEXT NOT NULL DEFAULT '[]',
	other TEXT NOT NULL DEFAULT '[]',
	raw_json TEXT NOT NULL DEFAULT '',
	audio_main TEXT NOT NULL DEFAULT '',
	audio_ids TEXT NOT NULL DEFAULT '[]',
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
	PRIMARY KEY (term, src_lang)
);

CREATE TABLE IF NOT EXISTS training_cards (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	entry_id INTEGER NOT NULL UNIQUE REFERENCES entries(id),
	src_lang TEXT NOT NULL,
	reps INTEGER NOT NULL DEFAULT 0,
	lapses INTEGER NOT NULL DEFAULT 0,
	ef REAL NOT NULL DEFAULT 2.5,
	interval_days INTEGER NOT NULL DEFAULT 0,
	due_at INTEGER NOT NULL DEFAULT 0,
	last_review_at INTEGER,
	last_grade INTEGER NOT NULL DEFAULT 0,
	correct_streak INTEGER NOT NULL DEFAULT 0,
	wrong_streak INTEGER NOT NULL DEFAULT 0,
	suspended INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_training_cards_due ON training_cards(due_at);

CREATE TABLE IF NOT EXISTS training_reviews (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	card_id INTEGER NOT NULL REFERENCES training_cards(id),
	ts INTEGER NOT NULL,
	grade INTEGER NOT NULL,
	day TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_training_reviews_day ON training_reviews(day);

CREATE TABLE IF NOT EXISTS bookmarks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	lnum INTEGER NOT NULL,
	col INTEGER NOT NULL,
	length INTEGER NOT NULL,
	term TEXT NOT NULL,
	kind TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
	UNIQUE(path, lnum, col, kind)
);
CREATE INDEX IF NOT EXISTS idx_bookmarks_fingerprint ON bookmarks(fingerprint);
`,
		},
	}
}

// migrate applies schema_migrations bookkeeping plus any migration not
// yet recorded, in version order, inside one immediate transaction per
// migration so a crash mid-migration never leaves a half-applied schema.
func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.writer.ExecContext(ctx, schemaMigrationsTable); err != nil {
		return apperr.Storage(err, "create schema_migrations table")
	}

	applied := make(map[int]bool)
	rows, err := s.writer.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return apperr.Storage(err, "read applied migrations")
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return apperr.Storage(err, "scan applied migration")
		}
		applied[v] = true
	}
	rows.Close()

	for _, m := range migrations() {
		if applied[m.Version] {
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func (s *Store) applyMigration(ctx context.Context, m Migration) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return classify(err, "begin migration")
	}
	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		_ = tx.Rollback()
		return classify(err, "apply migration sql")
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations(version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
		_ = tx.Rollback()
		return classify(err, "record migration")
	}
	return classify(tx.Commit(), "commit migration")
}
