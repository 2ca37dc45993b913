// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package store

import (
	"context"
	"database/sql"
)

// UpsertMark implements spec.md §4.7's upsertMark: the caller supplies
// the canonical path and a precomputed content fingerprint; the row is
// addressed by (path, lnum, col, kind) and the conflict branch refreshes
// fingerprint, length, term and updated_at.
func (s *Store) UpsertMark(ctx context.Context, path, fingerprint string, lnum, col, length int, term, kind string) (int64, error) {
	var id int64
	err := s.Write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bookmarks (path, fingerprint, lnum, col, length, term, kind)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(path, lnum, col, kind) DO UPDATE SET
				fingerprint = excluded.fingerprint,
				length = excluded.length,
				term = excluded.term,
				updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')`,
			path, fingerprint, lnum, col, length, term, kind)
		if err != nil {
			return classify(err, "upsert bookmark")
		}
		row := tx.QueryRowContext(ctx, `SELECT id FROM bookmarks WHERE path = ? AND lnum = ? AND col = ? AND kind = ?`, path, lnum, col, kind)
		return classify(row.Scan(&id), "reload bookmark id")
	})
	return id, err
}

// ListMarksForPath implements spec.md §4.7's listMarksForPath: a fast
// path keyed on the canonical path, falling back to the content
// fingerprint when the path has moved (file renamed/relocated), and
// repairing the path on every row that hit via fingerprint so future
// calls take the fast path again.
func (s *Store) ListMarksForPath(ctx context.Context, path, recomputedFingerprint string) ([]BookMark, error) {
	marks, err := queryMarks(ctx, s, `
		SELECT id, path, fingerprint, lnum, col, length, term, kind, updated_at
		FROM bookmarks WHERE path = ? ORDER BY lnum ASC, col ASC`, path)
	if err != nil || len(marks) > 0 || recomputedFingerprint == "" {
		return marks, err
	}

	marks, err = queryMarks(ctx, s, `
		SELECT id, path, fingerprint, lnum, col, length, term, kind, updated_at
		FROM bookmarks WHERE fingerprint = ? ORDER BY lnum ASC, col ASC`, recomputedFingerprint)
	if err != nil || len(marks) == 0 {
		return marks, err
	}

	writeErr := s.Write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE bookmarks SET path = ? WHERE fingerprint = ?`, path, recomputedFingerprint)
		return classify(err, "repair bookmark path")
	})
	if writeErr != nil {
		return marks, writeErr
	}
	for i := range marks {
		marks[i].Path = path
	}
	return marks, nil
}

func queryMarks(ctx context.Context, s *Store, query string, arg string) ([]BookMark, error) {
	var out []BookMark
	err := s.Read(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, arg)
		if err != nil {
			return classify(err, "query bookmarks")
		}
		defer rows.Close()
		for rows.Next() {
			var b BookMark
			if err := rows.Scan(&b.ID, &b.Path, &b.Fingerprint, &b.Lnum, &b.Col, &b.Length, &b.Term, &b.Kind, &b.UpdatedAt); err != nil {
				return classify(err, "scan bookmark")
			}
			out = append(out, b)
		}
		return classify(rows.Err(), "iterate bookmarks")
	})
	return out, err
}
