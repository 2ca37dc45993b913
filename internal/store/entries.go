// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/romariozh/vim-deepl-go/internal/apperr"
)

// GetBaseEntryAnySrc implements spec.md §4.2's getBaseEntryAnySrc: a
// case-insensitive, whitespace-trimmed match on term, with language
// codes compared after upper(trim(...)). If srcHint is non-empty it is
// preferred; otherwise the most recently used row wins.
func (s *Store) GetBaseEntryAnySrc(ctx context.Context, term, dstLang, srcHint string) (*Entry, error) {
	term = strings.TrimSpace(term)
	dstLang = strings.ToUpper(strings.TrimSpace(dstLang))
	srcHint = strings.ToUpper(strings.TrimSpace(srcHint))

	var e Entry
	var lastUsed sql.NullInt64
	query := `
		SELECT id, term, translation, src_lang, dst_lang, detected_raw, created_at, last_used, count, hard, ignore
		FROM entries
		WHERE lower(trim(term)) = lower(trim(?)) AND upper(trim(dst_lang)) = ?
		ORDER BY
			CASE WHEN ? != '' AND upper(trim(src_lang)) = ? THEN 0 ELSE 1 END,
			COALESCE(last_used, 0) DESC,
			created_at DESC
		LIMIT 1`
	row := s.QueryRow(ctx, query, term, dstLang, srcHint, srcHint)
	err := row.Scan(&e.ID, &e.Term, &e.Translation, &e.SrcLang, &e.DstLang, &e.DetectedRaw, &e.CreatedAt, &lastUsed, &e.Count, &e.Hard, &e.Ignore)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage(err, "get base entry")
	}
	e.LastUsed = lastUsed.Int64
	return &e, nil
}

// GetEntryByID fetches a single Entry by id, returning nil if absent.
func (s *Store) GetEntryByID(ctx context.Context, id int64) (*Entry, error) {
	var e Entry
	var lastUsed sql.NullInt64
	row := s.QueryRow(ctx, `
		SELECT id, term, translation, src_lang, dst_lang, detected_raw, created_at, last_used, count, hard, ignore
		FROM entries WHERE id = ?`, id)
	err := row.Scan(&e.ID, &e.Term, &e.Translation, &e.SrcLang, &e.DstLang, &e.DetectedRaw, &e.CreatedAt, &lastUsed, &e.Count, &e.Hard, &e.Ignore)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage(err, "get entry by id")
	}
	e.LastUsed = lastUsed.Int64
	return &e, nil
}

// UpsertBaseEntryParams holds UpsertBaseEntry's inputs.
type UpsertBaseEntryParams struct {
	Term          string
	Translation   string
	SrcLang       string
	DstLang       string
	DetectedOrCtx string // either the provider's detected language, or a sentence context
}

// UpsertBaseEntry implements spec.md §4.2's upsertBaseEntry: atomic
// insert/update; on conflict, bumps last_used/count, and replaces
// detected_raw with the sentence context when the supplied string looks
// sentence-like, else with the provider's detected-language string.
// It also inserts/upserts the matching TranslationVariant row in the
// same transaction, so a reader of the base row is guaranteed to see
// the variant (spec.md §5 ordering invariant).
func (s *Store) UpsertBaseEntry(ctx context.Context, p UpsertBaseEntryParams) (*Entry, error) {
	term := strings.TrimSpace(p.Term)
	srcLang := strings.ToUpper(strings.TrimSpace(p.SrcLang))
	dstLang := strings.ToUpper(strings.TrimSpace(p.DstLang))
	now := time.Now().Unix()

	var result Entry
	err := s.Write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO entries (term, translation, src_lang, dst_lang, detected_raw, last_used, count)
			VALUES (?, ?, ?, ?, ?, ?, 1)
			ON CONFLICT(term, src_lang, dst_lang) DO UPDATE SET
				translation = excluded.translation,
				detected_raw = excluded.detected_raw,
				last_used = excluded.last_used,
				count = entries.count + 1`,
			term, p.Translation, srcLang, dstLang, p.DetectedOrCtx, now)
		if err != nil {
			return classify(err, "upsert base entry")
		}

		row := tx.QueryRowContext(ctx, `
			SELECT id, term, translation, src_lang, dst_lang, detected_raw, created_at, last_used, count, hard, ignore
			FROM entries WHERE term = ? AND src_lang = ? AND dst_lang = ?`, term, srcLang, dstLang)
		var lastUsed sql.NullInt64
		if err := row.Scan(&result.ID, &result.Term, &result.Translation, &result.SrcLang, &result.DstLang,
			&result.DetectedRaw, &result.CreatedAt, &lastUsed, &result.Count, &result.Hard, &result.Ignore); err != nil {
			return classify(err, "reload base entry")
		}
		result.LastUsed = lastUsed.Int64

		return upsertVariantTx(ctx, tx, term, p.Translation, srcLang, dstLang, now)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// TouchBaseUsage implements spec.md §4.2's touchBaseUsage: increments
// count and stamps last_used, and bumps the TranslationVariant held by
// this Entry's translation as well.
func (s *Store) TouchBaseUsage(ctx context.Context, entryID int64) error {
	now := time.Now().Unix()
	return s.Write(ctx, func(tx *sql.Tx) error {
		var term, srcLang, dstLang, translation string
		row := tx.QueryRowContext(ctx, `SELECT term, src_lang, dst_lang, translation FROM entries WHERE id = ?`, entryID)
		if err := row.Scan(&term, &srcLang, &dstLang, &translation); err != nil {
			return classify(err, "lookup entry for touch")
		}
		if _, err := tx.ExecContext(ctx, `UPDATE entries SET count = count + 1, last_used = ? WHERE id = ?`, now, entryID); err != nil {
			return classify(err, "touch entry usage")
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE translation_variants SET count = count + 1, last_used = ?
			WHERE term = ? AND src_lang = ? AND dst_lang = ? AND translation = ?`,
			now, term, srcLang, dstLang, translation)
		if err != nil {
			return classify(err, "touch variant usage")
		}
		return nil
	})
}

// SetHard toggles the manual difficulty counter on an entry located by term.
func (s *Store) SetHard(ctx context.Context, term, srcLang, dstLang string, hard int) (*Entry, error) {
	var e *Entry
	err := s.Write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE entries SET hard = ? WHERE lower(trim(term)) = lower(trim(?)) AND upper(trim(src_lang)) = upper(trim(?)) AND upper(trim(dst_lang)) = upper(trim(?))`,
			hard, term, srcLang, dstLang)
		return classify(err, "set hard")
	})
	if err != nil {
		return nil, err
	}
	return s.GetBaseEntryAnySrc(ctx, term, dstLang, srcLang)
}

// SetIgnore marks an entry (by term or by id) as ignored for cache/training purposes.
func (s *Store) SetIgnore(ctx context.Context, entryID int64, term, srcLang, dstLang string) (int64, error) {
	var resolvedID int64
	err := s.Write(ctx, func(tx *sql.Tx) error {
		if entryID != 0 {
			_, err := tx.ExecContext(ctx, `UPDATE entries SET ignore = 1 WHERE id = ?`, entryID)
			resolvedID = entryID
			return classify(err, "set ignore by id")
		}
		row := tx.QueryRowContext(ctx, `
			SELECT id FROM entries
			WHERE lower(trim(term)) = lower(trim(?)) AND upper(trim(src_lang)) = upper(trim(?)) AND upper(trim(dst_lang)) = upper(trim(?))`,
			term, srcLang, dstLang)
		if err := row.Scan(&resolvedID); err != nil {
			return classify(err, "resolve entry for ignore")
		}
		_, err := tx.ExecContext(ctx, `UPDATE entries SET ignore = 1 WHERE id = ?`, resolvedID)
		return classify(err, "set ignore by term")
	})
	return resolvedID, err
}

// FindEntryByTermAnySrcDst resolves an Entry for handler endpoints that
// only know a term and an optional source-language filter, not the
// destination language (spec.md §6's mark_hard/mark_ignore requests
// omit dst_lang entirely): most recently used match wins.
func (s *Store) FindEntryByTermAnySrcDst(ctx context.Context, term string, srcLangs []string) (*Entry, error) {
	term = strings.TrimSpace(term)
	query := `
		SELECT id, term, translation, src_lang, dst_lang, detected_raw, created_at, last_used, count, hard, ignore
		FROM entries WHERE lower(trim(term)) = lower(trim(?))`
	args := []any{term}
	if len(srcLangs) > 0 {
		query += " AND upper(trim(src_lang)) IN (" + placeholders(len(srcLangs)) + ")"
		args = append(args, anySlice(upperAll(srcLangs))...)
	}
	query += " ORDER BY COALESCE(last_used, 0) DESC, created_at DESC LIMIT 1"

	var e Entry
	var lastUsed sql.NullInt64
	row := s.QueryRow(ctx, query, args...)
	err := row.Scan(&e.ID, &e.Term, &e.Translation, &e.SrcLang, &e.DstLang, &e.DetectedRaw, &e.CreatedAt, &lastUsed, &e.Count, &e.Hard, &e.Ignore)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage(err, "find entry by term any dst")
	}
	e.LastUsed = lastUsed.Int64
	return &e, nil
}

// SentenceLike is the "short whitespace/punctuation heuristic" spec.md
// §4.2 leaves to the implementer: a string counts as a sentence when it
// contains internal whitespace (more than one token) or ends with
// sentence-terminal punctuation.
func SentenceLike(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if strings.ContainsAny(s, " \t\n") {
		return true
	}
	last := s[len(s)-1]
	return last == '.' || last == '!' || last == '?'
}
