// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package store

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"strings"
	"time"

	"github.com/romariozh/vim-deepl-go/internal/apperr"
)

// maxContextRows is spec.md §4.2's per-(term, src_lang, dst_lang) cap on
// remembered sentence contexts: the 4th distinct sentence evicts the
// least-recently-used of the existing three.
const maxContextRows = 3

// CtxHash fingerprints a sentence the way spec.md §3 defines ctx_hash:
// sha1 over the trimmed, lower-cased sentence text.
func CtxHash(ctxText string) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(ctxText))))
	return hex.EncodeToString(sum[:])
}

// UpsertCtxEntry implements spec.md §4.2's context-cache upsert: matching
// (term, src_lang, dst_lang, ctx_hash) bumps count/last_used; a new
// sentence is inserted, evicting the least-recently-used row once the
// group already holds maxContextRows distinct sentences.
func (s *Store) UpsertCtxEntry(ctx context.Context, term, translation, srcLang, dstLang, ctxText string) (*ContextEntry, error) {
	term = strings.TrimSpace(term)
	srcLang = strings.ToUpper(strings.TrimSpace(srcLang))
	dstLang = strings.ToUpper(strings.TrimSpace(dstLang))
	hash := CtxHash(ctxText)
	now := time.Now().Unix()

	var result ContextEntry
	err := s.Write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE context_entries SET translation = ?, last_used = ?, count = count + 1
			WHERE term = ? AND src_lang = ? AND dst_lang = ? AND ctx_hash = ?`,
			translation, now, term, srcLang, dstLang, hash)
		if err != nil {
			return classify(err, "update context entry")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			if err := evictOldestCtxIfFull(ctx, tx, term, srcLang, dstLang); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO context_entries (term, translation, src_lang, dst_lang, ctx_hash, ctx_text, last_used, count)
				VALUES (?, ?, ?, ?, ?, ?, ?, 1)`,
				term, translation, srcLang, dstLang, hash, strings.TrimSpace(ctxText), now)
			if err != nil {
				return classify(err, "insert context entry")
			}
		}

		row := tx.QueryRowContext(ctx, `
			SELECT id, term, translation, src_lang, dst_lang, ctx_hash, ctx_text, created_at, COALESCE(last_used, 0), count
			FROM context_entries WHERE term = ? AND src_lang = ? AND dst_lang = ? AND ctx_hash = ?`,
			term, srcLang, dstLang, hash)
		if err := row.Scan(&result.ID, &result.Term, &result.Translation, &result.SrcLang, &result.DstLang,
			&result.CtxHash, &result.CtxText, &result.CreatedAt, &result.LastUsed, &result.Count); err != nil {
			return classify(err, "reload context entry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func evictOldestCtxIfFull(ctx context.Context, tx *sql.Tx, term, srcLang, dstLang string) error {
	var count int
	row := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM context_entries WHERE term = ? AND src_lang = ? AND dst_lang = ?`,
		term, srcLang, dstLang)
	if err := row.Scan(&count); err != nil {
		return classify(err, "count context entries")
	}
	if count < maxContextRows {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		DELETE FROM context_entries WHERE id IN (
			SELECT id FROM context_entries
			WHERE term = ? AND src_lang = ? AND dst_lang = ?
			ORDER BY COALESCE(last_used, 0) ASC, created_at ASC
			LIMIT 1
		)`, term, srcLang, dstLang)
	return classify(err, "evict oldest context entry")
}

// ListCtxTranslations returns the sentence-scoped translations cached for
// a term, most-recently-used first, per spec.md §4.3's context lookup.
func (s *Store) ListCtxTranslations(ctx context.Context, term, srcLang, dstLang string) ([]ContextEntry, error) {
	var out []ContextEntry
	err := s.Read(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, term, translation, src_lang, dst_lang, ctx_hash, ctx_text, created_at, COALESCE(last_used, 0), count
			FROM context_entries
			WHERE lower(trim(term)) = lower(trim(?)) AND upper(trim(src_lang)) = upper(trim(?)) AND upper(trim(dst_lang)) = upper(trim(?))
			ORDER BY COALESCE(last_used, 0) DESC`,
			term, srcLang, dstLang)
		if err != nil {
			return classify(err, "list context entries")
		}
		defer rows.Close()
		for rows.Next() {
			var c ContextEntry
			if err := rows.Scan(&c.ID, &c.Term, &c.Translation, &c.SrcLang, &c.DstLang, &c.CtxHash, &c.CtxText, &c.CreatedAt, &c.LastUsed, &c.Count); err != nil {
				return classify(err, "scan context entry")
			}
			out = append(out, c)
		}
		return classify(rows.Err(), "iterate context entries")
	})
	return out, err
}

// GetCtxEntryByHash looks up a single cached sentence translation.
func (s *Store) GetCtxEntryByHash(ctx context.Context, term, srcLang, dstLang, ctxText string) (*ContextEntry, error) {
	hash := CtxHash(ctxText)
	var c ContextEntry
	row := s.QueryRow(ctx, `
		SELECT id, term, translation, src_lang, dst_lang, ctx_hash, ctx_text, created_at, COALESCE(last_used, 0), count
		FROM context_entries
		WHERE lower(trim(term)) = lower(trim(?)) AND upper(trim(src_lang)) = upper(trim(?)) AND upper(trim(dst_lang)) = upper(trim(?)) AND ctx_hash = ?`,
		term, srcLang, dstLang, hash)
	err := row.Scan(&c.ID, &c.Term, &c.Translation, &c.SrcLang, &c.DstLang, &c.CtxHash, &c.CtxText, &c.CreatedAt, &c.LastUsed, &c.Count)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage(err, "get context entry by hash")
	}
	return &c, nil
}
