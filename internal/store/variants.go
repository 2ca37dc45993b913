// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package store

import (
	"context"
	"database/sql"
	"strings"
)

// upsertVariantTx records (or bumps) a TranslationVariant row inside an
// already-open transaction. Per spec.md §3/§4.2, a variant identical to
// the term itself (case/whitespace-insensitive) is never stored: it adds
// no information over the base Entry.
func upsertVariantTx(ctx context.Context, tx *sql.Tx, term, translation, srcLang, dstLang string, now int64) error {
	if strings.EqualFold(strings.TrimSpace(term), strings.TrimSpace(translation)) {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO translation_variants (term, translation, src_lang, dst_lang, last_used, count)
		VALUES (?, ?, ?, ?, ?, 1)
		ON CONFLICT(term, src_lang, dst_lang, translation) DO UPDATE SET
			last_used = excluded.last_used,
			count = translation_variants.count + 1`,
		term, translation, srcLang, dstLang, now)
	return classify(err, "upsert translation variant")
}

// ListVariants returns the alternate meanings accumulated for a term,
// most-used first, per spec.md §4.3's translation-history surface.
func (s *Store) ListVariants(ctx context.Context, term, srcLang, dstLang string) ([]TranslationVariant, error) {
	var out []TranslationVariant
	err := s.Read(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, term, translation, src_lang, dst_lang, created_at, COALESCE(last_used, 0), count
			FROM translation_variants
			WHERE lower(trim(term)) = lower(trim(?)) AND upper(trim(src_lang)) = upper(trim(?)) AND upper(trim(dst_lang)) = upper(trim(?))
			ORDER BY count DESC, last_used DESC`,
			term, srcLang, dstLang)
		if err != nil {
			return classify(err, "list variants")
		}
		defer rows.Close()
		for rows.Next() {
			var v TranslationVariant
			if err := rows.Scan(&v.ID, &v.Term, &v.Translation, &v.SrcLang, &v.DstLang, &v.CreatedAt, &v.LastUsed, &v.Count); err != nil {
				return classify(err, "scan variant")
			}
			out = append(out, v)
		}
		return classify(rows.Err(), "iterate variants")
	})
	return out, err
}
