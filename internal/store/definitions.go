// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/romariozh/vim-deepl-go/internal/apperr"
)

// GetDefinitionSet looks up the dictionary metadata cached for (term,
// src_lang), returning nil if absent so callers can distinguish "never
// fetched" from "fetched, no definitions" per spec.md §4.4.
func (s *Store) GetDefinitionSet(ctx context.Context, term, srcLang string) (*DefinitionSet, error) {
	d, err := scanDefinitionRow(s.QueryRow(ctx, `
		SELECT term, src_lang, noun, verb, adjective, adverb, other, raw_json, audio_main, audio_ids, created_at
		FROM definition_sets WHERE lower(trim(term)) = lower(trim(?)) AND upper(trim(src_lang)) = upper(trim(?))`,
		term, strings.ToUpper(strings.TrimSpace(srcLang))))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage(err, "get definition set")
	}
	return d, nil
}

func scanDefinitionRow(row *sql.Row) (*DefinitionSet, error) {
	var d DefinitionSet
	var noun, verb, adjective, adverb, other, audioIDs string
	if err := row.Scan(&d.Term, &d.SrcLang, &noun, &verb, &adjective, &adverb, &other, &d.RawJSON, &d.AudioMain, &audioIDs, &d.CreatedAt); err != nil {
		return nil, err
	}
	for _, pair := range []struct {
		src string
		dst *[]string
	}{{noun, &d.Noun}, {verb, &d.Verb}, {adjective, &d.Adjective}, {adverb, &d.Adverb}, {other, &d.Other}} {
		if err := json.Unmarshal([]byte(pair.src), pair.dst); err != nil {
			return nil, err
		}
	}
	if err := json.Unmarshal([]byte(audioIDs), &d.AudioIDs); err != nil {
		return nil, err
	}
	return &d, nil
}

// UpsertDefinitionSet implements spec.md §4.4's ensureDefinitions write
// path: the full set replaces any existing row for (term, src_lang), so
// a re-fetch after a provider schema change doesn't leave stale buckets.
func (s *Store) UpsertDefinitionSet(ctx context.Context, d DefinitionSet) error {
	term := strings.TrimSpace(d.Term)
	srcLang := strings.ToUpper(strings.TrimSpace(d.SrcLang))

	marshal := func(v []string) (string, error) {
		if v == nil {
			v = []string{}
		}
		b, err := json.Marshal(v)
		return string(b), err
	}
	noun, err := marshal(d.Noun)
	if err != nil {
		return apperr.Args("encode noun bucket: %v", err)
	}
	verb, err := marshal(d.Verb)
	if err != nil {
		return apperr.Args("encode verb bucket: %v", err)
	}
	adjective, err := marshal(d.Adjective)
	if err != nil {
		return apperr.Args("encode adjective bucket: %v", err)
	}
	adverb, err := marshal(d.Adverb)
	if err != nil {
		return apperr.Args("encode adverb bucket: %v", err)
	}
	other, err := marshal(d.Other)
	if err != nil {
		return apperr.Args("encode other bucket: %v", err)
	}
	audioIDs, err := marshal(d.AudioIDs)
	if err != nil {
		return apperr.Args("encode audio ids: %v", err)
	}

	return s.Write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO definition_sets (term, src_lang, noun, verb, adjective, adverb, other, raw_json, audio_main, audio_ids)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(term, src_lang) DO UPDATE SET
				noun = excluded.noun, verb = excluded.verb, adjective = excluded.adjective,
				adverb = excluded.adverb, other = excluded.other, raw_json = excluded.raw_json,
				audio_main = excluded.audio_main, audio_ids = excluded.audio_ids`,
			term, srcLang, noun, verb, adjective, adverb, other, d.RawJSON, d.AudioMain, audioIDs)
		return classify(err, "upsert definition set")
	})
}
