// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package dictionary

import (
	"context"
	"encoding/json"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/romariozh/vim-deepl-go/internal/store"
	"github.com/romariozh/vim-deepl-go/internal/translate"
)

// Service implements spec.md §4.4's ensureDefinitions: "fetched once per
// term, cached forever unless the MW schema changes underneath it".
type Service struct {
	store  *store.Store
	client Client
	group  singleflight.Group
}

// New builds a dictionary Service over the given storage handle and MW
// client. client may be nil when MW_SD3_API_KEY is unset; lookups then
// always return the cached state (possibly nil) without calling out.
func New(st *store.Store, client Client) *Service {
	return &Service{store: st, client: client}
}

// EnsureDefinitions implements the MetadataEnsurer capability internal/
// translate consumes: return cached metadata if present, else fetch it
// from Merriam-Webster (English terms only, per mw_fetch's src_lang
// gate) and cache the result before returning it. Concurrent calls for
// the same (term, srcLang) share one in-flight fetch via singleflight,
// the way the teacher's internal/sync package dedups concurrent client
// calls.
func (s *Service) EnsureDefinitions(ctx context.Context, term, srcLang string) (*translate.DefinitionsPayload, error) {
	srcLang = strings.ToUpper(strings.TrimSpace(srcLang))

	cached, err := s.store.GetDefinitionSet(ctx, term, srcLang)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		if updated := s.backfillAudio(ctx, term, srcLang, cached); updated != nil {
			cached = updated
		}
		return toPayload(cached), nil
	}

	if srcLang != "EN" || s.client == nil {
		return nil, nil
	}

	key := strings.ToLower(strings.TrimSpace(term)) + "|" + srcLang
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.fetchAndCache(ctx, term, srcLang)
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.(*translate.DefinitionsPayload), nil
}

// backfillAudio implements spec.md §4.4's backfill path: a cached
// DefinitionSet whose audio_ids came up empty (an older fetch, or a
// provider hiccup that still returned a parseable payload) gets its
// audio_main/audio_ids re-derived from the raw_json already on disk,
// with no provider round trip. Returns nil when there is nothing to
// backfill (audio already present, or raw_json isn't a parseable entry
// list — e.g. a cached suggestions-only response).
func (s *Service) backfillAudio(ctx context.Context, term, srcLang string, cached *store.DefinitionSet) *store.DefinitionSet {
	if len(cached.AudioIDs) > 0 || cached.RawJSON == "" {
		return nil
	}

	var entries []RawEntry
	if err := json.Unmarshal([]byte(cached.RawJSON), &entries); err != nil || len(entries) == 0 {
		return nil
	}

	relevant := filterEntries(entries, term)
	if len(relevant) == 0 {
		relevant = entries
	}
	main, ok := pickMainEntry(relevant, term)
	if !ok {
		main = relevant[0]
	}

	audioIDs := collectAudioIDs(main)
	if len(audioIDs) == 0 {
		return nil
	}

	updated := *cached
	updated.AudioIDs = audioIDs
	updated.AudioMain = audioIDs[0]

	if err := s.store.UpsertDefinitionSet(ctx, updated); err != nil {
		return nil
	}
	if reloaded, err := s.store.GetDefinitionSet(ctx, term, srcLang); err == nil && reloaded != nil {
		return reloaded
	}
	return &updated
}

func (s *Service) fetchAndCache(ctx context.Context, term, srcLang string) (*translate.DefinitionsPayload, error) {
	entries, raw, found, err := s.client.Lookup(ctx, term)
	if err != nil {
		return nil, nil
	}
	if !found {
		// MW returned a suggestions-only list[str] shape (or nothing at
		// all): cache an empty bucketed set per spec.md §4.4 so future
		// lookups for this term are a cache hit instead of another round
		// trip to a provider that will say the same thing again.
		set := store.DefinitionSet{Term: term, SrcLang: srcLang, RawJSON: string(raw)}
		if err := s.store.UpsertDefinitionSet(ctx, set); err != nil {
			return nil, err
		}
		return toPayload(&set), nil
	}

	relevant := filterEntries(entries, term)
	if len(relevant) == 0 {
		relevant = entries
	}

	main, ok := pickMainEntry(relevant, term)
	if !ok && len(relevant) > 0 {
		main = relevant[0]
		ok = true
	}

	set := store.DefinitionSet{
		Term:    term,
		SrcLang: srcLang,
		RawJSON: string(raw),
	}
	if ok {
		defs := extractDefinitions(main)
		set.Noun = defs["noun"]
		set.Verb = defs["verb"]
		set.Adjective = defs["adjective"]
		set.Adverb = defs["adverb"]
		set.Other = defs["other"]

		audioIDs := collectAudioIDs(main)
		set.AudioIDs = audioIDs
		if len(audioIDs) > 0 {
			set.AudioMain = audioIDs[0]
		}
	}

	if err := s.store.UpsertDefinitionSet(ctx, set); err != nil {
		return nil, err
	}

	reloaded, err := s.store.GetDefinitionSet(ctx, term, srcLang)
	if err != nil || reloaded == nil {
		return toPayload(&set), nil
	}
	return toPayload(reloaded), nil
}

// DeriveGrammar implements the MetadataEnsurer capability's grammar
// view (spec.md §4.4, ported from original_source's _mw_attach_grammar):
// a POS-grouped dictionary summary derived from the same cached
// raw_json as EnsureDefinitions, with no further provider call. Returns
// nil, nil when nothing is cached yet or the payload isn't a parseable
// MW entry list (e.g. a cached suggestions-only response).
func (s *Service) DeriveGrammar(ctx context.Context, term, srcLang string) (*translate.Grammar, error) {
	srcLang = strings.ToUpper(strings.TrimSpace(srcLang))

	cached, err := s.store.GetDefinitionSet(ctx, term, srcLang)
	if err != nil {
		return nil, err
	}
	if cached == nil || cached.RawJSON == "" {
		return nil, nil
	}

	var entries []RawEntry
	if err := json.Unmarshal([]byte(cached.RawJSON), &entries); err != nil || len(entries) == 0 {
		return nil, nil
	}
	return deriveGrammar(entries, term), nil
}

func toPayload(d *store.DefinitionSet) *translate.DefinitionsPayload {
	return &translate.DefinitionsPayload{
		Noun:      d.Noun,
		Verb:      d.Verb,
		Adjective: d.Adjective,
		Adverb:    d.Adverb,
		Other:     d.Other,
		AudioMain: d.AudioMain,
		AudioIDs:  d.AudioIDs,
	}
}
