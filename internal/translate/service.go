// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package translate

import (
	"context"
	"strings"
	"time"

	"github.com/romariozh/vim-deepl-go/internal/store"
)

// MetadataEnsurer is the capability internal/dictionary satisfies: "ensure
// the dictionary metadata for this term is cached, return it". Expressed
// as an interface here (rather than importing internal/dictionary
// directly) per spec.md §9's capability-interface design note, so unit
// tests can swap in a fake that never hits the network.
type MetadataEnsurer interface {
	EnsureDefinitions(ctx context.Context, term, srcLang string) (*DefinitionsPayload, error)
	DeriveGrammar(ctx context.Context, term, srcLang string) (*Grammar, error)
}

// Service implements spec.md §4.3's translation service.
type Service struct {
	store    *store.Store
	provider Provider
	meta     MetadataEnsurer
}

// New builds a translation Service over the given storage handle, DeepL
// provider, and dictionary-metadata ensurer.
func New(st *store.Store, provider Provider, meta MetadataEnsurer) *Service {
	return &Service{store: st, provider: provider, meta: meta}
}

const ctxTranslationLimit = 10

// TranslateWord implements spec.md §4.3's translateWord algorithm.
func (s *Service) TranslateWord(ctx context.Context, word, targetLang, srcHint, sentenceContext string) WordResult {
	targetLang = strings.ToUpper(strings.TrimSpace(targetLang))
	if targetLang == "" {
		targetLang = "RU"
	}
	ctxText := collapseWhitespace(sentenceContext)

	if ctxText != "" {
		return s.translateWithContext(ctx, word, targetLang, srcHint, ctxText)
	}
	return s.translateBase(ctx, word, targetLang, srcHint)
}

func (s *Service) translateWithContext(ctx context.Context, word, targetLang, srcHint, ctxText string) WordResult {
	srcExpected := strings.ToUpper(strings.TrimSpace(srcHint))
	if srcExpected == "" {
		srcExpected = "EN"
	}

	cached, err := s.store.GetCtxEntryByHash(ctx, word, srcExpected, targetLang, ctxText)
	if err == nil && cached == nil {
		// fall back to any src_lang for the same term/sentence, per spec.md
		// §4.3's "fallback to any src_lang if missing".
		cached, err = s.findCtxAnySrc(ctx, word, targetLang, ctxText)
	}
	if err == nil && cached != nil {
		return s.onContextHit(ctx, word, targetLang, ctxText, cached)
	}

	result, callErr := s.provider.Translate(ctx, word, targetLang, ctxText)
	if callErr != nil {
		return errorWordResult(word, targetLang, true, callErr.Error())
	}

	src := normalizeSrcLang(result.DetectedSrc, srcHint)
	_, err = s.store.UpsertBaseEntry(ctx, store.UpsertBaseEntryParams{
		Term: word, Translation: result.Text, SrcLang: src, DstLang: targetLang, DetectedOrCtx: ctxText,
	})
	if err != nil {
		return errorWordResult(word, targetLang, true, err.Error())
	}
	ctxEntry, err := s.store.UpsertCtxEntry(ctx, word, result.Text, src, targetLang, ctxText)
	if err != nil {
		return errorWordResult(word, targetLang, true, err.Error())
	}

	defs := s.ensureMetadata(ctx, word, src)
	alts := s.listCtxTranslations(ctx, word, src, targetLang)

	return WordResult{
		Type:               "word",
		Source:             word,
		Text:               result.Text,
		TargetLang:         targetLang,
		DetectedSourceLang: src,
		FromCache:          false,
		Timestamp:          nowISO(),
		LastUsed:           nowISO(),
		Count:              1,
		MWDefinitions:      defs,
		ContextUsed:        true,
		CacheSource:        nil,
		ContextRaw:         ctxEntry.CtxText,
		CtxTranslations:    alts,
	}
}

func (s *Service) findCtxAnySrc(ctx context.Context, word, targetLang, ctxText string) (*store.ContextEntry, error) {
	hash := store.CtxHash(ctxText)
	// Context rows are only written with a normalized source language
	// (EN or DA; see normalizeSrcLang), so those are the two to search.
	for _, src := range []string{"EN", "DA"} {
		all, err := s.store.ListCtxTranslations(ctx, word, src, targetLang)
		if err != nil {
			return nil, err
		}
		for i := range all {
			if all[i].CtxHash == hash {
				return &all[i], nil
			}
		}
	}
	return nil, nil
}

func (s *Service) onContextHit(ctx context.Context, word, targetLang, ctxText string, cached *store.ContextEntry) WordResult {
	_, _ = s.store.UpsertCtxEntry(ctx, word, cached.Translation, cached.SrcLang, targetLang, ctxText)

	if base, _ := s.store.GetBaseEntryAnySrc(ctx, word, targetLang, ""); base == nil {
		_, _ = s.store.UpsertBaseEntry(ctx, store.UpsertBaseEntryParams{
			Term: word, Translation: cached.Translation, SrcLang: cached.SrcLang, DstLang: targetLang, DetectedOrCtx: ctxText,
		})
	}

	defs := s.ensureMetadata(ctx, word, cached.SrcLang)
	alts := s.listCtxTranslations(ctx, word, cached.SrcLang, targetLang)

	return WordResult{
		Type:               "word",
		Source:             word,
		Text:               cached.Translation,
		TargetLang:         targetLang,
		DetectedSourceLang: cached.SrcLang,
		FromCache:          true,
		Timestamp:          cached.CreatedAt,
		LastUsed:           nowISO(),
		Count:              cached.Count + 1,
		MWDefinitions:      defs,
		ContextUsed:        true,
		CacheSource:        cacheSource("context"),
		ContextRaw:         cached.CtxText,
		CtxTranslations:    alts,
	}
}

func (s *Service) translateBase(ctx context.Context, word, targetLang, srcHint string) WordResult {
	entry, err := s.store.GetBaseEntryAnySrc(ctx, word, targetLang, srcHint)
	if err == nil && entry != nil {
		if touchErr := s.store.TouchBaseUsage(ctx, entry.ID); touchErr != nil {
			return errorWordResult(word, targetLang, false, touchErr.Error())
		}
		defs := s.ensureMetadata(ctx, word, entry.SrcLang)
		alts := s.listCtxTranslations(ctx, word, entry.SrcLang, targetLang)
		return WordResult{
			Type:               "word",
			Source:             word,
			Text:               entry.Translation,
			TargetLang:         targetLang,
			DetectedSourceLang: entry.SrcLang,
			FromCache:          true,
			Timestamp:          entry.CreatedAt,
			LastUsed:           nowISO(),
			Count:              entry.Count + 1,
			MWDefinitions:      defs,
			ContextUsed:        false,
			CacheSource:        cacheSource("base"),
			CtxTranslations:    alts,
		}
	}
	if err != nil {
		return errorWordResult(word, targetLang, false, err.Error())
	}

	result, callErr := s.provider.Translate(ctx, word, targetLang, "")
	if callErr != nil {
		return errorWordResult(word, targetLang, false, callErr.Error())
	}
	src := normalizeSrcLang(result.DetectedSrc, srcHint)
	_, err = s.store.UpsertBaseEntry(ctx, store.UpsertBaseEntryParams{
		Term: word, Translation: result.Text, SrcLang: src, DstLang: targetLang, DetectedOrCtx: result.DetectedSrc,
	})
	if err != nil {
		return errorWordResult(word, targetLang, false, err.Error())
	}
	defs := s.ensureMetadata(ctx, word, src)

	return WordResult{
		Type:               "word",
		Source:             word,
		Text:               result.Text,
		TargetLang:         targetLang,
		DetectedSourceLang: src,
		FromCache:          false,
		Timestamp:          nowISO(),
		LastUsed:           nowISO(),
		Count:              1,
		MWDefinitions:      defs,
		ContextUsed:        false,
		CacheSource:        nil,
	}
}

// TranslateSelection implements spec.md §4.3's translateSelection: a thin
// passthrough with no caching whatsoever.
func (s *Service) TranslateSelection(ctx context.Context, text, targetLang, srcHint string) SelectionResult {
	targetLang = strings.ToUpper(strings.TrimSpace(targetLang))
	if targetLang == "" {
		targetLang = "RU"
	}
	result, err := s.provider.Translate(ctx, text, targetLang, "")
	if err != nil {
		return SelectionResult{Type: "selection", Source: text, TargetLang: targetLang, Error: err.Error()}
	}
	src := normalizeSrcLang(result.DetectedSrc, srcHint)
	return SelectionResult{
		Type:               "selection",
		Source:             text,
		Text:               result.Text,
		TargetLang:         targetLang,
		DetectedSourceLang: src,
	}
}

func (s *Service) ensureMetadata(ctx context.Context, term, srcLang string) *DefinitionsPayload {
	if s.meta == nil {
		return nil
	}
	defs, err := s.meta.EnsureDefinitions(ctx, term, srcLang)
	if err != nil {
		return nil
	}
	return defs
}

func (s *Service) listCtxTranslations(ctx context.Context, term, srcLang, targetLang string) []string {
	rows, err := s.store.ListCtxTranslations(ctx, term, srcLang, targetLang)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(rows))
	for i, r := range rows {
		if i >= ctxTranslationLimit {
			break
		}
		out = append(out, r.Translation)
	}
	return out
}

// errorWordResult builds the failure-shape WordResult spec.md §4.3 step 4
// requires: all cache fields zeroed, since a failed provider call was
// never cached.
func errorWordResult(word, targetLang string, contextUsed bool, errMsg string) WordResult {
	return WordResult{
		Type:        "word",
		Source:      word,
		TargetLang:  targetLang,
		FromCache:   false,
		Error:       errMsg,
		ContextUsed: contextUsed,
	}
}

// normalizeSrcLang implements spec.md §4.3's normalization rule: a
// provider-detected prefix of EN/DA wins; otherwise the hint wins if it
// is EN or DA; otherwise EN.
func normalizeSrcLang(detected, hint string) string {
	d := strings.ToUpper(strings.TrimSpace(detected))
	switch {
	case strings.HasPrefix(d, "EN"):
		return "EN"
	case strings.HasPrefix(d, "DA"):
		return "DA"
	}
	h := strings.ToUpper(strings.TrimSpace(hint))
	if h == "EN" || h == "DA" {
		return h
	}
	return "EN"
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func nowISO() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}
