// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

// Package translate implements spec.md §4.3's translation service: cache
// lookup, provider call, normalization, write-back and metadata backfill.
// The DeepL HTTP call itself is named as an out-of-scope collaborator by
// spec.md §1; it is reached only through the Provider capability
// interface below, per spec.md §9's "callable hooks -> capability
// interface" design note.
package translate

import "context"

// Result is one upstream translation outcome.
type Result struct {
	Text       string
	DetectedSrc string
}

// Provider abstracts the DeepL translation endpoint so the service can be
// tested with a fixed-response fake instead of a live HTTP call.
type Provider interface {
	Translate(ctx context.Context, text, targetLang, sentenceContext string) (Result, error)
}
