// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package api

import (
	"strings"

	"github.com/romariozh/vim-deepl-go/internal/audio"
	"github.com/romariozh/vim-deepl-go/internal/bookmarks"
	"github.com/romariozh/vim-deepl-go/internal/dictionary"
	"github.com/romariozh/vim-deepl-go/internal/store"
	"github.com/romariozh/vim-deepl-go/internal/trainer"
	"github.com/romariozh/vim-deepl-go/internal/translate"
)

// Handler groups every domain service the façade dispatches to. It
// holds no HTTP-specific state beyond what its methods need per
// request, mirroring the teacher's single-Handler-struct-per-router
// pattern.
type Handler struct {
	store      *store.Store
	translate  *translate.Service
	dictionary *dictionary.Service
	trainer    *trainer.Service
	bookmarks  *bookmarks.Service
	audio      *audio.Worker
}

// NewHandler builds a Handler over the composition root's wired services.
func NewHandler(st *store.Store, tr *translate.Service, dict *dictionary.Service, tn *trainer.Service, bm *bookmarks.Service, aw *audio.Worker) *Handler {
	return &Handler{store: st, translate: tr, dictionary: dict, trainer: tn, bookmarks: bm, audio: aw}
}

// srcLangsFor mirrors internal/trainer's unexported helper of the same
// name: an explicit EN/DA filter narrows the match, anything else (or
// empty) means "either language".
func srcLangsFor(filter string) []string {
	f := strings.ToUpper(strings.TrimSpace(filter))
	if f == "EN" || f == "DA" {
		return []string{f}
	}
	return []string{"EN", "DA"}
}
