// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package api

import (
	"net/http"

	"github.com/romariozh/vim-deepl-go/internal/translate"
)

// TranslateWord implements "POST /translate/word". The response is the
// bare WordResult spec.md §6 names, never enveloped, since its shape is
// a contract with the editor plugin.
// @Summary Translate a single word, using the cache where possible
// @Router /translate/word [post]
func (h *Handler) TranslateWord(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req translateWordRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	result := h.translate.TranslateWord(r.Context(), req.Term, req.TargetLang, req.SrcHint, req.Context)
	h.audioFromDefs(result.MWDefinitions)
	writeBare(w, r, http.StatusOK, result)
}

// TranslateSelection implements "POST /translate/selection": a thin
// passthrough, bare SelectionResult, never cached.
// @Summary Translate an arbitrary text selection
// @Router /translate/selection [post]
func (h *Handler) TranslateSelection(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req translateSelectionRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	result := h.translate.TranslateSelection(r.Context(), req.Text, req.TargetLang, req.SrcHint)
	writeBare(w, r, http.StatusOK, result)
}

// audioFromDefs schedules a best-effort background prefetch of the
// term's primary pronunciation clip whenever dictionary metadata is
// returned to a caller, per spec.md §4.4's "schedule prefetch of
// audio_main (non-blocking) each time metadata is read".
func (h *Handler) audioFromDefs(defs *translate.DefinitionsPayload) {
	if defs == nil || h.audio == nil || defs.AudioMain == "" {
		return
	}
	h.audio.Prefetch(defs.AudioMain)
}
