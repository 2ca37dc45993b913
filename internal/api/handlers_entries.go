// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package api

import (
	"net/http"

	"github.com/romariozh/vim-deepl-go/internal/store"
)

// entryView is the enveloped response shape for GET /entries: the base
// Entry row plus its freshly-bumped count/last_used.
type entryView struct {
	ID          int64  `json:"id"`
	Term        string `json:"term"`
	Translation string `json:"translation"`
	SrcLang     string `json:"src_lang"`
	DstLang     string `json:"dst_lang"`
	DetectedRaw string `json:"detected_raw"`
	CreatedAt   string `json:"created_at"`
	LastUsed    int64  `json:"last_used"`
	Count       int    `json:"count"`
	Hard        int    `json:"hard"`
	Ignore      bool   `json:"ignore"`
}

func entryViewFrom(e *store.Entry) entryView {
	return entryView{
		ID: e.ID, Term: e.Term, Translation: e.Translation, SrcLang: e.SrcLang, DstLang: e.DstLang,
		DetectedRaw: e.DetectedRaw, CreatedAt: e.CreatedAt, LastUsed: e.LastUsed, Count: e.Count,
		Hard: e.Hard, Ignore: e.Ignore,
	}
}

// GetEntry implements "GET /entries?term=&dst_lang=": look up the base
// entry, bump its usage, return the row.
// @Summary Look up a cached translation entry
// @Router /entries [get]
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	term := r.URL.Query().Get("term")
	dstLang := r.URL.Query().Get("dst_lang")
	if term == "" || dstLang == "" {
		rw.BadRequest("term and dst_lang are required query parameters")
		return
	}

	entry, err := retryOnBusy(func() (*store.Entry, error) {
		return h.store.GetBaseEntryAnySrc(r.Context(), term, dstLang, "")
	})
	if err != nil {
		writeAppError(rw, err)
		return
	}
	if entry == nil {
		rw.NotFound("no cached entry for that term/dst_lang")
		return
	}
	if err := h.store.TouchBaseUsage(r.Context(), entry.ID); err != nil {
		writeAppError(rw, err)
		return
	}
	fresh, err := h.store.GetEntryByID(r.Context(), entry.ID)
	if err != nil {
		writeAppError(rw, err)
		return
	}
	if fresh != nil {
		entry = fresh
	}
	rw.Success(entryViewFrom(entry))
}

// statusOK is the bare `{status:"ok"}` ack spec.md §6 specifies for
// several write endpoints.
type statusOK struct {
	Status string `json:"status"`
}

// CreateEntry implements "POST /entries".
// @Summary Insert or update a cached translation entry
// @Router /entries [post]
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req createEntryRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	_, err := h.store.UpsertBaseEntry(r.Context(), store.UpsertBaseEntryParams{
		Term: req.Term, Translation: req.Translation, SrcLang: req.SrcLang, DstLang: req.DstLang, DetectedOrCtx: req.DetectedRaw,
	})
	if err != nil {
		writeAppError(rw, err)
		return
	}
	writeBare(w, r, http.StatusOK, statusOK{Status: "ok"})
}

// UseEntry implements "POST /entries/use?term=&src_lang=&dst_lang=".
// @Summary Bump a cached entry's usage counters
// @Router /entries/use [post]
func (h *Handler) UseEntry(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	term := r.URL.Query().Get("term")
	srcLang := r.URL.Query().Get("src_lang")
	dstLang := r.URL.Query().Get("dst_lang")
	if term == "" || srcLang == "" || dstLang == "" {
		rw.BadRequest("term, src_lang and dst_lang are required query parameters")
		return
	}

	entry, err := h.store.GetBaseEntryAnySrc(r.Context(), term, dstLang, srcLang)
	if err != nil {
		writeAppError(rw, err)
		return
	}
	if entry == nil {
		rw.NotFound("no cached entry for that term/src_lang/dst_lang")
		return
	}
	if err := h.store.TouchBaseUsage(r.Context(), entry.ID); err != nil {
		writeAppError(rw, err)
		return
	}
	writeBare(w, r, http.StatusOK, statusOK{Status: "ok"})
}
