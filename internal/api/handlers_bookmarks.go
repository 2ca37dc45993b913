// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package api

import "net/http"

// BookmarkMark implements "POST /bookmarks/mark".
// @Summary Record or refresh a file-fingerprint-addressed bookmark
// @Router /bookmarks/mark [post]
func (h *Handler) BookmarkMark(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req bookmarkMarkRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	result, err := h.bookmarks.UpsertMark(r.Context(), req.Path, req.Lnum, req.Col, req.Length, req.Term, req.Kind)
	if err != nil {
		writeAppError(rw, err)
		return
	}
	rw.Success(result)
}

// BookmarkList implements "GET /bookmarks/list?path=".
// @Summary List bookmarks recorded for a file
// @Router /bookmarks/list [get]
func (h *Handler) BookmarkList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	path := r.URL.Query().Get("path")
	if path == "" {
		rw.BadRequest("path is a required query parameter")
		return
	}

	result, err := h.bookmarks.ListMarksForPath(r.Context(), path)
	if err != nil {
		writeAppError(rw, err)
		return
	}
	rw.Success(result)
}
