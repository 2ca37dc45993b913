// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package api

import "net/http"

// TrainNext implements "POST /train/next": bare TrainerItem, spec.md
// §6's stable-shape contract type.
// @Summary Pick the next training candidate
// @Router /train/next [post]
func (h *Handler) TrainNext(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req trainNextRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	item := h.trainer.PickTrainingWord(r.Context(), req.SrcFilter, req.ExcludeCardIDs)
	h.audioFromDefs(item.MWDefinitions)
	writeBare(w, r, http.StatusOK, item)
}

// TrainReview implements "POST /train/review": grades the card, returns
// the next TrainerItem.
// @Summary Grade a training card and advance to the next candidate
// @Router /train/review [post]
func (h *Handler) TrainReview(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req trainReviewRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	item := h.trainer.ReviewTrainingCard(r.Context(), req.CardID, req.Grade, req.SrcFilter)
	h.audioFromDefs(item.MWDefinitions)
	writeBare(w, r, http.StatusOK, item)
}

// markHardView is the bare response shape POST /train/mark_hard returns.
type markHardView struct {
	Type    string `json:"type"`
	Word    string `json:"word"`
	SrcLang string `json:"src_lang"`
	Hard    int    `json:"hard"`
}

// MarkHard implements "POST /train/mark_hard".
// @Summary Toggle an entry's manual difficulty flag
// @Router /train/mark_hard [post]
func (h *Handler) MarkHard(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req markHardRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	entry, err := h.store.FindEntryByTermAnySrcDst(r.Context(), req.Word, srcLangsFor(req.SrcFilter))
	if err != nil {
		writeAppError(rw, err)
		return
	}
	if entry == nil {
		rw.NotFound("no cached entry for that word")
		return
	}

	newHard := 1
	if entry.Hard != 0 {
		newHard = 0
	}
	if _, err := h.store.SetHard(r.Context(), entry.Term, entry.SrcLang, entry.DstLang, newHard); err != nil {
		writeAppError(rw, err)
		return
	}
	writeBare(w, r, http.StatusOK, markHardView{Type: "mark_hard", Word: entry.Term, SrcLang: entry.SrcLang, Hard: newHard})
}

// markIgnoreView is the bare response shape POST /train/mark_ignore returns.
type markIgnoreView struct {
	Ignored bool  `json:"ignored"`
	EntryID int64 `json:"entry_id,omitempty"`
}

// MarkIgnore implements "POST /train/mark_ignore".
// @Summary Exclude an entry from caching and training
// @Router /train/mark_ignore [post]
func (h *Handler) MarkIgnore(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req markIgnoreRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	entryID := req.EntryID
	if entryID == 0 {
		if req.Word == "" {
			rw.BadRequest("either word or entry_id is required")
			return
		}
		entry, err := h.store.FindEntryByTermAnySrcDst(r.Context(), req.Word, srcLangsFor(req.SrcFilter))
		if err != nil {
			writeAppError(rw, err)
			return
		}
		if entry == nil {
			rw.NotFound("no cached entry for that word")
			return
		}
		entryID = entry.ID
	}

	resolvedID, err := h.store.SetIgnore(r.Context(), entryID, "", "", "")
	if err != nil {
		writeAppError(rw, err)
		return
	}
	writeBare(w, r, http.StatusOK, markIgnoreView{Ignored: true, EntryID: resolvedID})
}
