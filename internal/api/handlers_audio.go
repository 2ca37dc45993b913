// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package api

import (
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/romariozh/vim-deepl-go/internal/apperr"
)

// audioIDPattern is spec.md §6's audio_id validity rule: any `/`, `\`,
// or whitespace is rejected with 400.
var audioIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_]*$`)

// audioPlayView is the bare response shape POST /mw/audio/play returns.
type audioPlayView struct {
	Status     string `json:"status"`
	AudioID    string `json:"audio_id"`
	CachedPath string `json:"cached_path"`
	Playback   string `json:"playback"`
}

// AudioPlay implements "POST /mw/audio/play".
// @Summary Download and play a Merriam-Webster pronunciation clip
// @Router /mw/audio/play [post]
func (h *Handler) AudioPlay(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req audioPlayRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}
	if !audioIDPattern.MatchString(req.AudioID) {
		rw.BadRequest("audio_id must match [A-Za-z0-9][A-Za-z0-9_]*")
		return
	}

	cachedPath, err := h.audio.EnsureCached(r.Context(), req.AudioID)
	if err != nil {
		writeAppError(rw, err)
		return
	}

	playback := "skipped"
	playServer := req.PlayServer == nil || *req.PlayServer
	if playServer && !h.audio.HasPlayer() {
		playback = "cached_only"
	} else if playServer {
		if _, err := h.audio.Queue(cachedPath, 0); err != nil {
			writeAppError(rw, err)
			return
		}
		playback = "queued"
	}

	writeBare(w, r, http.StatusOK, audioPlayView{Status: "ok", AudioID: req.AudioID, CachedPath: cachedPath, Playback: playback})
}

// AudioFile implements "GET /mw/audio/file/{audio_id}": serves the
// cached MP3, downloading it first if necessary.
// @Summary Fetch a cached pronunciation clip's audio bytes
// @Router /mw/audio/file/{audio_id} [get]
func (h *Handler) AudioFile(w http.ResponseWriter, r *http.Request) {
	audioID := chi.URLParam(r, "audio_id")
	if !audioIDPattern.MatchString(audioID) {
		http.Error(w, "audio_id must match [A-Za-z0-9][A-Za-z0-9_]*", http.StatusBadRequest)
		return
	}

	cachedPath, err := h.audio.EnsureCached(r.Context(), audioID)
	if err != nil {
		status := http.StatusBadGateway
		if apperr.IsNotFound(err) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeFile(w, r, cachedPath)
}
