// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the façade's full route table over h, grounded on
// the teacher's internal/api/chi_router.go SetupChi: a global
// middleware stack followed by one flat set of routes, since this
// service has no auth/tenant boundary to scope per-group middleware
// around.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(accessLog())

	r.Get("/healthz", healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/entries", h.GetEntry)
	r.Post("/entries", h.CreateEntry)
	r.Post("/entries/use", h.UseEntry)

	r.Post("/translate/word", h.TranslateWord)
	r.Post("/translate/selection", h.TranslateSelection)

	r.Post("/train/next", h.TrainNext)
	r.Post("/train/review", h.TrainReview)
	r.Post("/train/mark_hard", h.MarkHard)
	r.Post("/train/mark_ignore", h.MarkIgnore)

	r.Post("/mw/audio/play", h.AudioPlay)
	r.Get("/mw/audio/file/{audio_id}", h.AudioFile)

	r.Post("/bookmarks/mark", h.BookmarkMark)
	r.Get("/bookmarks/list", h.BookmarkList)

	r.Mount("/swagger", SwaggerHandler())

	return r
}

func healthz(w http.ResponseWriter, r *http.Request) {
	writeBare(w, r, http.StatusOK, statusOK{Status: "ok"})
}
