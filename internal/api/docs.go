// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// swaggerSpec is a hand-authored OpenAPI 2.0 document describing
// spec.md §6's endpoint table, served at /swagger/doc.json. Optional
// ambient tooling for the editor-plugin author to explore the façade,
// grounded on the teacher's router.go swagger wiring (swaggo/
// http-swagger/v2), but without the `swag init` codegen step this repo
// can't run: the spec is written by hand instead of generated from the
// `@Summary`/`@Router` doc comments on the handlers above.
const swaggerSpec = `{
  "swagger": "2.0",
  "info": {
    "title": "vim-deepl-go",
    "description": "Personal vocabulary, translation and spaced-repetition backend.",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/entries": {
      "get": {"summary": "Look up a cached translation entry", "responses": {"200": {"description": "ok"}}},
      "post": {"summary": "Insert or update a cached translation entry", "responses": {"200": {"description": "ok"}}}
    },
    "/entries/use": {
      "post": {"summary": "Bump a cached entry's usage counters", "responses": {"200": {"description": "ok"}}}
    },
    "/translate/word": {
      "post": {"summary": "Translate a single word, using the cache where possible", "responses": {"200": {"description": "WordResult"}}}
    },
    "/translate/selection": {
      "post": {"summary": "Translate an arbitrary text selection", "responses": {"200": {"description": "SelectionResult"}}}
    },
    "/train/next": {
      "post": {"summary": "Pick the next training candidate", "responses": {"200": {"description": "TrainerItem"}}}
    },
    "/train/review": {
      "post": {"summary": "Grade a training card and advance to the next candidate", "responses": {"200": {"description": "TrainerItem"}}}
    },
    "/train/mark_hard": {
      "post": {"summary": "Toggle an entry's manual difficulty flag", "responses": {"200": {"description": "ok"}}}
    },
    "/train/mark_ignore": {
      "post": {"summary": "Exclude an entry from caching and training", "responses": {"200": {"description": "ok"}}}
    },
    "/mw/audio/play": {
      "post": {"summary": "Download and play a Merriam-Webster pronunciation clip", "responses": {"200": {"description": "ok"}}}
    },
    "/mw/audio/file/{audio_id}": {
      "get": {"summary": "Fetch a cached pronunciation clip's audio bytes", "responses": {"200": {"description": "audio/mpeg"}}}
    },
    "/bookmarks/mark": {
      "post": {"summary": "Record or refresh a file-fingerprint-addressed bookmark", "responses": {"200": {"description": "ok"}}}
    },
    "/bookmarks/list": {
      "get": {"summary": "List bookmarks recorded for a file", "responses": {"200": {"description": "ok"}}}
    }
  }
}`

// SwaggerHandler mounts the swagger UI plus its backing doc.json.
func SwaggerHandler() http.Handler {
	r := chi.NewRouter()
	r.Get("/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(swaggerSpec))
	})
	r.Get("/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DomID("swagger-ui"),
	))
	return r
}
