// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/romariozh/vim-deepl-go/internal/bookmarks"
	"github.com/romariozh/vim-deepl-go/internal/config"
	"github.com/romariozh/vim-deepl-go/internal/store"
	"github.com/romariozh/vim-deepl-go/internal/trainer"
	"github.com/romariozh/vim-deepl-go/internal/translate"
)

type fakeTranslateProvider struct {
	text string
	src  string
}

func (f *fakeTranslateProvider) Translate(ctx context.Context, text, targetLang, sentenceContext string) (translate.Result, error) {
	return translate.Result{Text: f.text, DetectedSrc: f.src}, nil
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "vocab.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	tr := translate.New(st, &fakeTranslateProvider{text: "apple-ru", src: "EN"}, nil)
	tn := trainer.New(st, config.TrainerConfig{RecentDays: 7, MasteryCount: 7, RecentRatio: 0.7, SRSNewRatio: 0, HardRandomTopN: 5}, nil)
	bm := bookmarks.New(st)

	return NewHandler(st, tr, nil, tn, bm, nil)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTranslateWord_RoundTripThroughHTTP(t *testing.T) {
	h := newTestHandler(t)
	r := NewRouter(h)

	rec := doJSON(t, r, http.MethodPost, "/translate/word", map[string]any{
		"term": "apple", "target_lang": "RU", "src_hint": "EN",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result translate.WordResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, "apple-ru", result.Text)
	require.False(t, result.FromCache)

	rec2 := doJSON(t, r, http.MethodPost, "/translate/word", map[string]any{
		"term": "apple", "target_lang": "RU", "src_hint": "EN",
	})
	var result2 translate.WordResult
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &result2))
	require.True(t, result2.FromCache)
	require.Equal(t, 2, result2.Count)
}

func TestTranslateWord_MissingTermReturns400(t *testing.T) {
	h := newTestHandler(t)
	r := NewRouter(h)

	rec := doJSON(t, r, http.MethodPost, "/translate/word", map[string]any{"target_lang": "RU"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEntry_NotFoundReturns404(t *testing.T) {
	h := newTestHandler(t)
	r := NewRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/entries?term=ghost&dst_lang=RU", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateEntry_ThenGetEntryBumpsCount(t *testing.T) {
	h := newTestHandler(t)
	r := NewRouter(h)

	rec := doJSON(t, r, http.MethodPost, "/entries", map[string]any{
		"term": "hund", "translation": "dog", "src_lang": "DA", "dst_lang": "EN",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/entries?term=hund&dst_lang=EN", nil)
	getRec := httptest.NewRecorder()
	r.ServeHTTP(getRec, req)
	require.Equal(t, http.StatusOK, getRec.Code)

	var env APIResponse
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &env))
	require.True(t, env.Success)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 2, data["count"])
}

func TestTrainNext_ReturnsFallbackForFreshEntry(t *testing.T) {
	h := newTestHandler(t)
	r := NewRouter(h)

	doJSON(t, r, http.MethodPost, "/entries", map[string]any{
		"term": "apple", "translation": "apple-ru", "src_lang": "EN", "dst_lang": "RU",
	})

	rec := doJSON(t, r, http.MethodPost, "/train/next", map[string]any{"src_filter": "EN"})
	require.Equal(t, http.StatusOK, rec.Code)

	var item trainer.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	require.Equal(t, "fallback", item.Mode)
	require.Equal(t, "apple", item.Term)
}

func TestTrainReview_InvalidGradeReturns400(t *testing.T) {
	h := newTestHandler(t)
	r := NewRouter(h)

	rec := doJSON(t, r, http.MethodPost, "/train/review", map[string]any{"card_id": 999, "grade": 9})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookmarkMark_ThenList(t *testing.T) {
	h := newTestHandler(t)
	r := NewRouter(h)

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("hund means dog"), 0o644))

	rec := doJSON(t, r, http.MethodPost, "/bookmarks/mark", map[string]any{
		"path": path, "lnum": 1, "col": 0, "length": 4, "term": "hund", "kind": "f2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/bookmarks/list?path="+path, nil)
	listRec := httptest.NewRecorder()
	r.ServeHTTP(listRec, req)
	require.Equal(t, http.StatusOK, listRec.Code)

	var env APIResponse
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &env))
	require.True(t, env.Success)
}

func TestHealthz_Returns200(t *testing.T) {
	h := newTestHandler(t)
	r := NewRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
