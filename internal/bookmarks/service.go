// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

// Package bookmarks implements spec.md §4.7's file-fingerprint-addressed
// highlight service: upsertMark/listMarksForPath on top of internal/store,
// canonicalizing paths and hashing file content so a bookmark survives a
// rename or move.
// Grounded on original_source/python/vim_deepl/services/bookmarks_service.py.
package bookmarks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/romariozh/vim-deepl-go/internal/apperr"
	"github.com/romariozh/vim-deepl-go/internal/store"
)

// Service implements UpsertMark/ListMarksForPath.
type Service struct {
	store *store.Store
}

// New builds a bookmarks Service.
func New(st *store.Store) *Service {
	return &Service{store: st}
}

// Mark is the per-row shape spec.md §6's GET /bookmarks/list embeds in
// its marks list.
type Mark struct {
	ID     int64  `json:"id"`
	Lnum   int    `json:"lnum"`
	Col    int    `json:"col"`
	Length int    `json:"length"`
	Term   string `json:"term"`
	Kind   string `json:"kind"`
}

// MarkResult is the response shape for POST /bookmarks/mark.
type MarkResult struct {
	ID          int64  `json:"id"`
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
}

// ListResult is the response shape for GET /bookmarks/list.
type ListResult struct {
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
	Marks       []Mark `json:"marks"`
}

func canonPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", apperr.Storage(err, "resolve path %q", path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apperr.Storage(err, "open %q for fingerprinting", path)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", apperr.Storage(err, "hash %q", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// UpsertMark implements spec.md §4.7's upsertMark.
func (s *Service) UpsertMark(ctx context.Context, path string, lnum, col, length int, term, kind string) (MarkResult, error) {
	canon, err := canonPath(path)
	if err != nil {
		return MarkResult{}, err
	}
	fingerprint, err := sha256File(canon)
	if err != nil {
		return MarkResult{}, err
	}

	id, err := s.store.UpsertMark(ctx, canon, fingerprint, lnum, col, length, term, kind)
	if err != nil {
		return MarkResult{}, err
	}
	return MarkResult{ID: id, Path: canon, Fingerprint: fingerprint}, nil
}

// ListMarksForPath implements spec.md §4.7's listMarksForPath: path-first
// lookup, falling back to a content-fingerprint match (and repairing the
// stored path) when the file has moved.
func (s *Service) ListMarksForPath(ctx context.Context, path string) (ListResult, error) {
	canon, err := canonPath(path)
	if err != nil {
		return ListResult{}, err
	}

	recomputed, err := sha256File(canon)
	if err != nil {
		// The file may no longer exist at the canonical path (e.g. it was
		// moved away already); still try the fast path by stored path.
		recomputed = ""
	}

	rows, err := s.store.ListMarksForPath(ctx, canon, recomputed)
	if err != nil {
		return ListResult{}, err
	}

	fingerprint := recomputed
	if len(rows) > 0 {
		fingerprint = rows[0].Fingerprint
	}

	marks := make([]Mark, 0, len(rows))
	for _, r := range rows {
		marks = append(marks, Mark{ID: r.ID, Lnum: r.Lnum, Col: r.Col, Length: r.Length, Term: r.Term, Kind: r.Kind})
	}
	return ListResult{Path: canon, Fingerprint: fingerprint, Marks: marks}, nil
}
