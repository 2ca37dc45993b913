// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

// Package store is the storage engine and repository layer from
// spec.md §4.1/§4.2: a single embedded SQLite database, one file per
// aggregate, typed accessors that hide SQL from the rest of the
// program. Layout grounded on the teacher's internal/database package
// (one CRUD file per concern) with the DuckDB driver swapped for
// modernc.org/sqlite so the WAL + busy_timeout pragmas spec.md §4.1
// requires are available (see DESIGN.md).
package store

// Entry is the base translation cache row (spec.md §3).
type Entry struct {
	ID          int64
	Term        string
	Translation string
	SrcLang     string
	DstLang     string
	DetectedRaw string
	CreatedAt   string // ISO-8601
	LastUsed    int64  // unix seconds, 0 if never
	Count       int
	Hard        int
	Ignore      bool
}

// ContextEntry is the context-cache row (spec.md §3).
type ContextEntry struct {
	ID          int64
	Term        string
	Translation string
	SrcLang     string
	DstLang     string
	CtxHash     string
	CtxText     string
	CreatedAt   string
	LastUsed    int64
	Count       int
}

// TranslationVariant accumulates alternate meanings per term (spec.md §3).
type TranslationVariant struct {
	ID          int64
	Term        string
	Translation string
	SrcLang     string
	DstLang     string
	CreatedAt   string
	LastUsed    int64
	Count       int
}

// DefinitionSet is the per-(term,src_lang) dictionary metadata row
// (spec.md §3/§4.4).
type DefinitionSet struct {
	Term      string
	SrcLang   string
	Noun      []string
	Verb      []string
	Adjective []string
	Adverb    []string
	Other     []string
	RawJSON   string
	AudioMain string
	AudioIDs  []string
	CreatedAt string
}

// Buckets returns the five part-of-speech buckets in the fixed order
// spec.md §3 defines them.
func (d *DefinitionSet) Buckets() [5]*[]string {
	return [5]*[]string{&d.Noun, &d.Verb, &d.Adjective, &d.Adverb, &d.Other}
}

// TrainingCard is the spaced-repetition state for one Entry (spec.md §3).
type TrainingCard struct {
	ID            int64
	EntryID       int64
	SrcLang       string
	Reps          int
	Lapses        int
	EF            float64
	IntervalDays  int
	DueAt         int64 // unix seconds
	LastReviewAt  int64
	LastGrade     int
	CorrectStreak int
	WrongStreak   int
	Suspended     bool
}

// TrainingReview is one immutable graded-review log row (spec.md §3).
type TrainingReview struct {
	ID     int64
	CardID int64
	Ts     int64
	Grade  int
	Day    string // ISO date
}

// BookMark is a file-fingerprint-addressed highlight (spec.md §3).
type BookMark struct {
	ID          int64
	Path        string
	Fingerprint string
	Lnum        int
	Col         int
	Length      int
	Term        string
	Kind        string // "f2" or "mw"
	UpdatedAt   string
}

// NormalizeDueAt converts a legacy millisecond due_at to seconds, per
// spec.md §3's TrainingCard invariant (values above 10^10 are ms).
func NormalizeDueAt(v int64) int64 {
	const msThreshold = 10_000_000_000
	if v > msThreshold {
		return v / 1000
	}
	return v
}
