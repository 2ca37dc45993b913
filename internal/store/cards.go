// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/romariozh/vim-deepl-go/internal/apperr"
)

func placeholders(n int) string {
	if n == 0 {
		// SQLite accepts an empty list: "x IN ()" is false and
		// "x NOT IN ()" is true for every row.
		return ""
	}
	ph := make([]string, n)
	for i := range ph {
		ph[i] = "?"
	}
	return strings.Join(ph, ", ")
}

func anySlice[T any](items []T) []any {
	out := make([]any, len(items))
	for i, v := range items {
		out[i] = v
	}
	return out
}

// ListDueCards returns the spec.md §4.6 "due pool": non-suspended cards
// whose normalized due_at has passed, entry not ignored, source language
// in srcLangs, excluding the given card ids. Ordered due_at ASC, lapses
// DESC, wrong_streak DESC, as the spec requires.
func (s *Store) ListDueCards(ctx context.Context, srcLangs []string, excludeCardIDs []int64, nowTs int64) ([]TrainingCard, error) {
	const normalizedDueAt = `(CASE WHEN c.due_at > 10000000000 THEN c.due_at / 1000 ELSE c.due_at END)`
	query := fmt.Sprintf(`
		SELECT c.id, c.entry_id, c.src_lang, c.reps, c.lapses, c.ef, c.interval_days, c.due_at,
			COALESCE(c.last_review_at, 0), c.last_grade, c.correct_streak, c.wrong_streak, c.suspended
		FROM training_cards c
		JOIN entries e ON e.id = c.entry_id
		WHERE c.suspended = 0 AND e.ignore = 0 AND `+normalizedDueAt+` <= ?
			AND upper(trim(c.src_lang)) IN (%s)
			AND c.id NOT IN (%s)
		ORDER BY `+normalizedDueAt+` ASC, c.lapses DESC, c.wrong_streak DESC`,
		placeholders(len(srcLangs)), placeholders(len(excludeCardIDs)))
	args := append([]any{nowTs}, anySlice(upperAll(srcLangs))...)
	args = append(args, anySlice(excludeCardIDs)...)
	return queryCards(ctx, s, query, args...)
}

// ListHardCards returns the spec.md §4.6 "hard pool" ordered
// lapses DESC, wrong_streak DESC, due_at ASC, last_review_at ASC,
// capped at limit rows for the caller's triangular sampling.
func (s *Store) ListHardCards(ctx context.Context, srcLangs []string, excludeCardIDs []int64, limit int) ([]TrainingCard, error) {
	query := fmt.Sprintf(`
		SELECT c.id, c.entry_id, c.src_lang, c.reps, c.lapses, c.ef, c.interval_days, c.due_at,
			COALESCE(c.last_review_at, 0), c.last_grade, c.correct_streak, c.wrong_streak, c.suspended
		FROM training_cards c
		JOIN entries e ON e.id = c.entry_id
		WHERE c.suspended = 0 AND e.ignore = 0
			AND upper(trim(c.src_lang)) IN (%s)
			AND c.id NOT IN (%s)
		ORDER BY c.lapses DESC, c.wrong_streak DESC, c.due_at ASC, COALESCE(c.last_review_at, 0) ASC
		LIMIT ?`,
		placeholders(len(srcLangs)), placeholders(len(excludeCardIDs)))
	args := append(anySlice(upperAll(srcLangs)), anySlice(excludeCardIDs)...)
	args = append(args, limit)
	return queryCards(ctx, s, query, args...)
}

func queryCards(ctx context.Context, s *Store, query string, args ...any) ([]TrainingCard, error) {
	var out []TrainingCard
	err := s.Read(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return classify(err, "query training cards")
		}
		defer rows.Close()
		for rows.Next() {
			var c TrainingCard
			var suspended int
			if err := rows.Scan(&c.ID, &c.EntryID, &c.SrcLang, &c.Reps, &c.Lapses, &c.EF, &c.IntervalDays, &c.DueAt,
				&c.LastReviewAt, &c.LastGrade, &c.CorrectStreak, &c.WrongStreak, &suspended); err != nil {
				return classify(err, "scan training card")
			}
			c.DueAt = NormalizeDueAt(c.DueAt)
			c.Suspended = suspended != 0
			out = append(out, c)
		}
		return classify(rows.Err(), "iterate training cards")
	})
	return out, err
}

// ListNewEntries returns entries in srcLangs that have no training card
// yet, per spec.md §4.6's "new pool", in random database order so the
// caller can take the first row as its random pick.
func (s *Store) ListNewEntries(ctx context.Context, srcLangs []string, excludeEntryIDs []int64, limit int) ([]Entry, error) {
	query := fmt.Sprintf(`
		SELECT e.id, e.term, e.translation, e.src_lang, e.dst_lang, e.detected_raw, e.created_at, COALESCE(e.last_used, 0), e.count, e.hard, e.ignore
		FROM entries e
		LEFT JOIN training_cards c ON c.entry_id = e.id
		WHERE c.id IS NULL AND e.ignore = 0
			AND upper(trim(e.src_lang)) IN (%s)
			AND e.id NOT IN (%s)
		ORDER BY RANDOM()
		LIMIT ?`, placeholders(len(srcLangs)), placeholders(len(excludeEntryIDs)))
	args := append(anySlice(upperAll(srcLangs)), anySlice(excludeEntryIDs)...)
	args = append(args, limit)
	return queryEntries(ctx, s, query, args...)
}

// ListNonIgnoredEntries backs the spec.md §4.6 fallback pool: every
// cached entry that isn't ignored, regardless of training-card state.
func (s *Store) ListNonIgnoredEntries(ctx context.Context) ([]Entry, error) {
	return queryEntries(ctx, s, `
		SELECT id, term, translation, src_lang, dst_lang, detected_raw, created_at, COALESCE(last_used, 0), count, hard, ignore
		FROM entries WHERE ignore = 0`)
}

func queryEntries(ctx context.Context, s *Store, query string, args ...any) ([]Entry, error) {
	var out []Entry
	err := s.Read(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return classify(err, "query entries")
		}
		defer rows.Close()
		for rows.Next() {
			var e Entry
			if err := rows.Scan(&e.ID, &e.Term, &e.Translation, &e.SrcLang, &e.DstLang, &e.DetectedRaw, &e.CreatedAt, &e.LastUsed, &e.Count, &e.Hard, &e.Ignore); err != nil {
				return classify(err, "scan entry")
			}
			out = append(out, e)
		}
		return classify(rows.Err(), "iterate entries")
	})
	return out, err
}

func upperAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	return out
}

// GetCardForEntry returns the training card owning entryID, if any.
func (s *Store) GetCardForEntry(ctx context.Context, entryID int64) (*TrainingCard, error) {
	var c TrainingCard
	var suspended int
	row := s.QueryRow(ctx, `
		SELECT id, entry_id, src_lang, reps, lapses, ef, interval_days, due_at, COALESCE(last_review_at, 0), last_grade, correct_streak, wrong_streak, suspended
		FROM training_cards WHERE entry_id = ?`, entryID)
	err := row.Scan(&c.ID, &c.EntryID, &c.SrcLang, &c.Reps, &c.Lapses, &c.EF, &c.IntervalDays, &c.DueAt, &c.LastReviewAt, &c.LastGrade, &c.CorrectStreak, &c.WrongStreak, &suspended)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage(err, "get card for entry")
	}
	c.DueAt = NormalizeDueAt(c.DueAt)
	c.Suspended = suspended != 0
	return &c, nil
}

// GetCardByID fetches a training card by its own id.
func (s *Store) GetCardByID(ctx context.Context, cardID int64) (*TrainingCard, error) {
	var c TrainingCard
	var suspended int
	row := s.QueryRow(ctx, `
		SELECT id, entry_id, src_lang, reps, lapses, ef, interval_days, due_at, COALESCE(last_review_at, 0), last_grade, correct_streak, wrong_streak, suspended
		FROM training_cards WHERE id = ?`, cardID)
	err := row.Scan(&c.ID, &c.EntryID, &c.SrcLang, &c.Reps, &c.Lapses, &c.EF, &c.IntervalDays, &c.DueAt, &c.LastReviewAt, &c.LastGrade, &c.CorrectStreak, &c.WrongStreak, &suspended)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage(err, "get card by id")
	}
	c.DueAt = NormalizeDueAt(c.DueAt)
	c.Suspended = suspended != 0
	return &c, nil
}

// EnsureCardForEntry creates a due-immediately card for entryID if one
// doesn't already exist, per spec.md §4.6 steps 3 and 5 ("Ensure a card
// exists for the chosen entry").
func (s *Store) EnsureCardForEntry(ctx context.Context, entryID int64, srcLang string) (*TrainingCard, error) {
	now := time.Now().Unix()
	var result TrainingCard
	err := s.Write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO training_cards (entry_id, src_lang, ef, due_at)
			VALUES (?, ?, 2.5, ?)
			ON CONFLICT(entry_id) DO NOTHING`, entryID, strings.ToUpper(strings.TrimSpace(srcLang)), now)
		if err != nil {
			return classify(err, "ensure training card")
		}
		row := tx.QueryRowContext(ctx, `
			SELECT id, entry_id, src_lang, reps, lapses, ef, interval_days, due_at, COALESCE(last_review_at, 0), last_grade, correct_streak, wrong_streak, suspended
			FROM training_cards WHERE entry_id = ?`, entryID)
		var suspended int
		if err := row.Scan(&result.ID, &result.EntryID, &result.SrcLang, &result.Reps, &result.Lapses, &result.EF,
			&result.IntervalDays, &result.DueAt, &result.LastReviewAt, &result.LastGrade, &result.CorrectStreak, &result.WrongStreak, &suspended); err != nil {
			return classify(err, "reload training card")
		}
		result.DueAt = NormalizeDueAt(result.DueAt)
		result.Suspended = suspended != 0
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SetSuspended toggles a card's suspended flag.
func (s *Store) SetSuspended(ctx context.Context, cardID int64, suspended bool) error {
	v := 0
	if suspended {
		v = 1
	}
	return s.Write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE training_cards SET suspended = ? WHERE id = ?`, v, cardID)
		return classify(err, "set card suspended")
	})
}
