// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package store

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/romariozh/vim-deepl-go/internal/apperr"
)

const (
	minEF                = 1.3
	defaultEF            = 2.5
	secondsPerDay  int64 = 86400
	maxPastDueDays       = 365
)

// ApplyReview implements spec.md §4.6's reviewTrainingCard: applies the
// SM-2 update to the card, inserts the immutable review row, and — only
// on a graded review, never on fallback picks — bumps the owning Entry's
// usage counters. A grade outside [0,5] or a suspended card is rejected
// here with an ArgsError before anything is written.
func (s *Store) ApplyReview(ctx context.Context, cardID int64, grade int, now time.Time) (*TrainingCard, error) {
	if grade < 0 || grade > 5 {
		return nil, apperr.Args("grade %d out of range [0,5]", grade)
	}
	nowTs := now.Unix()
	day := now.UTC().Format("2006-01-02")

	var result TrainingCard
	err := s.Write(ctx, func(tx *sql.Tx) error {
		var c TrainingCard
		var suspended int
		row := tx.QueryRowContext(ctx, `
			SELECT id, entry_id, src_lang, reps, lapses, ef, interval_days, due_at, COALESCE(last_review_at, 0), last_grade, correct_streak, wrong_streak, suspended
			FROM training_cards WHERE id = ?`, cardID)
		if err := row.Scan(&c.ID, &c.EntryID, &c.SrcLang, &c.Reps, &c.Lapses, &c.EF, &c.IntervalDays, &c.DueAt, &c.LastReviewAt, &c.LastGrade, &c.CorrectStreak, &c.WrongStreak, &suspended); err != nil {
			if isNoRows(err) {
				return apperr.NotFound("training card %d not found", cardID)
			}
			return classify(err, "load card for review")
		}
		if suspended != 0 {
			return apperr.Args("card %d is suspended", cardID)
		}

		c.DueAt = NormalizeDueAt(c.DueAt)

		applySM2(&c, grade, nowTs)

		_, err := tx.ExecContext(ctx, `
			UPDATE training_cards SET reps = ?, lapses = ?, ef = ?, interval_days = ?, due_at = ?,
				last_review_at = ?, last_grade = ?, correct_streak = ?, wrong_streak = ?
			WHERE id = ?`,
			c.Reps, c.Lapses, c.EF, c.IntervalDays, c.DueAt, nowTs, grade, c.CorrectStreak, c.WrongStreak, c.ID)
		if err != nil {
			return classify(err, "update card after review")
		}

		_, err = tx.ExecContext(ctx, `INSERT INTO training_reviews (card_id, ts, grade, day) VALUES (?, ?, ?, ?)`, c.ID, nowTs, grade, day)
		if err != nil {
			return classify(err, "insert review row")
		}

		if _, err := tx.ExecContext(ctx, `UPDATE entries SET count = count + 1, last_used = ? WHERE id = ?`, nowTs, c.EntryID); err != nil {
			return classify(err, "bump entry usage on review")
		}

		result = c
		result.LastReviewAt = nowTs
		result.LastGrade = grade
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// applySM2 mutates c in place following spec.md §4.6's exact SM-2 rules.
func applySM2(c *TrainingCard, grade int, nowTs int64) {
	g := float64(grade)
	c.EF = c.EF + 0.1 - (5-g)*(0.08+(5-g)*0.02)
	if c.EF < minEF {
		c.EF = minEF
	}

	if grade < 3 {
		c.Lapses++
		c.Reps = 0
		c.IntervalDays = 1
		c.DueAt = nowTs + secondsPerDay
		c.WrongStreak++
		c.CorrectStreak = 0
	} else {
		prevInterval := c.IntervalDays
		c.Reps++
		switch {
		case c.Reps <= 1:
			c.IntervalDays = 1
		case c.Reps == 2:
			c.IntervalDays = 3
		default:
			next := int(math.Round(float64(prevInterval) * c.EF))
			if next < 1 {
				next = 1
			}
			c.IntervalDays = next
		}
		c.DueAt = nowTs + int64(c.IntervalDays)*secondsPerDay
		c.CorrectStreak++
		c.WrongStreak = 0
	}

	if c.DueAt < nowTs-maxPastDueDays*secondsPerDay {
		c.DueAt = nowTs + secondsPerDay
	}
}

// TodayReviewCount returns the count of reviews logged on the given day
// (format "2006-01-02"), for spec.md §4.6's progress() today_done.
func (s *Store) TodayReviewCount(ctx context.Context, day string) (int, error) {
	var n int
	row := s.QueryRow(ctx, `SELECT COUNT(*) FROM training_reviews WHERE day = ?`, day)
	if err := row.Scan(&n); err != nil {
		return 0, apperr.Storage(err, "count today's reviews")
	}
	return n, nil
}

// ReviewDays returns the distinct set of days that logged at least one
// review, for spec.md §4.6's streak_days walk-back.
func (s *Store) ReviewDays(ctx context.Context) (map[string]bool, error) {
	days := make(map[string]bool)
	err := s.Read(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT DISTINCT day FROM training_reviews`)
		if err != nil {
			return classify(err, "list review days")
		}
		defer rows.Close()
		for rows.Next() {
			var d string
			if err := rows.Scan(&d); err != nil {
				return classify(err, "scan review day")
			}
			days[d] = true
		}
		return classify(rows.Err(), "iterate review days")
	})
	return days, err
}
