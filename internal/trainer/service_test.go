// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package trainer

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/romariozh/vim-deepl-go/internal/config"
	"github.com/romariozh/vim-deepl-go/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(filepath.Join(dir, "vocab.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func defaultCfg() config.TrainerConfig {
	return config.TrainerConfig{
		RecentDays:     7,
		MasteryCount:   7,
		RecentRatio:    0.7,
		SRSNewRatio:    0.2,
		HardRandomTopN: 5,
	}
}

// fallbackCfg pins SRSNewRatio to zero so tests exercising the legacy
// fallback pool aren't flaky against the new-pool's random draw.
func fallbackCfg() config.TrainerConfig {
	cfg := defaultCfg()
	cfg.SRSNewRatio = 0
	return cfg
}

func seedEntry(t *testing.T, st *store.Store, term, translation, srcLang string) store.Entry {
	t.Helper()
	e, err := st.UpsertBaseEntry(context.Background(), store.UpsertBaseEntryParams{
		Term: term, Translation: translation, SrcLang: srcLang, DstLang: "RU", DetectedOrCtx: srcLang,
	})
	require.NoError(t, err)
	return *e
}

func TestPickTrainingWord_DuePoolTakesPrecedence(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a := seedEntry(t, st, "due-word", "due", "EN")
	b := seedEntry(t, st, "far-word", "far", "EN")

	cardA, err := st.EnsureCardForEntry(ctx, a.ID, "EN")
	require.NoError(t, err)
	// A wrong grade schedules due_at = reviewed-at + 1 day; reviewing two
	// days ago leaves the card due a day in the past.
	_, err = st.ApplyReview(ctx, cardA.ID, 1, time.Now().Add(-48*time.Hour))
	require.NoError(t, err)

	cardB, err := st.EnsureCardForEntry(ctx, b.ID, "EN")
	require.NoError(t, err)
	_, err = st.ApplyReview(ctx, cardB.ID, 5, time.Now())
	require.NoError(t, err)

	svc := New(st, defaultCfg(), nil)
	item := svc.PickTrainingWord(ctx, "EN", nil)

	require.Equal(t, "srs_due", item.Mode)
	require.Equal(t, a.ID, item.EntryID)
}

func TestPickTrainingWord_FallbackWhenNoCardsExist(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedEntry(t, st, "apple", "apple-ru", "EN")

	svc := New(st, fallbackCfg(), nil)
	item := svc.PickTrainingWord(ctx, "EN", nil)

	require.Equal(t, "fallback", item.Mode)
	require.Equal(t, "apple", item.Term)
}

func TestPickTrainingWord_FallbackNeverBumpsCountOrLastUsed(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	e := seedEntry(t, st, "apple", "apple-ru", "EN")
	require.Equal(t, 1, e.Count)

	svc := New(st, fallbackCfg(), nil)
	_ = svc.PickTrainingWord(ctx, "EN", nil)
	_ = svc.PickTrainingWord(ctx, "EN", nil)

	reloaded, err := st.GetEntryByID(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.Count, "fallback must never touch count")
}

func TestReviewTrainingCard_SM2UpdateOnCorrectGrade(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	e := seedEntry(t, st, "apple", "apple-ru", "EN")
	card, err := st.EnsureCardForEntry(ctx, e.ID, "EN")
	require.NoError(t, err)
	require.Equal(t, 0, card.Reps)

	svc := New(st, defaultCfg(), nil)
	item := svc.ReviewTrainingCard(ctx, card.ID, 5, "EN")
	require.Empty(t, item.Error)

	updated, err := st.GetCardByID(ctx, card.ID)
	require.NoError(t, err)
	require.Equal(t, 1, updated.Reps)
	require.Equal(t, 1, updated.IntervalDays)
	require.InDelta(t, 2.6, updated.EF, 0.001)
	require.Equal(t, 0, updated.Lapses)
}

func TestReviewTrainingCard_BumpsEntryUsage(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	e := seedEntry(t, st, "apple", "apple-ru", "EN")
	card, err := st.EnsureCardForEntry(ctx, e.ID, "EN")
	require.NoError(t, err)

	svc := New(st, defaultCfg(), nil)
	svc.ReviewTrainingCard(ctx, card.ID, 4, "EN")

	reloaded, err := st.GetEntryByID(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, 2, reloaded.Count, "a graded review must bump count")
}

func TestProgress_StreakWalksBackConsecutiveDays(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	e := seedEntry(t, st, "apple", "apple-ru", "EN")
	card, err := st.EnsureCardForEntry(ctx, e.ID, "EN")
	require.NoError(t, err)

	day := func(s string) time.Time {
		tm, _ := time.Parse("2006-01-02", s)
		return tm
	}
	_, err = st.ApplyReview(ctx, card.ID, 5, day("2025-01-01"))
	require.NoError(t, err)
	_, err = st.ApplyReview(ctx, card.ID, 5, day("2025-01-02"))
	require.NoError(t, err)
	_, err = st.ApplyReview(ctx, card.ID, 5, day("2025-01-04"))
	require.NoError(t, err)

	svc := New(st, defaultCfg(), nil)
	p4, err := svc.progress(ctx, day("2025-01-04"))
	require.NoError(t, err)
	require.Equal(t, 1, p4.TodayDone)
	require.Equal(t, 1, p4.StreakDays)

	p2, err := svc.progress(ctx, day("2025-01-02"))
	require.NoError(t, err)
	require.Equal(t, 1, p2.TodayDone)
	require.Equal(t, 2, p2.StreakDays)
}

func TestSrcLangsFor(t *testing.T) {
	require.Equal(t, []string{"EN"}, srcLangsFor("en"))
	require.Equal(t, []string{"DA"}, srcLangsFor("DA"))
	require.Equal(t, []string{"EN", "DA"}, srcLangsFor(""))
	require.Equal(t, []string{"EN", "DA"}, srcLangsFor("FR"))
}

func TestTriangularIndex_StaysInRange(t *testing.T) {
	require.Equal(t, 0, triangularIndex(0))
	require.Equal(t, 0, triangularIndex(1))
	for i := 0; i < 200; i++ {
		idx := triangularIndex(5)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 5)
	}
}
