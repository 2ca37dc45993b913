// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

// Package trainer implements spec.md §4.6's candidate-pool selection
// (due/new/hard/fallback), SM-2 grading, and progress tracking.
// Grounded on original_source/python/vim_deepl/services/
// trainer_service.py and repos/trainer_repo.py for the pool-selection
// shape; the SM-2 arithmetic itself lives in internal/store (reviews.go)
// since it is a single atomic write the repository layer owns.
package trainer

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/romariozh/vim-deepl-go/internal/config"
	"github.com/romariozh/vim-deepl-go/internal/store"
	"github.com/romariozh/vim-deepl-go/internal/translate"
)

// Service implements PickTrainingWord/ReviewTrainingCard/Progress.
type Service struct {
	store *store.Store
	cfg   config.TrainerConfig
	meta  translate.MetadataEnsurer
}

// New builds a trainer Service. meta may be nil if dictionary metadata
// enrichment is unavailable; TrainerItem.MWDefinitions is then omitted.
func New(st *store.Store, cfg config.TrainerConfig, meta translate.MetadataEnsurer) *Service {
	return &Service{store: st, cfg: cfg, meta: meta}
}

func srcLangsFor(filter string) []string {
	f := strings.ToUpper(strings.TrimSpace(filter))
	if f == "EN" || f == "DA" {
		return []string{f}
	}
	return []string{"EN", "DA"}
}

// PickTrainingWord implements spec.md §4.6's pickTrainingWord.
func (s *Service) PickTrainingWord(ctx context.Context, srcFilter string, excludeCardIDs []int64) Item {
	srcLangs := srcLangsFor(srcFilter)
	nowTs := time.Now().Unix()

	due, err := s.store.ListDueCards(ctx, srcLangs, excludeCardIDs, nowTs)
	if err != nil {
		return Item{Error: err.Error()}
	}
	if len(due) > 0 {
		return s.itemFromCard(ctx, "srs_due", srcLangs, due[0])
	}

	if rand.Float64() < s.cfg.SRSNewRatio {
		newEntries, err := s.store.ListNewEntries(ctx, srcLangs, nil, 1)
		if err != nil {
			return Item{Error: err.Error()}
		}
		if len(newEntries) > 0 {
			e := newEntries[0]
			card, err := s.store.EnsureCardForEntry(ctx, e.ID, e.SrcLang)
			if err != nil {
				return Item{Error: err.Error()}
			}
			return s.finish(ctx, "srs_new", srcLangs, e, *card)
		}
	}

	hard, err := s.store.ListHardCards(ctx, srcLangs, excludeCardIDs, s.cfg.HardRandomTopN)
	if err != nil {
		return Item{Error: err.Error()}
	}
	if len(hard) > 0 {
		return s.itemFromCard(ctx, "srs_hard", srcLangs, hard[triangularIndex(len(hard))])
	}

	return s.fallback(ctx, srcLangs, excludeCardIDs)
}

func (s *Service) itemFromCard(ctx context.Context, mode string, srcLangs []string, c store.TrainingCard) Item {
	entry, err := s.store.GetEntryByID(ctx, c.EntryID)
	if err != nil {
		return Item{Error: err.Error()}
	}
	if entry == nil {
		return Item{Error: "entry not found for training card"}
	}
	return s.finish(ctx, mode, srcLangs, *entry, c)
}

// fallback implements spec.md §4.6 step 5: the legacy pool that
// guarantees a candidate even before any training card exists.
func (s *Service) fallback(ctx context.Context, srcLangs []string, excludeCardIDs []int64) Item {
	all, err := s.store.ListNonIgnoredEntries(ctx)
	if err != nil {
		return Item{Error: err.Error()}
	}

	langSet := toSet(srcLangs)
	var candidates []store.Entry
	for _, e := range all {
		if langSet[strings.ToUpper(e.SrcLang)] {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return Item{Error: "no entries available for training"}
	}

	if filtered := s.excludeByCard(ctx, candidates, excludeCardIDs); len(filtered) > 0 {
		candidates = filtered
	}

	now := time.Now()
	var recents, olds []store.Entry
	for _, e := range candidates {
		if ageDays(e, now) <= s.cfg.RecentDays {
			recents = append(recents, e)
		} else {
			olds = append(olds, e)
		}
	}

	var pool []store.Entry
	switch {
	case len(recents) == 0:
		pool = olds
	case len(olds) == 0:
		pool = recents
	case rand.Float64() < s.cfg.RecentRatio:
		pool = recents
	default:
		pool = olds
	}

	var notMastered []store.Entry
	for _, e := range pool {
		if e.Count < s.cfg.MasteryCount {
			notMastered = append(notMastered, e)
		}
	}
	if len(notMastered) > 0 {
		pool = notMastered
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].Count != pool[j].Count {
			return pool[i].Count < pool[j].Count
		}
		if pool[i].Hard != pool[j].Hard {
			return pool[i].Hard > pool[j].Hard
		}
		return lastTs(pool[i]) < lastTs(pool[j])
	})

	topN := int(math.Ceil(float64(len(pool)) * 0.2))
	if topN < 1 {
		topN = 1
	}
	if topN > len(pool) {
		topN = len(pool)
	}
	top := pool[:topN]
	chosen := top[triangularIndex(len(top))]

	card, err := s.store.EnsureCardForEntry(ctx, chosen.ID, chosen.SrcLang)
	if err != nil {
		return Item{Error: err.Error()}
	}
	return s.finish(ctx, "fallback", srcLangs, chosen, *card)
}

// excludeByCard drops entries whose existing training card id is in
// excludeCardIDs. Returns nil (meaning "ignore exclusions") if that
// would remove every candidate, per spec.md §4.6 step 5.
func (s *Service) excludeByCard(ctx context.Context, entries []store.Entry, excludeCardIDs []int64) []store.Entry {
	if len(excludeCardIDs) == 0 {
		return entries
	}
	excluded := make(map[int64]bool, len(excludeCardIDs))
	for _, id := range excludeCardIDs {
		excluded[id] = true
	}

	var out []store.Entry
	for _, e := range entries {
		card, err := s.store.GetCardForEntry(ctx, e.ID)
		if err == nil && card != nil && excluded[card.ID] {
			continue
		}
		out = append(out, e)
	}
	return out
}

func ageDays(e store.Entry, now time.Time) int {
	created, err := time.Parse("2006-01-02T15:04:05.000Z", e.CreatedAt)
	if err != nil {
		return 0
	}
	return int(now.Sub(created).Hours() / 24)
}

func lastTs(e store.Entry) int64 {
	if e.LastUsed > 0 {
		return e.LastUsed
	}
	created, err := time.Parse("2006-01-02T15:04:05.000Z", e.CreatedAt)
	if err != nil {
		return 0
	}
	return created.Unix()
}

func toSet(ss []string) map[string]bool {
	out := make(map[string]bool, len(ss))
	for _, s := range ss {
		out[strings.ToUpper(s)] = true
	}
	return out
}

// finish attaches the mastery/progress snapshot and context/detected
// reconciliation spec.md §4.6 step 6 requires of every TrainerItem,
// regardless of which pool produced the candidate.
func (s *Service) finish(ctx context.Context, mode string, srcLangs []string, e store.Entry, c store.TrainingCard) Item {
	contextRaw, err := s.mostRecentContext(ctx, e)
	if err != nil {
		contextRaw = ""
	}
	detectedRaw := e.DetectedRaw
	if contextRaw == "" && detectedRaw != "" {
		contextRaw = detectedRaw
	} else if detectedRaw == "" && contextRaw != "" {
		detectedRaw = contextRaw
	}

	item := Item{
		Mode:         mode,
		CardID:       c.ID,
		EntryID:      e.ID,
		Term:         e.Term,
		Translation:  e.Translation,
		SrcLang:      e.SrcLang,
		DstLang:      e.DstLang,
		DetectedRaw:  detectedRaw,
		ContextRaw:   contextRaw,
		DueAt:        c.DueAt,
		Lapses:       c.Lapses,
		WrongStreak:  c.WrongStreak,
		Reps:         c.Reps,
		EF:           c.EF,
		IntervalDays: c.IntervalDays,
	}

	if stats, err := s.statsForLangs(ctx, srcLangs); err == nil {
		item.Stats = &stats
	}
	if prog, err := s.progress(ctx, time.Now()); err == nil {
		item.Day = prog.Day
		item.TodayDone = prog.TodayDone
		item.StreakDays = prog.StreakDays
	}
	if s.meta != nil {
		if defs, err := s.meta.EnsureDefinitions(ctx, e.Term, e.SrcLang); err == nil {
			item.MWDefinitions = defs
		}
		if grammar, err := s.meta.DeriveGrammar(ctx, e.Term, e.SrcLang); err == nil {
			item.Grammar = grammar
		}
	}
	if variants, err := s.store.ListVariants(ctx, e.Term, e.SrcLang, e.DstLang); err == nil {
		for _, v := range variants {
			item.Variants = append(item.Variants, v.Translation)
		}
	}
	if ctxEntries, err := s.store.ListCtxTranslations(ctx, e.Term, e.SrcLang, e.DstLang); err == nil {
		for _, ce := range ctxEntries {
			item.CtxList = append(item.CtxList, ce.Translation)
		}
	}

	return item
}

// mostRecentContext picks the most-recently-used cached sentence for an
// entry, mirroring trainer_repo.py's entries_ctx correlated subquery.
func (s *Service) mostRecentContext(ctx context.Context, e store.Entry) (string, error) {
	rows, err := s.store.ListCtxTranslations(ctx, e.Term, e.SrcLang, e.DstLang)
	if err != nil || len(rows) == 0 {
		return "", err
	}
	return rows[0].CtxText, nil
}

func (s *Service) statsForLangs(ctx context.Context, srcLangs []string) (Stats, error) {
	all, err := s.store.ListNonIgnoredEntries(ctx)
	if err != nil {
		return Stats{}, err
	}
	langSet := toSet(srcLangs)
	total, mastered := 0, 0
	for _, e := range all {
		if !langSet[strings.ToUpper(e.SrcLang)] {
			continue
		}
		total++
		if e.Count >= s.cfg.MasteryCount {
			mastered++
		}
	}
	percent := 0
	if total > 0 {
		percent = int(math.Round(float64(mastered) * 100 / float64(total)))
	}
	return Stats{Total: total, Mastered: mastered, MasteryThreshold: s.cfg.MasteryCount, MasteryPercent: percent}, nil
}

// Progress is the streak/today snapshot spec.md §4.6's progress(now) computes.
type Progress struct {
	Day        string
	TodayDone  int
	StreakDays int
}

func (s *Service) progress(ctx context.Context, now time.Time) (Progress, error) {
	day := now.UTC().Format("2006-01-02")
	todayDone, err := s.store.TodayReviewCount(ctx, day)
	if err != nil {
		return Progress{}, err
	}
	days, err := s.store.ReviewDays(ctx)
	if err != nil {
		return Progress{}, err
	}

	streak := 0
	cursor := now.UTC()
	for days[cursor.Format("2006-01-02")] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}

	return Progress{Day: day, TodayDone: todayDone, StreakDays: streak}, nil
}

// ReviewTrainingCard implements spec.md §4.6's reviewTrainingCard,
// returning the next TrainerItem per spec.md §6's
// "POST /train/review -> TrainerItem for the next card" contract.
func (s *Service) ReviewTrainingCard(ctx context.Context, cardID int64, grade int, srcFilter string) Item {
	if _, err := s.store.ApplyReview(ctx, cardID, grade, time.Now()); err != nil {
		return Item{Error: err.Error()}
	}
	return s.PickTrainingWord(ctx, srcFilter, nil)
}
