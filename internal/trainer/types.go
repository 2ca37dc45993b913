// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package trainer

import "github.com/romariozh/vim-deepl-go/internal/translate"

// Stats is the mastery snapshot spec.md §6's TrainerItem embeds.
type Stats struct {
	Total            int `json:"total"`
	Mastered         int `json:"mastered"`
	MasteryThreshold int `json:"mastery_threshold"`
	MasteryPercent   int `json:"mastery_percent"`
}

// Item is the stable-shape payload for POST /train/next and
// POST /train/review (spec.md §6's TrainerItem): never wrapped in
// internal/api's APIResponse envelope.
type Item struct {
	Mode          string                      `json:"mode"`
	CardID        int64                       `json:"card_id,omitempty"`
	EntryID       int64                       `json:"entry_id,omitempty"`
	Term          string                      `json:"term,omitempty"`
	Translation   string                      `json:"translation,omitempty"`
	SrcLang       string                      `json:"src_lang,omitempty"`
	DstLang       string                      `json:"dst_lang,omitempty"`
	DetectedRaw   string                      `json:"detected_raw,omitempty"`
	ContextRaw    string                      `json:"context_raw,omitempty"`
	DueAt         int64                       `json:"due_at,omitempty"`
	Lapses        int                         `json:"lapses,omitempty"`
	WrongStreak   int                         `json:"wrong_streak,omitempty"`
	Reps          int                         `json:"reps,omitempty"`
	EF            float64                     `json:"ef,omitempty"`
	IntervalDays  int                         `json:"interval_days,omitempty"`
	Stats         *Stats                      `json:"stats,omitempty"`
	Day           string                      `json:"day,omitempty"`
	TodayDone     int                         `json:"today_done"`
	StreakDays    int                         `json:"streak_days"`
	Grammar       *translate.Grammar          `json:"grammar,omitempty"`
	MWDefinitions *translate.DefinitionsPayload `json:"mw_definitions,omitempty"`
	Variants      []string                    `json:"variants,omitempty"`
	CtxList       []string                    `json:"ctx_list,omitempty"`
	Error         string                      `json:"error,omitempty"`
}
