// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

// Package dictionary implements spec.md §4.4's dictionary-metadata
// service: cache lookup, Merriam-Webster fetch, part-of-speech bucketing
// and audio-id extraction, write-back. Grounded on
// original_source/python/vim_deepl/integrations/merriam_webster.py's
// mw_fetch/mw_extract_definitions and mw_parse.py's pick_main_entry/
// collect_audio_ids_from_entry, ported into Go the way the teacher
// separates "raw client" from "service that interprets the payload".
package dictionary

import (
	"context"
	"encoding/json"
)

// RawEntry mirrors one element of the MW sd3 JSON array shape: only the
// fields mw_parse.py and mw_extract_definitions actually read.
type RawEntry struct {
	Meta struct {
		ID    string   `json:"id"`
		Stems []string `json:"stems"`
	} `json:"meta"`
	HWI struct {
		HW  string `json:"hw"`
		PRS []Pron `json:"prs"`
	} `json:"hwi"`
	FL      string   `json:"fl"`
	ShortDef []string `json:"shortdef"`
	// ET is MW's etymology array: a list of [kind, text, ...] chunks,
	// kept as raw messages since a chunk's later elements can be nested
	// markup rather than plain strings; deriveGrammar decodes only the
	// kind=="text" chunks it needs.
	ET   []json.RawMessage `json:"et"`
	Uros []struct {
		PRS []Pron `json:"prs"`
	} `json:"uros"`
}

// Pron is one MW pronunciation entry's embedded audio reference.
type Pron struct {
	Sound struct {
		Audio string `json:"audio"`
	} `json:"sound"`
}

// Client abstracts the Merriam-Webster sd3 dictionary lookup so the
// service can be tested with a fixed-response fake, per spec.md §9's
// capability-interface design note.
type Client interface {
	// Lookup returns the raw MW response for a term. found=false means
	// MW returned a suggestions-only list[str] shape or an empty list;
	// raw carries the original JSON bytes for definition_sets.raw_json
	// regardless of found.
	Lookup(ctx context.Context, term string) (entries []RawEntry, raw []byte, found bool, err error)
}
