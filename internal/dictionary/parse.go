// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package dictionary

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/romariozh/vim-deepl-go/internal/translate"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// normToken ports mw_parse.py's _norm_token: lower-case, drop MW's "*"
// syllable markers, then strip everything but letters/digits so
// "be*side" and "beside" compare equal.
func normToken(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "*", "")
	return nonAlnum.ReplaceAllString(s, "")
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// filterEntries ports merriam_webster.py's _filter_entries: keep only
// entries whose meta.id matches the term (exactly, or as "term:N"), or
// whose meta.stems contains the term.
func filterEntries(entries []RawEntry, term string) []RawEntry {
	t := norm(term)
	var out []RawEntry
	for _, e := range entries {
		mid := norm(e.Meta.ID)
		stemMatch := false
		for _, st := range e.Meta.Stems {
			if norm(st) == t {
				stemMatch = true
				break
			}
		}
		if mid == t || strings.HasPrefix(mid, t+":") || stemMatch {
			out = append(out, e)
		}
	}
	return out
}

// pickMainEntry ports mw_parse.py's pick_main_entry: meta.id match (its
// ":N" homograph suffix ignored) wins first, then hwi.hw, then a stem
// match. Returns false if nothing in entries names the term at all.
func pickMainEntry(entries []RawEntry, term string) (RawEntry, bool) {
	t := normToken(term)

	for _, e := range entries {
		mid0 := strings.SplitN(e.Meta.ID, ":", 2)[0]
		if normToken(mid0) == t {
			return e, true
		}
	}
	for _, e := range entries {
		if normToken(e.HWI.HW) == t {
			return e, true
		}
	}
	for _, e := range entries {
		for _, st := range e.Meta.Stems {
			if normToken(st) == t {
				return e, true
			}
		}
	}
	return RawEntry{}, false
}

// bucketFromFL ports merriam_webster.py's _bucket_from_fl.
func bucketFromFL(fl string) string {
	switch strings.ToLower(strings.TrimSpace(fl)) {
	case "noun":
		return "noun"
	case "verb":
		return "verb"
	case "adjective", "adj.", "adj":
		return "adjective"
	case "adverb", "adv.", "adv":
		return "adverb"
	default:
		return "other"
	}
}

const maxDefsPerBucket = 7

// extractDefinitions ports mw_extract_definitions, scoped to a single
// entry (the caller passes only the chosen main entry, per spec.md
// §4.4's "definitions only from the main entry" rule).
func extractDefinitions(entry RawEntry) map[string][]string {
	result := map[string][]string{"noun": {}, "verb": {}, "adjective": {}, "adverb": {}, "other": {}}
	seen := map[string]bool{}

	bucket := bucketFromFL(entry.FL)
	for _, d := range entry.ShortDef {
		dd := strings.TrimSpace(d)
		if dd == "" {
			continue
		}
		key := bucket + "\x00" + strings.ToLower(dd)
		if seen[key] {
			continue
		}
		seen[key] = true
		result[bucket] = append(result[bucket], dd)
	}
	for k, v := range result {
		if len(v) > maxDefsPerBucket {
			result[k] = v[:maxDefsPerBucket]
		}
	}
	return result
}

// collectAudioIDs ports mw_parse.py's collect_audio_ids_from_entry: the
// headword's own pronunciations first, then derived-form (uros)
// pronunciations, deduplicated in order.
func collectAudioIDs(entry RawEntry) []string {
	var found []string
	for _, p := range entry.HWI.PRS {
		if a := strings.TrimSpace(p.Sound.Audio); a != "" {
			found = append(found, a)
		}
	}
	for _, u := range entry.Uros {
		for _, p := range u.PRS {
			if a := strings.TrimSpace(p.Sound.Audio); a != "" {
				found = append(found, a)
			}
		}
	}

	seen := map[string]bool{}
	var out []string
	for _, a := range found {
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out
}

// posPreference orders the common word classes first in a Grammar's
// pos_blocks, falling back to alphabetical for anything else, mirroring
// _mw_attach_grammar's {"Noun": 0, "Verb": 1, "Adjective": 2, "Adverb": 3}.
var posPreference = map[string]int{"Noun": 0, "Verb": 1, "Adjective": 2, "Adverb": 3}

const maxDefsPerPOSBlock = 3

// baseWord returns an entry's meta.id with its ":N" homograph suffix
// stripped, the lemma/grouping key _mw_attach_grammar calls _base_word.
func baseWord(e RawEntry) string {
	return strings.TrimSpace(strings.SplitN(e.Meta.ID, ":", 2)[0])
}

// deriveGrammar ports original_source's _mw_attach_grammar: pick the
// entry's lemma (by stem or base-word match against term), keep only
// the MW entries sharing that lemma, group their shortdefs by part of
// speech (capped per block, with an overflow count), and pull a short
// etymology from the first relevant item's "et" chunks.
func deriveGrammar(entries []RawEntry, term string) *translate.Grammar {
	if len(entries) == 0 {
		return nil
	}
	termL := norm(term)

	lemma := ""
	for _, e := range entries {
		if norm(baseWord(e)) == termL {
			lemma = baseWord(e)
			break
		}
		for _, st := range e.Meta.Stems {
			if norm(st) == termL {
				lemma = baseWord(e)
				break
			}
		}
		if lemma != "" {
			break
		}
	}
	if lemma == "" {
		lemma = baseWord(entries[0])
	}
	if lemma == "" {
		lemma = term
	}
	lemmaL := norm(lemma)

	var relevant []RawEntry
	for _, e := range entries {
		if norm(baseWord(e)) == lemmaL {
			relevant = append(relevant, e)
		}
	}
	if len(relevant) == 0 {
		return nil
	}

	stems := relevant[0].Meta.Stems

	type posBucket struct {
		pos  string
		defs []string
	}
	var buckets []posBucket
	bucketIdx := map[string]int{}
	for _, e := range relevant {
		fl := strings.TrimSpace(e.FL)
		if fl == "" {
			continue
		}
		pos := strings.ToUpper(fl[:1]) + strings.ToLower(fl[1:])

		idx, ok := bucketIdx[pos]
		if !ok {
			idx = len(buckets)
			bucketIdx[pos] = idx
			buckets = append(buckets, posBucket{pos: pos})
		}

		seen := map[string]bool{}
		for _, d := range buckets[idx].defs {
			seen[strings.ToLower(d)] = true
		}
		for _, d := range e.ShortDef {
			dd := strings.TrimSpace(d)
			if dd == "" || seen[strings.ToLower(dd)] {
				continue
			}
			seen[strings.ToLower(dd)] = true
			buckets[idx].defs = append(buckets[idx].defs, dd)
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		pi, oki := posPreference[buckets[i].pos]
		if !oki {
			pi = 99
		}
		pj, okj := posPreference[buckets[j].pos]
		if !okj {
			pj = 99
		}
		if pi != pj {
			return pi < pj
		}
		return buckets[i].pos < buckets[j].pos
	})

	posBlocks := make([]translate.POSBlock, 0, len(buckets))
	for _, b := range buckets {
		shown := b.defs
		more := 0
		if len(shown) > maxDefsPerPOSBlock {
			more = len(shown) - maxDefsPerPOSBlock
			shown = shown[:maxDefsPerPOSBlock]
		}
		posBlocks = append(posBlocks, translate.POSBlock{POS: b.pos, Defs: shown, More: more})
	}

	return &translate.Grammar{
		Word:      lemma,
		Stems:     stems,
		POSBlocks: posBlocks,
		Etymology: etymologyOf(relevant),
	}
}

// etymologyOf takes the first relevant entry whose "et" array has any
// "text"-kind chunk and joins all of that entry's text chunks with a
// space, the way _mw_attach_grammar's " ".join(parts) does.
func etymologyOf(entries []RawEntry) string {
	for _, e := range entries {
		var parts []string
		for _, chunk := range e.ET {
			var pair []string
			if err := json.Unmarshal(chunk, &pair); err != nil || len(pair) < 2 {
				continue
			}
			if pair[0] == "text" {
				parts = append(parts, strings.TrimSpace(pair[1]))
			}
		}
		if joined := strings.TrimSpace(strings.Join(parts, " ")); joined != "" {
			return joined
		}
	}
	return ""
}
