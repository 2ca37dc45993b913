// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

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

type fakeClient struct {
	entries []RawEntry
	raw     []byte
	found   bool
	err     error
	calls   int
}

func (f *fakeClient) Lookup(ctx context.Context, term string) ([]RawEntry, []byte, bool, error) {
	f.calls++
	return f.entries, f.raw, f.found, f.err
}

func appleEntry() RawEntry {
	e := RawEntry{}
	e.Meta.ID = "apple"
	e.HWI.HW = "ap*ple"
	e.FL = "noun"
	e.ShortDef = []string{"a fruit", "a fruit", "a tree"}
	e.HWI.PRS = []Pron{{}}
	e.HWI.PRS[0].Sound.Audio = "apple001"
	return e
}

func TestEnsureDefinitions_NonEnglishNeverFetches(t *testing.T) {
	st := newTestStore(t)
	client := &fakeClient{}
	svc := New(st, client)

	defs, err := svc.EnsureDefinitions(context.Background(), "hund", "DA")
	require.NoError(t, err)
	require.Nil(t, defs)
	require.Equal(t, 0, client.calls)
}

func TestEnsureDefinitions_FetchesOnceThenCaches(t *testing.T) {
	st := newTestStore(t)
	client := &fakeClient{entries: []RawEntry{appleEntry()}, raw: []byte(`[]`), found: true}
	svc := New(st, client)
	ctx := context.Background()

	defs, err := svc.EnsureDefinitions(ctx, "apple", "EN")
	require.NoError(t, err)
	require.NotNil(t, defs)
	require.Equal(t, []string{"a fruit", "a tree"}, defs.Noun)
	require.Equal(t, "apple001", defs.AudioMain)
	require.Equal(t, 1, client.calls)

	again, err := svc.EnsureDefinitions(ctx, "apple", "EN")
	require.NoError(t, err)
	require.Equal(t, defs.Noun, again.Noun)
	require.Equal(t, 1, client.calls, "second call must hit the cache, not the client")
}

func TestEnsureDefinitions_SuggestionListCachesEmptyBuckets(t *testing.T) {
	st := newTestStore(t)
	client := &fakeClient{found: false, raw: []byte(`["appl","apples"]`)}
	svc := New(st, client)
	ctx := context.Background()

	defs, err := svc.EnsureDefinitions(ctx, "aple", "EN")
	require.NoError(t, err)
	require.NotNil(t, defs)
	require.Empty(t, defs.Noun)
	require.Empty(t, defs.AudioIDs)

	cached, err := st.GetDefinitionSet(ctx, "aple", "EN")
	require.NoError(t, err)
	require.NotNil(t, cached, "empty bucketed set must be cached so the next lookup is a cache hit")
	require.Equal(t, 1, client.calls)

	again, err := svc.EnsureDefinitions(ctx, "aple", "EN")
	require.NoError(t, err)
	require.NotNil(t, again)
	require.Equal(t, 1, client.calls, "second call must hit the cached empty set, not the client")
}

func TestEnsureDefinitions_ClientErrorReturnsNilNoError(t *testing.T) {
	st := newTestStore(t)
	client := &fakeClient{err: errors.New("mw unavailable")}
	svc := New(st, client)

	defs, err := svc.EnsureDefinitions(context.Background(), "apple", "EN")
	require.NoError(t, err)
	require.Nil(t, defs)
}

func TestPickMainEntry_PrefersMetaIDOverHeadword(t *testing.T) {
	other := RawEntry{}
	other.Meta.ID = "other:1"
	other.HWI.HW = "apple"

	main := RawEntry{}
	main.Meta.ID = "apple:2"

	entry, ok := pickMainEntry([]RawEntry{other, main}, "apple")
	require.True(t, ok)
	require.Equal(t, "apple:2", entry.Meta.ID)
}

func TestDeriveGrammar_GroupsByPOSAndCapsDefs(t *testing.T) {
	st := newTestStore(t)
	client := &fakeClient{found: false}
	svc := New(st, client)
	ctx := context.Background()

	noun := RawEntry{}
	noun.Meta.ID = "travel:1"
	noun.Meta.Stems = []string{"travel", "travels"}
	noun.FL = "noun"
	noun.ShortDef = []string{"a trip", "a trip", "a journey abroad"}

	verb := RawEntry{}
	verb.Meta.ID = "travel:2"
	verb.FL = "verb"
	verb.ShortDef = []string{"to go on a trip", "to journey", "to move", "to proceed"}
	verb.ET = []json.RawMessage{json.RawMessage(`["text","Middle English travailen"]`)}

	raw, err := json.Marshal([]RawEntry{noun, verb})
	require.NoError(t, err)
	require.NoError(t, st.UpsertDefinitionSet(ctx, store.DefinitionSet{Term: "travel", SrcLang: "EN", RawJSON: string(raw)}))

	grammar, err := svc.DeriveGrammar(ctx, "travel", "EN")
	require.NoError(t, err)
	require.NotNil(t, grammar)
	require.Equal(t, "travel", grammar.Word)
	require.Equal(t, []string{"travel", "travels"}, grammar.Stems)
	require.Equal(t, "Middle English travailen", grammar.Etymology)

	require.Len(t, grammar.POSBlocks, 2)
	require.Equal(t, "Noun", grammar.POSBlocks[0].POS)
	require.Equal(t, []string{"a trip", "a journey abroad"}, grammar.POSBlocks[0].Defs)
	require.Equal(t, 0, grammar.POSBlocks[0].More)

	require.Equal(t, "Verb", grammar.POSBlocks[1].POS)
	require.Equal(t, []string{"to go on a trip", "to journey", "to move"}, grammar.POSBlocks[1].Defs)
	require.Equal(t, 1, grammar.POSBlocks[1].More)
}

func TestDeriveGrammar_NilWhenNothingCached(t *testing.T) {
	st := newTestStore(t)
	svc := New(st, &fakeClient{})

	grammar, err := svc.DeriveGrammar(context.Background(), "ghost", "EN")
	require.NoError(t, err)
	require.Nil(t, grammar)
}

func TestCollectAudioIDs_DedupesPreservingOrder(t *testing.T) {
	e := RawEntry{}
	e.HWI.PRS = []Pron{{}, {}}
	e.HWI.PRS[0].Sound.Audio = "a1"
	e.HWI.PRS[1].Sound.Audio = "a1"
	e.Uros = append(e.Uros, struct {
		PRS []Pron `json:"prs"`
	}{})
	e.Uros[0].PRS = []Pron{{}}
	e.Uros[0].PRS[0].Sound.Audio = "a2"

	ids := collectAudioIDs(e)
	require.Equal(t, []string{"a1", "a2"}, ids)
}
