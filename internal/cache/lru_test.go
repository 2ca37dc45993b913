// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsDuplicate_SecondCallWithinTTLIsDuplicate(t *testing.T) {
	c := NewLRUCache(10, time.Minute)
	require.False(t, c.IsDuplicate("audio-1"))
	require.True(t, c.IsDuplicate("audio-1"))
}

func TestIsDuplicate_ExpiredEntryIsNotDuplicate(t *testing.T) {
	c := NewLRUCache(10, time.Millisecond)
	require.False(t, c.IsDuplicate("audio-1"))
	time.Sleep(5 * time.Millisecond)
	require.False(t, c.IsDuplicate("audio-1"))
}

func TestLRUCache_EvictsOldestOverCapacity(t *testing.T) {
	c := NewLRUCache(2, time.Minute)
	c.IsDuplicate("a")
	c.IsDuplicate("b")
	c.IsDuplicate("c")
	require.Equal(t, 2, c.Len())
	require.False(t, c.Remove("a"))
	require.True(t, c.Remove("b"))
}

func TestRemove_AllowsRetryAfterClear(t *testing.T) {
	c := NewLRUCache(10, time.Minute)
	c.IsDuplicate("audio-1")
	require.True(t, c.Remove("audio-1"))
	require.False(t, c.IsDuplicate("audio-1"))
}
