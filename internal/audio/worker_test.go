// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/romariozh/vim-deepl-go/internal/config"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	return context.Background()
}

func TestSubdir_MatchesMWShardingRules(t *testing.T) {
	require.Equal(t, "bix", Subdir("bixfoo001"))
	require.Equal(t, "gg", Subdir("gglucky001"))
	require.Equal(t, "number", Subdir("123word"))
	require.Equal(t, "number", Subdir("_private"))
	require.Equal(t, "a", Subdir("apple001"))
}

func TestURL_BuildsMWAudioURL(t *testing.T) {
	require.Equal(t, "https://media.merriam-webster.com/audio/prons/en/us/mp3/a/apple001.mp3", URL("apple001"))
}

func testCfg() config.AudioConfig {
	return config.AudioConfig{
		DoublePlayGap: 50 * time.Millisecond,
		PlaybackWait:  2 * time.Second,
		VolumeProbe:   500 * time.Millisecond,
	}
}

func TestEnsureCached_ReturnsExistingFileWithoutDownloading(t *testing.T) {
	dir := t.TempDir()
	w := New(testCfg(), dir)

	dst := filepath.Join(dir, "cached001.mp3")
	require.NoError(t, os.WriteFile(dst, []byte("already-cached"), 0o644))

	path, err := w.EnsureCached(testContext(t), "cached001")
	require.NoError(t, err)
	require.Equal(t, dst, path)
}

func TestEnsureCached_WaitsOnInFlightDownloadInsteadOfRedownloading(t *testing.T) {
	dir := t.TempDir()
	w := New(testCfg(), dir)

	const audioID = "inflight001"
	dst := filepath.Join(dir, audioID+".mp3")

	// Simulate another goroutine already owning the download: mark it
	// in-flight, then finish it shortly after by writing the file and
	// releasing the marker, exactly as download()+defer Remove would.
	require.False(t, w.prefetch.IsDuplicate(audioID), "first mark must not itself be a duplicate")
	go func() {
		time.Sleep(150 * time.Millisecond)
		require.NoError(t, os.WriteFile(dst, []byte("owner-finished"), 0o644))
		w.prefetch.Remove(audioID)
	}()

	path, err := w.EnsureCached(testContext(t), audioID)
	require.NoError(t, err)
	require.Equal(t, dst, path)
}

func TestPrefetch_IsNonBlocking(t *testing.T) {
	dir := t.TempDir()
	w := New(testCfg(), dir)

	done := make(chan struct{})
	go func() {
		w.Prefetch("nonexistent001")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Prefetch must return immediately without waiting on the download")
	}
}

func TestQueue_ErrorsWithoutAPlayer(t *testing.T) {
	dir := t.TempDir()
	w := New(testCfg(), dir)
	w.player = nil

	_, err := w.Queue(filepath.Join(dir, "x.mp3"), 0)
	require.Error(t, err)
}

func TestHasPlayer_ReflectsProbedBinary(t *testing.T) {
	w := &Worker{player: []string{"mpv", "--no-terminal"}}
	require.True(t, w.HasPlayer())

	w2 := &Worker{player: nil}
	require.False(t, w2.HasPlayer())
}
