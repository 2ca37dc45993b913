// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

// Package audio implements spec.md §4.5's pronunciation playback
// pipeline: a single-consumer playback queue (so two F4 presses never
// overlap), a download-and-cache step, and background prefetch dedup.
// Grounded on original_source/python/vim_deepl/services/
// mw_audio_service.py, ported from its condition-variable worker
// thread to a channel-driven suture.Service, the way the teacher wraps
// long-running loops as supervised services in internal/supervisor.
package audio

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/romariozh/vim-deepl-go/internal/apperr"
	"github.com/romariozh/vim-deepl-go/internal/cache"
	"github.com/romariozh/vim-deepl-go/internal/config"
	"github.com/romariozh/vim-deepl-go/internal/logging"
	"github.com/romariozh/vim-deepl-go/internal/metrics"
)

const mwAudioBaseURL = "https://media.merriam-webster.com/audio/prons/en/us/mp3"

var leadingDigitOrUnderscore = regexp.MustCompile(`^[0-9_]`)

// Subdir implements mw_audio_service.py's mw_audio_subdir: MW shards its
// audio CDN by a prefix derived from the audio id.
func Subdir(audioID string) string {
	switch {
	case strings.HasPrefix(audioID, "bix"):
		return "bix"
	case strings.HasPrefix(audioID, "gg"):
		return "gg"
	case leadingDigitOrUnderscore.MatchString(audioID):
		return "number"
	default:
		return strings.ToLower(audioID[:1])
	}
}

// URL builds the MW pronunciation audio URL for an audio id.
func URL(audioID string) string {
	return mwAudioBaseURL + "/" + Subdir(audioID) + "/" + audioID + ".mp3"
}

var playerCandidates = [][]string{
	{"mplayer", "-really-quiet", "-nolirc", "-noconsolecontrols"},
	{"mpv", "--no-terminal"},
	{"ffplay", "-nodisp", "-autoexit"},
}

// pickPlayer implements pick_player: prefer mplayer, then mpv, then
// ffplay, picking the first whose binary actually resolves on PATH.
func pickPlayer() []string {
	for _, candidate := range playerCandidates {
		if _, err := exec.LookPath(candidate[0]); err == nil {
			return candidate
		}
	}
	return nil
}

type playRequest struct {
	token    int64
	filePath string
	delay    time.Duration
}

// Worker is the single-consumer playback queue. It implements
// suture.Service via Serve, so internal/supervisor can restart it if it
// ever panics.
type Worker struct {
	cfg      config.AudioConfig
	cacheDir string
	player   []string

	prefetch   *cache.LRUCache
	httpClient *http.Client

	token    int64
	requests chan playRequest

	mu      sync.Mutex
	current *exec.Cmd
}

// New builds a playback Worker. cacheDir is where downloaded MP3s are
// kept (spec.md §4.5's "~/.local/share/vim-deepl/mw_audio or
// $XDG_DATA_HOME equivalent").
func New(cfg config.AudioConfig, cacheDir string) *Worker {
	return &Worker{
		cfg:        cfg,
		cacheDir:   cacheDir,
		player:     pickPlayer(),
		prefetch:   cache.NewLRUCache(256, 2*time.Minute),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		requests:   make(chan playRequest, 1),
	}
}

// HasPlayer reports whether a usable playback binary was found.
func (w *Worker) HasPlayer() bool { return len(w.player) > 0 }

// Queue enqueues filePath for double playback, canceling whatever is
// currently playing or pending, per mw_audio_service.py's "single
// worker, newest request wins" rule.
func (w *Worker) Queue(filePath string, delay time.Duration) (int64, error) {
	if !w.HasPlayer() {
		return 0, apperr.Provider(nil, "no audio player found (need mplayer, mpv, or ffplay)")
	}

	token := atomic.AddInt64(&w.token, 1)

	w.mu.Lock()
	if w.current != nil && w.current.Process != nil {
		_ = w.current.Process.Kill()
	}
	w.mu.Unlock()

	select {
	case <-w.requests:
	default:
	}
	w.requests <- playRequest{token: token, filePath: filePath, delay: delay}
	return token, nil
}

// Serve implements suture.Service.
func (w *Worker) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-w.requests:
			w.play(ctx, req)
		}
	}
}

func (w *Worker) play(ctx context.Context, req playRequest) {
	for i := 0; i < 2; i++ {
		if atomic.LoadInt64(&w.token) != req.token {
			return
		}

		args := append(append([]string{}, w.player[1:]...), req.filePath)
		cmd := exec.Command(w.player[0], args...)
		if err := cmd.Start(); err != nil {
			logging.Warn().Str("audio_id", req.filePath).Err(err).Msg("audio player failed to start")
			return
		}

		w.mu.Lock()
		w.current = cmd
		w.mu.Unlock()

		done := make(chan error, 1)
		go func() { done <- cmd.Wait() }()

		select {
		case <-done:
		case <-time.After(w.cfg.PlaybackWait):
			_ = cmd.Process.Kill()
			<-done
		case <-ctx.Done():
			_ = cmd.Process.Kill()
			return
		}

		w.mu.Lock()
		if w.current == cmd {
			w.current = nil
		}
		w.mu.Unlock()

		if atomic.LoadInt64(&w.token) != req.token {
			return
		}
		if i == 0 {
			w.waitGap(ctx, req.token)
		}
	}
}

// waitGap sleeps for the configured double-play gap, polling every 50ms
// so a superseding Queue call aborts the wait early, mirroring
// mw_audio_service.py's token-polling sleep.
func (w *Worker) waitGap(ctx context.Context, token int64) {
	deadline := time.Now().Add(w.cfg.DoublePlayGap)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if atomic.LoadInt64(&w.token) != token {
				return
			}
		}
	}
}

// EnsureCached downloads audioID to the cache directory if missing,
// returning its local path. Concurrent calls for the same id share one
// download via the prefetch dedup cache.
func (w *Worker) EnsureCached(ctx context.Context, audioID string) (string, error) {
	if err := os.MkdirAll(w.cacheDir, 0o755); err != nil {
		return "", apperr.Storage(err, "create audio cache dir")
	}
	dst := filepath.Join(w.cacheDir, audioID+".mp3")

	if info, err := os.Stat(dst); err == nil && info.Size() > 0 {
		return dst, nil
	}

	if w.prefetch.IsDuplicate(audioID) {
		// Another EnsureCached call for this audio id is already
		// downloading it; wait for that download to land instead of
		// racing it on the same tmp file.
		return w.waitForDownload(ctx, audioID, dst)
	}
	defer w.prefetch.Remove(audioID)

	if err := w.download(ctx, audioID, dst); err != nil {
		metrics.CacheEvents.WithLabelValues("mw_audio", "miss").Inc()
		return "", err
	}
	metrics.CacheEvents.WithLabelValues("mw_audio", "hit").Inc()
	return dst, nil
}

// waitForDownload polls for dst to appear while another goroutine owns
// the in-flight download for audioID, the Go analogue of
// mw_audio_service.py's condition-variable wait. Bounded by the owner's
// own download timeout (w.httpClient.Timeout) plus slack, so a failed
// owner download that never produces a file doesn't wait forever.
func (w *Worker) waitForDownload(ctx context.Context, audioID, dst string) (string, error) {
	deadline := time.Now().Add(w.httpClient.Timeout + 5*time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return "", apperr.Provider(ctx.Err(), "audio download canceled while waiting on in-flight fetch")
		case <-ticker.C:
			if info, err := os.Stat(dst); err == nil && info.Size() > 0 {
				return dst, nil
			}
			if time.Now().After(deadline) {
				return "", apperr.Provider(nil, "timed out waiting on in-flight audio download for %s", audioID)
			}
		}
	}
}

func (w *Worker) download(ctx context.Context, audioID, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, URL(audioID), nil)
	if err != nil {
		return apperr.Provider(err, "build audio download request")
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return apperr.Provider(err, "download mw audio %s", audioID)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperr.Provider(nil, "mw audio %s: HTTP %d", audioID, resp.StatusCode)
	}
	ctype := resp.Header.Get("Content-Type")
	if ctype != "" && !strings.Contains(ctype, "audio") && !strings.Contains(ctype, "mpeg") && !strings.Contains(ctype, "mp3") {
		return apperr.Provider(nil, "mw audio %s: unexpected content-type %q", audioID, ctype)
	}

	tmp := filepath.Join(filepath.Dir(dst), "."+audioID+".mp3.tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return apperr.Storage(err, "create temp audio file")
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return apperr.Provider(err, "write mw audio %s", audioID)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return apperr.Storage(err, "close temp audio file")
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return apperr.Storage(err, "finalize audio download")
	}
	return nil
}

// Prefetch best-effort downloads audioID in the background without
// playing it, per mw_audio_service.py's "prefetch must only cache,
// never play" rule.
func (w *Worker) Prefetch(audioID string) {
	audioID = strings.TrimSpace(audioID)
	if audioID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := w.EnsureCached(ctx, audioID); err != nil {
			logging.Warn().Str("audio_id", audioID).Err(err).Msg("audio prefetch failed")
		}
	}()
}
