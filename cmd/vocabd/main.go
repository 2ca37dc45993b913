// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

// Command vocabd is vim-deepl-go's composition root: it loads
// configuration, opens the storage engine, wires the provider clients
// and domain services, and runs the HTTP façade and the audio worker
// under a suture supervisor tree until signaled to stop. Grounded on
// the teacher's cmd/server/main.go sequential-initialization shape,
// collapsed to this service's two long-running components.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/romariozh/vim-deepl-go/internal/api"
	"github.com/romariozh/vim-deepl-go/internal/audio"
	"github.com/romariozh/vim-deepl-go/internal/bookmarks"
	"github.com/romariozh/vim-deepl-go/internal/config"
	"github.com/romariozh/vim-deepl-go/internal/deepl"
	"github.com/romariozh/vim-deepl-go/internal/dictionary"
	"github.com/romariozh/vim-deepl-go/internal/logging"
	"github.com/romariozh/vim-deepl-go/internal/mw"
	"github.com/romariozh/vim-deepl-go/internal/store"
	"github.com/romariozh/vim-deepl-go/internal/supervisor"
	"github.com/romariozh/vim-deepl-go/internal/supervisor/services"
	"github.com/romariozh/vim-deepl-go/internal/trainer"
	"github.com/romariozh/vim-deepl-go/internal/translate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: "json",
		Output: openLogOutput(cfg.LogPath),
	})

	logging.Info().Str("data_dir", cfg.DataDir).Str("db_path", cfg.DBPath).Msg("starting vocabd")

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open storage engine")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing storage engine")
		}
	}()

	if cfg.DeepLAPIKey == "" {
		logging.Warn().Msg("DEEPL_API_KEY is not set; translation requests will fail until it is configured")
	}
	deeplClient := deepl.New(cfg.DeepLAPIKey)

	var mwClient dictionary.Client
	if cfg.MWAPIKey != "" {
		mwClient = mw.New(cfg.MWAPIKey)
	} else {
		logging.Warn().Msg("MW_SD3_API_KEY is not set; dictionary metadata will stay cache-only")
	}
	dictSvc := dictionary.New(st, mwClient)

	translateSvc := translate.New(st, deeplClient, dictSvc)
	trainerSvc := trainer.New(st, cfg.Trainer, dictSvc)
	bookmarksSvc := bookmarks.New(st)

	audioCacheDir := audioCacheDirFor(cfg.DataDir)
	audioWorker := audio.New(cfg.Audio, audioCacheDir)
	if !audioWorker.HasPlayer() {
		logging.Warn().Msg("no audio player found (mplayer/mpv/ffplay); playback requests will report cached_only")
	}

	handler := api.NewHandler(st, translateSvc, dictSvc, trainerSvc, bookmarksSvc, audioWorker)
	router := api.NewRouter(handler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTPHost, cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  60 * time.Second,
	}

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddPlaybackService(services.NewPlaybackService(audioWorker))
	tree.AddAPIService(services.NewHTTPServerService(httpServer, 10*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", httpServer.Addr).Msg("supervisor tree starting")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor tree exited with error")
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service failed to stop within timeout")
		}
	}

	logging.Info().Msg("vocabd stopped")
}

// openLogOutput opens the configured log file for appending, falling
// back to stderr (and logging why) when path is empty or unusable.
func openLogOutput(path string) *os.File {
	if path == "" {
		return os.Stderr
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("failed to open log file, logging to stderr instead")
		return os.Stderr
	}
	return f
}

// audioCacheDirFor builds the mw_audio cache directory under the data
// directory, per spec.md §4.5.
func audioCacheDirFor(dataDir string) string {
	return filepath.Join(dataDir, "mw_audio")
}
