// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

// Package config loads vim-deepl-go's configuration from environment
// variables, following the env-var list in spec.md §6. Loading order
// mirrors the teacher's koanf pipeline: built-in defaults, then
// environment variables override.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds every setting vim-deepl-go reads at startup.
type Config struct {
	// DeepLAPIKey authenticates calls to the DeepL translation endpoint.
	DeepLAPIKey string

	// MWAPIKey authenticates calls to the Merriam-Webster dictionary endpoint.
	MWAPIKey string

	// DataDir is the root directory for the database file, audio cache,
	// and log file when their specific paths are not overridden.
	DataDir string

	// DBPath is the SQLite database file path.
	DBPath string

	// LogPath is the log file path. Empty means stderr.
	LogPath string

	// LogLevel is the zerolog level name (trace..panic).
	LogLevel string

	// HTTPHost/HTTPPort are the façade's bind address.
	HTTPHost string
	HTTPPort int

	// HTTPTimeout is the façade HTTP server's read and write timeout. The
	// provider clients and circuit breakers do not read it: each provider
	// client uses its own fixed 15-second HTTP timeout.
	HTTPTimeout time.Duration

	// Trainer tunables, spec.md §4.6.
	Trainer TrainerConfig

	// Audio worker tunables, spec.md §4.5.
	Audio AudioConfig
}

// TrainerConfig holds the trainer's candidate-pool tunables.
type TrainerConfig struct {
	RecentDays     int
	MasteryCount   int
	RecentRatio    float64
	SRSNewRatio    float64
	HardRandomTopN int
}

// AudioConfig holds the audio worker's playback tunables.
type AudioConfig struct {
	DoublePlayGap time.Duration
	PlaybackWait  time.Duration
	VolumeProbe   time.Duration
}

const envPrefix = "VIM_DEEPL_"

func defaultConfig() Config {
	dataDir := defaultDataDir()
	return Config{
		DataDir:     dataDir,
		DBPath:      filepath.Join(dataDir, "vim-deepl.db"),
		LogPath:     filepath.Join(dataDir, "vim-deepl.log"),
		LogLevel:    "info",
		HTTPHost:    "127.0.0.1",
		HTTPPort:    8765,
		HTTPTimeout: 25 * time.Second,
		Trainer: TrainerConfig{
			RecentDays:     7,
			MasteryCount:   7,
			RecentRatio:    0.7,
			SRSNewRatio:    0.2,
			HardRandomTopN: 5,
		},
		Audio: AudioConfig{
			DoublePlayGap: time.Second,
			PlaybackWait:  10 * time.Second,
			VolumeProbe:   2 * time.Second,
		},
	}
}

func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "vim-deepl")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "vim-deepl")
	}
	return filepath.Join(home, ".local", "share", "vim-deepl")
}

// Load builds a Config from defaults overridden by the environment
// variables named in spec.md §6. It returns a ConfigError-wrapped error
// when a value is present but malformed.
func Load() (Config, error) {
	cfg := defaultConfig()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return cfg, fmt.Errorf("%w: reading environment: %v", ErrConfig, err)
	}

	if v := k.String("DEEPL_API_KEY"); v != "" {
		cfg.DeepLAPIKey = v
	}
	if v := k.String("MW_SD3_API_KEY"); v != "" {
		cfg.MWAPIKey = v
	}
	if v := k.String(envPrefix + "DATA_DIR"); v != "" {
		cfg.DataDir = v
		cfg.DBPath = filepath.Join(v, "vim-deepl.db")
		cfg.LogPath = filepath.Join(v, "vim-deepl.log")
	}
	if v := k.String(envPrefix + "DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := k.String(envPrefix + "LOG_PATH"); v != "" {
		cfg.LogPath = v
	}
	if v := k.String(envPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := k.String(envPrefix + "HTTP_HOST"); v != "" {
		cfg.HTTPHost = v
	}
	if v := k.String(envPrefix + "HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s=%q is not an integer", ErrConfig, envPrefix+"HTTP_PORT", v)
		}
		cfg.HTTPPort = port
	}
	if v := k.String(envPrefix + "HTTP_TIMEOUT_SEC"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s=%q is not an integer", ErrConfig, envPrefix+"HTTP_TIMEOUT_SEC", v)
		}
		cfg.HTTPTimeout = time.Duration(secs) * time.Second
	}

	return cfg, nil
}
