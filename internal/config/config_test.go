// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, 8765, cfg.HTTPPort)
	require.Equal(t, 7, cfg.Trainer.RecentDays)
	require.Equal(t, 7, cfg.Trainer.MasteryCount)
	require.InDelta(t, 0.7, cfg.Trainer.RecentRatio, 0.0001)
	require.InDelta(t, 0.2, cfg.Trainer.SRSNewRatio, 0.0001)
	require.Equal(t, 5, cfg.Trainer.HardRandomTopN)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DEEPL_API_KEY", "deepl-secret")
	t.Setenv("MW_SD3_API_KEY", "mw-secret")
	t.Setenv("VIM_DEEPL_HTTP_PORT", "9090")
	t.Setenv("VIM_DEEPL_LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "deepl-secret", cfg.DeepLAPIKey)
	require.Equal(t, "mw-secret", cfg.MWAPIKey)
	require.Equal(t, 9090, cfg.HTTPPort)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_BadPort(t *testing.T) {
	t.Setenv("VIM_DEEPL_HTTP_PORT", "not-a-number")
	_, err := Load()
	require.ErrorIs(t, err, ErrConfig)
}
