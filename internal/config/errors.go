// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package config

import "errors"

// ErrConfig marks a startup configuration failure. The composition root
// logs and exits 1 when Load returns an error wrapping ErrConfig, per
// spec.md §7's ConfigError taxonomy member.
var ErrConfig = errors.New("config error")
