// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package sync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDo_PropagatesSuccessResult(t *testing.T) {
	b := NewBreaker("test-provider-success")
	got, err := Do(b, func() (string, error) { return "translated", nil })
	require.NoError(t, err)
	require.Equal(t, "translated", got)
}

func TestDo_WrapsUpstreamErrorAsProviderError(t *testing.T) {
	b := NewBreaker("test-provider-failure")
	upstream := errors.New("upstream timeout")
	_, err := Do(b, func() (string, error) { return "", upstream })
	require.Error(t, err)
	require.True(t, errors.Is(err, upstream))
}
