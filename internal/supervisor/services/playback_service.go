// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package services

import "context"

// Playback matches audio.Worker's Serve method, letting
// PlaybackService wrap it without importing internal/audio (which
// would otherwise create an import cycle back through internal/api).
type Playback interface {
	Serve(ctx context.Context) error
}

// PlaybackService names the audio playback worker for suture's logging;
// the worker's own Serve already implements the supervised restart loop
// (re-dialing the queue channel on each restart), so this is a pure
// naming wrapper.
type PlaybackService struct {
	worker Playback
}

// NewPlaybackService wraps worker for the playback supervisor layer.
func NewPlaybackService(worker Playback) *PlaybackService {
	return &PlaybackService{worker: worker}
}

// Serve implements suture.Service.
func (p *PlaybackService) Serve(ctx context.Context) error {
	return p.worker.Serve(ctx)
}

// String implements fmt.Stringer for suture's logging.
func (p *PlaybackService) String() string {
	return "audio-playback"
}
