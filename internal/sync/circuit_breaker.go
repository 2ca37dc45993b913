// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

// Package sync wraps the DeepL and dictionary provider clients in a
// circuit breaker, grounded on the teacher's internal/sync package
// (NewCircuitBreakerClient over the Tautulli API), adapted to a generic
// Breaker so both providers share one implementation instead of one
// hand-written wrapper type per client.
package sync

import (
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/romariozh/vim-deepl-go/internal/apperr"
	"github.com/romariozh/vim-deepl-go/internal/logging"
	"github.com/romariozh/vim-deepl-go/internal/metrics"
)

// Breaker wraps a named upstream call with a failure-ratio circuit
// breaker: it opens after a 60% failure rate over at least 10 requests
// in a 1-minute window, then probes again after a 2-minute cooldown.
type Breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreaker constructs a circuit breaker for one named upstream
// (e.g. "deepl" or "merriam-webster"), wired so state transitions and
// request outcomes are exported on the vocabd_circuit_breaker_* series.
func NewBreaker(name string) *Breaker {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			trip := ratio >= 0.6
			if trip {
				logging.Warn().Str("provider", name).Uint32("failures", counts.TotalFailures).Float64("failure_rate", ratio*100).Msg("circuit breaker opening")
			}
			return trip
		},
		OnStateChange: func(n string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("provider", n).Str("from", fromStr).Str("to", toStr).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(n).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(n, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(n).Set(0)
			}
		},
	})

	return &Breaker{name: name, cb: cb}
}

// Do runs fn through the breaker and returns its typed result.
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	result, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			var zero T
			return zero, apperr.Provider(err, "%s: circuit open", b.name)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(b.cb.Counts().ConsecutiveFailures))
		var zero T
		return zero, apperr.Provider(err, "%s request failed", b.name)
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)

	typed, ok := result.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("circuit breaker %s: unexpected result type %T", b.name, result)
	}
	return typed, nil
}

// State reports the breaker's current state for health/status endpoints.
func (b *Breaker) State() string {
	return stateToString(b.cb.State())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
