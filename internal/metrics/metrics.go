// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

// Package metrics instruments the storage engine, provider clients, HTTP
// façade and background workers with Prometheus gauges/counters/
// histograms, grounded on the teacher's internal/metrics package but
// scoped to this service's domain (no DuckDB/WebSocket/DLQ series).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StorageQueryDuration tracks SQLite query latency by operation.
	StorageQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vocabd_storage_query_duration_seconds",
			Help:    "Duration of storage engine operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StorageQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocabd_storage_query_errors_total",
			Help: "Total number of storage operation errors",
		},
		[]string{"operation", "code"},
	)

	// HTTPRequestDuration tracks façade endpoint latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vocabd_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// CircuitBreakerState reports 0=closed, 1=half-open, 2=open per provider.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vocabd_circuit_breaker_state",
			Help: "Provider circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocabd_circuit_breaker_requests_total",
			Help: "Total number of requests through a provider circuit breaker",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vocabd_circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive provider failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocabd_circuit_breaker_state_transitions_total",
			Help: "Total number of provider circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// CacheEvents tracks the audio prefetch dedup cache's hit/miss rate.
	CacheEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocabd_cache_events_total",
			Help: "Cache hit/miss events by cache name",
		},
		[]string{"name", "result"}, // result: hit, miss
	)

	// WorkerRestarts counts suture-supervised worker restarts.
	WorkerRestarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocabd_worker_restarts_total",
			Help: "Total number of supervised worker restarts",
		},
		[]string{"worker"},
	)
)
