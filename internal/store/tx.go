// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/romariozh/vim-deepl-go/internal/apperr"
)

// Read runs fn inside a deferred, read-only transaction against the
// reader pool, per spec.md §4.1's "Deferred (for read sequences)" scope.
func (s *Store) Read(ctx context.Context, fn func(*sql.Tx) error) error {
	return s.runTx(ctx, s.reader, fn)
}

// Write runs fn inside an immediate transaction against the writer pool,
// per spec.md §4.1's "Immediate (for write sequences)" scope. Because
// the writer pool is capped at one connection, BEGIN IMMEDIATE acquires
// the SQLite writer lock before fn runs, avoiding mid-transaction lock
// failures under WAL.
//
// A StorageBusy outcome (the busy_timeout pragma exhausted under
// contention) is retried exactly once per spec.md §5/§7's general retry
// policy, so every write path gets it for free instead of each caller
// re-implementing it.
func (s *Store) Write(ctx context.Context, fn func(*sql.Tx) error) error {
	err := s.runTx(ctx, s.writer, fn)
	if err != nil && apperr.IsBusy(err) {
		return s.runTx(ctx, s.writer, fn)
	}
	return err
}

// QueryRow runs a single autocommit SELECT against the reader pool, per
// spec.md §4.1's "Autocommit read" scope.
func (s *Store) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.reader.QueryRowContext(ctx, query, args...)
}

func (s *Store) runTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err, "begin transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify(err, "commit transaction")
	}
	return nil
}

// classify maps a SQLite busy/locked error to StorageBusy and anything
// else to StorageError, per spec.md §4.1 ("Fails with StorageBusy only
// after the busy timeout is exhausted; all other database errors
// surface as StorageError").
func classify(err error, action string) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy") {
		return apperr.Busy(err, action)
	}
	return apperr.Storage(err, action)
}

// ErrNoRows re-exports sql.ErrNoRows so repositories can compare without
// importing database/sql directly in call sites that only need this.
var ErrNoRows = sql.ErrNoRows

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
