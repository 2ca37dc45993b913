// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/romariozh/vim-deepl-go/internal/apperr"
	"github.com/romariozh/vim-deepl-go/internal/logging"
)

// busyTimeout is the SQLITE busy_timeout pragma, per spec.md §4.1 ("≥ 5
// seconds (10 recommended)").
const busyTimeout = 10 * time.Second

// Store wraps two connection pools over the same SQLite file, mirroring
// the teacher's single-writer-lock pattern (internal/database.New):
// writer is capped at one open connection with BEGIN IMMEDIATE so
// writes queue instead of colliding under WAL; reader allows several
// concurrent connections for deferred/autocommit reads.
type Store struct {
	path   string
	writer *sql.DB
	reader *sql.DB
}

// Open creates the database file's parent directory if needed, applies
// the per-connection pragmas spec.md §4.1 mandates, and runs pending
// migrations idempotently.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, apperr.Storage(err, "create database directory %s", dir)
		}
	}

	writerDSN := dsn(path, true)
	writer, err := sql.Open("sqlite", writerDSN)
	if err != nil {
		return nil, apperr.Storage(err, "open writer connection")
	}
	writer.SetMaxOpenConns(1)
	writer.SetMaxIdleConns(1)

	readerDSN := dsn(path, false)
	reader, err := sql.Open("sqlite", readerDSN)
	if err != nil {
		closeQuietly(writer)
		return nil, apperr.Storage(err, "open reader connection")
	}
	reader.SetMaxOpenConns(4)

	s := &Store{path: path, writer: writer, reader: reader}

	ctx, cancel := context.WithTimeout(context.Background(), busyTimeout)
	defer cancel()
	if err := s.migrate(ctx); err != nil {
		closeQuietly(writer)
		closeQuietly(reader)
		return nil, err
	}

	logging.Info().Str("path", path).Msg("storage engine ready")
	return s, nil
}

// dsn builds the connection string with fixed pragmas: foreign keys on,
// WAL journal mode, synchronous=NORMAL, and the busy_timeout spec.md
// §4.1 requires. The writer pool additionally requests an immediate
// transaction lock so write sequences acquire the writer lock up-front.
func dsn(path string, writer bool) string {
	pragmas := fmt.Sprintf(
		"_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		busyTimeout.Milliseconds(),
	)
	if writer {
		return fmt.Sprintf("file:%s?%s&_txlock=immediate", path, pragmas)
	}
	return fmt.Sprintf("file:%s?%s&mode=ro&_txlock=deferred", path, pragmas)
}

// Close releases both connection pools.
func (s *Store) Close() error {
	readErr := s.reader.Close()
	writeErr := s.writer.Close()
	if writeErr != nil {
		return writeErr
	}
	return readErr
}

func closeQuietly(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}
