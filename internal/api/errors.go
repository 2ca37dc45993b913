// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package api

import (
	"errors"
	"net/http"

	"github.com/romariozh/vim-deepl-go/internal/apperr"
)

// writeAppError maps an apperr.Error (spec.md §7's taxonomy) onto the
// envelope by switching on its Code: ArgsError is 400, NotFound is 404,
// ProviderError is 502 and every other code is 500. Non-apperr errors
// are treated as internal failures.
func writeAppError(rw *ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		rw.InternalError(err.Error())
		return
	}

	switch appErr.Code {
	case apperr.CodeArgs:
		rw.BadRequest(appErr.Message)
	case apperr.CodeNotFound:
		rw.NotFound(appErr.Message)
	case apperr.CodeProvider:
		rw.Error(http.StatusBadGateway, ErrCodeExternalService, appErr.Message)
	default:
		rw.InternalError(appErr.Message)
	}
}

// retryOnBusy implements spec.md §5's "StorageBusy retried exactly once
// by the caller" rule at the façade boundary, for read-path handlers
// that call a repository read directly. Write paths get this for free
// from store.Write itself, which retries StorageBusy once against the
// single-connection writer pool; this helper only covers the reads that
// sit outside that path, such as GetEntry's direct GetBaseEntryAnySrc
// call.
func retryOnBusy[T any](fn func() (T, error)) (T, error) {
	result, err := fn()
	if err != nil && apperr.IsBusy(err) {
		return fn()
	}
	return result, err
}
