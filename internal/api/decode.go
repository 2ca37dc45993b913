// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/romariozh/vim-deepl-go/internal/validation"
)

// decodeAndValidate reads r's JSON body into dst and validates it
// against dst's `validate:"..."` tags. On failure it writes the
// envelope error itself and returns false, so callers can just
// `if !decodeAndValidate(...) { return }`.
func decodeAndValidate(rw *ResponseWriter, r *http.Request, dst any) bool {
	if r.ContentLength != 0 {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			rw.BadRequest("invalid JSON body: " + err.Error())
			return false
		}
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		rw.ValidationError("request validation failed", verr.Fields)
		return false
	}
	return true
}
