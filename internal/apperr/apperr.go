// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

// Package apperr implements the error taxonomy from spec.md §7:
// ArgsError, StorageBusy, StorageError, ProviderError, NotFound, and
// ConfigError. Repositories and services return these; internal/api
// is the single place that maps them to an HTTP status, grounded on
// the teacher's internal/api/errors.go + response.go error-code
// constants, trimmed to the five taxonomy members spec.md names.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies which taxonomy member an Error belongs to.
type Code string

const (
	CodeArgs     Code = "ARGS"
	CodeStorage  Code = "STORAGE"
	CodeBusy     Code = "STORAGE_BUSY"
	CodeProvider Code = "PROVIDER"
	CodeNotFound Code = "NOT_FOUND"
	CodeConfig   Code = "CONFIG"
)

// Error is the single structured error type used across vim-deepl-go.
// It implements error and Unwrap so callers can still use errors.Is/As
// against the wrapped cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the error's Code to the status spec.md §7 assigns it.
// ProviderError maps to 502; translation/dictionary endpoints never
// surface it here, because they fold provider failures into their
// payload's `error` field with a 200.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeArgs:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeStorage, CodeBusy, CodeConfig:
		return http.StatusInternalServerError
	case CodeProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Args builds an ArgsError.
func Args(format string, a ...any) *Error {
	return &Error{Code: CodeArgs, Message: fmt.Sprintf(format, a...)}
}

// NotFound builds a NotFound error.
func NotFound(format string, a ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, a...)}
}

// Storage wraps a repository-level failure as StorageError.
func Storage(cause error, format string, a ...any) *Error {
	return &Error{Code: CodeStorage, Message: fmt.Sprintf(format, a...), Err: cause}
}

// Busy wraps a lock-timeout failure as StorageBusy.
func Busy(cause error, format string, a ...any) *Error {
	return &Error{Code: CodeBusy, Message: fmt.Sprintf(format, a...), Err: cause}
}

// Provider wraps an upstream-API failure as ProviderError.
func Provider(cause error, format string, a ...any) *Error {
	return &Error{Code: CodeProvider, Message: fmt.Sprintf(format, a...), Err: cause}
}

// Config wraps a startup misconfiguration as ConfigError.
func Config(cause error, format string, a ...any) *Error {
	return &Error{Code: CodeConfig, Message: fmt.Sprintf(format, a...), Err: cause}
}

// IsBusy reports whether err (or something it wraps) is a StorageBusy error.
func IsBusy(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == CodeBusy
	}
	return false
}

// IsNotFound reports whether err (or something it wraps) is a NotFound error.
func IsNotFound(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == CodeNotFound
	}
	return false
}
