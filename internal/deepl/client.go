// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

// Package deepl implements translate.Provider against the DeepL Free
// REST API, grounded on original_source/python/vim_deepl/integrations/
// deepl.py's deepl_call (same endpoint, same form fields), wrapped in
// the teacher's circuit-breaker pattern (internal/sync.Breaker) and
// cenkalti/backoff/v4 retry, the way the teacher wraps its Tautulli
// client in internal/sync.
package deepl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/romariozh/vim-deepl-go/internal/apperr"
	vdsync "github.com/romariozh/vim-deepl-go/internal/sync"
	"github.com/romariozh/vim-deepl-go/internal/translate"
)

const endpoint = "https://api-free.deepl.com/v2/translate"

// Client calls the DeepL translate endpoint.
type Client struct {
	apiKey     string
	httpClient *http.Client
	breaker    *vdsync.Breaker
}

// New builds a Client. apiKey is read by the caller from DEEPL_API_KEY
// (spec.md §4.3/§8's "out-of-process secret, never logged").
func New(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		breaker:    vdsync.NewBreaker("deepl"),
	}
}

type apiResponse struct {
	Translations []struct {
		Text                   string `json:"text"`
		DetectedSourceLanguage string `json:"detected_source_language"`
	} `json:"translations"`
}

// Translate implements translate.Provider.
func (c *Client) Translate(ctx context.Context, text, targetLang, sentenceContext string) (translate.Result, error) {
	if c.apiKey == "" {
		return translate.Result{}, apperr.Config(nil, "DEEPL_API_KEY is not set")
	}

	return vdsync.Do(c.breaker, func() (translate.Result, error) {
		return c.callWithRetry(ctx, text, targetLang, sentenceContext)
	})
}

func (c *Client) callWithRetry(ctx context.Context, text, targetLang, sentenceContext string) (translate.Result, error) {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)

	var result translate.Result
	err := backoff.Retry(func() error {
		r, err := c.call(ctx, text, targetLang, sentenceContext)
		if err != nil {
			return err
		}
		result = r
		return nil
	}, b)
	if err != nil {
		return translate.Result{}, fmt.Errorf("deepl: %w", err)
	}
	return result, nil
}

func (c *Client) call(ctx context.Context, text, targetLang, sentenceContext string) (translate.Result, error) {
	form := url.Values{
		"auth_key":    {c.apiKey},
		"text":        {text},
		"target_lang": {strings.ToUpper(targetLang)},
	}
	if sentenceContext != "" {
		form.Set("context", sentenceContext)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return translate.Result{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return translate.Result{}, fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return translate.Result{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 500 {
		return translate.Result{}, fmt.Errorf("deepl status %d: %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode >= 400 {
		return translate.Result{}, backoff.Permanent(fmt.Errorf("deepl status %d: %s", resp.StatusCode, string(body)))
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return translate.Result{}, backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Translations) == 0 {
		return translate.Result{}, backoff.Permanent(fmt.Errorf("deepl empty response"))
	}

	first := parsed.Translations[0]
	return translate.Result{Text: first.Text, DetectedSrc: first.DetectedSourceLanguage}, nil
}
