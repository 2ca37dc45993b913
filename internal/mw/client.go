// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

// Package mw implements internal/dictionary's Client against the
// Merriam-Webster Collegiate (sd3) REST API, grounded on
// original_source/python/vim_deepl/integrations/merriam_webster.py's
// mw_call, wrapped in the teacher's circuit-breaker pattern the same
// way internal/deepl wraps the translation endpoint.
package mw

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/romariozh/vim-deepl-go/internal/dictionary"
	vdsync "github.com/romariozh/vim-deepl-go/internal/sync"
)

const endpoint = "https://www.dictionaryapi.com/api/v3/references/sd3/json/"

// Client calls the MW sd3 dictionary endpoint.
type Client struct {
	apiKey     string
	httpClient *http.Client
	breaker    *vdsync.Breaker
}

// New builds a Client. apiKey is read by the caller from MW_SD3_API_KEY.
func New(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		breaker:    vdsync.NewBreaker("merriam-webster"),
	}
}

// Lookup implements dictionary.Client.
func (c *Client) Lookup(ctx context.Context, term string) ([]dictionary.RawEntry, []byte, bool, error) {
	type lookupResult struct {
		entries []dictionary.RawEntry
		raw     []byte
		found   bool
	}

	res, err := vdsync.Do(c.breaker, func() (lookupResult, error) {
		raw, err := c.call(ctx, term)
		if err != nil {
			return lookupResult{}, err
		}

		// Suggestions mode: MW returns list[str] when it has no exact
		// entry for the term. Nothing to cache definitions-wise.
		var probe []json.RawMessage
		if err := json.Unmarshal(raw, &probe); err != nil {
			return lookupResult{}, fmt.Errorf("mw: decode response: %w", err)
		}
		if len(probe) == 0 {
			return lookupResult{raw: raw, found: false}, nil
		}
		var firstStr string
		if json.Unmarshal(probe[0], &firstStr) == nil {
			return lookupResult{raw: raw, found: false}, nil
		}

		var entries []dictionary.RawEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return lookupResult{}, fmt.Errorf("mw: decode entries: %w", err)
		}
		return lookupResult{entries: entries, raw: raw, found: true}, nil
	})
	if err != nil {
		return nil, nil, false, err
	}
	return res.entries, res.raw, res.found, nil
}

func (c *Client) call(ctx context.Context, term string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("MW_SD3_API_KEY is not set")
	}

	u := endpoint + url.PathEscape(term) + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("mw status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
