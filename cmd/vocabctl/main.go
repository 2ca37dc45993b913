// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

// Command vocabctl is the thin editor-facing client named in spec.md §1
// as an out-of-scope collaborator ("the command-line adapter that
// serializes one call through standard input/output"). It reads a JSON
// request body from stdin, POSTs or GETs it against a running vocabd,
// and prints the response body to stdout, matching the
// read-dispatch-print shape of original_source/python/vim_deepl/
// transport/vim_stdio.py and cli/dispatcher.py, ported to Cobra the way
// the pack's steveyegge-beads CLI structures one subcommand per verb.
package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverAddr string
	httpClient = &http.Client{Timeout: 25 * time.Second}
)

func main() {
	root := &cobra.Command{
		Use:   "vocabctl",
		Short: "Editor-side client for the vocabd vocabulary/training service",
		Long: `vocabctl reads a JSON request body from stdin (where the endpoint takes
one), sends it to a running vocabd instance, and prints the JSON
response to stdout. It never talks to the database or any provider
directly; every command is a single HTTP round trip to vocabd.`,
	}
	root.PersistentFlags().StringVar(&serverAddr, "server", defaultServerAddr(), "vocabd base URL")

	root.AddCommand(
		translateWordCmd(),
		translateSelectionCmd(),
		trainNextCmd(),
		trainReviewCmd(),
		markHardCmd(),
		markIgnoreCmd(),
		audioPlayCmd(),
		bookmarkMarkCmd(),
		bookmarkListCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultServerAddr() string {
	host := os.Getenv("VIM_DEEPL_HTTP_HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	port := os.Getenv("VIM_DEEPL_HTTP_PORT")
	if port == "" {
		port = "8765"
	}
	return fmt.Sprintf("http://%s:%s", host, port)
}

// postStdin POSTs stdin verbatim (expected to be a JSON object) to path
// and prints whatever vocabd returns, preserving its exit-code
// semantics: a non-2xx response still prints the body (vocabd's error
// shape) but exits 1, matching vim_stdio.py's "print JSON regardless,
// exit 0/1 on ok" contract.
func postStdin(path string) error {
	body, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	return doRequest(http.MethodPost, path, body)
}

func getQuery(path string, query url.Values) error {
	full := path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return doRequest(http.MethodGet, full, nil)
}

func doRequest(method, path string, body []byte) error {
	req, err := http.NewRequest(method, serverAddr+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling vocabd at %s: %w", serverAddr, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading vocabd response: %w", err)
	}

	fmt.Println(string(respBody))
	if resp.StatusCode >= 300 {
		os.Exit(1)
	}
	return nil
}

func translateWordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "word",
		Short: "Translate a word, reading {term, target_lang, src_hint?, context?} from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postStdin("/translate/word")
		},
	}
}

func translateSelectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selection",
		Short: "Translate a selection, reading {text, target_lang, src_hint?} from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postStdin("/translate/selection")
		},
	}
}

func trainNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train-next",
		Short: "Fetch the next training candidate, reading {src_filter?, exclude_card_ids?} from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postStdin("/train/next")
		},
	}
}

func trainReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train-review",
		Short: "Grade a training card, reading {card_id, grade, src_filter?} from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postStdin("/train/review")
		},
	}
}

func markHardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mark-hard",
		Short: "Toggle an entry's manual difficulty flag, reading {word, src_filter} from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postStdin("/train/mark_hard")
		},
	}
}

func markIgnoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mark-ignore",
		Short: "Exclude an entry from caching and training, reading {word?, entry_id?, src_filter} from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postStdin("/train/mark_ignore")
		},
	}
}

func audioPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audio-play",
		Short: "Play a Merriam-Webster pronunciation clip, reading {audio_id, play_server?} from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postStdin("/mw/audio/play")
		},
	}
}

func bookmarkMarkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bookmark-mark",
		Short: "Record a bookmark, reading {path, lnum, col, length, term, kind} from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postStdin("/bookmarks/mark")
		},
	}
}

func bookmarkListCmd() *cobra.Command {
	var path string
	c := &cobra.Command{
		Use:   "bookmark-list",
		Short: "List bookmarks recorded for a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getQuery("/bookmarks/list", url.Values{"path": {path}})
		},
	}
	c.Flags().StringVar(&path, "path", "", "file path to list bookmarks for")
	return c
}
