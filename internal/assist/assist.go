/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package assist talks to a hosted text-generation endpoint that turns a
// natural-language description into Mermaid flowchart text. The canvas never
// sees the raw model output: callers parse and validate it through the
// mermaid package before anything reaches the diagram.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"diagramstudio/internal/config"
	applog "diagramstudio/internal/log"
	"diagramstudio/internal/mermaid"
)

// ErrNotConfigured is returned when no assist endpoint is set up.
var ErrNotConfigured = errors.New("assist endpoint not configured")

const systemPrompt = "You are a diagram assistant. Answer with a single Mermaid flowchart " +
	"code block and nothing else. Use flowchart LR unless the user asks for top-down."

// Client calls the assist endpoint.
type Client struct {
	baseURL string
	model   string
	token   string
	cli     *http.Client
	log     *slog.Logger
}

// New builds a client from the assist configuration and keyring token.
func New(cfg config.AssistConfig, token string) *Client {
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		token:   token,
		cli:     &http.Client{Timeout: timeout},
		log:     applog.WithComponent("assist"),
	}
}

// Configured reports whether the client has an endpoint to talk to.
func (c *Client) Configured() bool { return c != nil && c.baseURL != "" }

type generateRequest struct {
	Model  string `json:"model,omitempty"`
	System string `json:"system"`
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// GenerateMermaid asks the endpoint to produce flowchart text for the given
// description and returns the extracted Mermaid source.
func (c *Client) GenerateMermaid(ctx context.Context, description string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(description) == "" {
		return "", errors.New("empty description")
	}
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		System: systemPrompt,
		Prompt: description,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.cli.Do(req)
	if err != nil {
		return "", fmt.Errorf("assist request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("assist response: %w", err)
	}
	c.log.Debug("assist response",
		slog.Int("status", resp.StatusCode),
		slog.Duration("took", time.Since(start)))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assist endpoint returned %s", resp.Status)
	}
	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", fmt.Errorf("decode assist response: %w", err)
	}
	if gr.Error != "" {
		return "", fmt.Errorf("assist endpoint error: %s", gr.Error)
	}
	src := ExtractMermaid(gr.Text)
	if src == "" {
		return "", errors.New("assist response contained no mermaid block")
	}
	return src, nil
}

// GenerateDocument runs GenerateMermaid and parses the result. Parse problems
// in model output are expected; they are returned alongside the usable part
// of the document.
func (c *Client) GenerateDocument(ctx context.Context, description string) (mermaid.Document, []mermaid.Error, error) {
	src, err := c.GenerateMermaid(ctx, description)
	if err != nil {
		return mermaid.Document{}, nil, err
	}
	doc, perrs := mermaid.Parse(src)
	if len(doc.Nodes) == 0 {
		return doc, perrs, errors.New("generated text parsed to an empty diagram")
	}
	return doc, perrs, nil
}

// ExtractMermaid pulls the flowchart source out of a model reply: either a
// fenced ```mermaid block, any fenced block starting with a flowchart header,
// or the whole text when it already starts with one.
func ExtractMermaid(text string) string {
	trimmed := strings.TrimSpace(text)
	if hasHeader(trimmed) {
		return trimmed
	}
	rest := trimmed
	for {
		start := strings.Index(rest, "```")
		if start < 0 {
			return ""
		}
		rest = rest[start+3:]
		end := strings.Index(rest, "```")
		if end < 0 {
			return ""
		}
		block := rest[:end]
		rest = rest[end+3:]
		// Drop the info string ("mermaid", "text", ...).
		if nl := strings.IndexByte(block, '\n'); nl >= 0 {
			info := strings.TrimSpace(block[:nl])
			body := strings.TrimSpace(block[nl+1:])
			if strings.EqualFold(info, "mermaid") || hasHeader(body) {
				return body
			}
		}
	}
}

func hasHeader(s string) bool {
	low := strings.ToLower(s)
	return strings.HasPrefix(low, "flowchart ") || strings.HasPrefix(low, "graph ")
}
