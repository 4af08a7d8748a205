/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DiagramEntry is one row of the server's diagram catalog.
type DiagramEntry struct {
	ID       int64  `json:"id"`
	StableID string `json:"stable_id"`
	Name     string `json:"name"`
	Version  int64  `json:"version"`
	// RFC3339 in responses; scanned as time.Time server-side.
	UpdatedAt time.Time `json:"updated_at"`
}

// PushRequest uploads one document snapshot. StableID identifies the diagram
// across machines; the server assigns the next version.
type PushRequest struct {
	StableID string          `json:"stable_id"`
	Name     string          `json:"name"`
	Document json.RawMessage `json:"document"`
}

// PushResult reports the server-side id and the version the push produced.
type PushResult struct {
	ID      int64 `json:"id"`
	Version int64 `json:"version"`
}

// SnapshotEnvelope wraps the latest stored document for a diagram.
type SnapshotEnvelope struct {
	DiagramID int64           `json:"diagram_id"`
	Version   int64           `json:"version"`
	CreatedAt string          `json:"created_at"`
	Document  json.RawMessage `json:"document"`
}

// Client is a minimal HTTP client for the sync server.
type Client struct {
	BaseURL string
	Token   string
	client  *http.Client
}

// NewClient builds a client for the given server base URL.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchToken asks the server for a bearer token. The server signs it with its
// own secret, so this only works against servers the caller is trusted by.
func (c *Client) FetchToken(ctx context.Context, subject string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	body, _ := json.Marshal(map[string]any{"subject": subject})
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/token", body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// ListDiagrams returns the server's diagram catalog, newest first.
func (c *Client) ListDiagrams(ctx context.Context) ([]DiagramEntry, error) {
	var out []DiagramEntry
	if err := c.doJSON(ctx, http.MethodGet, "/api/diagrams", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetLatest fetches the newest snapshot for the given server-side diagram id.
func (c *Client) GetLatest(ctx context.Context, id int64) (SnapshotEnvelope, error) {
	var out SnapshotEnvelope
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/diagrams/%d/latest", id), nil, &out)
	return out, err
}

// Push uploads a document snapshot and returns the assigned id and version.
func (c *Client) Push(ctx context.Context, req PushRequest) (PushResult, error) {
	var out PushResult
	body, err := json.Marshal(req)
	if err != nil {
		return out, err
	}
	err = c.doJSON(ctx, http.MethodPost, "/api/diagrams", body, &out)
	return out, err
}

func (c *Client) doJSON(ctx context.Context, method, urlPath string, body []byte, out any) error {
	if c.BaseURL == "" {
		return fmt.Errorf("sync server base url not configured")
	}
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+urlPath, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (%s)", method, urlPath, apiErr.Error, resp.Status)
		}
		return fmt.Errorf("%s %s: %s", method, urlPath, resp.Status)
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(out)
}
