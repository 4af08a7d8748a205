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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTokenSignVerifyRoundTrip(t *testing.T) {
	tok, err := signToken("s3cret", "alice", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sub, err := verifyToken("s3cret", tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub != "alice" {
		t.Fatalf("subject: got %q", sub)
	}
}

func TestTokenRejectsTampering(t *testing.T) {
	tok, err := signToken("s3cret", "alice", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifyToken("other-secret", tok); err == nil {
		t.Fatalf("expected bad signature with wrong secret")
	}
	parts := strings.Split(tok, ".")
	if _, err := verifyToken("s3cret", parts[0]+"x."+parts[1]); err == nil {
		t.Fatalf("expected error for tampered payload")
	}
	if _, err := verifyToken("s3cret", "garbage"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}

func TestTokenRejectsExpired(t *testing.T) {
	tok, err := signToken("s3cret", "alice", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifyToken("s3cret", tok); err == nil {
		t.Fatalf("expected expired token error")
	}
}

func TestParseVersion(t *testing.T) {
	v, err := parseVersion("0001_init.sql")
	if err != nil || v != 1 {
		t.Fatalf("got %d, %v", v, err)
	}
	if _, err := parseVersion("notanumber.sql"); err == nil {
		t.Fatalf("expected error for non-numeric prefix")
	}
}

// fakeServer mimics the sync API closely enough for the client.
func fakeServer(t *testing.T) (*httptest.Server, *[]PushRequest) {
	t.Helper()
	var pushes []PushRequest
	mux := http.NewServeMux()
	requireAuth := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return false
		}
		return true
	}
	mux.HandleFunc("/api/auth/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"token": "test-token"})
	})
	mux.HandleFunc("/api/diagrams", func(w http.ResponseWriter, r *http.Request) {
		if !requireAuth(w, r) {
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, []DiagramEntry{
				{ID: 7, StableID: "abc", Name: "Order Flow", Version: 3, UpdatedAt: time.Now()},
			})
		case http.MethodPost:
			var req PushRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			pushes = append(pushes, req)
			writeJSON(w, http.StatusOK, PushResult{ID: 7, Version: int64(len(pushes)) + 3})
		}
	})
	mux.HandleFunc("/api/diagrams/7/latest", func(w http.ResponseWriter, r *http.Request) {
		if !requireAuth(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, SnapshotEnvelope{
			DiagramID: 7,
			Version:   3,
			CreatedAt: "2025-06-01T12:00:00Z",
			Document:  json.RawMessage(`{"schemaVersion":1,"shapes":[],"connectors":[]}`),
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &pushes
}

func TestClientRoundTrip(t *testing.T) {
	srv, pushes := fakeServer(t)
	ctx := context.Background()

	c := NewClient(srv.URL, "", 2*time.Second)
	tok, err := c.FetchToken(ctx, "tester")
	if err != nil {
		t.Fatalf("FetchToken: %v", err)
	}
	if tok != "test-token" {
		t.Fatalf("token: %q", tok)
	}
	c.Token = tok

	list, err := c.ListDiagrams(ctx)
	if err != nil {
		t.Fatalf("ListDiagrams: %v", err)
	}
	if len(list) != 1 || list[0].StableID != "abc" || list[0].Version != 3 {
		t.Fatalf("list: %+v", list)
	}

	env, err := c.GetLatest(ctx, 7)
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if env.Version != 3 || !strings.Contains(string(env.Document), `"schemaVersion":1`) {
		t.Fatalf("envelope: %+v", env)
	}

	res, err := c.Push(ctx, PushRequest{
		StableID: "abc",
		Name:     "Order Flow",
		Document: json.RawMessage(`{"schemaVersion":1,"shapes":[],"connectors":[]}`),
	})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if res.ID != 7 || res.Version != 4 {
		t.Fatalf("push result: %+v", res)
	}
	if len(*pushes) != 1 || (*pushes)[0].StableID != "abc" {
		t.Fatalf("server saw: %+v", *pushes)
	}
}

func TestClientRejectedWithoutToken(t *testing.T) {
	srv, _ := fakeServer(t)
	c := NewClient(srv.URL, "", 2*time.Second)
	if _, err := c.ListDiagrams(context.Background()); err == nil {
		t.Fatalf("expected unauthorized error")
	}
}
