/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConsoleHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	h := &consoleHandler{lvl: slog.LevelDebug, w: &buf}
	l := slog.New(h).With(slog.String("component", "canvas"))
	l.Info("shape added", slog.String("id", "s1"), slog.Int("count", 3))

	out := buf.String()
	if !strings.Contains(out, "INF") {
		t.Fatalf("expected level tag in output, got %q", out)
	}
	if !strings.Contains(out, "shape added") {
		t.Fatalf("expected message in output, got %q", out)
	}
	for _, kv := range []string{"component=canvas", "id=s1", "count=3"} {
		if !strings.Contains(out, kv) {
			t.Fatalf("expected %q in output, got %q", kv, out)
		}
	}
}

func TestConsoleHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	h := &consoleHandler{lvl: slog.LevelWarn, w: &buf}
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("error should be enabled at warn level")
	}
}

func TestConsoleHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	h := &consoleHandler{lvl: slog.LevelDebug, w: &buf}
	l := slog.New(h).WithGroup("grid").With(slog.Int("minor", 5))
	l.Info("snapped")
	if !strings.Contains(buf.String(), "grid.minor=5") {
		t.Fatalf("expected grouped attr, got %q", buf.String())
	}
}

func TestWithComponentAndOperation(t *testing.T) {
	Init(Options{Level: "error"}) // quiet default logger for the test run
	l := WithOperation(WithComponent("storage"), "save")
	if l == nil {
		t.Fatalf("expected logger")
	}
}
