/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"runtime"
	"testing"
)

// memStore keeps tokens in memory so tests never touch the OS keyring.
type memStore struct{ m map[string]string }

func (s *memStore) Get(service, key string) (string, error) { return s.m[service+"/"+key], nil }
func (s *memStore) Set(service, key, value string) error {
	s.m[service+"/"+key] = value
	return nil
}
func (s *memStore) Delete(service, key string) error {
	delete(s.m, service+"/"+key)
	return nil
}

func useTempConfig(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Setenv("AppData", t.TempDir())
	} else {
		t.Setenv("HOME", t.TempDir())
	}
	SetTokenStore(&memStore{m: map[string]string{}})
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.Canvas.HistoryLimit <= 0 {
		t.Fatalf("expected positive history limit default")
	}
	if d.Canvas.DefaultSnapMode != "minor" {
		t.Fatalf("expected minor snap mode default, got %q", d.Canvas.DefaultSnapMode)
	}
	if d.General.EnableSync {
		t.Fatalf("sync must be off by default")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	useTempConfig(t)
	cfg := Defaults()
	cfg.General.Theme = "dark"
	cfg.Canvas.HistoryLimit = 42
	cfg.Assist.BaseURL = "https://inference.example.com"
	if err := Save(cfg, "secret-token"); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, tok, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.General.Theme != "dark" {
		t.Fatalf("theme: got %q", got.General.Theme)
	}
	if got.Canvas.HistoryLimit != 42 {
		t.Fatalf("history limit: got %d", got.Canvas.HistoryLimit)
	}
	if got.Assist.BaseURL != "https://inference.example.com" {
		t.Fatalf("assist url: got %q", got.Assist.BaseURL)
	}
	if tok != "secret-token" {
		t.Fatalf("token: got %q", tok)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	useTempConfig(t)
	got, _, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Canvas.DefaultConnector != Defaults().Canvas.DefaultConnector {
		t.Fatalf("expected defaults when no file present")
	}
}

func TestEnvOverrides(t *testing.T) {
	useTempConfig(t)
	t.Setenv(EnvAssistURL, "https://env.example.com")
	t.Setenv(EnvAssistTimeoutMs, "1234")
	t.Setenv(EnvEnableSync, "yes")
	t.Setenv(EnvLogLevel, "DEBUG")
	got, _, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Assist.BaseURL != "https://env.example.com" {
		t.Fatalf("assist url override: got %q", got.Assist.BaseURL)
	}
	if got.Assist.TimeoutMs != 1234 {
		t.Fatalf("assist timeout override: got %d", got.Assist.TimeoutMs)
	}
	if !got.General.EnableSync {
		t.Fatalf("enable_sync override not applied")
	}
	if got.Logging.Level != "debug" {
		t.Fatalf("log level override: got %q", got.Logging.Level)
	}
}
