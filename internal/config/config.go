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
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark"
	EnableSync     bool   `yaml:"enable_sync"`
}

type CanvasConfig struct {
	HistoryLimit     int    `yaml:"history_limit"`
	AutosaveMs       int    `yaml:"autosave_ms"`
	DefaultSnapMode  string `yaml:"default_snap_mode"` // "minor" | "major" | "none"
	DefaultConnector string `yaml:"default_connector"` // "straight" | "curved" | "orthogonal"
}

type AssistConfig struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	TimeoutMs int    `yaml:"timeout_ms"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type SyncConfig struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	Assist        AssistConfig  `yaml:"assist"`
	Sync          SyncConfig    `yaml:"sync"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Theme: "system", EnableSync: false},
		Canvas:        CanvasConfig{HistoryLimit: 200, AutosaveMs: 5000, DefaultSnapMode: "minor", DefaultConnector: "orthogonal"},
		Assist:        AssistConfig{BaseURL: "", Model: "", TimeoutMs: 30000},
		Sync:          SyncConfig{BaseURL: "http://localhost:8080", TimeoutMs: 10000},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvAssistURL       = "DGS_ASSIST_URL"
	EnvAssistModel     = "DGS_ASSIST_MODEL"
	EnvAssistTimeoutMs = "DGS_ASSIST_TIMEOUT_MS"
	EnvSyncURL         = "DGS_SYNC_URL"
	EnvTelemetryOptIn  = "DGS_TELEMETRY_OPT_IN"
	EnvEnableSync      = "DGS_ENABLE_SYNC"
	EnvLogLevel        = "DGS_LOG_LEVEL"
	EnvLogFormat       = "DGS_LOG_FORMAT"
	EnvLogSource       = "DGS_LOG_SOURCE"
	EnvLogFile         = "DGS_LOG_FILE"
)

// Service/keys for the OS keyring.
const (
	keyringService = "DiagramStudio"
	keyringToken   = "assist_token"
)

// TokenStore abstracts the OS keyring, so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

var tokenStore TokenStore = osKeyring{}

// osKeyring implements TokenStore via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// SetTokenStore replaces the keyring backend (used by tests).
func SetTokenStore(ts TokenStore) {
	if ts != nil {
		tokenStore = ts
	}
}

// Path returns the per-user config file path.
func Path() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "DiagramStudio")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "DiagramStudio")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "diagramstudio")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment
// overrides. The assist token comes from the keyring and is returned separately.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := Path()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into the OS keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	// booleans: copy directly from the file so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	dst.General.EnableSync = src.General.EnableSync
	if src.Canvas.HistoryLimit != 0 {
		dst.Canvas.HistoryLimit = src.Canvas.HistoryLimit
	}
	if src.Canvas.AutosaveMs != 0 {
		dst.Canvas.AutosaveMs = src.Canvas.AutosaveMs
	}
	if s := strings.TrimSpace(src.Canvas.DefaultSnapMode); s != "" {
		dst.Canvas.DefaultSnapMode = strings.ToLower(s)
	}
	if s := strings.TrimSpace(src.Canvas.DefaultConnector); s != "" {
		dst.Canvas.DefaultConnector = strings.ToLower(s)
	}
	if src.Assist.BaseURL != "" {
		dst.Assist.BaseURL = src.Assist.BaseURL
	}
	if src.Assist.Model != "" {
		dst.Assist.Model = src.Assist.Model
	}
	if src.Assist.TimeoutMs != 0 {
		dst.Assist.TimeoutMs = src.Assist.TimeoutMs
	}
	if src.Sync.BaseURL != "" {
		dst.Sync.BaseURL = src.Sync.BaseURL
	}
	if src.Sync.TimeoutMs != 0 {
		dst.Sync.TimeoutMs = src.Sync.TimeoutMs
	}
	if s := strings.TrimSpace(src.Logging.Level); s != "" {
		dst.Logging.Level = strings.ToLower(s)
	}
	if s := strings.TrimSpace(src.Logging.Format); s != "" {
		dst.Logging.Format = strings.ToLower(s)
	}
	dst.Logging.Source = src.Logging.Source
	if s := strings.TrimSpace(src.Logging.File); s != "" {
		dst.Logging.File = s
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvAssistURL)); v != "" {
		cfg.Assist.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAssistModel)); v != "" {
		cfg.Assist.Model = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAssistTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Assist.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSyncURL)); v != "" {
		cfg.Sync.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvEnableSync)); v != "" {
		cfg.General.EnableSync = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}
