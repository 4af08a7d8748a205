/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package toolset

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "diagramstudio/internal/log"
)

// Tool packs bundle a project's tools directory into a shareable .zip so
// palettes can travel between projects and teams.

const packManifestName = "toolpack.manifest.txt"

// ExportPack zips the project's tools directory (<project>/tools) into a
// single .zip. A manifest file at the archive root records provenance. An
// empty or missing tools directory still yields a valid archive with only the
// manifest.
func ExportPack(projectRoot, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("toolset"), "export").With(slog.String("project", projectRoot))
	if strings.TrimSpace(projectRoot) == "" {
		return errors.New("projectRoot is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	toolsDir := filepath.Join(projectRoot, "tools")
	if _, err := os.Stat(toolsDir); os.IsNotExist(err) {
		if err := os.MkdirAll(toolsDir, 0o755); err != nil {
			return fmt.Errorf("ensure tools dir: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)
	defer func() { _ = zw.Close() }()

	manifest := fmt.Sprintf("Diagram Studio Tool Pack\nCreated: %s\nProject: %s\n\nContents mirror the project's /tools directory.\n",
		time.Now().Format(time.RFC3339), projectRoot)
	w, err := zw.Create(packManifestName)
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	added := 0
	err = filepath.Walk(toolsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(projectRoot, path)
		if err != nil {
			return err
		}
		fw, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(fw, f); err != nil {
			return err
		}
		added++
		return nil
	})
	if err != nil {
		l.Error("zip build failed", slog.Any("err", err))
		return fmt.Errorf("build zip: %w", err)
	}
	l.Info("tool pack exported", slog.Int("files", added), slog.String("zip", destZipPath))
	return nil
}

// InstallPack extracts a tool pack into the project's tools directory.
// Existing files are skipped, never overwritten. Returns the count of files
// installed.
func InstallPack(projectRoot, packZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("toolset"), "install").With(slog.String("project", projectRoot))
	if strings.TrimSpace(projectRoot) == "" {
		return 0, errors.New("projectRoot is required")
	}
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}
	toolsDir := filepath.Join(projectRoot, "tools")
	if err := os.MkdirAll(toolsDir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure tools dir: %w", err)
	}

	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		name := f.Name
		if name == packManifestName {
			continue
		}
		targetRel := name
		if !strings.HasPrefix(targetRel, "tools/") {
			targetRel = filepath.ToSlash(filepath.Join("tools", targetRel))
		}
		targetPath := filepath.Join(projectRoot, filepath.FromSlash(targetRel))
		// Join cleans ".." components; anything resolving outside tools/ is hostile.
		if !strings.HasPrefix(targetPath, toolsDir+string(os.PathSeparator)) {
			l.Warn("skip entry escaping tools dir", slog.String("entry", name))
			continue
		}
		if _, err := os.Stat(targetPath); err == nil {
			l.Warn("skip existing file", slog.String("path", targetPath))
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return installed, err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return installed, err
		}
		rc, err := f.Open()
		if err != nil {
			return installed, err
		}
		out, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			_ = rc.Close()
			return installed, err
		}
		if _, err := io.Copy(out, rc); err != nil {
			_ = out.Close()
			_ = rc.Close()
			return installed, err
		}
		_ = out.Close()
		_ = rc.Close()
		installed++
	}
	l.Info("tool pack installed", slog.Int("files", installed))
	return installed, nil
}
