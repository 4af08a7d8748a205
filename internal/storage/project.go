/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"diagramstudio/internal/entity"
)

const (
	ManifestFileName = "diagram.json"
	BackupsDirName   = "backups"

	// CurrentSchemaVersion is written into new manifests.
	CurrentSchemaVersion = 1
)

var standardSubDirs = []string{
	"tools",
	"exports",
	BackupsDirName,
}

// Diagram is the manifest document: the complete serialized canvas content.
type Diagram struct {
	SchemaVersion int                 `json:"schemaVersion"`
	Name          string              `json:"name"`
	Shapes        []*entity.Shape     `json:"shapes"`
	Connectors    []*entity.Connector `json:"connectors"`
}

// DiagramHandle tracks the diagram project state loaded/saved from disk.
// Root is the project directory containing diagram.json and subfolders.
type DiagramHandle struct {
	Root         string
	ManifestPath string
	Diagram      Diagram
}

// InitProject creates a new project directory at root (creating it if it
// doesn't exist), scaffolds the standard subfolders, and writes the manifest
// transactionally.
func InitProject(root string, d Diagram) (*DiagramHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create project root: %w", err)
	}
	for _, sub := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create subdir %s: %w", sub, err)
		}
	}
	if d.SchemaVersion == 0 {
		d.SchemaVersion = CurrentSchemaVersion
	}
	dh := &DiagramHandle{
		Root:         root,
		ManifestPath: filepath.Join(root, ManifestFileName),
		Diagram:      d,
	}
	if err := Save(dh); err != nil {
		return nil, err
	}
	return dh, nil
}

// Open loads an existing project from the given root directory. A manifest
// that cannot be read, parsed, or validated against the schema falls back to
// the latest timestamped backup.
func Open(root string) (*DiagramHandle, error) {
	mpath := filepath.Join(root, ManifestFileName)
	b, err := os.ReadFile(mpath)
	if err != nil {
		d, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("open manifest: %w; backup attempt: %v", err, berr)
		}
		return &DiagramHandle{Root: root, ManifestPath: mpath, Diagram: *d}, nil
	}
	d, perr := parseManifest(b)
	if perr != nil {
		bd, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("parse manifest: %w; backup attempt: %v", perr, berr)
		}
		return &DiagramHandle{Root: root, ManifestPath: mpath, Diagram: *bd}, nil
	}
	return &DiagramHandle{Root: root, ManifestPath: mpath, Diagram: *d}, nil
}

func parseManifest(b []byte) (*Diagram, error) {
	if err := ValidateManifest(b); err != nil {
		return nil, err
	}
	var d Diagram
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Save writes the handle's diagram to disk with transactional semantics and a
// timestamped backup of the previous manifest (if present).
func Save(dh *DiagramHandle) error {
	if dh == nil {
		return errors.New("nil DiagramHandle")
	}
	if dh.Root == "" || dh.ManifestPath == "" {
		return errors.New("invalid DiagramHandle: missing paths")
	}
	// Nil slices would serialize as null and fail schema validation on reopen.
	if dh.Diagram.Shapes == nil {
		dh.Diagram.Shapes = []*entity.Shape{}
	}
	if dh.Diagram.Connectors == nil {
		dh.Diagram.Connectors = []*entity.Connector{}
	}
	data, err := json.MarshalIndent(dh.Diagram, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(dh.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}

	// Copy the current manifest to a timestamped backup before replacing.
	if _, statErr := os.Stat(dh.ManifestPath); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bname := fmt.Sprintf("%s.%s.bak", ManifestFileName, stamp)
		if cerr := copyFile(dh.ManifestPath, filepath.Join(bdir, bname)); cerr != nil {
			return fmt.Errorf("backup current manifest: %w", cerr)
		}
	}

	// Transactional write: temp file in the same directory, then rename.
	dir := filepath.Dir(dh.ManifestPath)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", ManifestFileName, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp manifest: %w", werr)
	}
	// On Windows, replace by removing the destination first if needed.
	if _, err := os.Stat(dh.ManifestPath); err == nil {
		_ = os.Remove(dh.ManifestPath)
	}
	if rerr := os.Rename(temp, dh.ManifestPath); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace manifest: %w", rerr)
	}
	return nil
}

// SaveAs writes the manifest to a new root folder, scaffolding structure if
// needed, and updates the handle.
func SaveAs(dh *DiagramHandle, newRoot string) error {
	if dh == nil {
		return errors.New("nil DiagramHandle")
	}
	if newRoot == "" {
		return errors.New("new root is empty")
	}
	if err := os.MkdirAll(newRoot, 0o755); err != nil {
		return fmt.Errorf("create new root: %w", err)
	}
	for _, sub := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(newRoot, sub), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", sub, err)
		}
	}
	dh.Root = newRoot
	dh.ManifestPath = filepath.Join(newRoot, ManifestFileName)
	return Save(dh)
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst, overwriting dst if it exists.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// openFromLatestBackup tries to open the latest timestamped backup.
func openFromLatestBackup(root string) (*Diagram, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	for i := len(candidates) - 1; i >= 0; i-- {
		b, rerr := os.ReadFile(candidates[i])
		if rerr != nil {
			err = rerr
			continue
		}
		d, perr := parseManifest(b)
		if perr != nil {
			err = perr
			continue
		}
		return d, nil
	}
	return nil, fmt.Errorf("no usable backup: %w", err)
}
