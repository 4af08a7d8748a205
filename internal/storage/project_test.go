/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"diagramstudio/internal/entity"
	"diagramstudio/internal/geometry"
)

func sampleDiagram() Diagram {
	return Diagram{
		Name: "Order Flow",
		Shapes: []*entity.Shape{
			{ID: "s1", Type: entity.ShapeTask, Position: geometry.Point{X: 10, Y: 20}, Size: geometry.Size{W: 120, H: 60}, Text: "Receive order"},
			{ID: "s2", Type: entity.ShapeEvent, Subtype: "end", Position: geometry.Point{X: 300, Y: 30}, Size: geometry.Size{W: 36, H: 36}},
		},
		Connectors: []*entity.Connector{
			{ID: "c1", Type: entity.ConnectorStraight,
				Source: entity.Endpoint{ShapeID: "s1", Anchor: geometry.AnchorE},
				Target: entity.Endpoint{ShapeID: "s2", Anchor: geometry.AnchorW}},
		},
	}
}

func TestInitOpenRoundTrip(t *testing.T) {
	root := t.TempDir()
	dh, err := InitProject(root, sampleDiagram())
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	if dh.Diagram.SchemaVersion != CurrentSchemaVersion {
		t.Fatalf("schema version not stamped: %d", dh.Diagram.SchemaVersion)
	}
	for _, sub := range standardSubDirs {
		if _, err := os.Stat(filepath.Join(root, sub)); err != nil {
			t.Fatalf("subdir %s missing: %v", sub, err)
		}
	}

	got, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got.Diagram.Name != "Order Flow" || len(got.Diagram.Shapes) != 2 || len(got.Diagram.Connectors) != 1 {
		t.Fatalf("round trip: %+v", got.Diagram)
	}
	if got.Diagram.Shapes[0].Position != (geometry.Point{X: 10, Y: 20}) {
		t.Fatalf("shape position: %+v", got.Diagram.Shapes[0].Position)
	}
}

func TestSaveCreatesBackup(t *testing.T) {
	root := t.TempDir()
	dh, err := InitProject(root, sampleDiagram())
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	dh.Diagram.Name = "Renamed"
	if err := Save(dh); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ents, err := os.ReadDir(filepath.Join(root, BackupsDirName))
	if err != nil {
		t.Fatalf("read backups: %v", err)
	}
	if len(ents) == 0 {
		t.Fatalf("no backup written on second save")
	}
}

func TestOpenFallsBackToBackupOnCorruption(t *testing.T) {
	root := t.TempDir()
	dh, err := InitProject(root, sampleDiagram())
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	if err := Save(dh); err != nil { // second save produces a backup
		t.Fatalf("Save: %v", err)
	}
	// Truncate the manifest mid-file to simulate a torn write.
	if err := os.WriteFile(dh.ManifestPath, []byte(`{"schemaVersion":1,"sha`), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Open(root)
	if err != nil {
		t.Fatalf("Open after corruption: %v", err)
	}
	if got.Diagram.Name != "Order Flow" {
		t.Fatalf("backup content: %+v", got.Diagram)
	}
}

func TestOpenRejectsSchemaViolation(t *testing.T) {
	root := t.TempDir()
	// Parses as JSON but violates the schema: connector without endpoints.
	bad := []byte(`{"schemaVersion":1,"shapes":[],"connectors":[{"id":"c1","type":"straight"}]}`)
	if err := os.WriteFile(filepath.Join(root, ManifestFileName), bad, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(root); err == nil {
		t.Fatalf("schema-violating manifest opened without error")
	}
}

func TestManifestConformsToSchema(t *testing.T) {
	root := t.TempDir()
	dh, err := InitProject(root, sampleDiagram())
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	data, err := os.ReadFile(dh.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if err := ValidateManifest(data); err != nil {
		t.Fatalf("fresh manifest fails schema: %v", err)
	}
}

func TestSaveAsScaffoldsNewRoot(t *testing.T) {
	root := t.TempDir()
	dh, err := InitProject(root, sampleDiagram())
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	newRoot := filepath.Join(t.TempDir(), "copy")
	if err := SaveAs(dh, newRoot); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	if dh.Root != newRoot {
		t.Fatalf("handle root not updated")
	}
	if _, err := Open(newRoot); err != nil {
		t.Fatalf("open new root: %v", err)
	}
}
