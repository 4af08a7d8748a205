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
	"context"
	"os"
	"testing"
	"time"
)

func TestSnapshotSaveAndLatest(t *testing.T) {
	root := t.TempDir()
	dh, err := InitProject(root, sampleDiagram())
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	ctx := context.Background()

	d, ts, err := LatestSnapshot(ctx, root)
	if err != nil {
		t.Fatalf("LatestSnapshot on empty store: %v", err)
	}
	if d != nil || !ts.IsZero() {
		t.Fatalf("expected no snapshot, got %+v at %v", d, ts)
	}

	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if err := SaveSnapshot(ctx, dh, "autosave", t0); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	dh.Diagram.Name = "Later"
	if err := SaveSnapshot(ctx, dh, "pre-import", t0.Add(time.Minute)); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	d, ts, err = LatestSnapshot(ctx, root)
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if d == nil || d.Name != "Later" {
		t.Fatalf("latest snapshot: %+v", d)
	}
	if !ts.Equal(t0.Add(time.Minute)) {
		t.Fatalf("latest ts: %v", ts)
	}
}

func TestListAndPruneSnapshots(t *testing.T) {
	root := t.TempDir()
	dh, err := InitProject(root, sampleDiagram())
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := SaveSnapshot(ctx, dh, "autosave", base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("SaveSnapshot %d: %v", i, err)
		}
	}

	infos, err := ListSnapshots(ctx, root, 3)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("listed %d snapshots", len(infos))
	}
	if !infos[0].TS.After(infos[2].TS) {
		t.Fatalf("list not newest-first: %v, %v", infos[0].TS, infos[2].TS)
	}

	n, err := PruneOldSnapshots(ctx, root, 2)
	if err != nil {
		t.Fatalf("PruneOldSnapshots: %v", err)
	}
	if n != 3 {
		t.Fatalf("pruned %d rows", n)
	}
	infos, err = ListSnapshots(ctx, root, 10)
	if err != nil || len(infos) != 2 {
		t.Fatalf("after prune: %d snapshots, err=%v", len(infos), err)
	}
	// Newest survives the prune.
	d, _, err := LatestSnapshot(ctx, root)
	if err != nil || d == nil {
		t.Fatalf("latest after prune: %v", err)
	}
}

func TestIndexIsCreatedUnderProjectRoot(t *testing.T) {
	root := t.TempDir()
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex: %v", err)
	}
	defer func() { _ = db.Close() }()
	if _, err := os.Stat(IndexPath(root)); err != nil {
		t.Fatalf("index file missing: %v", err)
	}
	// Reopen is idempotent.
	db2, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_ = db2.Close()
}
