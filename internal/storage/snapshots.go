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
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Autosave snapshots: serialized diagram documents written periodically and
// before risky operations, kept in the rebuildable embedded store so crash
// recovery never depends on the manifest being intact.

// language=SQL
// dialect=SQLite
const insertSnapshotSQL = `INSERT INTO snapshots(ts, reason, doc_blob) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestSnapshotSQL = `SELECT ts, doc_blob FROM snapshots ORDER BY ts DESC, id DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listSnapshotsSQL = `SELECT ts, reason FROM snapshots ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneOldSnapshotsSQL = `DELETE FROM snapshots WHERE id NOT IN (
	SELECT id FROM snapshots ORDER BY ts DESC, id DESC LIMIT ?
)`

// SnapshotInfo describes one stored snapshot.
type SnapshotInfo struct {
	TS     time.Time
	Reason string
}

// SaveSnapshot persists the diagram document as an autosave snapshot. reason
// records what triggered it ("autosave", "pre-import", "crash", ...).
func SaveSnapshot(ctx context.Context, dh *DiagramHandle, reason string, ts time.Time) error {
	if dh == nil {
		return errors.New("nil DiagramHandle")
	}
	blob, err := json.Marshal(dh.Diagram)
	if err != nil {
		return err
	}
	db, err := InitOrOpenIndex(dh.Root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	_, err = db.ExecContext(ctx, insertSnapshotSQL, ts.UTC().Format(time.RFC3339Nano), reason, blob)
	return err
}

// LatestSnapshot returns the most recent snapshot document, or nil if none.
func LatestSnapshot(ctx context.Context, projectRoot string) (*Diagram, time.Time, error) {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer func() { _ = db.Close() }()
	var tsStr string
	var blob []byte
	err = db.QueryRowContext(ctx, selectLatestSnapshotSQL).Scan(&tsStr, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	var d Diagram
	if err := json.Unmarshal(blob, &d); err != nil {
		return nil, time.Time{}, err
	}
	ts, perr := time.Parse(time.RFC3339Nano, tsStr)
	if perr != nil {
		return &d, time.Time{}, nil // return the document even if ts parse fails
	}
	return &d, ts, nil
}

// ListSnapshots returns up to limit most recent snapshot descriptors.
func ListSnapshots(ctx context.Context, projectRoot string, limit int) ([]SnapshotInfo, error) {
	if limit <= 0 {
		limit = 50
	}
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	rows, err := db.QueryContext(ctx, listSnapshotsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []SnapshotInfo
	for rows.Next() {
		var tsStr, reason string
		if err := rows.Scan(&tsStr, &reason); err != nil {
			return nil, err
		}
		ts, _ := time.Parse(time.RFC3339Nano, tsStr)
		out = append(out, SnapshotInfo{TS: ts, Reason: reason})
	}
	return out, rows.Err()
}

// AutosaveCrashSnapshot persists the in-memory diagram as a crash snapshot,
// for use from panic handlers. Returns the path of the embedded store the
// snapshot went into.
func AutosaveCrashSnapshot(dh *DiagramHandle) (string, error) {
	if dh == nil {
		return "", errors.New("nil DiagramHandle")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := SaveSnapshot(ctx, dh, "crash", time.Now()); err != nil {
		return "", err
	}
	return IndexPath(dh.Root), nil
}

// PruneOldSnapshots keeps at most keepLast snapshots and deletes older ones.
func PruneOldSnapshots(ctx context.Context, projectRoot string, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()
	res, err := db.ExecContext(ctx, pruneOldSnapshotsSQL, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
