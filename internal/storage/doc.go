/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage implements diagram project persistence and snapshots.
// It handles create/open/save for the canonical JSON manifest (diagram.json) with transactional writes and timestamped backups,
// validated against the embedded JSON schema.
// It also manages the per-project embedded SQLite store at <project>/.dgs/index.sqlite used for autosave snapshots.
// The embedded store is derived from diagram.json and is rebuildable/disposable.
package storage
