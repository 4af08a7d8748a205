/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package command

// History is a linear undo/redo stack. Executing a new command after undos
// discards the redo tail; there is no branching. The stack guards the
// boundaries, so individual commands never see out-of-sequence calls.
//
// A History belongs to exactly one canvas store instance and is driven from
// its single event goroutine; it is not safe for concurrent use.
type History struct {
	undo  []Command
	redo  []Command
	limit int
}

// NewHistory creates a history with a depth cap; limit <= 0 means unbounded.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Execute runs the command and pushes it onto the undo stack, discarding any
// redo tail.
func (h *History) Execute(cmd Command) {
	cmd.Execute()
	h.Push(cmd)
}

// Push records an already-executed command, discarding any redo tail. Used
// when the caller had to run the command before deciding it belongs in the
// timeline.
func (h *History) Push(cmd Command) {
	h.undo = append(h.undo, cmd)
	h.redo = nil
	if h.limit > 0 && len(h.undo) > h.limit {
		// drop the oldest entries
		drop := len(h.undo) - h.limit
		h.undo = append([]Command{}, h.undo[drop:]...)
	}
}

// CanUndo reports whether an undo step is available.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether a redo step is available.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Undo reverts the most recent command. Undoing past the start is a no-op.
func (h *History) Undo() (Command, bool) {
	n := len(h.undo)
	if n == 0 {
		return nil, false
	}
	cmd := h.undo[n-1]
	h.undo = h.undo[:n-1]
	cmd.Undo()
	h.redo = append(h.redo, cmd)
	return cmd, true
}

// Redo re-applies the most recently undone command. Redoing past the end is
// a no-op.
func (h *History) Redo() (Command, bool) {
	n := len(h.redo)
	if n == 0 {
		return nil, false
	}
	cmd := h.redo[n-1]
	h.redo = h.redo[:n-1]
	cmd.Execute()
	h.undo = append(h.undo, cmd)
	return cmd, true
}

// Clear drops both stacks, e.g. when a new diagram is loaded.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// Stats returns current stack depths for diagnostics.
func (h *History) Stats() (undoDepth, redoDepth int) {
	return len(h.undo), len(h.redo)
}
