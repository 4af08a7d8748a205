/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package command provides the reversible-operation abstraction behind the
// canvas undo/redo timeline.
package command

// Command pairs an execute and an undo action with a human-readable
// description. Commands capture all state needed for reversal at construction
// time and never read ambient mutable state during Undo beyond what they
// captured; intervening commands mutating unrelated entities must not affect
// reversal correctness.
type Command interface {
	Execute()
	Undo()
	Description() string
}

// Func is a Command built from two closures. Both the do and undo closures
// close over captured state only.
type Func struct {
	Desc   string
	Do     func()
	Revert func()
}

func (f *Func) Execute() {
	if f.Do != nil {
		f.Do()
	}
}

func (f *Func) Undo() {
	if f.Revert != nil {
		f.Revert()
	}
}

func (f *Func) Description() string { return f.Desc }

// Composite is a command owning an ordered list of sub-commands. Execute runs
// them in order; Undo reverses them back-to-front. A shape move and its
// connector-geometry cascade form one Composite, so a single undo reverts
// both atomically.
type Composite struct {
	Desc string
	Subs []Command
}

// NewComposite builds a composite over the given sub-commands.
func NewComposite(desc string, subs ...Command) *Composite {
	return &Composite{Desc: desc, Subs: subs}
}

// Add appends a sub-command.
func (c *Composite) Add(sub Command) { c.Subs = append(c.Subs, sub) }

func (c *Composite) Execute() {
	for _, s := range c.Subs {
		s.Execute()
	}
}

func (c *Composite) Undo() {
	for i := len(c.Subs) - 1; i >= 0; i-- {
		c.Subs[i].Undo()
	}
}

func (c *Composite) Description() string { return c.Desc }
