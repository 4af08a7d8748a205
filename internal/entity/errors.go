/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package entity

import "fmt"

// Edit failure taxonomy. None of these are fatal: the store boundary logs
// them with structured context and converts the edit into a no-op rather
// than surfacing an exception into an interactive session.

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Code string

const (
	// CodeValidationFailed: an entity fails structural rules (dangling
	// endpoint reference, invalid anchor).
	CodeValidationFailed Code = "validation_failed"
	// CodeNotFound: an update/delete referenced a missing entity id.
	CodeNotFound Code = "not_found"
	// CodeFallbackDefault: unknown shape type or anchor recovered with a
	// default; non-fatal.
	CodeFallbackDefault Code = "fallback_default"
)

// EditError describes a rejected or degraded edit.
type EditError struct {
	Severity Severity
	Code     Code
	EntityID string
	Message  string
}

func (e *EditError) Error() string {
	return fmt.Sprintf("%s (%s, entity=%s): %s", e.Code, e.Severity, e.EntityID, e.Message)
}
