// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package storage

import "fmt"

// FSResizeError is reported by the planner when resizing a filesystem failed.
type FSResizeError struct {
	Device string
	Err    error
}

// Error implements the error interface.
func (e *FSResizeError) Error() string {
	return fmt.Sprintf("failed to resize filesystem on %s: %v", e.Device, e.Err)
}

// Unwrap returns the underlying error.
func (e *FSResizeError) Unwrap() error {
	return e.Err
}

// FormatResizeError is reported by the planner when resizing a format (e.g. a
// LUKS layer) failed.
type FormatResizeError struct {
	Device string
	Err    error
}

// Error implements the error interface.
func (e *FormatResizeError) Error() string {
	return fmt.Sprintf("failed to resize format on %s: %v", e.Device, e.Err)
}

// Unwrap returns the underlying error.
func (e *FormatResizeError) Unwrap() error {
	return e.Err
}

// Verdict is the decision of an ErrorPolicy for a routed error.
type Verdict int

const (
	// VerdictRaise escalates the error to the caller.
	VerdictRaise Verdict = iota
	// VerdictHandled marks the error as handled; installation proceeds.
	VerdictHandled
)

// ErrorPolicy decides whether a resize failure aborts the installation.
// Only FSResizeError and FormatResizeError are routed through it.
type ErrorPolicy func(error) Verdict

// RaisePolicy always escalates. It is the default policy.
func RaisePolicy(error) Verdict {
	return VerdictRaise
}
