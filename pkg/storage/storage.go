// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package storage defines the views into the externally owned storage planner
// consumed by the installer's activation and configuration stages.
//
// The planner (partitioning, filesystem creation, device-graph planning) is an
// external collaborator: this package only states the contracts the
// activation code drives at the right moment of the install sequence.
package storage

import "context"

// ActionCallbacks is an optional set of progress hooks forwarded into
// Storage.DoIt. Either hook may be nil. Scheduling of the hooks is entirely
// up to the planner.
type ActionCallbacks struct {
	// ActionStart is invoked before a planned action executes.
	ActionStart func(action string)

	// ActionDone is invoked after a planned action executed, with the number
	// of executed and total actions.
	ActionDone func(action string, done, total int)
}

// Storage is the contract of the external storage planner.
type Storage interface {
	// Devices returns every device of the device tree.
	Devices() []Device

	// Bootloader returns the bootloader configuration.
	Bootloader() Bootloader

	// BootDevice returns the resolved boot device, nil when there is none.
	BootDevice() Device

	// TeardownAll unmounts and deactivates all pre-existing device-tree
	// mounts.
	TeardownAll() error

	// DoIt executes all planned storage actions, reporting progress via
	// callbacks (may be nil). Resize failures are reported as FSResizeError
	// or FormatResizeError.
	DoIt(ctx context.Context, callbacks *ActionCallbacks) error

	// TurnOnSwap activates the configured swap devices.
	TurnOnSwap() error

	// MakeMtab creates the target system's mtab.
	MakeMtab() error

	// WriteFSTab writes the target system's filesystem-set configuration.
	WriteFSTab() error
}
