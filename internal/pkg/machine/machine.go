// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package machine detects the host machine architecture.
//
// Detection reads the utsname machine field instead of the compile-time
// architecture, so a non-native userland still sees the real machine it is
// installing on.
package machine

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/sharkcz/anaconda/pkg/constants"
)

var (
	machineOnce sync.Once
	machine     string

	// override is set via SetMachine, e.g. by tests or image-generation
	// tooling targeting a foreign architecture.
	overrideMu sync.Mutex
	override   string
)

// SetMachine overrides the detected machine value.
func SetMachine(m string) {
	overrideMu.Lock()
	defer overrideMu.Unlock()

	override = m
}

// Machine returns the host machine value (e.g. "x86_64", "s390x").
func Machine() string {
	overrideMu.Lock()
	o := override
	overrideMu.Unlock()

	if o != "" {
		return o
	}

	machineOnce.Do(func() {
		var uname unix.Utsname

		if err := unix.Uname(&uname); err != nil {
			return
		}

		machine = unix.ByteSliceToString(uname.Machine[:])
	})

	return machine
}

// IsS390 reports whether the host is an s390x machine.
func IsS390() bool {
	return Machine() == constants.MachineS390X
}
