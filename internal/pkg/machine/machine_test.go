// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package machine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sharkcz/anaconda/internal/pkg/machine"
)

func TestMachine(t *testing.T) {
	assert.NotEmpty(t, machine.Machine())
}

func TestOverride(t *testing.T) {
	t.Cleanup(func() { machine.SetMachine("") })

	machine.SetMachine("s390x")
	assert.True(t, machine.IsS390())

	machine.SetMachine("x86_64")
	assert.False(t, machine.IsS390())
}
