// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package storage

import "context"

// PassphraseGenerator is the crypto backend contract for escrow backup
// passphrases.
type PassphraseGenerator interface {
	GenerateBackupPassphrase() (string, error)
}

// Configurator is the contract of a remote network-storage configuration
// service: it persists the service's configuration into the target system.
type Configurator interface {
	WriteConfiguration(ctx context.Context) error
}
