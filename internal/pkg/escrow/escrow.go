// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package escrow persists escrow packets for encrypted devices carrying an
// escrow certificate.
package escrow

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/siderolabs/gen/xslices"
	"go.uber.org/zap"

	"github.com/sharkcz/anaconda/pkg/constants"
	"github.com/sharkcz/anaconda/pkg/storage"
)

const (
	passphraseCharset    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	passphraseGroupSize  = 5
	passphraseGroupCount = 4
)

// RandomGenerator generates grouped random passphrases, e.g.
// "XK2NQ-7PF4A-ZD93M-QW6RT". It is the default storage.PassphraseGenerator.
type RandomGenerator struct{}

// GenerateBackupPassphrase implements storage.PassphraseGenerator.
func (RandomGenerator) GenerateBackupPassphrase() (string, error) {
	raw := make([]byte, passphraseGroupSize*passphraseGroupCount)

	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	groups := make([]string, 0, passphraseGroupCount)

	for g := range passphraseGroupCount {
		group := make([]byte, passphraseGroupSize)

		for i := range passphraseGroupSize {
			group[i] = passphraseCharset[int(raw[g*passphraseGroupSize+i])%len(passphraseCharset)]
		}

		groups = append(groups, string(group))
	}

	return strings.Join(groups, "-"), nil
}

// Writer writes escrow packets under the target sysroot.
type Writer struct {
	logger    *zap.Logger
	generator storage.PassphraseGenerator
}

// NewWriter builds a Writer. A nil generator selects RandomGenerator.
func NewWriter(logger *zap.Logger, generator storage.PassphraseGenerator) *Writer {
	if generator == nil {
		generator = RandomGenerator{}
	}

	return &Writer{
		logger:    logger,
		generator: generator,
	}
}

// Write stores an escrow packet plus a backup-passphrase packet for every
// encrypted device carrying an escrow certificate.
//
// One backup passphrase is shared by all escrow devices of the run, and a new
// one is generated on every run.
//
// Escrow failures must never abort the installation, so Write reports
// nothing: failures are logged and swallowed.
func (w *Writer) Write(st storage.Storage, sysroot string) {
	escrowDevices := xslices.Filter(st.Devices(), func(d storage.Device) bool {
		format := d.Format()

		return format.Type() == "luks" && format.EscrowCert() != ""
	})

	if len(escrowDevices) == 0 {
		return
	}

	passphrase, err := w.generator.GenerateBackupPassphrase()
	if err != nil {
		w.logger.Error("failed to generate backup passphrase", zap.Error(err))

		return
	}

	escrowDir := filepath.Join(sysroot, constants.EscrowDirName)

	w.logger.Debug("writing escrow packets", zap.String("dir", escrowDir))

	if err = os.MkdirAll(escrowDir, 0o700); err != nil {
		w.logger.Error("failed to store encryption key", zap.Error(err))

		return
	}

	for _, device := range escrowDevices {
		w.logger.Debug("writing escrow packet",
			zap.String("device", device.Path()),
			zap.String("format", device.Format().Type()))

		if err = device.Format().Escrow(escrowDir, passphrase); err != nil {
			w.logger.Error("failed to store encryption key",
				zap.String("device", device.Path()),
				zap.Error(err))

			return
		}
	}

	w.logger.Debug("escrow packets written")
}
