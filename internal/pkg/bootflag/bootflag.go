// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package bootflag marks the planned boot devices bootable in their disks'
// partition tables.
package bootflag

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/sharkcz/anaconda/pkg/storage"
)

// espFormats are the format types allowed to carry the boot flag on GPT:
// parted maps the GPT boot flag onto the EFI System GUID, so setting it on
// anything else would silently retype the partition.
var espFormats = []string{"efi", "macefi"}

// impliedBootFormats are format types whose boot flag on GPT is implied by
// the format itself; parted cannot set it directly.
var impliedBootFormats = []string{"hfs+", "macefi"}

// Marker marks boot devices bootable.
type Marker struct {
	logger *zap.Logger
}

// NewMarker builds a Marker.
func NewMarker(logger *zap.Logger) *Marker {
	return &Marker{
		logger: logger,
	}
}

// Mark selects the boot candidate devices from the bootloader configuration,
// applies the per-table skip rules, and commits the flag changes to the
// affected disks.
//
//nolint:gocyclo
func (m *Marker) Mark(st storage.Storage) error {
	bootloader := st.Bootloader()

	if bootloader.Skip() {
		return nil
	}

	var boot storage.Device

	if bootloader.Stage2Bootable() {
		boot = st.BootDevice()
	} else {
		boot = bootloader.Stage1Device()
	}

	if boot == nil {
		// nothing to mark
		return nil
	}

	var candidates []storage.Device

	if boot.Kind() == storage.KindMDArray {
		// each array member must be flagged individually
		candidates = boot.Parents()
	} else {
		candidates = []storage.Device{boot}
	}

	for _, dev := range candidates {
		if err := m.markDevice(dev); err != nil {
			return err
		}
	}

	return nil
}

//nolint:gocyclo
func (m *Marker) markDevice(dev storage.Device) error {
	flag, ok := dev.BootFlag()
	if !ok {
		m.logger.Info("skipping device, not bootable", zap.String("device", dev.Name()))

		return nil
	}

	disk := dev.Disk()
	if disk == nil {
		return fmt.Errorf("boot device %s has no containing disk", dev.Name())
	}

	table, ok := disk.Table()
	if !ok {
		return fmt.Errorf("disk %s has no partition table", disk.Name())
	}

	if m.skipDevice(dev, table) {
		m.logger.Info("skipping device", zap.String("device", dev.Name()))

		return nil
	}

	format := dev.Format()

	// hfs+ partitions on gpt can't be marked bootable via parted
	if table.Label() != storage.LabelGPT || !slices.Contains(impliedBootFormats, format.Type()) {
		m.logger.Info("setting boot flag", zap.String("device", dev.Name()))

		flag.SetBootable(true)
	}

	// set the boot partition's name on disk labels that support it
	if table.SupportsNames() {
		if part, ok := dev.PartedPartition(); ok {
			part.SetName(format.Name())

			m.logger.Info("setting partition name",
				zap.String("device", dev.Name()),
				zap.String("name", format.Name()))
		}
	}

	if err := disk.Setup(); err != nil {
		return fmt.Errorf("failed to set up disk %s: %w", disk.Name(), err)
	}

	if err := table.CommitToDisk(); err != nil {
		return fmt.Errorf("failed to commit partition table of %s: %w", disk.Name(), err)
	}

	return nil
}

// skipDevice applies the per-table rules deciding whether dev must keep its
// current flag state.
func (m *Marker) skipDevice(dev storage.Device, table storage.Table) bool {
	// dos labels can only have one partition marked as active, and unmarking
	// e.g. a coexisting OS is not a good idea
	if table.Label() == storage.LabelMSDOS {
		for _, p := range table.Partitions() {
			if p.Primary() && p.Booted() {
				return true
			}
		}
	}

	// gpt labeled disks should only have bootable set on the EFI system
	// partition
	if table.Label() == storage.LabelGPT && !slices.Contains(espFormats, dev.Format().Type()) {
		return true
	}

	return false
}
