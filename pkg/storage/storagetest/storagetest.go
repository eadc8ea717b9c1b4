// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package storagetest provides an in-memory implementation of the storage
// planner contracts for tests.
package storagetest

import (
	"context"

	"github.com/sharkcz/anaconda/pkg/storage"
)

// Format is a fake storage.Format.
type Format struct {
	FormatType string
	FormatName string
	Cert       string

	EscrowErr   error
	EscrowCalls []EscrowCall
}

// EscrowCall records a single Escrow invocation.
type EscrowCall struct {
	Dir        string
	Passphrase string
}

// Type implements storage.Format.
func (f *Format) Type() string { return f.FormatType }

// Name implements storage.Format.
func (f *Format) Name() string { return f.FormatName }

// EscrowCert implements storage.Format.
func (f *Format) EscrowCert() string { return f.Cert }

// Escrow implements storage.Format.
func (f *Format) Escrow(dir, passphrase string) error {
	f.EscrowCalls = append(f.EscrowCalls, EscrowCall{Dir: dir, Passphrase: passphrase})

	return f.EscrowErr
}

// BootState is a fake storage.BootFlag recording mutations.
type BootState struct {
	Bootable bool
	SetCalls int
}

// SetBootable implements storage.BootFlag.
func (b *BootState) SetBootable(v bool) {
	b.Bootable = v
	b.SetCalls++
}

// PartitionEntry is a fake low-level partition-table entry.
type PartitionEntry struct {
	IsPrimary bool
	BootSet   bool

	Name      string
	NameCalls int
}

// Primary implements storage.Partition.
func (p *PartitionEntry) Primary() bool { return p.IsPrimary }

// Booted implements storage.Partition.
func (p *PartitionEntry) Booted() bool { return p.BootSet }

// SetName implements storage.Partition.
func (p *PartitionEntry) SetName(name string) {
	p.Name = name
	p.NameCalls++
}

// TableState is a fake storage.Table.
type TableState struct {
	LabelType storage.Label
	Entries   []*PartitionEntry
	Nameable  bool

	CommitCalls int
	CommitErr   error
}

// Label implements storage.Table.
func (t *TableState) Label() storage.Label { return t.LabelType }

// Partitions implements storage.Table.
func (t *TableState) Partitions() []storage.Partition {
	parts := make([]storage.Partition, 0, len(t.Entries))

	for _, e := range t.Entries {
		parts = append(parts, e)
	}

	return parts
}

// SupportsNames implements storage.Table.
func (t *TableState) SupportsNames() bool { return t.Nameable }

// CommitToDisk implements storage.Table.
func (t *TableState) CommitToDisk() error {
	t.CommitCalls++

	return t.CommitErr
}

// Device is a fake storage.Device.
type Device struct {
	DeviceKind  storage.Kind
	DeviceName  string
	DevicePath  string
	DeviceBusID string
	DeviceSize  uint64

	DeviceParents []storage.Device
	DeviceDisk    *DiskDevice
	DeviceFormat  *Format
	Parted        *PartitionEntry
	Boot          *BootState
}

// Kind implements storage.Device.
func (d *Device) Kind() storage.Kind { return d.DeviceKind }

// Name implements storage.Device.
func (d *Device) Name() string { return d.DeviceName }

// Path implements storage.Device.
func (d *Device) Path() string { return d.DevicePath }

// BusID implements storage.Device.
func (d *Device) BusID() string { return d.DeviceBusID }

// Size implements storage.Device.
func (d *Device) Size() uint64 { return d.DeviceSize }

// Parents implements storage.Device.
func (d *Device) Parents() []storage.Device { return d.DeviceParents }

// Disk implements storage.Device.
func (d *Device) Disk() storage.Disk {
	if d.DeviceDisk == nil {
		return nil
	}

	return d.DeviceDisk
}

// Format implements storage.Device.
func (d *Device) Format() storage.Format {
	if d.DeviceFormat == nil {
		return &Format{}
	}

	return d.DeviceFormat
}

// PartedPartition implements storage.Device.
func (d *Device) PartedPartition() (storage.Partition, bool) {
	if d.Parted == nil {
		return nil, false
	}

	return d.Parted, true
}

// BootFlag implements storage.Device.
func (d *Device) BootFlag() (storage.BootFlag, bool) {
	if d.Boot == nil {
		return nil, false
	}

	return d.Boot, true
}

// DiskDevice is a fake storage.Disk.
type DiskDevice struct {
	Device

	DiskTable *TableState

	SetupCalls int
	SetupErr   error
}

// Setup implements storage.Disk.
func (d *DiskDevice) Setup() error {
	d.SetupCalls++

	return d.SetupErr
}

// Table implements storage.Disk.
func (d *DiskDevice) Table() (storage.Table, bool) {
	if d.DiskTable == nil {
		return nil, false
	}

	return d.DiskTable, true
}

// NewDisk builds a labeled disk.
func NewDisk(name string, label storage.Label, entries ...*PartitionEntry) *DiskDevice {
	return &DiskDevice{
		Device: Device{
			DeviceKind: storage.KindDisk,
			DeviceName: name,
			DevicePath: "/dev/" + name,
		},
		DiskTable: &TableState{
			LabelType: label,
			Entries:   entries,
			Nameable:  label == storage.LabelGPT,
		},
	}
}

// NewPartition builds a boot-capable partition on the given disk.
func NewPartition(name string, disk *DiskDevice, format *Format) *Device {
	return &Device{
		DeviceKind:   storage.KindPartition,
		DeviceName:   name,
		DevicePath:   "/dev/" + name,
		DeviceDisk:   disk,
		DeviceFormat: format,
		Parted:       &PartitionEntry{IsPrimary: true},
		Boot:         &BootState{},
	}
}

// NewMDArray builds a RAID array over the given members.
func NewMDArray(name string, members ...storage.Device) *Device {
	return &Device{
		DeviceKind:    storage.KindMDArray,
		DeviceName:    name,
		DevicePath:    "/dev/md/" + name,
		DeviceParents: members,
	}
}

// NewDASD builds a DASD disk with the given CCW bus ID.
func NewDASD(name, busid string) *DiskDevice {
	return &DiskDevice{
		Device: Device{
			DeviceKind:  storage.KindDASD,
			DeviceName:  name,
			DevicePath:  "/dev/" + name,
			DeviceBusID: busid,
		},
	}
}

// NewLUKS builds a LUKS device carrying an escrow certificate.
func NewLUKS(name, cert string) *Device {
	return &Device{
		DeviceKind: storage.KindLUKS,
		DeviceName: name,
		DevicePath: "/dev/mapper/" + name,
		DeviceFormat: &Format{
			FormatType: "luks",
			Cert:       cert,
		},
	}
}

// Bootloader is a fake storage.Bootloader.
type Bootloader struct {
	SkipInstall bool
	Stage2Boot  bool
	Stage1      storage.Device
}

// Skip implements storage.Bootloader.
func (b *Bootloader) Skip() bool { return b.SkipInstall }

// Stage2Bootable implements storage.Bootloader.
func (b *Bootloader) Stage2Bootable() bool { return b.Stage2Boot }

// Stage1Device implements storage.Bootloader.
func (b *Bootloader) Stage1Device() storage.Device { return b.Stage1 }

// Storage is a fake storage.Storage recording the call sequence.
type Storage struct {
	DeviceList []storage.Device
	Loader     *Bootloader
	Boot       storage.Device

	TeardownErr error
	DoItErr     error
	SwapErr     error
	MtabErr     error
	FSTabErr    error

	Calls         []string
	CallbacksSeen *storage.ActionCallbacks
}

// Devices implements storage.Storage.
func (s *Storage) Devices() []storage.Device { return s.DeviceList }

// Bootloader implements storage.Storage.
func (s *Storage) Bootloader() storage.Bootloader {
	if s.Loader == nil {
		return &Bootloader{SkipInstall: true}
	}

	return s.Loader
}

// BootDevice implements storage.Storage.
func (s *Storage) BootDevice() storage.Device { return s.Boot }

// TeardownAll implements storage.Storage.
func (s *Storage) TeardownAll() error {
	s.Calls = append(s.Calls, "teardown_all")

	return s.TeardownErr
}

// DoIt implements storage.Storage.
func (s *Storage) DoIt(_ context.Context, callbacks *storage.ActionCallbacks) error {
	s.Calls = append(s.Calls, "do_it")
	s.CallbacksSeen = callbacks

	return s.DoItErr
}

// TurnOnSwap implements storage.Storage.
func (s *Storage) TurnOnSwap() error {
	s.Calls = append(s.Calls, "turn_on_swap")

	return s.SwapErr
}

// MakeMtab implements storage.Storage.
func (s *Storage) MakeMtab() error {
	s.Calls = append(s.Calls, "make_mtab")

	return s.MtabErr
}

// WriteFSTab implements storage.Storage.
func (s *Storage) WriteFSTab() error {
	s.Calls = append(s.Calls, "write_fstab")

	return s.FSTabErr
}
