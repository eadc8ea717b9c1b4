// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package storage

// Kind is the device kind in the planner's device tree.
type Kind int

// Device kinds.
const (
	// KindOther is any device kind this module has no special handling for.
	KindOther Kind = iota
	// KindDisk is a physical disk.
	KindDisk
	// KindPartition is a partition on a disk.
	KindPartition
	// KindMDArray is a Linux MD RAID array.
	KindMDArray
	// KindDASD is an s390 direct-access storage device.
	KindDASD
	// KindLUKS is a LUKS mapped device.
	KindLUKS
	// KindLVM is an LVM logical volume.
	KindLVM
)

// String implements fmt.Stringer using the planner's type names.
func (k Kind) String() string {
	switch k {
	case KindDisk:
		return "disk"
	case KindPartition:
		return "partition"
	case KindMDArray:
		return "mdarray"
	case KindDASD:
		return "dasd"
	case KindLUKS:
		return "luks/dm-crypt"
	case KindLVM:
		return "lvmlv"
	case KindOther:
		fallthrough
	default:
		return "unknown"
	}
}

// Label is the partition table label type.
type Label int

// Partition table label types.
const (
	// LabelOther is any label type without special boot-flag semantics.
	LabelOther Label = iota
	// LabelMSDOS is the DOS/MBR partition table.
	LabelMSDOS
	// LabelGPT is the GUID partition table.
	LabelGPT
)

// String implements fmt.Stringer.
func (l Label) String() string {
	switch l {
	case LabelMSDOS:
		return "msdos"
	case LabelGPT:
		return "gpt"
	case LabelOther:
		fallthrough
	default:
		return "unknown"
	}
}

// Device is a view into a single device of the externally owned device tree.
//
// Devices are constructed and owned by the storage planner before this module
// runs and keep living after it returns; this module only flips a few flags
// and triggers persistence on them.
type Device interface {
	// Kind returns the device kind.
	Kind() Kind

	// Name returns the device name (e.g. "sda1", "dasda").
	Name() string

	// Path returns the device node path (e.g. "/dev/sda1").
	Path() string

	// BusID returns the bus ID for bus-addressed devices (CCW), empty
	// otherwise.
	BusID() string

	// Size returns the device size in bytes.
	Size() uint64

	// Parents returns the ordered member devices (RAID arrays), nil otherwise.
	Parents() []Device

	// Disk returns the physical disk containing this device, nil for devices
	// which are not backed by a single disk.
	Disk() Disk

	// Format returns the format occupying this device, never nil (a planner
	// device with nothing on it reports an empty format).
	Format() Format

	// PartedPartition returns the low-level partition-table entry backing this
	// device, if any.
	PartedPartition() (Partition, bool)

	// BootFlag returns the device's boot-flag capability. The second return
	// value is false for device kinds which fundamentally have no boot flag;
	// such devices must never be marked bootable.
	BootFlag() (BootFlag, bool)
}

// BootFlag is the settable bootable flag of a boot-capable device.
type BootFlag interface {
	// SetBootable stages the bootable flag; it takes effect on the next table
	// commit.
	SetBootable(bool)
}

// Disk is a view into a physical disk of the device tree.
type Disk interface {
	Device

	// Setup activates the disk (opens and primes the underlying device).
	Setup() error

	// Table returns the disk's partition-table view, if the disk is labeled.
	Table() (Table, bool)
}

// Table is a view into a disk's partition table.
type Table interface {
	// Label returns the table label type.
	Label() Label

	// Partitions returns the ordered low-level partition entries.
	Partitions() []Partition

	// SupportsNames reports whether the label type supports partition names.
	SupportsNames() bool

	// CommitToDisk persists staged table changes to the disk.
	CommitToDisk() error
}

// Partition is a low-level partition-table entry.
type Partition interface {
	// Primary reports whether the entry is a primary (normal) partition.
	Primary() bool

	// Booted reports whether the entry carries the active/boot flag.
	Booted() bool

	// SetName stages the partition name on labels supporting it.
	SetName(string)
}

// Format describes what occupies a device: a filesystem, an encryption layer,
// or nothing.
type Format interface {
	// Type returns the format type ("luks", "efi", "macefi", "hfs+", "xfs",
	// ...), empty for an unformatted device.
	Type() string

	// Name returns the format's display name (filesystem label).
	Name() string

	// EscrowCert returns the escrow certificate attached to an encrypted
	// format, empty when there is none.
	EscrowCert() string

	// Escrow writes an escrow packet for the format's key material into dir,
	// protected by the given backup passphrase.
	Escrow(dir, passphrase string) error
}

// Bootloader is a view into the bootloader configuration of the install.
type Bootloader interface {
	// Skip reports whether bootloader installation is skipped entirely.
	Skip() bool

	// Stage2Bootable reports whether the stage-2 device itself is bootable.
	Stage2Bootable() bool

	// Stage1Device returns the stage-1 target device.
	Stage1Device() Device
}
