// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package constants defines the installer storage path and service constants.
package constants

const (
	// DefaultSysRoot is the default mount point of the target OS installation.
	DefaultSysRoot = "/mnt/sysroot"

	// DefaultSysfsRoot is the default sysfs mount point.
	DefaultSysfsRoot = "/sys"

	// EscrowDirName is the directory under the sysroot receiving escrow packets.
	EscrowDirName = "root"

	// DASDConfPath is the DASD configuration file path relative to the sysroot.
	//
	// The file must exist on the target system (dracut reads it during early
	// boot), even when left empty.
	DASDConfPath = "etc/dasd.conf"

	// ZdevConfPath is the zdev persistent device configuration file path
	// relative to the sysroot.
	ZdevConfPath = "etc/zdev.conf"

	// CCWDevicesDir is the sysfs directory of CCW devices, relative to the
	// sysfs root.
	CCWDevicesDir = "bus/ccw/devices"

	// DASDECKDDriverDir is the sysfs directory of the ECKD DASD driver,
	// relative to the sysfs root. Absent on FBA-only installs.
	DASDECKDDriverDir = "bus/ccw/drivers/dasd-eckd"

	// DASDECKDDriver is the driver name used for hyper-PAV alias stanzas.
	DASDECKDDriver = "dasd-eckd"

	// CCWBusIDPrefix is the bus ID prefix of CCW devices in the default
	// subchannel set.
	CCWBusIDPrefix = "0.0"

	// MachineS390X is the utsname machine value on s390x hosts.
	MachineS390X = "s390x"
)

// Remote storage configuration service names.
const (
	// ISCSIService is the full gRPC service name of the iSCSI configuration
	// service.
	ISCSIService = "storage.iscsi.ISCSIService"

	// FCOEService is the full gRPC service name of the FCoE configuration
	// service.
	FCOEService = "storage.fcoe.FCOEService"

	// ZFCPService is the full gRPC service name of the zFCP configuration
	// service.
	ZFCPService = "storage.zfcp.ZFCPService"
)
