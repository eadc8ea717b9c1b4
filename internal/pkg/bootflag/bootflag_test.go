// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package bootflag_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/sharkcz/anaconda/internal/pkg/bootflag"
	"github.com/sharkcz/anaconda/pkg/storage"
	"github.com/sharkcz/anaconda/pkg/storage/storagetest"
)

type markerSuite struct {
	suite.Suite

	marker *bootflag.Marker
}

func TestMarkerSuite(t *testing.T) {
	suite.Run(t, new(markerSuite))
}

func (suite *markerSuite) SetupTest() {
	suite.marker = bootflag.NewMarker(zaptest.NewLogger(suite.T()))
}

func (suite *markerSuite) storageWithBoot(boot storage.Device) *storagetest.Storage {
	return &storagetest.Storage{
		Loader: &storagetest.Bootloader{
			Stage2Boot: true,
		},
		Boot: boot,
	}
}

func (suite *markerSuite) TestSkipBootloader() {
	disk := storagetest.NewDisk("sda", storage.LabelMSDOS)
	part := storagetest.NewPartition("sda1", disk, &storagetest.Format{FormatType: "xfs"})

	st := &storagetest.Storage{
		Loader: &storagetest.Bootloader{
			SkipInstall: true,
			Stage2Boot:  true,
		},
		Boot: part,
	}

	suite.Require().NoError(suite.marker.Mark(st))

	suite.Assert().Zero(part.Boot.SetCalls)
	suite.Assert().Zero(disk.SetupCalls)
	suite.Assert().Zero(disk.DiskTable.CommitCalls)
}

func (suite *markerSuite) TestNoBootDevice() {
	suite.Require().NoError(suite.marker.Mark(suite.storageWithBoot(nil)))
}

func (suite *markerSuite) TestStage1Device() {
	disk := storagetest.NewDisk("sda", storage.LabelMSDOS)
	stage1 := storagetest.NewPartition("sda1", disk, &storagetest.Format{FormatType: "ext4"})
	stage2 := storagetest.NewPartition("sda2", disk, &storagetest.Format{FormatType: "ext4"})

	st := &storagetest.Storage{
		Loader: &storagetest.Bootloader{
			Stage2Boot: false,
			Stage1:     stage1,
		},
		Boot: stage2,
	}

	suite.Require().NoError(suite.marker.Mark(st))

	suite.Assert().True(stage1.Boot.Bootable)
	suite.Assert().Zero(stage2.Boot.SetCalls)
}

func (suite *markerSuite) TestMSDOSPlain() {
	disk := storagetest.NewDisk("sda", storage.LabelMSDOS,
		&storagetest.PartitionEntry{IsPrimary: true})
	part := storagetest.NewPartition("sda1", disk, &storagetest.Format{FormatType: "xfs"})

	suite.Require().NoError(suite.marker.Mark(suite.storageWithBoot(part)))

	suite.Assert().True(part.Boot.Bootable)
	suite.Assert().Equal(1, disk.SetupCalls)
	suite.Assert().Equal(1, disk.DiskTable.CommitCalls)
	// msdos labels don't support partition names
	suite.Assert().Zero(part.Parted.NameCalls)
}

func (suite *markerSuite) TestMSDOSExistingActivePartition() {
	// an already active partition, e.g. a coexisting OS, must keep its flag
	disk := storagetest.NewDisk("sda", storage.LabelMSDOS,
		&storagetest.PartitionEntry{IsPrimary: true, BootSet: true},
		&storagetest.PartitionEntry{IsPrimary: true})
	part := storagetest.NewPartition("sda2", disk, &storagetest.Format{FormatType: "xfs"})

	suite.Require().NoError(suite.marker.Mark(suite.storageWithBoot(part)))

	suite.Assert().Zero(part.Boot.SetCalls)
	suite.Assert().Zero(disk.SetupCalls)
	suite.Assert().Zero(disk.DiskTable.CommitCalls)
}

func (suite *markerSuite) TestMSDOSExistingLogicalBootFlag() {
	// boot flag on a non-primary entry doesn't block marking
	disk := storagetest.NewDisk("sda", storage.LabelMSDOS,
		&storagetest.PartitionEntry{IsPrimary: false, BootSet: true},
		&storagetest.PartitionEntry{IsPrimary: true})
	part := storagetest.NewPartition("sda2", disk, &storagetest.Format{FormatType: "xfs"})

	suite.Require().NoError(suite.marker.Mark(suite.storageWithBoot(part)))

	suite.Assert().True(part.Boot.Bootable)
	suite.Assert().Equal(1, disk.DiskTable.CommitCalls)
}

func (suite *markerSuite) TestGPTESP() {
	disk := storagetest.NewDisk("sda", storage.LabelGPT)
	part := storagetest.NewPartition("sda1", disk, &storagetest.Format{
		FormatType: "efi",
		FormatName: "EFI System Partition",
	})

	suite.Require().NoError(suite.marker.Mark(suite.storageWithBoot(part)))

	suite.Assert().True(part.Boot.Bootable)
	suite.Assert().Equal(1, part.Parted.NameCalls)
	suite.Assert().Equal("EFI System Partition", part.Parted.Name)
	suite.Assert().Equal(1, disk.SetupCalls)
	suite.Assert().Equal(1, disk.DiskTable.CommitCalls)
}

func (suite *markerSuite) TestGPTNonESPSkipped() {
	// the GPT boot flag is reserved for the EFI system partition
	disk := storagetest.NewDisk("sda", storage.LabelGPT)
	part := storagetest.NewPartition("sda1", disk, &storagetest.Format{FormatType: "xfs"})

	suite.Require().NoError(suite.marker.Mark(suite.storageWithBoot(part)))

	suite.Assert().Zero(part.Boot.SetCalls)
	suite.Assert().Zero(disk.SetupCalls)
	suite.Assert().Zero(disk.DiskTable.CommitCalls)
}

func (suite *markerSuite) TestGPTHFSPlusSkipped() {
	disk := storagetest.NewDisk("sda", storage.LabelGPT)
	part := storagetest.NewPartition("sda1", disk, &storagetest.Format{FormatType: "hfs+"})

	suite.Require().NoError(suite.marker.Mark(suite.storageWithBoot(part)))

	suite.Assert().Zero(part.Boot.SetCalls)
	suite.Assert().Zero(disk.DiskTable.CommitCalls)
}

func (suite *markerSuite) TestGPTMacEFIImpliedFlag() {
	// macefi passes the skip check, but the flag itself is implied by the
	// format and never set explicitly; the name and commit still happen
	disk := storagetest.NewDisk("sda", storage.LabelGPT)
	part := storagetest.NewPartition("sda1", disk, &storagetest.Format{
		FormatType: "macefi",
		FormatName: "Linux HFS+ ESP",
	})

	suite.Require().NoError(suite.marker.Mark(suite.storageWithBoot(part)))

	suite.Assert().Zero(part.Boot.SetCalls)
	suite.Assert().Equal(1, part.Parted.NameCalls)
	suite.Assert().Equal(1, disk.SetupCalls)
	suite.Assert().Equal(1, disk.DiskTable.CommitCalls)
}

func (suite *markerSuite) TestMDArrayMembers() {
	disk1 := storagetest.NewDisk("sda", storage.LabelMSDOS)
	disk2 := storagetest.NewDisk("sdb", storage.LabelMSDOS)
	member1 := storagetest.NewPartition("sda1", disk1, &storagetest.Format{FormatType: "mdmember"})
	member2 := storagetest.NewPartition("sdb1", disk2, &storagetest.Format{FormatType: "mdmember"})
	array := storagetest.NewMDArray("boot", member1, member2)

	suite.Require().NoError(suite.marker.Mark(suite.storageWithBoot(array)))

	suite.Assert().True(member1.Boot.Bootable)
	suite.Assert().True(member2.Boot.Bootable)
	suite.Assert().Equal(1, disk1.DiskTable.CommitCalls)
	suite.Assert().Equal(1, disk2.DiskTable.CommitCalls)
}

func (suite *markerSuite) TestMDArrayNoMembers() {
	array := storagetest.NewMDArray("boot")

	suite.Require().NoError(suite.marker.Mark(suite.storageWithBoot(array)))
}

func (suite *markerSuite) TestNotBootCapable() {
	// devices without a boot flag are logged and left alone
	suite.Require().NoError(suite.marker.Mark(suite.storageWithBoot(&storagetest.Device{
		DeviceKind: storage.KindLVM,
		DeviceName: "root",
	})))
}

func (suite *markerSuite) TestCommitError() {
	disk := storagetest.NewDisk("sda", storage.LabelMSDOS)
	disk.DiskTable.CommitErr = errors.New("I/O error")
	part := storagetest.NewPartition("sda1", disk, &storagetest.Format{FormatType: "xfs"})

	err := suite.marker.Mark(suite.storageWithBoot(part))
	suite.Require().Error(err)
	suite.Assert().ErrorContains(err, "failed to commit partition table")
}

func (suite *markerSuite) TestSetupError() {
	disk := storagetest.NewDisk("sda", storage.LabelMSDOS)
	disk.SetupErr = errors.New("device busy")
	part := storagetest.NewPartition("sda1", disk, &storagetest.Format{FormatType: "xfs"})

	err := suite.marker.Mark(suite.storageWithBoot(part))
	suite.Require().Error(err)
	suite.Assert().ErrorContains(err, "failed to set up disk")
	suite.Assert().Zero(disk.DiskTable.CommitCalls)
}
