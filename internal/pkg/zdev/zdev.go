// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package zdev persists DASD device-activation configuration for the target
// system.
package zdev

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/siderolabs/gen/xslices"
	"go.uber.org/zap"

	"github.com/sharkcz/anaconda/internal/pkg/machine"
	"github.com/sharkcz/anaconda/pkg/constants"
	"github.com/sharkcz/anaconda/pkg/storage"
)

// Writer writes dasd.conf and zdev.conf under the target sysroot.
type Writer struct {
	logger    *zap.Logger
	sysfsRoot string
	isS390    func() bool
}

// Option customizes a Writer.
type Option func(*Writer)

// WithSysfsRoot overrides the sysfs mount point.
func WithSysfsRoot(root string) Option {
	return func(w *Writer) {
		w.sysfsRoot = root
	}
}

// WithMachineCheck overrides the s390 machine check.
func WithMachineCheck(check func() bool) Option {
	return func(w *Writer) {
		w.isS390 = check
	}
}

// NewWriter builds a Writer.
func NewWriter(logger *zap.Logger, opts ...Option) *Writer {
	w := &Writer{
		logger:    logger,
		sysfsRoot: constants.DefaultSysfsRoot,
		isS390:    machine.IsS390,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write persists the DASD activation configuration: an (empty) dasd.conf and
// zdev.conf stanzas for every DASD device plus every hyper-PAV alias.
//
// Write is a no-op unless the host is an s390 machine with at least one DASD
// device in the tree. Any I/O failure is fatal.
func (w *Writer) Write(st storage.Storage, sysroot string) error {
	dasds := xslices.Filter(st.Devices(), func(d storage.Device) bool {
		return d.Kind() == storage.KindDASD
	})

	if !w.isS390() || len(dasds) == 0 {
		return nil
	}

	// device enumeration order from the planner is not stable, output must be
	slices.SortFunc(dasds, func(a, b storage.Device) int {
		return strings.Compare(a.Name(), b.Name())
	})

	// make sure empty dasd.conf exists, dracut needs it
	dasdConf, err := os.Create(filepath.Join(sysroot, constants.DASDConfPath))
	if err != nil {
		return fmt.Errorf("failed to create dasd.conf: %w", err)
	}

	if err = dasdConf.Close(); err != nil {
		return fmt.Errorf("failed to close dasd.conf: %w", err)
	}

	if err = w.writeDevices(dasds, sysroot); err != nil {
		return err
	}

	return w.writeAliases(sysroot)
}

func (w *Writer) writeDevices(dasds []storage.Device, sysroot string) error {
	f, err := openAppend(filepath.Join(sysroot, constants.ZdevConfPath))
	if err != nil {
		return err
	}

	defer f.Close() //nolint:errcheck

	for _, dasd := range dasds {
		driver, err := w.resolveDriver(dasd.BusID())
		if err != nil {
			return err
		}

		w.logger.Debug("adding persistent DASD configuration",
			zap.String("device", dasd.Name()),
			zap.String("driver", driver),
			zap.String("busid", dasd.BusID()))

		if err = writeStanza(f, driver, dasd.BusID()); err != nil {
			return err
		}
	}

	return f.Close()
}

// writeAliases scans the ECKD driver's sysfs directory for hyper-PAV aliases
// and appends a stanza for each. The scan visits every DASD under the driver,
// but only entries whose alias attribute reads "1" produce a stanza, so the
// devices already written by writeDevices are not duplicated.
func (w *Writer) writeAliases(sysroot string) error {
	driverDir := filepath.Join(w.sysfsRoot, constants.DASDECKDDriverDir)

	// with *only* FBA DASDs attached the ECKD driver directory does not
	// exist, and there are no aliases to pick up
	if _, err := os.Stat(driverDir); err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("failed to stat %s: %w", driverDir, err)
	}

	entries, err := os.ReadDir(driverDir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", driverDir, err)
	}

	f, err := openAppend(filepath.Join(sysroot, constants.ZdevConfPath))
	if err != nil {
		return err
	}

	defer f.Close() //nolint:errcheck

	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), constants.CCWBusIDPrefix) {
			continue
		}

		alias, err := os.ReadFile(filepath.Join(driverDir, entry.Name(), "alias"))
		if err != nil {
			return fmt.Errorf("failed to read alias attribute of %s: %w", entry.Name(), err)
		}

		if strings.TrimSpace(string(alias)) != "1" {
			continue
		}

		w.logger.Debug("adding hyper-PAV alias configuration", zap.String("busid", entry.Name()))

		if err = writeStanza(f, constants.DASDECKDDriver, entry.Name()); err != nil {
			return err
		}
	}

	return f.Close()
}

// resolveDriver resolves the active kernel driver of a CCW device from its
// sysfs driver symlink.
func (w *Writer) resolveDriver(busid string) (string, error) {
	link := filepath.Join(w.sysfsRoot, constants.CCWDevicesDir, busid, "driver")

	target, err := os.Readlink(link)
	if err != nil {
		return "", fmt.Errorf("failed to resolve driver of %s: %w", busid, err)
	}

	return filepath.Base(target), nil
}

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return f, nil
}

func writeStanza(f io.Writer, driver, busid string) error {
	if _, err := fmt.Fprintf(f, "[persistent %s %s]\nonline=1\n\n", driver, busid); err != nil {
		return fmt.Errorf("failed to write zdev stanza for %s: %w", busid, err)
	}

	return nil
}
