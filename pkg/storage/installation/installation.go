// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package installation activates the planned storage configuration and
// persists the post-install storage configuration files.
//
// The package performs the final stage of the installer's storage subsystem:
// the actual partitioning, filesystem creation and device-graph planning are
// the storage planner's job; this package drives it at the right moment of
// the install sequence.
package installation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/sharkcz/anaconda/internal/pkg/bootflag"
	"github.com/sharkcz/anaconda/internal/pkg/escrow"
	"github.com/sharkcz/anaconda/internal/pkg/zdev"
	"github.com/sharkcz/anaconda/pkg/constants"
	"github.com/sharkcz/anaconda/pkg/storage"
)

// Options configures an Installer. The zero value selects the defaults.
type Options struct {
	// Logger receives the installation log. Defaults to a no-op logger.
	Logger *zap.Logger

	// Policy decides whether resize failures abort the installation.
	// Defaults to storage.RaisePolicy.
	Policy storage.ErrorPolicy

	// SysRoot is the mount point of the target OS installation.
	SysRoot string

	// SysfsRoot is the sysfs mount point.
	SysfsRoot string

	// EscrowGenerator generates escrow backup passphrases. Defaults to the
	// built-in random generator.
	EscrowGenerator storage.PassphraseGenerator

	// MachineCheck overrides the s390 machine detection (tests only).
	MachineCheck func() bool

	// ISCSI, FCOE and ZFCP are the remote configuration service proxies.
	// A nil proxy skips the corresponding service.
	ISCSI storage.Configurator
	FCOE  storage.Configurator
	ZFCP  storage.Configurator
}

type service struct {
	name  string
	proxy storage.Configurator
}

// Installer sequences the storage activation and configuration persistence.
type Installer struct {
	storage  storage.Storage
	logger   *zap.Logger
	policy   storage.ErrorPolicy
	sysroot  string
	marker   *bootflag.Marker
	escrow   *escrow.Writer
	zdev     *zdev.Writer
	services []service
	conns    []*grpc.ClientConn
}

// New builds an Installer over the given storage planner.
func New(st storage.Storage, opts Options) *Installer {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	if opts.Policy == nil {
		opts.Policy = storage.RaisePolicy
	}

	if opts.SysRoot == "" {
		opts.SysRoot = constants.DefaultSysRoot
	}

	zdevOpts := []zdev.Option{}

	if opts.SysfsRoot != "" {
		zdevOpts = append(zdevOpts, zdev.WithSysfsRoot(opts.SysfsRoot))
	}

	if opts.MachineCheck != nil {
		zdevOpts = append(zdevOpts, zdev.WithMachineCheck(opts.MachineCheck))
	}

	return &Installer{
		storage: st,
		logger:  opts.Logger,
		policy:  opts.Policy,
		sysroot: opts.SysRoot,
		marker:  bootflag.NewMarker(opts.Logger),
		escrow:  escrow.NewWriter(opts.Logger, opts.EscrowGenerator),
		zdev:    zdev.NewWriter(opts.Logger, zdevOpts...),
		services: []service{
			{"iscsi", opts.ISCSI},
			{"fcoe", opts.FCOE},
			{"zfcp", opts.ZFCP},
		},
	}
}

// Activate performs the installer-specific activation of the planned storage
// configuration: device-tree teardown, execution of all planned actions, boot
// device marking and swap activation.
//
// Resize failures reported by the planner are routed through the error
// policy; a handled verdict lets the installation proceed to swap
// activation, everything else is fatal.
func (i *Installer) Activate(ctx context.Context, callbacks *storage.ActionCallbacks) error {
	if err := i.storage.TeardownAll(); err != nil {
		return fmt.Errorf("failed to tear down device tree: %w", err)
	}

	if err := i.activate(ctx, callbacks); err != nil {
		if !isResizeFailure(err) {
			return err
		}

		if i.policy(err) == storage.VerdictRaise {
			return err
		}

		i.logger.Warn("resize failure handled, proceeding", zap.Error(err))
	}

	if err := i.storage.TurnOnSwap(); err != nil {
		return fmt.Errorf("failed to activate swap: %w", err)
	}

	return nil
}

func (i *Installer) activate(ctx context.Context, callbacks *storage.ActionCallbacks) error {
	if err := i.storage.DoIt(ctx, callbacks); err != nil {
		return err
	}

	if err := i.marker.Mark(i.storage); err != nil {
		return err
	}

	i.dumpState("final")

	return nil
}

// WriteConfiguration persists the post-install storage configuration into
// the sysroot: escrow packets, the mount table and filesystem set, the
// remote network-storage service configurations and the DASD configuration.
func (i *Installer) WriteConfiguration(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Join(i.sysroot, "etc"), 0o755); err != nil {
		return fmt.Errorf("failed to create sysroot etc: %w", err)
	}

	i.escrow.Write(i.storage, i.sysroot)

	if err := i.storage.MakeMtab(); err != nil {
		return fmt.Errorf("failed to create mtab: %w", err)
	}

	if err := i.storage.WriteFSTab(); err != nil {
		return fmt.Errorf("failed to write filesystem set: %w", err)
	}

	for _, svc := range i.services {
		if svc.proxy == nil {
			i.logger.Debug("service not configured, skipping", zap.String("service", svc.name))

			continue
		}

		if err := svc.proxy.WriteConfiguration(ctx); err != nil {
			return err
		}
	}

	return i.zdev.Write(i.storage, i.sysroot)
}

// dumpState logs a snapshot of the device tree for diagnostics.
func (i *Installer) dumpState(label string) {
	i.logger.Info("device tree state", zap.String("label", label))

	for _, dev := range i.storage.Devices() {
		i.logger.Debug("device",
			zap.String("name", dev.Name()),
			zap.Stringer("kind", dev.Kind()),
			zap.String("format", dev.Format().Type()),
			zap.String("size", humanize.IBytes(dev.Size())))
	}
}

func isResizeFailure(err error) bool {
	var (
		fsErr     *storage.FSResizeError
		formatErr *storage.FormatResizeError
	)

	return errors.As(err, &fsErr) || errors.As(err, &formatErr)
}
