// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package installation

import (
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/sharkcz/anaconda/pkg/constants"
	"github.com/sharkcz/anaconda/pkg/remotecfg"
	"github.com/sharkcz/anaconda/pkg/storage"
	"github.com/sharkcz/anaconda/pkg/storage/config"
)

// NewFromConfig builds an Installer from the install-target configuration,
// dialing a proxy for every configured remote service endpoint.
//
// Close must be called on the returned Installer to release the service
// connections.
func NewFromConfig(st storage.Storage, cfg *config.Config, logger *zap.Logger) (*Installer, error) {
	opts := Options{
		Logger:    logger,
		SysRoot:   cfg.SysRoot,
		SysfsRoot: cfg.SysfsRoot,
	}

	var conns []*grpc.ClientConn

	dial := func(endpoint, service string) (storage.Configurator, error) {
		if endpoint == "" {
			return nil, nil
		}

		conn, err := remotecfg.Dial(endpoint)
		if err != nil {
			return nil, err
		}

		conns = append(conns, conn)

		return remotecfg.NewProxy(conn, service), nil
	}

	services := []struct {
		endpoint string
		service  string
		target   *storage.Configurator
	}{
		{cfg.Endpoints.ISCSI, "iscsi", &opts.ISCSI},
		{cfg.Endpoints.FCOE, "fcoe", &opts.FCOE},
		{cfg.Endpoints.ZFCP, "zfcp", &opts.ZFCP},
	}

	for _, svc := range services {
		proxy, err := dial(svc.endpoint, serviceName(svc.service))
		if err != nil {
			closeAll(conns) //nolint:errcheck

			return nil, fmt.Errorf("failed to set up %s proxy: %w", svc.service, err)
		}

		if proxy != nil {
			*svc.target = proxy
		}
	}

	installer := New(st, opts)
	installer.conns = conns

	return installer, nil
}

// Close releases the remote service connections dialed by NewFromConfig.
func (i *Installer) Close() error {
	err := closeAll(i.conns)
	i.conns = nil

	return err
}

func serviceName(name string) string {
	switch name {
	case "iscsi":
		return constants.ISCSIService
	case "fcoe":
		return constants.FCOEService
	case "zfcp":
		return constants.ZFCPService
	default:
		return name
	}
}

func closeAll(conns []*grpc.ClientConn) error {
	var firstErr error

	for _, conn := range conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
