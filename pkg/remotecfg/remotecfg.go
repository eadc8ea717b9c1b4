// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package remotecfg drives the remote network-storage configuration services
// (iSCSI, FCoE, zFCP) over gRPC.
package remotecfg

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Proxy is a gRPC-backed storage.Configurator.
//
// The WriteConfiguration RPC carries no payload in either direction and no
// response is consumed.
type Proxy struct {
	conn    grpc.ClientConnInterface
	service string
}

// NewProxy builds a Proxy for the given full service name over an established
// client connection.
func NewProxy(conn grpc.ClientConnInterface, service string) *Proxy {
	return &Proxy{
		conn:    conn,
		service: service,
	}
}

// WriteConfiguration implements Configurator.
func (p *Proxy) WriteConfiguration(ctx context.Context) error {
	if err := p.conn.Invoke(ctx, fmt.Sprintf("/%s/WriteConfiguration", p.service), &emptypb.Empty{}, &emptypb.Empty{}); err != nil {
		return fmt.Errorf("failed to write %s configuration: %w", p.service, err)
	}

	return nil
}

// Dial establishes a client connection to a local configuration service
// endpoint. The services listen on the installer's private bus, so the
// transport is plain.
func Dial(endpoint string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}

	return conn, nil
}
