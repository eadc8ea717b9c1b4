// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package remotecfg_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/sharkcz/anaconda/pkg/constants"
	"github.com/sharkcz/anaconda/pkg/remotecfg"
)

// configService is a minimal WriteConfiguration service implementation.
type configService struct {
	calls int
	err   error
}

func writeConfigurationHandler(srv any, _ context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)

	if err := dec(in); err != nil {
		return nil, err
	}

	svc := srv.(*configService) //nolint:forcetypeassert

	svc.calls++

	if svc.err != nil {
		return nil, svc.err
	}

	return new(emptypb.Empty), nil
}

func serviceDesc(name string) *grpc.ServiceDesc {
	return &grpc.ServiceDesc{
		ServiceName: name,
		HandlerType: (*any)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "WriteConfiguration",
				Handler:    writeConfigurationHandler,
			},
		},
	}
}

func setup(t *testing.T, svc *configService, name string) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)

	server := grpc.NewServer()
	server.RegisterService(serviceDesc(name), svc)

	go server.Serve(lis) //nolint:errcheck

	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() { conn.Close() }) //nolint:errcheck

	return conn
}

func TestWriteConfiguration(t *testing.T) {
	svc := &configService{}
	conn := setup(t, svc, constants.ISCSIService)

	proxy := remotecfg.NewProxy(conn, constants.ISCSIService)

	require.NoError(t, proxy.WriteConfiguration(t.Context()))
	assert.Equal(t, 1, svc.calls)
}

func TestWriteConfigurationError(t *testing.T) {
	svc := &configService{
		err: status.Error(codes.Internal, "cannot write configuration"),
	}
	conn := setup(t, svc, constants.ZFCPService)

	proxy := remotecfg.NewProxy(conn, constants.ZFCPService)

	err := proxy.WriteConfiguration(t.Context())
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.ErrorContains(t, err, constants.ZFCPService)
}

func TestWriteConfigurationUnknownService(t *testing.T) {
	conn := setup(t, &configService{}, constants.ISCSIService)

	proxy := remotecfg.NewProxy(conn, constants.FCOEService)

	err := proxy.WriteConfiguration(t.Context())
	require.Error(t, err)
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestDial(t *testing.T) {
	conn, err := remotecfg.Dial("localhost:10509")
	require.NoError(t, err)

	assert.NoError(t, conn.Close())
}
