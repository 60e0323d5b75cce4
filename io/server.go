///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package io

// server.go contains the gRPC server every service is registered on

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/sharestore/internal/fault"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

// Server serves the node's services on one listener
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	served     chan error
}

// StartServer listens on address and serves impl in the background. Without
// TLS material the server runs in plain text.
func StartServer(address string, impl *Implementation, tlsCert,
	tlsKey []byte) (*Server, error) {
	opts := []grpc.ServerOption{
		grpc.ForceServerCodec(codec{}),
		grpc.UnaryInterceptor(unaryInterceptor),
	}
	if len(tlsCert) > 0 || len(tlsKey) > 0 {
		pair, err := tls.X509KeyPair(tlsCert, tlsKey)
		if err != nil {
			return nil, errors.Wrap(err, errFailedToLoadTls)
		}
		opts = append(opts, grpc.Creds(credentials.NewServerTLSFromCert(&pair)))
	} else {
		jww.WARN.Printf("No TLS key pair provided, serving %s in plain text",
			address)
	}

	lis, err := net.Listen("tcp", address)
	if err != nil {
		return nil, errors.Wrapf(err, errFailedToListen, address)
	}

	s := &Server{
		grpcServer: grpc.NewServer(opts...),
		listener:   lis,
		served:     make(chan error, 1),
	}
	for _, desc := range serviceDescs() {
		s.grpcServer.RegisterService(desc, impl)
	}

	go func() {
		s.served <- s.grpcServer.Serve(lis)
	}()
	jww.INFO.Printf("Serving %d services on %s", len(serviceDescs()),
		lis.Addr())
	return s, nil
}

// Address returns the address the server is listening on
func (s *Server) Address() string {
	return s.listener.Addr().String()
}

// Shutdown stops accepting calls and waits for running calls to finish
func (s *Server) Shutdown() {
	s.grpcServer.GracefulStop()
	if err := <-s.served; err != nil {
		jww.WARN.Printf("Server on %s stopped: %+v", s.Address(), err)
	}
}

// unaryInterceptor logs every call and turns tagged errors into statuses
func unaryInterceptor(ctx context.Context, req interface{},
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if err != nil {
		kind := fault.KindOf(err)
		if kind == fault.Internal || kind == fault.Unknown {
			jww.ERROR.Printf("%s failed: %+v", info.FullMethod, err)
		} else {
			jww.DEBUG.Printf("%s rejected (%s): %v", info.FullMethod, kind, err)
		}
		return nil, fault.ToStatus(err)
	}
	jww.TRACE.Printf("%s handled in %s", info.FullMethod, time.Since(start))
	return resp, nil
}
