///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package io

// host.go contains the connection to a remote node

import (
	"context"
	"crypto/x509"

	"github.com/pkg/errors"
	"gitlab.com/elixxir/sharestore/internal/fault"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Host is a connection to a remote node. Calls on it are safe for
// concurrent use.
type Host struct {
	address string
	conn    *grpc.ClientConn
}

// NewHost connects to the node at address. The connection is established
// lazily on the first call. Without a TLS certificate the connection is plain
// text.
func NewHost(address string, tlsCert []byte) (*Host, error) {
	creds := insecure.NewCredentials()
	if len(tlsCert) > 0 {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(tlsCert) {
			return nil, errors.Errorf("could not parse the TLS certificate "+
				"of %s", address)
		}
		creds = credentials.NewClientTLSFromCert(pool, "")
	}

	conn, err := grpc.Dial(address,
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(codec{})))
	if err != nil {
		return nil, errors.Wrapf(err, errFailedToDial, address)
	}
	return &Host{address: address, conn: conn}, nil
}

// GetAddress returns the address the host was created for
func (h *Host) GetAddress() string {
	return h.address
}

// Close tears the connection down
func (h *Host) Close() error {
	return h.conn.Close()
}

// invoke makes a unary call. A status returned by the remote node is turned
// back into a tagged error.
func (h *Host) invoke(ctx context.Context, service, method string, req,
	resp interface{}) error {
	err := h.conn.Invoke(ctx, "/"+service+"/"+method, req, resp)
	if err != nil {
		return errors.WithMessagef(fault.FromStatus(err), errCallFailed,
			method, h.address)
	}
	return nil
}
