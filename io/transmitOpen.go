///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package io

// transmitOpen.go contains the client sending interim values to a sibling

import (
	"context"

	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/sharestore/internal/share"
)

// Sibling sends this party's interim values to another party
type Sibling struct {
	host *Host
}

// NewSibling creates the client for the party reachable through host
func NewSibling(host *Host) *Sibling {
	return &Sibling{host: host}
}

// Endpoint returns the address of the sibling
func (s *Sibling) Endpoint() string {
	return s.host.GetAddress()
}

// Open transmits obj to the sibling's InterVcp service
func (s *Sibling) Open(ctx context.Context,
	obj *share.MultiplicationExchangeObject) error {
	jww.DEBUG.Printf("Sending %d interim values of operation %s to %s",
		len(obj.InterimValues), obj.OperationID, s.Endpoint())
	return s.host.invoke(ctx, InterVcpService, "Open",
		toMultiplicationExchange(obj), &Empty{})
}
