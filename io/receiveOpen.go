///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package io

// receiveOpen.go contains the handler for interim values sent by a sibling

import (
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/sharestore/internal"
)

// ReceiveOpen stores a sibling's contribution to an operation
func ReceiveOpen(instance *internal.Instance,
	msg *MultiplicationExchange) (*Empty, error) {
	obj, err := msg.exchangeObject()
	if err != nil {
		return nil, err
	}
	jww.DEBUG.Printf("[%v]: Received %d interim values of player %d for "+
		"operation %s", instance, len(obj.InterimValues), obj.PlayerID,
		obj.OperationID)
	if err = instance.GetInterimCache().PutInterimValues(obj); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}
