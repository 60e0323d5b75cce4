///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package io

// receiveInputMask.go contains the handler for GetInputMask

import (
	"context"

	"gitlab.com/elixxir/sharestore/internal"
)

// ReceiveGetInputMask reserves input masks for a client's request
func ReceiveGetInputMask(ctx context.Context, instance *internal.Instance,
	msg *InputMaskRequest) (*OutputDeliveryMessage, error) {
	requestID, err := parseID("request id", msg.RequestId)
	if err != nil {
		return nil, err
	}
	odo, err := instance.GetInputMaskCache().GetInputMasksAsOutputDeliveryObject(
		ctx, requestID, msg.Count)
	if err != nil {
		return nil, err
	}
	resp := toOutputDeliveryMessage(odo)
	return &resp, nil
}
