///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package io

// receiveMaskedInput.go contains the handler for the MaskedInput upload

import (
	"gitlab.com/elixxir/sharestore/internal"
)

// ReceiveUploadMaskedInput turns a client's masked input into a share
func ReceiveUploadMaskedInput(instance *internal.Instance,
	msg *MaskedInputMessage) (*IdMessage, error) {
	input, err := msg.maskedInput()
	if err != nil {
		return nil, err
	}
	id, err := instance.GetStorage().CreateSecretShareFromMaskedInput(input)
	if err != nil {
		return nil, err
	}
	return &IdMessage{SecretId: id.String()}, nil
}
