///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package share

import (
	"gitlab.com/elixxir/sharestore/internal/fault"
	"gitlab.com/elixxir/sharestore/internal/field"
)

// OutputDeliveryObject lets a client verify the shares it collects from all
// parties, following Damgård, Damgård, Nielsen, Nordholt and Toft,
// "Confidential Benchmarking based on Multiparty Computation"
// (https://eprint.iacr.org/2015/1006).
//
// For word i: <y_i> is the secret share, <r_i> and <v_i> are shares of
// single use randoms, <w_i> = <y_i * r_i> and <u_i> = <v_i * r_i>.
//
// All five fields have the same length. The only way to obtain a value is
// NewOutputDeliveryObject, which enforces that.
type OutputDeliveryObject struct {
	secretShares []byte
	rShares      []byte
	vShares      []byte
	wShares      []byte
	uShares      []byte
}

// NewOutputDeliveryObject validates the field lengths and builds the object.
// Unequal lengths are a ConstructionInvariantViolation.
func NewOutputDeliveryObject(secretShares, rShares, vShares, wShares,
	uShares []byte) (*OutputDeliveryObject, error) {
	n := len(secretShares)
	if len(rShares) != n || len(vShares) != n || len(wShares) != n ||
		len(uShares) != n {
		return nil, fault.New(fault.ConstructionInvariantViolation,
			"the provided shares must be of the same length (secret %d, "+
				"r %d, v %d, w %d, u %d)", n, len(rShares), len(vShares),
			len(wShares), len(uShares))
	}
	if n%field.WordWidth != 0 {
		return nil, fault.New(fault.ConstructionInvariantViolation,
			"share length %d is not a multiple of the word width %d", n,
			field.WordWidth)
	}
	return &OutputDeliveryObject{
		secretShares: secretShares,
		rShares:      rShares,
		vShares:      vShares,
		wShares:      wShares,
		uShares:      uShares,
	}, nil
}

func (o *OutputDeliveryObject) SecretShares() []byte { return o.secretShares }
func (o *OutputDeliveryObject) RShares() []byte      { return o.rShares }
func (o *OutputDeliveryObject) VShares() []byte      { return o.vShares }
func (o *OutputDeliveryObject) WShares() []byte      { return o.wShares }
func (o *OutputDeliveryObject) UShares() []byte      { return o.uShares }

// Words returns the number of field words each field holds
func (o *OutputDeliveryObject) Words() int {
	return len(o.secretShares) / field.WordWidth
}
