///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package share

import (
	"github.com/google/uuid"
	"gitlab.com/elixxir/sharestore/internal/fault"
	"gitlab.com/elixxir/sharestore/internal/field"
)

// FactorPair holds the two field words a party computes locally during a
// multiplication triple check
type FactorPair struct {
	A []byte
	B []byte
}

// MultiplicationExchangeObject is one party's contribution to the open step
// of a multiplication check
type MultiplicationExchangeObject struct {
	OperationID   uuid.UUID
	PlayerID      int
	InterimValues []FactorPair
}

// Validate checks identifiers and word widths
func (m *MultiplicationExchangeObject) Validate() error {
	if m == nil {
		return fault.InvalidArgumentf("multiplication exchange object must " +
			"not be nil")
	}
	if m.OperationID == uuid.Nil {
		return fault.InvalidArgumentf("operation identifier must not be null")
	}
	if m.PlayerID < 0 {
		return fault.InvalidArgumentf("player identifier %d must not be "+
			"negative", m.PlayerID)
	}
	for i, fp := range m.InterimValues {
		if len(fp.A) != field.WordWidth || len(fp.B) != field.WordWidth {
			return fault.InvalidArgumentf("factor pair %d of operation %s "+
				"does not hold %d byte words", i, m.OperationID, field.WordWidth)
		}
	}
	return nil
}

// CopyFactorPairs deep copies a list of factor pairs
func CopyFactorPairs(in []FactorPair) []FactorPair {
	out := make([]FactorPair, len(in))
	for i, fp := range in {
		out[i] = FactorPair{
			A: append([]byte(nil), fp.A...),
			B: append([]byte(nil), fp.B...),
		}
	}
	return out
}
