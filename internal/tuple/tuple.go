///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

// Package tuple holds single use correlated randomness pulled from the
// tuple generation service and hands it out exactly once.
package tuple

import (
	"context"

	"github.com/google/uuid"
)

// Kind names a tuple type the way the tuple generation service does
type Kind string

const (
	// InputMask tuples hold one share of a random input mask
	InputMask Kind = "INPUT_MASK_GFP"
	// MultiplicationTriple tuples hold shares of a, b and c = a*b
	MultiplicationTriple Kind = "MULTIPLICATION_TRIPLE_GFP"
)

// Arity is the number of shares one tuple of the kind carries
func (k Kind) Arity() int {
	switch k {
	case InputMask:
		return 1
	case MultiplicationTriple:
		return 3
	default:
		return 0
	}
}

// Share is this party's share of one tuple component together with its MAC
// share. Both are field words.
type Share struct {
	Value []byte
	Mac   []byte
}

// Tuple is one unit of correlated randomness. Ownership passes to the caller
// when it is drawn from a Pool.
type Tuple struct {
	ID     uuid.UUID
	Kind   Kind
	Shares []Share
}

// Source is the tuple generation service
type Source interface {
	// Pull returns n fresh tuples of the given kind
	Pull(ctx context.Context, kind Kind, n int) ([]Tuple, error)
}
