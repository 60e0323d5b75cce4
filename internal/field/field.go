///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

// Package field encodes and operates on elements of the MPC prime field.
//
// Elements travel as fixed width words in the SPDZ "gfp" representation: the
// little endian bytes of the Montgomery form x*R mod p with R = 2^(8*WordWidth).
// Arithmetic is delegated to saferith so that secret dependent operations run
// in constant time.
package field

import (
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/pkg/errors"
)

// WordWidth is the byte length of one encoded field element
const WordWidth = 16

// DefaultPrime is the 128 bit prime used by the SPDZ engines
const DefaultPrime = "198766463529478683931867765928436695041"

// Field holds the modulus and the Montgomery constants derived from it
type Field struct {
	p    *saferith.Modulus
	r    *saferith.Nat
	rInv *saferith.Nat
	bits int
}

// New builds a Field over the given prime. The prime must fit in WordWidth
// bytes.
func New(prime *big.Int) (*Field, error) {
	if prime == nil || prime.Sign() <= 0 || !prime.ProbablyPrime(20) {
		return nil, errors.Errorf("modulus %v is not a prime", prime)
	}
	if prime.BitLen() > 8*WordWidth {
		return nil, errors.Errorf("prime of %d bits does not fit in a "+
			"%d byte word", prime.BitLen(), WordWidth)
	}

	r := new(big.Int).Lsh(big.NewInt(1), 8*WordWidth)
	r.Mod(r, prime)
	rInv := new(big.Int).ModInverse(r, prime)
	if rInv == nil {
		return nil, errors.Errorf("Montgomery constant has no inverse mod %v", prime)
	}

	bits := prime.BitLen()
	return &Field{
		p:    saferith.ModulusFromNat(new(saferith.Nat).SetBig(prime, bits)),
		r:    new(saferith.Nat).SetBig(r, bits),
		rInv: new(saferith.Nat).SetBig(rInv, bits),
		bits: bits,
	}, nil
}

// FromString builds a Field from a base 10 prime
func FromString(prime string) (*Field, error) {
	p, ok := new(big.Int).SetString(prime, 10)
	if !ok {
		return nil, errors.Errorf("could not parse prime %q", prime)
	}
	return New(p)
}

// Default returns the Field over DefaultPrime
func Default() *Field {
	f, err := FromString(DefaultPrime)
	if err != nil {
		panic(err)
	}
	return f
}

// Prime returns a copy of the modulus
func (f *Field) Prime() *big.Int {
	return f.p.Big()
}

// Decode parses one encoded word into its plain value. Words which are not
// exactly WordWidth long or whose Montgomery value is not reduced are rejected.
func (f *Field) Decode(word []byte) (*saferith.Nat, error) {
	mont, err := f.montgomery(word)
	if err != nil {
		return nil, err
	}
	return new(saferith.Nat).ModMul(mont, f.rInv, f.p), nil
}

// Encode writes a plain value as an encoded word
func (f *Field) Encode(x *saferith.Nat) []byte {
	reduced := new(saferith.Nat).Mod(x, f.p)
	mont := new(saferith.Nat).ModMul(reduced, f.r, f.p)
	return toWord(mont)
}

// FromBytes reduces an arbitrary big endian byte string into the field and
// encodes it. Used to turn PRF output into field elements.
func (f *Field) FromBytes(b []byte) []byte {
	return f.Encode(new(saferith.Nat).SetBytes(b))
}

// Mul multiplies two encoded words
func (f *Field) Mul(a, b []byte) ([]byte, error) {
	x, err := f.Decode(a)
	if err != nil {
		return nil, err
	}
	y, err := f.Decode(b)
	if err != nil {
		return nil, err
	}
	return f.Encode(new(saferith.Nat).ModMul(x, y, f.p)), nil
}

// Add adds two encoded words. Montgomery form is linear, so the sum is
// computed directly on the Montgomery values.
func (f *Field) Add(a, b []byte) ([]byte, error) {
	x, err := f.montgomery(a)
	if err != nil {
		return nil, err
	}
	y, err := f.montgomery(b)
	if err != nil {
		return nil, err
	}
	return toWord(new(saferith.Nat).ModAdd(x, y, f.p)), nil
}

// Sub subtracts b from a
func (f *Field) Sub(a, b []byte) ([]byte, error) {
	x, err := f.montgomery(a)
	if err != nil {
		return nil, err
	}
	y, err := f.montgomery(b)
	if err != nil {
		return nil, err
	}
	return toWord(new(saferith.Nat).ModSub(x, y, f.p)), nil
}

// Neg returns the additive inverse of a
func (f *Field) Neg(a []byte) ([]byte, error) {
	x, err := f.montgomery(a)
	if err != nil {
		return nil, err
	}
	return toWord(new(saferith.Nat).ModNeg(x, f.p)), nil
}

// montgomery parses a word into its Montgomery value without leaving the
// Montgomery domain
func (f *Field) montgomery(word []byte) (*saferith.Nat, error) {
	if len(word) != WordWidth {
		return nil, errors.Errorf("field element must be %d bytes, got %d",
			WordWidth, len(word))
	}
	be := make([]byte, WordWidth)
	for i := range word {
		be[WordWidth-1-i] = word[i]
	}
	x := new(saferith.Nat).SetBytes(be)
	if _, _, lt := x.CmpMod(f.p); lt != 1 {
		return nil, errors.New("field element is not reduced modulo the prime")
	}
	return x.Resize(f.bits), nil
}

func toWord(x *saferith.Nat) []byte {
	be := x.FillBytes(make([]byte, WordWidth))
	word := make([]byte, WordWidth)
	for i := range be {
		word[i] = be[WordWidth-1-i]
	}
	return word
}
