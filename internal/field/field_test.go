///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package field

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
)

// uintWord encodes a small plain value
func uintWord(f *Field, v uint64) []byte {
	return f.Encode(new(saferith.Nat).SetUint64(v))
}

func TestDefault_Prime(t *testing.T) {
	f := Default()
	expected, _ := new(big.Int).SetString(DefaultPrime, 10)
	if f.Prime().Cmp(expected) != 0 {
		t.Errorf("Prime mismatch: got %v, expected %v", f.Prime(), expected)
	}
}

func TestNew_RejectsComposite(t *testing.T) {
	if _, err := New(big.NewInt(15)); err == nil {
		t.Errorf("15 should have been rejected as a modulus")
	}
}

func TestNew_RejectsOversizedPrime(t *testing.T) {
	// 2^521 - 1 is a Mersenne prime wider than a word
	p := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 521), big.NewInt(1))
	if _, err := New(p); err == nil {
		t.Errorf("Oversized prime should have been rejected")
	}
}

func TestFromString_Invalid(t *testing.T) {
	if _, err := FromString("not a number"); err == nil {
		t.Errorf("Expected parse failure")
	}
}

// Encoding then decoding yields the original value
func TestEncodeDecode(t *testing.T) {
	f := Default()
	for _, v := range []uint64{0, 1, 2, 42, 1 << 40} {
		word := uintWord(f, v)
		if len(word) != WordWidth {
			t.Fatalf("Word has length %d", len(word))
		}
		x, err := f.Decode(word)
		if err != nil {
			t.Fatalf("Decode failed: %+v", err)
		}
		if x.Big().Uint64() != v {
			t.Errorf("Round trip of %d gave %v", v, x.Big())
		}
	}
}

// The encoding is the little endian Montgomery form
func TestEncode_Montgomery(t *testing.T) {
	f := Default()
	p := f.Prime()
	r := new(big.Int).Lsh(big.NewInt(1), 8*WordWidth)
	expected := new(big.Int).Mod(new(big.Int).Mul(big.NewInt(7), r), p)

	word := uintWord(f, 7)
	be := make([]byte, WordWidth)
	for i := range word {
		be[WordWidth-1-i] = word[i]
	}
	if new(big.Int).SetBytes(be).Cmp(expected) != 0 {
		t.Errorf("Encoding is not 7*R mod p")
	}
}

func TestDecode_WrongWidth(t *testing.T) {
	f := Default()
	if _, err := f.Decode(make([]byte, WordWidth-1)); err == nil {
		t.Errorf("Short word should have been rejected")
	}
}

func TestDecode_Unreduced(t *testing.T) {
	f := Default()
	word := bytes.Repeat([]byte{0xff}, WordWidth)
	if _, err := f.Decode(word); err == nil {
		t.Errorf("Word above the modulus should have been rejected")
	}
}

func TestArithmetic(t *testing.T) {
	f := Default()
	a, b := uintWord(f, 6), uintWord(f, 7)

	prod, err := f.Mul(a, b)
	if err != nil {
		t.Fatalf("Mul failed: %+v", err)
	}
	if !bytes.Equal(prod, uintWord(f, 42)) {
		t.Errorf("6*7 != 42")
	}

	sum, err := f.Add(a, b)
	if err != nil {
		t.Fatalf("Add failed: %+v", err)
	}
	if !bytes.Equal(sum, uintWord(f, 13)) {
		t.Errorf("6+7 != 13")
	}

	diff, err := f.Sub(b, a)
	if err != nil {
		t.Fatalf("Sub failed: %+v", err)
	}
	if !bytes.Equal(diff, uintWord(f, 1)) {
		t.Errorf("7-6 != 1")
	}

	neg, err := f.Neg(a)
	if err != nil {
		t.Fatalf("Neg failed: %+v", err)
	}
	zero, err := f.Add(neg, a)
	if err != nil {
		t.Fatalf("Add failed: %+v", err)
	}
	if !bytes.Equal(zero, make([]byte, WordWidth)) {
		t.Errorf("-a + a != 0")
	}
}

// Multiplication wraps around the modulus
func TestMul_Wraps(t *testing.T) {
	f := Default()
	pMinusOne := new(big.Int).Sub(f.Prime(), big.NewInt(1))
	word := f.FromBytes(pMinusOne.Bytes())

	// (p-1)^2 = 1 mod p
	sq, err := f.Mul(word, word)
	if err != nil {
		t.Fatalf("Mul failed: %+v", err)
	}
	if !bytes.Equal(sq, uintWord(f, 1)) {
		t.Errorf("(p-1)^2 should be 1")
	}
}

func TestSplitJoin(t *testing.T) {
	data := make([]byte, 3*WordWidth)
	for i := range data {
		data[i] = byte(i)
	}
	words, err := Split(data)
	if err != nil {
		t.Fatalf("Split failed: %+v", err)
	}
	if len(words) != 3 {
		t.Fatalf("Expected 3 words, got %d", len(words))
	}
	if !bytes.Equal(Join(words), data) {
		t.Errorf("Join did not restore data")
	}
}

func TestCheckLength(t *testing.T) {
	testCases := []struct {
		length int
		ok     bool
	}{
		{0, false},
		{1, false},
		{WordWidth, true},
		{WordWidth + 1, false},
		{4 * WordWidth, true},
	}
	for _, tc := range testCases {
		err := CheckLength(make([]byte, tc.length))
		if (err == nil) != tc.ok {
			t.Errorf("CheckLength(%d): expected ok=%v, got %v",
				tc.length, tc.ok, err)
		}
	}
}
