///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package tuple

import (
	"bytes"
	"context"
	"testing"

	"gitlab.com/elixxir/sharestore/internal/field"
)

func newTestDealers(t *testing.T, parties int, seed []byte) []*Dealer {
	dealers := make([]*Dealer, parties)
	for i := range dealers {
		d, err := NewDealer(field.Default(), seed, parties, i)
		if err != nil {
			t.Fatalf("Could not create dealer %d: %+v", i, err)
		}
		dealers[i] = d
	}
	return dealers
}

func pullAll(t *testing.T, dealers []*Dealer, kind Kind, n int) [][]Tuple {
	out := make([][]Tuple, len(dealers))
	for i, d := range dealers {
		tuples, err := d.Pull(context.Background(), kind, n)
		if err != nil {
			t.Fatalf("Dealer %d failed to pull: %+v", i, err)
		}
		out[i] = tuples
	}
	return out
}

func reconstruct(t *testing.T, f *field.Field, shares [][]byte) []byte {
	sum := make([]byte, field.WordWidth)
	for _, s := range shares {
		var err error
		sum, err = f.Add(sum, s)
		if err != nil {
			t.Fatalf("Add failed: %+v", err)
		}
	}
	return sum
}

func TestNewDealer_Errors(t *testing.T) {
	f := field.Default()
	if _, err := NewDealer(f, nil, 2, 0); err == nil {
		t.Errorf("Empty seed should be rejected")
	}
	if _, err := NewDealer(f, []byte("seed"), 0, 0); err == nil {
		t.Errorf("Zero parties should be rejected")
	}
	if _, err := NewDealer(f, []byte("seed"), 2, 2); err == nil {
		t.Errorf("Out of range player should be rejected")
	}
}

// Triples dealt to three parties reconstruct to c = a*b with consistent MACs
func TestDealer_Triples(t *testing.T) {
	f := field.Default()
	dealers := newTestDealers(t, 3, []byte("shared seed"))
	all := pullAll(t, dealers, MultiplicationTriple, 4)

	for i := 0; i < 4; i++ {
		id := all[0][i].ID
		comps := make([][]byte, 3)
		macs := make([][]byte, 3)
		for j := 0; j < 3; j++ {
			var values, macShares [][]byte
			for p := range dealers {
				tp := all[p][i]
				if tp.ID != id {
					t.Fatalf("Parties disagree on tuple id %d", i)
				}
				values = append(values, tp.Shares[j].Value)
				macShares = append(macShares, tp.Shares[j].Mac)
			}
			comps[j] = reconstruct(t, f, values)
			macs[j] = reconstruct(t, f, macShares)
		}

		c, _ := f.Mul(comps[0], comps[1])
		if !bytes.Equal(c, comps[2]) {
			t.Errorf("Triple %d does not satisfy c = a*b", i)
		}

		// The MAC key is the same for every component
		ma, _ := f.Mul(macs[0], comps[1])
		mb, _ := f.Mul(macs[1], comps[0])
		if !bytes.Equal(ma, mb) {
			t.Errorf("Triple %d MACs do not share a key", i)
		}
	}
}

func TestDealer_DistinctIDs(t *testing.T) {
	dealers := newTestDealers(t, 1, []byte("seed"))
	seen := make(map[string]bool)
	for round := 0; round < 3; round++ {
		tuples, err := dealers[0].Pull(context.Background(), InputMask, 50)
		if err != nil {
			t.Fatalf("Pull failed: %+v", err)
		}
		for _, tp := range tuples {
			if seen[tp.ID.String()] {
				t.Fatalf("Tuple id %s dealt twice", tp.ID)
			}
			seen[tp.ID.String()] = true
			if len(tp.Shares) != 1 {
				t.Errorf("Input mask should have one share")
			}
		}
	}
}

func TestDealer_DifferentSeeds(t *testing.T) {
	a := newTestDealers(t, 1, []byte("seed a"))[0]
	b := newTestDealers(t, 1, []byte("seed b"))[0]
	ta, _ := a.Pull(context.Background(), InputMask, 1)
	tb, _ := b.Pull(context.Background(), InputMask, 1)
	if ta[0].ID == tb[0].ID || bytes.Equal(ta[0].Shares[0].Value, tb[0].Shares[0].Value) {
		t.Errorf("Different seeds produced the same tuple")
	}
}

func TestDealer_Cancelled(t *testing.T) {
	d := newTestDealers(t, 1, []byte("seed"))[0]
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Pull(ctx, InputMask, 1); err == nil {
		t.Errorf("Pull should fail on a cancelled context")
	}
}

// Error path: pulls outside 1 to MaxPull are refused before allocating
func TestDealer_PullBounds(t *testing.T) {
	d := newTestDealers(t, 1, []byte("seed"))[0]
	for _, n := range []int{0, MaxPull + 1, 1 << 50} {
		if _, err := d.Pull(context.Background(), InputMask, n); err == nil {
			t.Errorf("Pull of %d should fail", n)
		}
	}
}

func TestNewSeed(t *testing.T) {
	a, err := NewSeed()
	if err != nil {
		t.Fatalf("NewSeed failed: %+v", err)
	}
	b, _ := NewSeed()
	if len(a) != SeedLength || bytes.Equal(a, b) {
		t.Errorf("Seeds should be random and %d bytes long", SeedLength)
	}
}
