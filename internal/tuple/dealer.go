///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package tuple

// dealer.go contains a trusted dealer Source for development networks.
// Every party runs its own Dealer with the same seed; because all tuples are
// derived from the seed and a per kind counter, parties pulling in the same
// order receive matching shares of the same tuples.

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/zeebo/blake3"
	"gitlab.com/elixxir/sharestore/internal/field"
	"gitlab.com/xx_network/crypto/csprng"
)

const dealerContext = "gitlab.com/elixxir/sharestore 2020 tuple dealer"

// MaxPull is the largest number of tuples one Pull deals
const MaxPull = 1 << 20

// SeedLength is the length of generated dealer seeds
const SeedLength = 32

// Dealer derives additive shares of random tuples from a shared seed
type Dealer struct {
	field     *field.Field
	seed      []byte
	parties   int
	playerID  int
	namespace uuid.UUID
	macKey    []byte

	mux      sync.Mutex
	counters map[Kind]uint64
}

// NewDealer creates the dealer for playerID out of parties
func NewDealer(f *field.Field, seed []byte, parties, playerID int) (*Dealer, error) {
	if len(seed) == 0 {
		return nil, errors.New("dealer seed must not be empty")
	}
	if parties < 1 {
		return nil, errors.Errorf("number of parties must be positive, got %d",
			parties)
	}
	if playerID < 0 || playerID >= parties {
		return nil, errors.Errorf("player id %d is not in [0, %d)", playerID,
			parties)
	}

	d := &Dealer{
		field:    f,
		seed:     append([]byte(nil), seed...),
		parties:  parties,
		playerID: playerID,
		counters: make(map[Kind]uint64),
	}
	d.namespace = uuid.NewSHA1(uuid.NameSpaceOID, d.prf("namespace"))
	d.macKey = f.FromBytes(d.prf("mac-key"))
	return d, nil
}

// NewSeed draws a fresh dealer seed from the system RNG
func NewSeed() ([]byte, error) {
	seed := make([]byte, SeedLength)
	rng := csprng.NewSystemRNG()
	if _, err := rng.Read(seed); err != nil {
		return nil, errors.Wrap(err, "could not generate dealer seed")
	}
	return seed, nil
}

// Pull returns n tuples of kind. Each call continues where the previous one
// of the same kind left off.
func (d *Dealer) Pull(ctx context.Context, kind Kind, n int) ([]Tuple, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if kind.Arity() == 0 {
		return nil, errors.Errorf("dealer cannot produce %s tuples", kind)
	}
	if n <= 0 || n > MaxPull {
		return nil, errors.Errorf("cannot pull %d tuples, a pull holds 1 "+
			"to %d", n, MaxPull)
	}

	d.mux.Lock()
	start := d.counters[kind]
	d.counters[kind] += uint64(n)
	d.mux.Unlock()

	tuples := make([]Tuple, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "stopped after dealing %d of %d "+
				"%s tuples", i, n, kind)
		}
		t, err := d.deal(kind, start+uint64(i))
		if err != nil {
			return nil, err
		}
		tuples[i] = t
	}
	jww.TRACE.Printf("Dealer produced %d %s tuples starting at %d", n, kind,
		start)
	return tuples, nil
}

func (d *Dealer) deal(kind Kind, index uint64) (Tuple, error) {
	label := string(kind)
	t := Tuple{
		ID:   uuid.NewSHA1(d.namespace, counterBytes(label, index)),
		Kind: kind,
	}

	components := make([][]byte, 0, kind.Arity())
	switch kind {
	case InputMask:
		components = append(components, d.element(label, index, "mask"))
	case MultiplicationTriple:
		a := d.element(label, index, "a")
		b := d.element(label, index, "b")
		c, err := d.field.Mul(a, b)
		if err != nil {
			return Tuple{}, err
		}
		components = append(components, a, b, c)
	}

	for j, value := range components {
		mac, err := d.field.Mul(d.macKey, value)
		if err != nil {
			return Tuple{}, err
		}
		valueShare, err := d.shareOf(value, label, index, j, "value")
		if err != nil {
			return Tuple{}, err
		}
		macShare, err := d.shareOf(mac, label, index, j, "mac")
		if err != nil {
			return Tuple{}, err
		}
		t.Shares = append(t.Shares, Share{Value: valueShare, Mac: macShare})
	}
	return t, nil
}

// shareOf splits value into additive shares and returns this party's. The
// first parties-1 shares are pseudorandom, the last one completes the sum.
func (d *Dealer) shareOf(value []byte, label string, index uint64,
	component int, part string) ([]byte, error) {
	last := value
	for k := 0; k < d.parties-1; k++ {
		s := d.field.FromBytes(d.prf(label, string(counterBytes(part, index)),
			string(counterBytes("component", uint64(component))),
			string(counterBytes("party", uint64(k)))))
		if k == d.playerID {
			return s, nil
		}
		var err error
		last, err = d.field.Sub(last, s)
		if err != nil {
			return nil, err
		}
	}
	return last, nil
}

func (d *Dealer) element(label string, index uint64, name string) []byte {
	return d.field.FromBytes(d.prf(label, string(counterBytes(name, index))))
}

// prf hashes the seed with length prefixed labels
func (d *Dealer) prf(labels ...string) []byte {
	h := blake3.NewDeriveKey(dealerContext)
	_, _ = h.Write(d.seed)
	var l [8]byte
	for _, s := range labels {
		binary.BigEndian.PutUint64(l[:], uint64(len(s)))
		_, _ = h.Write(l[:])
		_, _ = h.Write([]byte(s))
	}
	return h.Sum(nil)
}

func counterBytes(label string, index uint64) []byte {
	b := make([]byte, len(label)+8)
	copy(b, label)
	binary.BigEndian.PutUint64(b[len(label):], index)
	return b
}
