///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package tuple

// pool.go contains the single use tuple stock and its background refill

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/sharestore/internal/fault"
	"gitlab.com/elixxir/sharestore/internal/field"
)

// Params controls the stock level of a Pool
type Params struct {
	// Refill is triggered when the stock drops below LowWater
	LowWater int
	// Minimum number of tuples requested from the source per refill
	BatchSize int
	// How long a draw waits for a refill before giving up
	WaitTimeout time.Duration
	// Largest number of tuples one draw may take. Also bounds a single pull
	// from the source unless BatchSize is larger.
	MaxDraw int
	// Number of granted tuple ids remembered to reject a source handing out
	// the same tuple twice
	HistorySize int
}

// DefaultParams returns the stock levels used in production. NewPool replaces
// any zero value except LowWater with these defaults; a zero LowWater is kept
// and disables prefetching.
func DefaultParams() Params {
	return Params{
		LowWater:    100,
		BatchSize:   1000,
		WaitTimeout: 5 * time.Second,
		MaxDraw:     100000,
		HistorySize: 100000,
	}
}

// bounds of the delay between pulls after the source failed
const (
	refillRetryMin = 50 * time.Millisecond
	refillRetryMax = time.Second
)

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.LowWater < 0 {
		p.LowWater = 0
	}
	if p.BatchSize <= 0 {
		p.BatchSize = d.BatchSize
	}
	if p.WaitTimeout <= 0 {
		p.WaitTimeout = d.WaitTimeout
	}
	if p.MaxDraw <= 0 {
		p.MaxDraw = d.MaxDraw
	}
	if p.HistorySize <= 0 {
		p.HistorySize = d.HistorySize
	}
	return p
}

// Pool is the stock of unconsumed tuples of one kind.
//
// Draw removes tuples from the stock under the pool's mutex, so a tuple is
// part of at most one grant. Refills run in a single background goroutine and
// only append to the stock under the same mutex; the mutex is never held
// while the source is being called.
type Pool struct {
	kind   Kind
	source Source
	params Params

	mux      sync.Mutex
	stock    []Tuple
	inStock  map[uuid.UUID]struct{}
	history  *idHistory
	demand   int
	refilled chan struct{}

	wake      chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewPool starts a pool for kind backed by source. Call Close to stop the
// refill goroutine.
func NewPool(kind Kind, source Source, params Params) *Pool {
	params = params.withDefaults()
	p := &Pool{
		kind:     kind,
		source:   source,
		params:   params,
		inStock:  make(map[uuid.UUID]struct{}),
		history:  newIDHistory(params.HistorySize),
		refilled: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.refillLoop()
	p.trigger()
	return p
}

// Kind returns the tuple type held by the pool
func (p *Pool) Kind() Kind {
	return p.kind
}

// Len returns the number of tuples currently in stock
func (p *Pool) Len() int {
	p.mux.Lock()
	defer p.mux.Unlock()
	return len(p.stock)
}

// Draw removes n tuples from the stock and returns them in stock order. If
// fewer are available it waits for refills up to the pool's wait timeout or
// until ctx is done, then fails with ResourceExhausted. Asking for more than
// MaxDraw tuples fails at once with ResourceExhausted. Drawn tuples are never
// returned to the stock.
func (p *Pool) Draw(ctx context.Context, n int) ([]Tuple, error) {
	if n <= 0 {
		return nil, fault.InvalidArgumentf("number of %s tuples to draw "+
			"must be positive, got %d", p.kind, n)
	}
	if n > p.params.MaxDraw {
		return nil, fault.ResourceExhaustedf("cannot draw %d %s tuples, at "+
			"most %d can be drawn at once", n, p.kind, p.params.MaxDraw)
	}

	timer := time.NewTimer(p.params.WaitTimeout)
	defer timer.Stop()

	waiting := false
	defer func() {
		if waiting {
			p.mux.Lock()
			p.demand -= n
			p.mux.Unlock()
		}
	}()

	for {
		p.mux.Lock()
		if len(p.stock) >= n {
			grant := p.take(n)
			if waiting {
				p.demand -= n
				waiting = false
			}
			low := len(p.stock) < p.params.LowWater
			p.mux.Unlock()
			if low {
				p.trigger()
			}
			return grant, nil
		}
		if !waiting {
			p.demand += n
			waiting = true
		}
		refilled := p.refilled
		available := len(p.stock)
		p.mux.Unlock()

		p.trigger()

		select {
		case <-refilled:
		case <-timer.C:
			return nil, fault.ResourceExhaustedf("only %d of %d requested %s "+
				"tuples available after waiting %s", available, n, p.kind,
				p.params.WaitTimeout)
		case <-ctx.Done():
			return nil, fault.Wrap(fault.ResourceExhausted, ctx.Err(),
				"gave up waiting for %d %s tuples", n, p.kind)
		case <-p.quit:
			return nil, fault.ResourceExhaustedf("%s pool is closed", p.kind)
		}
	}
}

// take removes the first n tuples. Must be called with the mutex held.
func (p *Pool) take(n int) []Tuple {
	grant := make([]Tuple, n)
	copy(grant, p.stock[:n])
	for i := 0; i < n; i++ {
		delete(p.inStock, p.stock[i].ID)
		p.stock[i] = Tuple{}
	}
	p.stock = p.stock[n:]
	return grant
}

// Close stops the refill goroutine and wakes any blocked draws
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.quit)
	})
	<-p.done
}

func (p *Pool) trigger() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Pool) refillLoop() {
	defer close(p.done)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for {
		select {
		case <-p.quit:
			return
		case <-p.wake:
			p.refill(ctx)
		}
	}
}

// refill pulls from the source until the stock covers the low water mark
// plus the demand of blocked draws. A failed pull is retried with a growing
// delay for as long as draws are waiting.
func (p *Pool) refill(ctx context.Context) {
	retry := refillRetryMin
	for {
		p.mux.Lock()
		deficit := p.params.LowWater + p.demand - len(p.stock)
		p.mux.Unlock()
		if deficit <= 0 {
			return
		}

		n := deficit
		if n > p.params.MaxDraw {
			n = p.params.MaxDraw
		}
		if n < p.params.BatchSize {
			n = p.params.BatchSize
		}

		pullCtx, cancel := context.WithTimeout(ctx, p.params.WaitTimeout)
		tuples, err := p.source.Pull(pullCtx, p.kind, n)
		cancel()
		if err != nil {
			jww.WARN.Printf("Failed to pull %d %s tuples: %+v", n, p.kind, err)
			if !p.waiting() {
				return
			}
			select {
			case <-p.quit:
				return
			case <-time.After(retry):
			}
			if retry *= 2; retry > refillRetryMax {
				retry = refillRetryMax
			}
			continue
		}
		retry = refillRetryMin

		added := p.add(tuples)
		jww.DEBUG.Printf("Refilled %s pool with %d of %d pulled tuples",
			p.kind, added, len(tuples))
		if added == 0 {
			return
		}

		select {
		case <-p.quit:
			return
		default:
		}
	}
}

// waiting reports whether any draw is blocked on a refill
func (p *Pool) waiting() bool {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.demand > 0
}

// add appends well formed tuples which have never been seen before and wakes
// the blocked draws
func (p *Pool) add(tuples []Tuple) int {
	p.mux.Lock()
	defer p.mux.Unlock()

	added := 0
	for _, t := range tuples {
		if err := p.check(t); err != nil {
			jww.WARN.Printf("Discarding tuple %s: %+v", t.ID, err)
			continue
		}
		if _, dup := p.inStock[t.ID]; dup || p.history.contains(t.ID) {
			jww.WARN.Printf("Discarding %s tuple %s which was already "+
				"handed out or is in stock", p.kind, t.ID)
			continue
		}
		p.inStock[t.ID] = struct{}{}
		p.history.add(t.ID)
		p.stock = append(p.stock, t)
		added++
	}

	if added > 0 {
		close(p.refilled)
		p.refilled = make(chan struct{})
	}
	return added
}

func (p *Pool) check(t Tuple) error {
	if t.ID == uuid.Nil {
		return fault.InvalidArgumentf("tuple has no identifier")
	}
	if t.Kind != p.kind {
		return fault.InvalidArgumentf("expected a %s tuple, got %s", p.kind, t.Kind)
	}
	if len(t.Shares) != p.kind.Arity() {
		return fault.InvalidArgumentf("%s tuple must hold %d shares, got %d",
			p.kind, p.kind.Arity(), len(t.Shares))
	}
	for _, s := range t.Shares {
		if len(s.Value) != field.WordWidth {
			return fault.InvalidArgumentf("tuple share is %d bytes, "+
				"expected %d", len(s.Value), field.WordWidth)
		}
	}
	return nil
}

// idHistory remembers the most recent ids added to a pool
type idHistory struct {
	ring []uuid.UUID
	set  map[uuid.UUID]struct{}
	next int
}

func newIDHistory(size int) *idHistory {
	return &idHistory{
		ring: make([]uuid.UUID, size),
		set:  make(map[uuid.UUID]struct{}, size),
	}
}

func (h *idHistory) contains(id uuid.UUID) bool {
	_, ok := h.set[id]
	return ok
}

func (h *idHistory) add(id uuid.UUID) {
	if old := h.ring[h.next]; old != uuid.Nil {
		delete(h.set, old)
	}
	h.ring[h.next] = id
	h.set[id] = struct{}{}
	h.next = (h.next + 1) % len(h.ring)
}
