///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

// Package inputmask hands out input masks to clients and remembers which
// masks were given for which request until the masked input is uploaded
package inputmask

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/sharestore/internal/fault"
	"gitlab.com/elixxir/sharestore/internal/field"
	"gitlab.com/elixxir/sharestore/internal/share"
	"gitlab.com/elixxir/sharestore/internal/tuple"
)

// DefaultReservationTTL is how long masks handed to a client stay claimable
const DefaultReservationTTL = 10 * time.Minute

// Drawer hands out single use input mask tuples. Implemented by *tuple.Pool.
type Drawer interface {
	Draw(ctx context.Context, n int) ([]tuple.Tuple, error)
}

// Verifier turns share data into an output delivery object. Implemented by
// *delivery.Engine.
type Verifier interface {
	Compute(ctx context.Context, data []byte,
		requestID uuid.UUID) (*share.OutputDeliveryObject, error)
}

type reservation struct {
	masks   [][]byte
	created time.Time
	// set while the masks are still being drawn
	pending bool
}

// Cache serves input masks and tracks their reservations
type Cache struct {
	masks    Drawer
	verifier Verifier
	ttl      time.Duration
	now      func() time.Time

	mux          sync.Mutex
	reservations map[uuid.UUID]*reservation
}

// NewCache creates a cache drawing masks from the input mask pool. A ttl of
// zero uses DefaultReservationTTL.
func NewCache(masks Drawer, verifier Verifier, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultReservationTTL
	}
	return &Cache{
		masks:        masks,
		verifier:     verifier,
		ttl:          ttl,
		now:          time.Now,
		reservations: make(map[uuid.UUID]*reservation),
	}
}

// GetInputMasksAsOutputDeliveryObject draws count input masks for requestID
// and returns them as an output delivery object the client can verify. The
// masks stay reserved for requestID until claimed or expired; asking twice
// for the same request is a Conflict.
func (c *Cache) GetInputMasksAsOutputDeliveryObject(ctx context.Context,
	requestID uuid.UUID, count int) (*share.OutputDeliveryObject, error) {
	if requestID == uuid.Nil {
		return nil, fault.InvalidArgumentf("request identifier must not be null")
	}
	if count <= 0 {
		return nil, fault.InvalidArgumentf("the number of requested input "+
			"masks has to be 1 or greater, got %d", count)
	}

	c.mux.Lock()
	if _, exists := c.reservations[requestID]; exists {
		c.mux.Unlock()
		return nil, fault.Conflictf("input masks have already been handed "+
			"out for request %s", requestID)
	}
	res := &reservation{created: c.now(), pending: true}
	c.reservations[requestID] = res
	c.mux.Unlock()

	odo, masks, err := c.compute(ctx, requestID, count)
	c.mux.Lock()
	defer c.mux.Unlock()
	if err != nil {
		delete(c.reservations, requestID)
		return nil, err
	}
	res.masks = masks
	res.pending = false
	res.created = c.now()
	jww.INFO.Printf("Reserved %d input masks for request %s", count, requestID)
	return odo, nil
}

func (c *Cache) compute(ctx context.Context, requestID uuid.UUID,
	count int) (*share.OutputDeliveryObject, [][]byte, error) {
	tuples, err := c.masks.Draw(ctx, count)
	if err != nil {
		return nil, nil, errors.WithMessagef(err, "could not draw %d input "+
			"masks for request %s", count, requestID)
	}
	masks := make([][]byte, len(tuples))
	for i, t := range tuples {
		masks[i] = append([]byte(nil), t.Shares[0].Value...)
	}
	jww.DEBUG.Printf("Request %s consumed %d input mask tuples starting "+
		"with %s", requestID, len(tuples), tuples[0].ID)

	odo, err := c.verifier.Compute(ctx, field.Join(masks), requestID)
	if err != nil {
		return nil, nil, err
	}
	return odo, masks, nil
}

// ClaimInputMasks removes and returns the masks reserved for requestID. It
// succeeds at most once per reservation.
func (c *Cache) ClaimInputMasks(requestID uuid.UUID, count int) ([][]byte, error) {
	if requestID == uuid.Nil {
		return nil, fault.InvalidArgumentf("request identifier must not be null")
	}
	c.mux.Lock()
	defer c.mux.Unlock()

	res, ok := c.reservations[requestID]
	if !ok || res.pending || c.expired(res) {
		return nil, fault.NotFoundf("no input masks are reserved for "+
			"request %s", requestID)
	}
	if len(res.masks) != count {
		return nil, fault.InvalidArgumentf("request %s reserved %d input "+
			"masks but %d values were supplied", requestID, len(res.masks),
			count)
	}
	delete(c.reservations, requestID)
	return res.masks, nil
}

// Len returns the number of live reservations
func (c *Cache) Len() int {
	c.mux.Lock()
	defer c.mux.Unlock()
	return len(c.reservations)
}

func (c *Cache) expired(res *reservation) bool {
	return c.now().Sub(res.created) > c.ttl
}

// Purge drops expired reservations and returns how many were dropped
func (c *Cache) Purge() int {
	c.mux.Lock()
	defer c.mux.Unlock()
	purged := 0
	for id, res := range c.reservations {
		if !res.pending && c.expired(res) {
			delete(c.reservations, id)
			purged++
		}
	}
	if purged > 0 {
		jww.INFO.Printf("Dropped %d unclaimed input mask reservations", purged)
	}
	return purged
}

// Run purges every interval until ctx is done
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Purge()
		}
	}
}
