///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

// Package interim keeps the values parties exchange while opening a
// multiplication check
package interim

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/sharestore/internal/fault"
	"gitlab.com/elixxir/sharestore/internal/share"
)

const (
	// DefaultTTL is how long an operation's values are kept
	DefaultTTL = 10 * time.Minute
	// DefaultPurgeInterval is how often Run drops expired operations
	DefaultPurgeInterval = time.Minute
)

type entry struct {
	values  []share.FactorPair
	created time.Time
}

// Cache holds interim values keyed by operation and player. Every
// (operation, player) slot can be written once.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mux        sync.RWMutex
	operations map[uuid.UUID]map[int]*entry
	// reconciled operations, refused until the ttl passes
	closed map[uuid.UUID]time.Time
}

// NewCache creates an empty cache. A ttl of zero uses DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:        ttl,
		now:        time.Now,
		operations: make(map[uuid.UUID]map[int]*entry),
		closed:     make(map[uuid.UUID]time.Time),
	}
}

// PutInterimValues stores one player's contribution to an operation. A second
// contribution by the same player to the same operation is a Conflict.
func (c *Cache) PutInterimValues(obj *share.MultiplicationExchangeObject) error {
	if err := obj.Validate(); err != nil {
		return err
	}

	c.mux.Lock()
	defer c.mux.Unlock()
	if _, done := c.closed[obj.OperationID]; done {
		return fault.Conflictf("operation %s has already been reconciled",
			obj.OperationID)
	}
	players, ok := c.operations[obj.OperationID]
	if !ok {
		players = make(map[int]*entry)
		c.operations[obj.OperationID] = players
	}
	if _, exists := players[obj.PlayerID]; exists {
		return fault.Conflictf("interim values of player %d for operation "+
			"%s have already been recorded", obj.PlayerID, obj.OperationID)
	}
	players[obj.PlayerID] = &entry{
		values:  share.CopyFactorPairs(obj.InterimValues),
		created: c.now(),
	}
	jww.DEBUG.Printf("Recorded %d interim values of player %d for "+
		"operation %s", len(obj.InterimValues), obj.PlayerID, obj.OperationID)
	return nil
}

// GetInterimValues returns a copy of one player's contribution
func (c *Cache) GetInterimValues(operationID uuid.UUID,
	playerID int) ([]share.FactorPair, error) {
	c.mux.RLock()
	defer c.mux.RUnlock()
	e, ok := c.operations[operationID][playerID]
	if !ok {
		return nil, fault.NotFoundf("no interim values of player %d for "+
			"operation %s", playerID, operationID)
	}
	return share.CopyFactorPairs(e.values), nil
}

// GetOperation returns copies of every contribution recorded for an
// operation, keyed by player
func (c *Cache) GetOperation(operationID uuid.UUID) map[int][]share.FactorPair {
	c.mux.RLock()
	defer c.mux.RUnlock()
	out := make(map[int][]share.FactorPair, len(c.operations[operationID]))
	for player, e := range c.operations[operationID] {
		out[player] = share.CopyFactorPairs(e.values)
	}
	return out
}

// DeleteOperation drops every contribution to an operation. Contributions
// arriving afterwards are a Conflict until the ttl has passed.
func (c *Cache) DeleteOperation(operationID uuid.UUID) {
	c.mux.Lock()
	defer c.mux.Unlock()
	delete(c.operations, operationID)
	c.closed[operationID] = c.now()
}

// Purge drops the contributions older than the ttl and returns how many were
// dropped
func (c *Cache) Purge() int {
	c.mux.Lock()
	defer c.mux.Unlock()
	purged := 0
	now := c.now()
	for op, players := range c.operations {
		for player, e := range players {
			if now.Sub(e.created) > c.ttl {
				delete(players, player)
				purged++
			}
		}
		if len(players) == 0 {
			delete(c.operations, op)
		}
	}
	for op, at := range c.closed {
		if now.Sub(at) > c.ttl {
			delete(c.closed, op)
		}
	}
	if purged > 0 {
		jww.INFO.Printf("Purged %d expired interim value sets", purged)
	}
	return purged
}

// Run purges every interval until ctx is done. An interval of zero uses
// DefaultPurgeInterval.
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}
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
