///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package storage

import (
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
)

// number of lock stripes shared by all secret ids
const lockStripes = 64

// idLocks serializes composite operations on one secret. Ids map onto a fixed
// set of RW mutexes, so unrelated ids may share a stripe.
type idLocks struct {
	stripes [lockStripes]sync.RWMutex
}

func (l *idLocks) of(id uuid.UUID) *sync.RWMutex {
	h := fnv.New32a()
	_, _ = h.Write(id[:])
	return &l.stripes[h.Sum32()%lockStripes]
}
