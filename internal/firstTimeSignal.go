///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package internal

// firstTimeSignal.go contains a signal which fires once, used to hold the
// node back until the tuple pools are stocked

import (
	"sync"
	"time"

	jww "github.com/spf13/jwalterweatherman"
)

type FirstTime struct {
	c chan struct{}
	sync.Once
}

// NewFirstTime is a constructor of the FirstTime object
func NewFirstTime() *FirstTime {
	return &FirstTime{
		c: make(chan struct{}),
	}
}

// Send fires the signal. Only the first call has an effect.
func (ft *FirstTime) Send() {
	ft.Once.Do(func() {
		close(ft.c)
	})
}

// Receive blocks until the signal fires, logging every duration to notify
// it is still waiting. It returns false if limit passes first; a limit of
// zero waits forever.
func (ft *FirstTime) Receive(duration, limit time.Duration, reason string) bool {
	jww.INFO.Printf("Waiting on %s to continue", reason)
	ticker := time.NewTicker(duration)
	defer ticker.Stop()

	var timeout <-chan time.Time
	if limit > 0 {
		timer := time.NewTimer(limit)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		select {
		case <-ft.c:
			return true
		case <-ticker.C:
			jww.WARN.Printf("Still waiting on %s to continue", reason)
		case <-timeout:
			jww.WARN.Printf("Gave up waiting on %s after %s", reason, limit)
			return false
		}
	}
}
