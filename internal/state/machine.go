///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

// Package state holds the state machine tracking one inter party open
// operation. Valid transitions are
//
//	INITIATED -> AWAITING_ACKS | FAILED
//	AWAITING_ACKS -> COMPLETE | FAILED
//
// COMPLETE and FAILED are terminal.
package state

import (
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// Machine is the state object of one operation
type Machine struct {
	//holds the state
	status Status
	//mux to ensure proper access to state
	mux sync.RWMutex

	//holds valid state transitions
	stateMap [NUM_STATUS][NUM_STATUS]bool

	// label used in logs
	name string
}

// NewMachine creates a machine in INITIATED for the named operation
func NewMachine(name string) *Machine {
	m := &Machine{
		status: INITIATED,
		name:   name,
	}

	m.addStateTransition(INITIATED, AWAITING_ACKS, FAILED)
	m.addStateTransition(AWAITING_ACKS, COMPLETE, FAILED)

	return m
}

// adds a state transition to the state object
func (m *Machine) addStateTransition(from Status, to ...Status) {
	for _, t := range to {
		m.stateMap[from][t] = true
	}
}

// Get returns the current status under a read lock
func (m *Machine) Get() Status {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return m.status
}

// Update moves to nextStatus if that is a valid transition from the current
// status. It returns false and an error explaining why if the update cannot
// be done.
func (m *Machine) Update(nextStatus Status) (bool, error) {
	m.mux.Lock()
	defer m.mux.Unlock()

	// check if the requested state change is valid
	if nextStatus >= NUM_STATUS || !m.stateMap[m.status][nextStatus] {
		return false, errors.Errorf("not a valid state change from "+
			"%s to %s", m.status, nextStatus)
	}

	jww.DEBUG.Printf("Operation %s updating from %s to %s", m.name,
		m.status, nextStatus)
	m.status = nextStatus

	return true, nil
}
