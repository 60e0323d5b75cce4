///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package state

import (
	"fmt"
)

// Status is the phase of one inter party open operation
type Status uint32

const (
	INITIATED = Status(iota)
	AWAITING_ACKS
	COMPLETE
	FAILED
	NUM_STATUS
)

// Stringer to get the name of the status, primarily for error prints
func (s Status) String() string {
	switch s {
	case INITIATED:
		return "INITIATED"
	case AWAITING_ACKS:
		return "AWAITING_ACKS"
	case COMPLETE:
		return "COMPLETE"
	case FAILED:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN STATUS: %d", s)
	}
}

// IsTerminal reports whether no transition leaves the status
func (s Status) IsTerminal() bool {
	return s == COMPLETE || s == FAILED
}
