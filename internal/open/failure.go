///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package open

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gitlab.com/elixxir/sharestore/internal/fault"
)

// EndpointFailure is the error one sibling returned
type EndpointFailure struct {
	Endpoint string
	Err      error
}

// RemoteFailure lists every sibling which did not accept an operation's
// values, in configured endpoint order
type RemoteFailure struct {
	OperationID uuid.UUID
	Failures    []EndpointFailure
}

func (e *RemoteFailure) Error() string {
	var b strings.Builder
	b.WriteString("At least one request has failed:")
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "\n\t%s: %v", f.Endpoint, f.Err)
	}
	return b.String()
}

// Kind tags the error for fault.KindOf
func (e *RemoteFailure) Kind() fault.Kind {
	return fault.RemoteFailure
}

// Endpoints returns the failed endpoints in order
func (e *RemoteFailure) Endpoints() []string {
	out := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Endpoint
	}
	return out
}
