///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

// Package open distributes this party's interim values of a multiplication
// check to every sibling party
package open

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/sharestore/internal/fault"
	"gitlab.com/elixxir/sharestore/internal/measure"
	"gitlab.com/elixxir/sharestore/internal/share"
	"gitlab.com/elixxir/sharestore/internal/state"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a whole fan out
const DefaultTimeout = 10 * time.Second

// Sibling is another party's inter party endpoint. Implemented by *io.Sibling.
type Sibling interface {
	Endpoint() string
	Open(ctx context.Context, obj *share.MultiplicationExchangeObject) error
}

// Recorder stores this party's own contribution. Implemented by
// *interim.Cache.
type Recorder interface {
	PutInterimValues(obj *share.MultiplicationExchangeObject) error
}

// Coordinator runs open operations
type Coordinator struct {
	siblings []Sibling
	local    Recorder
	timeout  time.Duration

	mux      sync.Mutex
	inFlight map[uuid.UUID]*state.Machine
}

// NewCoordinator creates a coordinator for the given siblings. local may be
// nil, in which case the party's own values are not recorded. A timeout of
// zero uses DefaultTimeout.
func NewCoordinator(siblings []Sibling, local Recorder,
	timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Coordinator{
		siblings: append([]Sibling(nil), siblings...),
		local:    local,
		timeout:  timeout,
		inFlight: make(map[uuid.UUID]*state.Machine),
	}
}

// Status returns the state of an operation which is still running
func (c *Coordinator) Status(operationID uuid.UUID) (state.Status, bool) {
	c.mux.Lock()
	m, ok := c.inFlight[operationID]
	c.mux.Unlock()
	if !ok {
		return 0, false
	}
	return m.Get(), true
}

// Open sends obj to every sibling concurrently and waits for all of them or
// the timeout. A failing sibling does not stop the others; if any failed the
// returned *RemoteFailure names all of them. Nothing is retried.
//
// An operation id is single use. Once the local values are recorded a second
// Open with the same id is a Conflict even if the first one failed at the
// siblings, so a caller retrying a failed open must use a new operation id.
func (c *Coordinator) Open(ctx context.Context,
	obj *share.MultiplicationExchangeObject) error {
	if obj == nil {
		return fault.InvalidArgumentf("multiplication exchange object must " +
			"not be null")
	}
	if err := obj.Validate(); err != nil {
		return err
	}

	metrics := measure.NewMetrics(obj.OperationID.String())
	metrics.Measure(measure.TagOpenStart)

	m, err := c.begin(obj.OperationID)
	if err != nil {
		return err
	}
	defer c.end(obj.OperationID)

	if c.local != nil {
		if err = c.local.PutInterimValues(obj); err != nil {
			c.update(m, state.FAILED)
			return errors.WithMessagef(err, "could not record own interim "+
				"values for operation %s", obj.OperationID)
		}
		metrics.Measure(measure.TagLocalRecorded)
	}

	c.update(m, state.AWAITING_ACKS)
	metrics.Measure(measure.TagFanOut)

	fanCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	results := make([]error, len(c.siblings))
	var g errgroup.Group
	for i, s := range c.siblings {
		i, s := i, s
		g.Go(func() error {
			results[i] = s.Open(fanCtx, obj)
			return results[i]
		})
	}
	_ = g.Wait()
	metrics.Measure(measure.TagSiblingsDone)
	if d, ok := metrics.Elapsed(measure.TagFanOut, measure.TagSiblingsDone); ok {
		jww.DEBUG.Printf("Siblings answered operation %s in %s",
			obj.OperationID, d)
	}

	var failures []EndpointFailure
	for i, err := range results {
		if err != nil {
			failures = append(failures, EndpointFailure{
				Endpoint: c.siblings[i].Endpoint(),
				Err:      err,
			})
		}
	}

	if len(failures) > 0 {
		c.update(m, state.FAILED)
		metrics.Measure(measure.TagOpenFailed)
		rf := &RemoteFailure{OperationID: obj.OperationID, Failures: failures}
		jww.WARN.Printf("Open of operation %s failed at %d of %d "+
			"siblings: %v", obj.OperationID, len(failures), len(c.siblings), rf)
		return rf
	}

	c.update(m, state.COMPLETE)
	metrics.Measure(measure.TagOpenComplete)
	jww.INFO.Printf("Opened operation %s at %d siblings", obj.OperationID,
		len(c.siblings))
	jww.DEBUG.Printf("Open timings: %s", metrics)
	return nil
}

func (c *Coordinator) begin(operationID uuid.UUID) (*state.Machine, error) {
	c.mux.Lock()
	defer c.mux.Unlock()
	if _, ok := c.inFlight[operationID]; ok {
		return nil, fault.Conflictf("operation %s is already being opened",
			operationID)
	}
	m := state.NewMachine(operationID.String())
	c.inFlight[operationID] = m
	return m, nil
}

func (c *Coordinator) end(operationID uuid.UUID) {
	c.mux.Lock()
	defer c.mux.Unlock()
	delete(c.inFlight, operationID)
}

func (c *Coordinator) update(m *state.Machine, next state.Status) {
	if _, err := m.Update(next); err != nil {
		jww.ERROR.Printf("Open state machine: %+v", err)
	}
}
