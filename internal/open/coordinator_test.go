///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package open

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cronokirby/saferith"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gitlab.com/elixxir/sharestore/internal/fault"
	"gitlab.com/elixxir/sharestore/internal/field"
	"gitlab.com/elixxir/sharestore/internal/interim"
	"gitlab.com/elixxir/sharestore/internal/share"
)

// uintWord encodes a small plain value
func uintWord(f *field.Field, v uint64) []byte {
	return f.Encode(new(saferith.Nat).SetUint64(v))
}

type mockSibling struct {
	endpoint string
	err      error
	block    bool

	mux      sync.Mutex
	received []*share.MultiplicationExchangeObject
}

func (s *mockSibling) Endpoint() string { return s.endpoint }

func (s *mockSibling) Open(ctx context.Context,
	obj *share.MultiplicationExchangeObject) error {
	s.mux.Lock()
	s.received = append(s.received, obj)
	s.mux.Unlock()
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func (s *mockSibling) calls() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return len(s.received)
}

func newSiblings(n int) []*mockSibling {
	out := make([]*mockSibling, n)
	for i := range out {
		out[i] = &mockSibling{endpoint: "party" + string(rune('1'+i)) + ":10000"}
	}
	return out
}

func asSiblings(in []*mockSibling) []Sibling {
	out := make([]Sibling, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func testObject() *share.MultiplicationExchangeObject {
	f := field.Default()
	return &share.MultiplicationExchangeObject{
		OperationID: uuid.New(),
		PlayerID:    0,
		InterimValues: []share.FactorPair{
			{A: uintWord(f, 3), B: uintWord(f, 4)},
		},
	}
}

// Happy path
func TestCoordinator_Open(t *testing.T) {
	siblings := newSiblings(3)
	local := interim.NewCache(0)
	c := NewCoordinator(asSiblings(siblings), local, time.Second)
	obj := testObject()

	if err := c.Open(context.Background(), obj); err != nil {
		t.Fatalf("Open failed: %+v", err)
	}
	for i, s := range siblings {
		if s.calls() != 1 {
			t.Errorf("Sibling %d was called %d times", i, s.calls())
		}
	}
	own, err := local.GetInterimValues(obj.OperationID, obj.PlayerID)
	if err != nil {
		t.Fatalf("Own values were not recorded: %+v", err)
	}
	if !reflect.DeepEqual(own, obj.InterimValues) {
		t.Errorf("Recorded values differ")
	}
	if _, running := c.Status(obj.OperationID); running {
		t.Errorf("Finished operation is still tracked")
	}
}

// Error path: the third of three siblings fails
func TestCoordinator_Open_OneSiblingFails(t *testing.T) {
	siblings := newSiblings(3)
	siblings[2].err = errors.New("connection refused")
	c := NewCoordinator(asSiblings(siblings), nil, time.Second)

	err := c.Open(context.Background(), testObject())
	if !fault.Is(err, fault.RemoteFailure) {
		t.Fatalf("Expected a remote failure, got %v", err)
	}
	var rf *RemoteFailure
	if !errors.As(err, &rf) {
		t.Fatalf("Error is not a *RemoteFailure: %T", err)
	}
	if !reflect.DeepEqual(rf.Endpoints(), []string{siblings[2].endpoint}) {
		t.Errorf("Expected only %s to be listed, got %v",
			siblings[2].endpoint, rf.Endpoints())
	}
	if !strings.HasPrefix(err.Error(), "At least one request has failed:") ||
		!strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Unexpected message: %s", err)
	}
	for i := 0; i < 2; i++ {
		if siblings[i].calls() != 1 {
			t.Errorf("Sibling %d was not invoked", i)
		}
	}
}

// Failures are listed in configured order whatever order they arrive in
func TestCoordinator_Open_FailureOrder(t *testing.T) {
	siblings := newSiblings(4)
	siblings[0].block = true
	siblings[3].err = errors.New("refused")
	c := NewCoordinator(asSiblings(siblings), nil, 50*time.Millisecond)

	err := c.Open(context.Background(), testObject())
	var rf *RemoteFailure
	if !errors.As(err, &rf) {
		t.Fatalf("Expected a *RemoteFailure, got %v", err)
	}
	expected := []string{siblings[0].endpoint, siblings[3].endpoint}
	if !reflect.DeepEqual(rf.Endpoints(), expected) {
		t.Errorf("Expected %v, got %v", expected, rf.Endpoints())
	}
	if !errors.Is(rf.Failures[0].Err, context.DeadlineExceeded) {
		t.Errorf("Blocked sibling should have timed out, got %v",
			rf.Failures[0].Err)
	}
}

// Error path: nothing is sent for an invalid object
func TestCoordinator_Open_InvalidArgument(t *testing.T) {
	siblings := newSiblings(2)
	c := NewCoordinator(asSiblings(siblings), nil, time.Second)

	nilOp := testObject()
	nilOp.OperationID = uuid.Nil
	for _, obj := range []*share.MultiplicationExchangeObject{nil, nilOp} {
		if err := c.Open(context.Background(), obj); !fault.Is(err, fault.InvalidArgument) {
			t.Errorf("Expected invalid argument, got %v", err)
		}
	}
	for i, s := range siblings {
		if s.calls() != 0 {
			t.Errorf("Sibling %d was called for an invalid object", i)
		}
	}
}

// Error path: a second open of the same values fails before the fan out
func TestCoordinator_Open_LocalConflict(t *testing.T) {
	siblings := newSiblings(1)
	c := NewCoordinator(asSiblings(siblings), interim.NewCache(0), time.Second)
	obj := testObject()
	if err := c.Open(context.Background(), obj); err != nil {
		t.Fatalf("First open failed: %+v", err)
	}
	if err := c.Open(context.Background(), obj); !fault.Is(err, fault.Conflict) {
		t.Errorf("Expected conflict, got %v", err)
	}
	if siblings[0].calls() != 1 {
		t.Errorf("Conflicting open reached the sibling")
	}
}

// Error path: a failed open cannot be repeated under the same operation id
func TestCoordinator_Open_RetryAfterFailure(t *testing.T) {
	siblings := newSiblings(2)
	siblings[1].err = errors.New("unavailable")
	c := NewCoordinator(asSiblings(siblings), interim.NewCache(0), time.Second)
	obj := testObject()
	if err := c.Open(context.Background(), obj); !fault.Is(err, fault.RemoteFailure) {
		t.Fatalf("Expected a remote failure, got %v", err)
	}

	siblings[1].err = nil
	if err := c.Open(context.Background(), obj); !fault.Is(err, fault.Conflict) {
		t.Errorf("Expected conflict on retry with the same id, got %v", err)
	}
	if siblings[1].calls() != 1 {
		t.Errorf("Retry with the same id reached the sibling")
	}

	retry := *obj
	retry.OperationID = uuid.New()
	if err := c.Open(context.Background(), &retry); err != nil {
		t.Errorf("Retry with a new id failed: %+v", err)
	}
	if siblings[1].calls() != 2 {
		t.Errorf("Expected the sibling to see 2 opens, got %d",
			siblings[1].calls())
	}
}

func TestCoordinator_Open_NoSiblings(t *testing.T) {
	c := NewCoordinator(nil, nil, 0)
	if err := c.Open(context.Background(), testObject()); err != nil {
		t.Errorf("Open without siblings failed: %+v", err)
	}
}
