///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

// Package delivery builds the output delivery objects handed to clients
// reconstructing a secret
package delivery

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/sharestore/internal/fault"
	"gitlab.com/elixxir/sharestore/internal/field"
	"gitlab.com/elixxir/sharestore/internal/share"
	"gitlab.com/elixxir/sharestore/internal/tuple"
)

// Drawer hands out single use tuples. Implemented by *tuple.Pool.
type Drawer interface {
	Draw(ctx context.Context, n int) ([]tuple.Tuple, error)
}

// Engine computes output delivery objects from multiplication triples
type Engine struct {
	field   *field.Field
	triples Drawer
}

// NewEngine creates an engine drawing from the multiplication triple pool
func NewEngine(f *field.Field, triples Drawer) *Engine {
	return &Engine{
		field:   f,
		triples: triples,
	}
}

// ComputeOutputDeliveryObject builds the output delivery object for a stored
// secret share
func (e *Engine) ComputeOutputDeliveryObject(ctx context.Context,
	secret *share.SecretShare, requestID uuid.UUID) (*share.OutputDeliveryObject, error) {
	if secret == nil {
		return nil, fault.InvalidArgumentf("secret share must not be null")
	}
	odo, err := e.Compute(ctx, secret.Data, requestID)
	if err != nil {
		return nil, errors.WithMessagef(err, "could not compute output "+
			"delivery object for secret %s", secret.ID)
	}
	return odo, nil
}

// Compute builds the output delivery object for raw share data. One
// multiplication triple is consumed per word: its a share becomes r and its
// b share becomes v, and w = y*r, u = v*r.
//
// Every word is validated before any triple is drawn. Triples which have been
// drawn are consumed even if the computation fails afterwards.
func (e *Engine) Compute(ctx context.Context, data []byte,
	requestID uuid.UUID) (*share.OutputDeliveryObject, error) {
	if requestID == uuid.Nil {
		return nil, fault.InvalidArgumentf("request identifier must not be null")
	}
	words, err := field.Split(data)
	if err != nil {
		return nil, fault.Wrap(fault.InvalidArgument, err, "invalid secret "+
			"share data")
	}
	for i, w := range words {
		if _, err = e.field.Decode(w); err != nil {
			return nil, fault.Wrap(fault.InvalidArgument, err, "word %d is "+
				"not a field element", i)
		}
	}

	triples, err := e.triples.Draw(ctx, len(words))
	if err != nil {
		return nil, errors.WithMessagef(err, "could not draw %d "+
			"multiplication triples for request %s", len(words), requestID)
	}
	if jww.GetLogThreshold() <= jww.LevelDebug {
		ids := make([]string, len(triples))
		for i, t := range triples {
			ids[i] = t.ID.String()
		}
		jww.DEBUG.Printf("Request %s consumed multiplication triples %v",
			requestID, ids)
	}

	n := len(data)
	r := make([]byte, 0, n)
	v := make([]byte, 0, n)
	w := make([]byte, 0, n)
	u := make([]byte, 0, n)
	for i, y := range words {
		t := triples[i]
		if len(t.Shares) < 2 {
			return nil, fault.New(fault.Internal, "multiplication triple %s "+
				"holds %d shares", t.ID, len(t.Shares))
		}
		ri := t.Shares[0].Value
		vi := t.Shares[1].Value
		wi, err := e.field.Mul(y, ri)
		if err != nil {
			return nil, fault.Wrap(fault.Internal, err, "could not compute w "+
				"for word %d", i)
		}
		ui, err := e.field.Mul(vi, ri)
		if err != nil {
			return nil, fault.Wrap(fault.Internal, err, "could not compute u "+
				"for word %d", i)
		}
		r = append(r, ri...)
		v = append(v, vi...)
		w = append(w, wi...)
		u = append(u, ui...)
	}

	odo, err := share.NewOutputDeliveryObject(append([]byte(nil), data...),
		r, v, w, u)
	if err != nil {
		return nil, err
	}
	jww.INFO.Printf("Computed output delivery object of %d words for "+
		"request %s", odo.Words(), requestID)
	return odo, nil
}
