///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

// Package io contains the gRPC services of the node, the handlers behind
// them and the clients used to reach other parties
package io

// codec.go contains the wire encoding shared by the server and its clients

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// CodecName is the content subtype every call is made with
const CodecName = "cbor"

var encMode, decMode = buildModes()

func buildModes() (cbor.EncMode, cbor.DecMode) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	dec, err := cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements: 1 << 20,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return enc, dec
}

// codec implements encoding.Codec with deterministic CBOR
type codec struct{}

func (codec) Marshal(v interface{}) ([]byte, error) {
	b, err := encMode.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(err, "could not encode %T", v)
	}
	return b, nil
}

func (codec) Unmarshal(data []byte, v interface{}) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "could not decode %T", v)
	}
	return nil
}

func (codec) Name() string {
	return CodecName
}
