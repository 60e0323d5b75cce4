///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

// Package share holds the records exchanged between clients and the
// computing parties: secret shares and their tags, masked inputs, output
// delivery objects and interim values of the multiplication check.
package share

import (
	"github.com/google/uuid"
	"gitlab.com/elixxir/sharestore/internal/fault"
	"gitlab.com/elixxir/sharestore/internal/field"
)

// SecretShare is this party's share of a secret. Data is a concatenation of
// field words.
type SecretShare struct {
	ID   uuid.UUID
	Data []byte
	Tags []Tag
}

// Metadata is a SecretShare without its payload
type Metadata struct {
	ID   uuid.UUID
	Tags []Tag
}

// Metadata projects the share onto its metadata
func (s *SecretShare) Metadata() Metadata {
	return Metadata{ID: s.ID, Tags: CopyTags(s.Tags)}
}

// Validate checks the invariants every stored share satisfies
func (s *SecretShare) Validate() error {
	if s == nil {
		return fault.InvalidArgumentf("secret share must not be nil")
	}
	if s.ID == uuid.Nil {
		return fault.InvalidArgumentf("secret share identifier must not be empty")
	}
	if err := field.CheckLength(s.Data); err != nil {
		return fault.Wrap(fault.InvalidArgument, err,
			"invalid data for secret share %s", s.ID)
	}
	return ValidateTags(s.Tags)
}

// MaskedInput is a client value masked with an input mask the client
// obtained earlier under the same identifier
type MaskedInput struct {
	ID   uuid.UUID
	Data [][]byte
	Tags []Tag
}

// Validate checks that the masked input can be turned into a share
func (m *MaskedInput) Validate() error {
	if m == nil {
		return fault.InvalidArgumentf("masked input must not be nil")
	}
	if m.ID == uuid.Nil {
		return fault.InvalidArgumentf("masked input identifier must not be empty")
	}
	if len(m.Data) == 0 {
		return fault.InvalidArgumentf("masked input data must not be empty")
	}
	for i, d := range m.Data {
		if len(d) != field.WordWidth {
			return fault.InvalidArgumentf("masked input value %d has length "+
				"%d, expected %d", i, len(d), field.WordWidth)
		}
	}
	return ValidateTags(m.Tags)
}

// Page is one page of a metadata listing
type Page struct {
	Content       []Metadata
	Number        int
	Size          int
	TotalElements int64
	TotalPages    int
}
