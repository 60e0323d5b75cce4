///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package internal

import (
	"time"

	"gitlab.com/elixxir/sharestore/internal/field"
	"gitlab.com/elixxir/sharestore/internal/tuple"
	"gitlab.com/elixxir/sharestore/storage"
)

// Definition holds everything the node needs to build its instance. In
// cmd/node.go it is filled out from the parsed configuration.
type Definition struct {
	// Index of this party among the parties of the network
	PlayerID int

	//String containing the local address and port to listen on
	Address string
	// Inter party endpoints of every other party, in configured order
	Partners []string

	//PEM file containing the TLS cert
	TlsCert []byte
	//PEM file containing the TLS Key
	TlsKey []byte

	//Path the node will store its log at
	LogPath string

	// Information on the database holding the secret shares
	Database Database
	// Allows running without a database
	DevMode bool

	// Prime field every share lives in
	Field *field.Field

	// Configuration of the correlated randomness
	Tuples Tuples

	// How long reserved input masks stay claimable
	ReservationTTL time.Duration
	// How long interim values are kept and how often they are purged
	InterimTTL           time.Duration
	InterimPurgeInterval time.Duration
	// Bound on a whole open fan out
	OpenTimeout time.Duration

	// Combines a masked input with the party's mask share. Nil uses
	// storage.AdditiveUnmask.
	MaskCombiner storage.MaskCombiner
}

// Database holds the information needed to connect to the database
type Database struct {
	Name     string
	Username string
	Password string
	Address  string
	Port     string
}

// Tuples configures the source and stock levels of both tuple pools
type Tuples struct {
	// Number of parties the dealer splits tuples between
	Parties int
	// Seed shared by every party's dealer
	Seed []byte
	// Replaces the dealer when set
	Source tuple.Source

	InputMask tuple.Params
	Triple    tuple.Params
}
