///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package conf

// Contains Node config params
type Node struct {
	Paths            Paths
	PlayerID         int
	Port             int
	ListeningAddress string // Server's internal address (with port)
	// Inter party endpoints of the other parties
	Partners []string
}
