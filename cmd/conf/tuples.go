///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package conf

import "time"

// Tuples contains the dealer and pool config params
type Tuples struct {
	Parties   int
	Seed      string
	InputMask Pool
	Triple    Pool
}

// Pool contains the stock levels of one tuple pool
type Pool struct {
	LowWater    int
	BatchSize   int
	WaitTimeout time.Duration
	MaxDraw     int
}
