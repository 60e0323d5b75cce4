///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package measure

// Constants for Tag strings used by Measure()
const (
	TagOpenStart     = "Open Started"
	TagLocalRecorded = "Local Values Recorded"
	TagFanOut        = "Fan Out Started"
	TagSiblingsDone  = "Siblings Answered"
	TagOpenComplete  = "Open Complete"
	TagOpenFailed    = "Open Failed"
)
