///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package io

const errFailedToListen = "Failed to listen on %s"
const errFailedToLoadTls = "Could not load the TLS key pair"
const errFailedToDial = "Could not connect to %s"
const errCallFailed = "Call %s to %s failed"
