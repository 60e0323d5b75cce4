///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package conf

// Paths contains the config params for
// required file paths used by the system
type Paths struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
	Log  string `yaml:"log"`
	// Certificate the partners' TLS certificates are checked against
	PartnerCert string `yaml:"partnerCert"`
}
