///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package cmd

// node.go contains the start up of a share store node

import (
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
	"gitlab.com/elixxir/sharestore/cmd/conf"
	"gitlab.com/elixxir/sharestore/internal"
	"gitlab.com/elixxir/sharestore/internal/open"
	"gitlab.com/elixxir/sharestore/io"
)

// How long start up waits for the tuple pools before serving anyway
const stockWaitLimit = time.Minute

// StartServer reads the params from vip, builds the instance and serves its
// services. The returned function stops the node.
func StartServer(vip *viper.Viper) (func(), error) {
	params, err := conf.NewParams(vip)
	if err != nil {
		return nil, errors.WithMessage(err, "could not load params")
	}

	def, err := params.ConvertToDefinition()
	if err != nil {
		return nil, errors.WithMessage(err, "could not build definition")
	}

	partnerCert, err := params.PartnerCert()
	if err != nil {
		return nil, err
	}

	hosts := make([]*io.Host, 0, len(def.Partners))
	closeHosts := func() {
		for _, h := range hosts {
			if err := h.Close(); err != nil {
				jww.WARN.Printf("Could not close connection to %s: %+v",
					h.GetAddress(), err)
			}
		}
	}
	siblings := make([]open.Sibling, 0, len(def.Partners))
	for _, partner := range def.Partners {
		h, err := io.NewHost(partner, partnerCert)
		if err != nil {
			closeHosts()
			return nil, err
		}
		hosts = append(hosts, h)
		siblings = append(siblings, io.NewSibling(h))
		jww.INFO.Printf("Added sibling %s", partner)
	}

	instance, err := internal.CreateServerInstance(def, siblings)
	if err != nil {
		closeHosts()
		return nil, errors.WithMessage(err, "could not create instance")
	}
	instance.Run()

	// Serve once the pools hold their first tuples so the first clients are
	// not turned away
	instance.GetReady().Receive(5*time.Second, stockWaitLimit,
		"the tuple pools to be stocked")

	server, err := io.StartServer(def.Address,
		io.NewServerImplementation(instance), def.TlsCert, def.TlsKey)
	if err != nil {
		instance.Shutdown()
		closeHosts()
		return nil, err
	}
	jww.INFO.Printf("Share store %v is running", instance)

	return func() {
		server.Shutdown()
		instance.Shutdown()
		closeHosts()
		jww.INFO.Printf("Share store %v stopped", instance)
	}, nil
}
