///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package conf

import (
	"encoding/hex"
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
	"gitlab.com/elixxir/sharestore/internal"
	"gitlab.com/elixxir/sharestore/internal/field"
	"gitlab.com/elixxir/sharestore/internal/inputmask"
	"gitlab.com/elixxir/sharestore/internal/interim"
	"gitlab.com/elixxir/sharestore/internal/open"
	"gitlab.com/elixxir/sharestore/internal/tuple"
	"gitlab.com/xx_network/primitives/utils"
)

// This object is used by the server instance.
// It should be constructed using a viper object
type Params struct {
	Node     Node
	Database Database
	Tuples   Tuples

	Prime string

	ReservationTTL       time.Duration
	InterimTTL           time.Duration
	InterimPurgeInterval time.Duration
	OpenTimeout          time.Duration

	DevMode bool
}

// NewParams gets elements of the viper object
// and updates the params object. It returns params
// unless it fails to parse in which it case returns error
func NewParams(vip *viper.Viper) (*Params, error) {

	var err error

	params := Params{}

	params.Node.PlayerID = vip.GetInt("node.playerId")
	if params.Node.PlayerID < 0 {
		jww.FATAL.Panicf("node.playerId must not be negative, got %d",
			params.Node.PlayerID)
	}

	params.Node.Port = vip.GetInt("node.port")
	if params.Node.Port == 0 {
		jww.FATAL.Panic("Must specify a port to run on")
	}

	// Construct listening address; defaults to 0.0.0.0 if not set
	listeningIP := vip.GetString("node.listeningAddress")
	if listeningIP == "" {
		listeningIP = "0.0.0.0"
	}
	params.Node.ListeningAddress = net.JoinHostPort(listeningIP,
		strconv.Itoa(params.Node.Port))

	params.Node.Partners = vip.GetStringSlice("node.partners")
	for _, partner := range params.Node.Partners {
		if _, _, err = net.SplitHostPort(partner); err != nil {
			return nil, errors.Wrapf(err, "invalid partner address %q",
				partner)
		}
	}

	params.Node.Paths.Cert = vip.GetString("node.paths.cert")
	params.Node.Paths.Key = vip.GetString("node.paths.key")
	if (params.Node.Paths.Cert == "") != (params.Node.Paths.Key == "") {
		jww.FATAL.Panic("node.paths.cert and node.paths.key must be set " +
			"together")
	}
	params.Node.Paths.PartnerCert = vip.GetString("node.paths.partnerCert")

	params.Node.Paths.Log = vip.GetString("node.paths.log")
	if params.Node.Paths.Log == "" {
		params.Node.Paths.Log = "./sharestore.log"
	}

	// Obtain database connection info
	rawAddr := vip.GetString("database.address")
	var addr, port string
	if rawAddr != "" {
		addr, port, err = net.SplitHostPort(rawAddr)
		if err != nil {
			jww.FATAL.Panicf("Unable to get database port from %s: %+v", rawAddr, err)
		}
	}
	params.Database.Name = vip.GetString("database.name")
	params.Database.Username = vip.GetString("database.username")
	params.Database.Password = vip.GetString("database.password")
	params.Database.Address = addr
	params.Database.Port = port

	params.Prime = vip.GetString("field.prime")

	params.Tuples.Parties = vip.GetInt("tuples.parties")
	if params.Tuples.Parties == 0 {
		params.Tuples.Parties = len(params.Node.Partners) + 1
	}
	params.Tuples.Seed = vip.GetString("tuples.seed")
	params.Tuples.InputMask = poolParams(vip, "tuples.inputMask")
	params.Tuples.Triple = poolParams(vip, "tuples.triple")

	vip.SetDefault("inputMask.reservationTTL", inputmask.DefaultReservationTTL)
	params.ReservationTTL = vip.GetDuration("inputMask.reservationTTL")
	vip.SetDefault("interim.ttl", interim.DefaultTTL)
	params.InterimTTL = vip.GetDuration("interim.ttl")
	vip.SetDefault("interim.purgeInterval", interim.DefaultPurgeInterval)
	params.InterimPurgeInterval = vip.GetDuration("interim.purgeInterval")
	vip.SetDefault("open.timeout", open.DefaultTimeout)
	params.OpenTimeout = vip.GetDuration("open.timeout")

	params.DevMode = vip.GetBool("devMode")

	return &params, nil
}

// poolParams reads the stock levels under key, falling back to the pool
// defaults for anything not set
func poolParams(vip *viper.Viper, key string) Pool {
	d := tuple.DefaultParams()
	vip.SetDefault(key+".lowWater", d.LowWater)
	vip.SetDefault(key+".batchSize", d.BatchSize)
	vip.SetDefault(key+".waitTimeout", d.WaitTimeout)
	vip.SetDefault(key+".maxDraw", d.MaxDraw)
	return Pool{
		LowWater:    vip.GetInt(key + ".lowWater"),
		BatchSize:   vip.GetInt(key + ".batchSize"),
		WaitTimeout: vip.GetDuration(key + ".waitTimeout"),
		MaxDraw:     vip.GetInt(key + ".maxDraw"),
	}
}

func (p Pool) tupleParams() tuple.Params {
	return tuple.Params{
		LowWater:    p.LowWater,
		BatchSize:   p.BatchSize,
		WaitTimeout: p.WaitTimeout,
		MaxDraw:     p.MaxDraw,
	}
}

// Create a new Definition object from the Params object
func (p *Params) ConvertToDefinition() (*internal.Definition, error) {

	def := &internal.Definition{}

	var tlsCert, tlsKey []byte
	var err error

	if p.Node.Paths.Cert != "" {
		tlsCert, err = utils.ReadFile(p.Node.Paths.Cert)

		if err != nil {
			jww.FATAL.Panicf("Could not load TLS Cert: %+v", err)
		}
	}

	if p.Node.Paths.Key != "" {
		tlsKey, err = utils.ReadFile(p.Node.Paths.Key)

		if err != nil {
			jww.FATAL.Panicf("Could not load TLS Key: %+v", err)
		}
	}

	def.PlayerID = p.Node.PlayerID
	def.Address = p.Node.ListeningAddress
	def.Partners = append([]string(nil), p.Node.Partners...)
	def.TlsCert = tlsCert
	def.TlsKey = tlsKey
	def.LogPath = p.Node.Paths.Log

	def.Database = internal.Database{
		Name:     p.Database.Name,
		Username: p.Database.Username,
		Password: p.Database.Password,
		Address:  p.Database.Address,
		Port:     p.Database.Port,
	}
	def.DevMode = p.DevMode

	if p.Prime != "" {
		def.Field, err = field.FromString(p.Prime)
		if err != nil {
			return nil, errors.WithMessagef(err, "invalid field.prime %q",
				p.Prime)
		}
	} else {
		def.Field = field.Default()
	}

	def.Tuples.Parties = p.Tuples.Parties
	if p.Tuples.Seed != "" {
		def.Tuples.Seed, err = hex.DecodeString(p.Tuples.Seed)
		if err != nil {
			return nil, errors.Wrap(err, "tuples.seed must be hex encoded")
		}
	}
	def.Tuples.InputMask = p.Tuples.InputMask.tupleParams()
	def.Tuples.Triple = p.Tuples.Triple.tupleParams()

	def.ReservationTTL = p.ReservationTTL
	def.InterimTTL = p.InterimTTL
	def.InterimPurgeInterval = p.InterimPurgeInterval
	def.OpenTimeout = p.OpenTimeout

	return def, nil
}

// PartnerCert loads the certificate partner connections are checked against.
// Nil means the partners are reached in plain text.
func (p *Params) PartnerCert() ([]byte, error) {
	if p.Node.Paths.PartnerCert == "" {
		return nil, nil
	}
	cert, err := utils.ReadFile(p.Node.Paths.PartnerCert)
	if err != nil {
		return nil, errors.WithMessage(err, "could not load partner TLS cert")
	}
	return cert, nil
}
