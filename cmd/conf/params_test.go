///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package conf

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gitlab.com/elixxir/sharestore/internal/interim"
	"gitlab.com/elixxir/sharestore/internal/tuple"
)

var ExpectedNode = Node{
	Paths:            Paths{Log: "./sharestore-1.log"},
	PlayerID:         1,
	Port:             10001,
	ListeningAddress: "127.0.0.1:10001",
	Partners:         []string{"127.0.0.1:10000", "127.0.0.1:10002"},
}

var ExpectedDatabase = Database{
	Name:     "sharestore",
	Username: "sharestore",
	Password: "secret",
	Address:  "0.0.0.0",
	Port:     "5432",
}

func readParams(t *testing.T) *Params {
	vip := viper.New()
	vip.AddConfigPath(".")
	vip.SetConfigFile("params.yaml")

	err := vip.ReadInConfig()
	if err != nil {
		t.Fatalf("Failed to read in params.yaml into viper: %+v", err)
	}

	params, err := NewParams(vip)
	if err != nil {
		t.Fatalf("Failed in unmarshaling from viper object: %+v", err)
	}
	return params
}

func TestNewParams_ReturnsParamsWhenGivenValidViper(t *testing.T) {
	params := readParams(t)

	if !reflect.DeepEqual(ExpectedNode, params.Node) {
		t.Errorf("Params node value does not match expected value\nActual: %v"+
			"\nExpected: %v", params.Node, ExpectedNode)
	}

	if !reflect.DeepEqual(ExpectedDatabase, params.Database) {
		t.Errorf("Params database value does not match expected value")
	}

	// Parties default to the partners plus this node
	if params.Tuples.Parties != 3 {
		t.Errorf("Expected 3 parties, got %d", params.Tuples.Parties)
	}

	expectedMask := Pool{LowWater: 10, BatchSize: 50, WaitTimeout: 2 * time.Second,
		MaxDraw: 500}
	if params.Tuples.InputMask != expectedMask {
		t.Errorf("Input mask pool params do not match: %+v", params.Tuples.InputMask)
	}
	d := tuple.DefaultParams()
	expectedTriple := Pool{LowWater: d.LowWater, BatchSize: d.BatchSize,
		WaitTimeout: d.WaitTimeout, MaxDraw: d.MaxDraw}
	if params.Tuples.Triple != expectedTriple {
		t.Errorf("Triple pool params should default: %+v", params.Tuples.Triple)
	}

	if params.InterimTTL != 5*time.Minute {
		t.Errorf("Unexpected interim ttl %s", params.InterimTTL)
	}
	if params.InterimPurgeInterval != interim.DefaultPurgeInterval {
		t.Errorf("Unexpected purge interval %s", params.InterimPurgeInterval)
	}
	if params.OpenTimeout != 3*time.Second {
		t.Errorf("Unexpected open timeout %s", params.OpenTimeout)
	}
	if !params.DevMode {
		t.Errorf("Params devMode value does not match expected value")
	}
}

func TestParams_ConvertToDefinition(t *testing.T) {
	params := readParams(t)

	def, err := params.ConvertToDefinition()
	if err != nil {
		t.Fatalf("Could not convert params: %+v", err)
	}

	if def.PlayerID != 1 || def.Address != "127.0.0.1:10001" {
		t.Errorf("Node values were not carried over: %d %s", def.PlayerID,
			def.Address)
	}
	if !reflect.DeepEqual(def.Partners, ExpectedNode.Partners) {
		t.Errorf("Partners were not carried over: %v", def.Partners)
	}
	if def.Database.Port != "5432" || def.Database.Password != "secret" {
		t.Errorf("Database values were not carried over: %+v", def.Database)
	}
	if def.Field.Prime().String() != "198766463529478683931867765928436695041" {
		t.Errorf("Unexpected prime %s", def.Field.Prime())
	}
	expectedSeed := []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77,
		0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	if !bytes.Equal(def.Tuples.Seed, expectedSeed) {
		t.Errorf("Seed was not decoded: %x", def.Tuples.Seed)
	}
	if def.Tuples.InputMask.BatchSize != 50 || def.Tuples.InputMask.MaxDraw != 500 {
		t.Errorf("Pool params were not carried over: %+v", def.Tuples.InputMask)
	}
	if len(def.TlsCert) != 0 || len(def.TlsKey) != 0 {
		t.Errorf("No TLS material should be loaded without paths")
	}
}

func TestParams_ConvertToDefinition_Errors(t *testing.T) {
	// Error path: seed is not hex
	params := readParams(t)
	params.Tuples.Seed = "not hex"
	if _, err := params.ConvertToDefinition(); err == nil {
		t.Errorf("Non hex seed should be rejected")
	}

	// Error path: prime is not prime
	params = readParams(t)
	params.Prime = "198766463529478683931867765928436695040"
	if _, err := params.ConvertToDefinition(); err == nil {
		t.Errorf("Composite prime should be rejected")
	}
}

func TestNewParams_InvalidPartner(t *testing.T) {
	vip := viper.New()
	vip.Set("node.port", 10000)
	vip.Set("node.partners", []string{"no-port"})
	if _, err := NewParams(vip); err == nil {
		t.Errorf("Partner without a port should be rejected")
	}
}

func TestParams_PartnerCert(t *testing.T) {
	params := readParams(t)
	cert, err := params.PartnerCert()
	if err != nil || cert != nil {
		t.Errorf("No partner cert should be loaded without a path: %v", err)
	}

	params.Node.Paths.PartnerCert = "does-not-exist.crt"
	if _, err = params.PartnerCert(); err == nil {
		t.Errorf("Missing partner cert should be an error")
	}
}
