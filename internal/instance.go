///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package internal

// instance.go contains the logic for the internal.Instance object along with
// constructors and it's methods

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/sharestore/internal/delivery"
	"gitlab.com/elixxir/sharestore/internal/field"
	"gitlab.com/elixxir/sharestore/internal/inputmask"
	"gitlab.com/elixxir/sharestore/internal/interim"
	"gitlab.com/elixxir/sharestore/internal/open"
	"gitlab.com/elixxir/sharestore/internal/tuple"
	"gitlab.com/elixxir/sharestore/storage"
)

// How often the instance checks whether the pools have their first stock
const stockPollInterval = 50 * time.Millisecond

// Holds long-lived node state
type Instance struct {
	definition *Definition
	parties    int
	field      *field.Field

	storage     *storage.Storage
	inputMasks  *tuple.Pool
	triples     *tuple.Pool
	engine      *delivery.Engine
	reserved    *inputmask.Cache
	interim     *interim.Cache
	coordinator *open.Coordinator

	// Signals once both pools hold tuples
	ready *FirstTime

	runOnce      sync.Once
	shutdownOnce sync.Once
	cancel       context.CancelFunc
	done         sync.WaitGroup
}

// CreateServerInstance builds every component of the node. siblings are the
// clients for the other parties' inter party endpoints; they are built by
// the caller so the instance never depends on the transport. To start the
// background work call Run, and call Shutdown to stop it.
func CreateServerInstance(def *Definition, siblings []open.Sibling) (*Instance, error) {
	if def == nil {
		return nil, errors.New("cannot create an instance without a definition")
	}
	if def.PlayerID < 0 {
		return nil, errors.Errorf("player id %d must not be negative",
			def.PlayerID)
	}

	f := def.Field
	if f == nil {
		f = field.Default()
	}

	parties := def.Tuples.Parties
	if parties <= 0 {
		parties = len(siblings) + 1
	}

	source := def.Tuples.Source
	if source == nil {
		seed := def.Tuples.Seed
		if len(seed) == 0 {
			if parties > 1 {
				return nil, errors.Errorf("a shared dealer seed is required "+
					"for %d parties", parties)
			}
			var err error
			seed, err = tuple.NewSeed()
			if err != nil {
				return nil, err
			}
			jww.WARN.Printf("No dealer seed configured, generated a " +
				"random one for a single party network")
		}
		dealer, err := tuple.NewDealer(f, seed, parties, def.PlayerID)
		if err != nil {
			return nil, errors.WithMessage(err, "could not create dealer")
		}
		source = dealer
		jww.INFO.Printf("Using the seeded dealer as player %d of %d",
			def.PlayerID, parties)
	}

	store, err := storage.NewStorage(def.Database.Username,
		def.Database.Password, def.Database.Name, def.Database.Address,
		def.Database.Port, def.DevMode)
	if err != nil {
		return nil, errors.WithMessage(err, "could not initialize storage")
	}

	instance := &Instance{
		definition: def,
		parties:    parties,
		field:      f,
		storage:    store,
		ready:      NewFirstTime(),
	}

	instance.inputMasks = tuple.NewPool(tuple.InputMask, source,
		def.Tuples.InputMask)
	instance.triples = tuple.NewPool(tuple.MultiplicationTriple, source,
		def.Tuples.Triple)
	instance.engine = delivery.NewEngine(f, instance.triples)
	instance.reserved = inputmask.NewCache(instance.inputMasks,
		instance.engine, def.ReservationTTL)
	instance.interim = interim.NewCache(def.InterimTTL)
	instance.coordinator = open.NewCoordinator(siblings, instance.interim,
		def.OpenTimeout)

	store.SetMaskedInputs(f, def.PlayerID, instance.reserved, def.MaskCombiner)

	jww.INFO.Printf("Instance initialized for player %d with %d siblings",
		def.PlayerID, len(siblings))
	return instance, nil
}

// Run starts the purge loops and the readiness check. It returns
// immediately; calling it more than once has no effect.
func (i *Instance) Run() {
	i.runOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		i.cancel = cancel

		reservationInterval := i.definition.ReservationTTL / 10
		if reservationInterval <= 0 {
			reservationInterval = inputmask.DefaultReservationTTL / 10
		}
		interimInterval := i.definition.InterimPurgeInterval
		if interimInterval <= 0 {
			interimInterval = interim.DefaultPurgeInterval
		}

		i.done.Add(3)
		go func() {
			defer i.done.Done()
			i.reserved.Run(ctx, reservationInterval)
		}()
		go func() {
			defer i.done.Done()
			i.interim.Run(ctx, interimInterval)
		}()
		go func() {
			defer i.done.Done()
			i.waitForStock(ctx)
		}()
	})
}

// waitForStock sends the ready signal once every prefetching pool has
// received its first tuples
func (i *Instance) waitForStock(ctx context.Context) {
	ticker := time.NewTicker(stockPollInterval)
	defer ticker.Stop()
	for {
		if i.stocked(i.inputMasks, i.definition.Tuples.InputMask) &&
			i.stocked(i.triples, i.definition.Tuples.Triple) {
			jww.INFO.Printf("Tuple pools stocked: %d input masks, %d "+
				"triples", i.inputMasks.Len(), i.triples.Len())
			i.ready.Send()
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (i *Instance) stocked(p *tuple.Pool, params tuple.Params) bool {
	return params.LowWater <= 0 || p.Len() > 0
}

// Shutdown stops the background work and closes both pools. Blocked draws
// fail with ResourceExhausted.
func (i *Instance) Shutdown() {
	i.shutdownOnce.Do(func() {
		if i.cancel != nil {
			i.cancel()
		}
		i.done.Wait()
		i.inputMasks.Close()
		i.triples.Close()
		jww.INFO.Printf("Instance for player %d shut down",
			i.definition.PlayerID)
	})
}

// GetDefinition returns the definition the instance was built from
func (i *Instance) GetDefinition() *Definition {
	return i.definition
}

// GetParties returns the number of parties in the network, this one included
func (i *Instance) GetParties() int {
	return i.parties
}

func (i *Instance) GetPlayerID() int {
	return i.definition.PlayerID
}

func (i *Instance) GetField() *field.Field {
	return i.field
}

func (i *Instance) GetStorage() *storage.Storage {
	return i.storage
}

func (i *Instance) GetInputMaskPool() *tuple.Pool {
	return i.inputMasks
}

func (i *Instance) GetTriplePool() *tuple.Pool {
	return i.triples
}

func (i *Instance) GetDeliveryEngine() *delivery.Engine {
	return i.engine
}

func (i *Instance) GetInputMaskCache() *inputmask.Cache {
	return i.reserved
}

func (i *Instance) GetInterimCache() *interim.Cache {
	return i.interim
}

func (i *Instance) GetCoordinator() *open.Coordinator {
	return i.coordinator
}

// GetReady returns the signal sent once the tuple pools are stocked
func (i *Instance) GetReady() *FirstTime {
	return i.ready
}

func (i *Instance) String() string {
	return fmt.Sprintf("player %d at %s", i.definition.PlayerID,
		i.definition.Address)
}
