///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

// Handles the high level storage API.
// This layer merges the business logic layer and the database layer

package storage

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/sharestore/internal/fault"
	"gitlab.com/elixxir/sharestore/internal/field"
	"gitlab.com/elixxir/sharestore/internal/share"
)

// MaskClaimer hands over the input masks reserved for a masked input.
// Implemented by *inputmask.Cache.
type MaskClaimer interface {
	ClaimInputMasks(requestID uuid.UUID, count int) ([][]byte, error)
}

// MaskCombiner computes this party's share of one input word from the masked
// value the client uploaded and the party's share of the mask
type MaskCombiner func(f *field.Field, playerID int, masked,
	mask []byte) ([]byte, error)

// AdditiveUnmask is the default MaskCombiner. The client uploads x + r where
// r is the sum of all parties' mask shares; player 0 keeps (x + r) - r_0 and
// every other player -r_i, so the shares sum to x.
func AdditiveUnmask(f *field.Field, playerID int, masked,
	mask []byte) ([]byte, error) {
	if playerID == 0 {
		return f.Sub(masked, mask)
	}
	// the masked value still has to be a field element
	if _, err := f.Decode(masked); err != nil {
		return nil, err
	}
	return f.Neg(mask)
}

// Storage API for the storage layer
type Storage struct {
	// Stored database interface
	db    database
	locks idLocks

	field    *field.Field
	playerID int
	masks    MaskClaimer
	combiner MaskCombiner

	now func() time.Time
}

// NewStorage Create a new Storage object wrapping a database interface
// Returns a Storage object and error
func NewStorage(username, password, dbName, address, port string,
	devMode bool) (*Storage, error) {
	db, err := newDatabase(username, password, dbName, address, port, devMode)
	return newStorage(db), err
}

func newStorage(db database) *Storage {
	return &Storage{
		db:       db,
		field:    field.Default(),
		combiner: AdditiveUnmask,
		now:      time.Now,
	}
}

// SetMaskedInputs enables CreateSecretShareFromMaskedInput. A nil combiner
// uses AdditiveUnmask.
func (s *Storage) SetMaskedInputs(f *field.Field, playerID int,
	masks MaskClaimer, combiner MaskCombiner) {
	if combiner == nil {
		combiner = AdditiveUnmask
	}
	s.field = f
	s.playerID = playerID
	s.masks = masks
	s.combiner = combiner
}

// clientTags drops the reserved tags a client tried to set
func clientTags(id uuid.UUID, tags []share.Tag) []share.Tag {
	allowed, reserved := share.StripReserved(tags)
	for _, t := range reserved {
		jww.WARN.Printf("Ignoring reserved tag %q supplied for secret %s",
			t.Key, id)
	}
	return allowed
}

func (s *Storage) creationDate() share.Tag {
	return share.Tag{
		Key:       share.CreationDateKey,
		Value:     strconv.FormatInt(s.now().UnixNano()/int64(time.Millisecond), 10),
		ValueType: share.LONG,
	}
}

// StoreSecretShare persists a new secret share and returns its id. The store
// adds the creation-date tag.
func (s *Storage) StoreSecretShare(secret *share.SecretShare) (uuid.UUID, error) {
	if secret == nil {
		return uuid.Nil, fault.InvalidArgumentf("secret share must not be null")
	}
	stored := &share.SecretShare{
		ID:   secret.ID,
		Data: secret.Data,
		Tags: clientTags(secret.ID, secret.Tags),
	}
	if err := stored.Validate(); err != nil {
		return uuid.Nil, err
	}

	lock := s.locks.of(stored.ID)
	lock.Lock()
	defer lock.Unlock()
	return s.insert(stored)
}

// insert must be called with the id's write lock held
func (s *Storage) insert(secret *share.SecretShare) (uuid.UUID, error) {
	secret.Tags = append(secret.Tags, s.creationDate())
	if err := s.db.InsertSecret(newSecretRecord(secret)); err != nil {
		return uuid.Nil, err
	}
	jww.INFO.Printf("Stored secret %s of %d words", secret.ID,
		field.WordCount(secret.Data))
	return secret.ID, nil
}

// CreateSecretShareFromMaskedInput turns an uploaded masked input into this
// party's secret share, consuming the input masks reserved for its id
func (s *Storage) CreateSecretShareFromMaskedInput(input *share.MaskedInput) (uuid.UUID, error) {
	if input == nil {
		return uuid.Nil, fault.InvalidArgumentf("masked input must not be null")
	}
	masked := &share.MaskedInput{
		ID:   input.ID,
		Data: input.Data,
		Tags: clientTags(input.ID, input.Tags),
	}
	if err := masked.Validate(); err != nil {
		return uuid.Nil, err
	}
	if s.masks == nil {
		return uuid.Nil, fault.New(fault.Internal, "masked inputs are not "+
			"enabled on this node")
	}

	lock := s.locks.of(masked.ID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.db.GetSecret(masked.ID.String()); err == nil {
		return uuid.Nil, fault.Conflictf("a secret share with id %s already "+
			"exists", masked.ID)
	} else if !fault.Is(err, fault.NotFound) {
		return uuid.Nil, err
	}

	masks, err := s.masks.ClaimInputMasks(masked.ID, len(masked.Data))
	if err != nil {
		return uuid.Nil, errors.WithMessagef(err, "could not claim input "+
			"masks for masked input %s", masked.ID)
	}

	words := make([][]byte, len(masked.Data))
	for i := range masked.Data {
		words[i], err = s.combiner(s.field, s.playerID, masked.Data[i], masks[i])
		if err != nil {
			return uuid.Nil, fault.Wrap(fault.InvalidArgument, err,
				"could not unmask value %d of masked input %s", i, masked.ID)
		}
	}

	return s.insert(&share.SecretShare{
		ID:   masked.ID,
		Data: field.Join(words),
		Tags: masked.Tags,
	})
}

// GetSecretShare returns the stored share with its tags
func (s *Storage) GetSecretShare(id uuid.UUID) (*share.SecretShare, error) {
	lock := s.locks.of(id)
	lock.RLock()
	defer lock.RUnlock()

	record, err := s.db.GetSecret(id.String())
	if err != nil {
		return nil, err
	}
	return record.secretShare()
}

// DeleteSecretShare removes a share and its tags
func (s *Storage) DeleteSecretShare(id uuid.UUID) error {
	lock := s.locks.of(id)
	lock.Lock()
	defer lock.Unlock()

	if err := s.db.DeleteSecret(id.String()); err != nil {
		return err
	}
	jww.INFO.Printf("Deleted secret %s", id)
	return nil
}

// ListMetadata returns the page of metadata matching every filter
func (s *Storage) ListMetadata(filters []share.TagFilter, sort share.Sort,
	page share.PageRequest) (share.Page, error) {
	records, total, err := s.db.ListMetadata(filters, sort, page)
	if err != nil {
		return share.Page{}, err
	}
	content := make([]share.Metadata, len(records))
	for i := range records {
		if content[i], err = records[i].metadata(); err != nil {
			return share.Page{}, err
		}
	}
	return share.NewPage(content, page, total), nil
}

// GetTags returns every tag of a secret
func (s *Storage) GetTags(id uuid.UUID) ([]share.Tag, error) {
	lock := s.locks.of(id)
	lock.RLock()
	defer lock.RUnlock()

	records, err := s.db.GetTags(id.String())
	if err != nil {
		return nil, err
	}
	return tagsOf(records), nil
}

// GetTag returns one tag of a secret
func (s *Storage) GetTag(id uuid.UUID, key string) (share.Tag, error) {
	lock := s.locks.of(id)
	lock.RLock()
	defer lock.RUnlock()

	record, err := s.db.GetTag(id.String(), key)
	if err != nil {
		return share.Tag{}, err
	}
	return record.tag(), nil
}

func checkClientTag(tag share.Tag) error {
	if err := tag.Validate(); err != nil {
		return err
	}
	if share.IsReservedKey(tag.Key) {
		return fault.InvalidArgumentf("tag key %q is reserved", tag.Key)
	}
	return nil
}

// CreateTag adds a tag. Conflict if the key already exists.
func (s *Storage) CreateTag(id uuid.UUID, tag share.Tag) error {
	if err := checkClientTag(tag); err != nil {
		return err
	}
	lock := s.locks.of(id)
	lock.Lock()
	defer lock.Unlock()

	record := newTagRecord(id.String(), tag, 0)
	return s.db.InsertTag(&record)
}

// PutTag creates or updates the tag stored under key. The tag must carry the
// same key.
func (s *Storage) PutTag(id uuid.UUID, key string, tag share.Tag) error {
	if tag.Key != key {
		return fault.InvalidArgumentf("the defined key %q and the tag key %q "+
			"do not match", key, tag.Key)
	}
	if err := checkClientTag(tag); err != nil {
		return err
	}
	lock := s.locks.of(id)
	lock.Lock()
	defer lock.Unlock()

	record := newTagRecord(id.String(), tag, 0)
	return s.db.UpsertTag(&record)
}

// ReplaceTags atomically swaps every client tag of a secret. Reserved tags
// stay as they are.
func (s *Storage) ReplaceTags(id uuid.UUID, tags []share.Tag) error {
	if len(tags) == 0 {
		return fault.InvalidArgumentf("the list of tags must not be empty")
	}
	tags = clientTags(id, tags)
	if err := share.ValidateTags(tags); err != nil {
		return err
	}

	lock := s.locks.of(id)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.db.GetTags(id.String())
	if err != nil {
		return err
	}
	_, reserved := share.StripReserved(tagsOf(existing))
	replacement := append(share.CopyTags(tags), reserved...)
	return s.db.ReplaceTags(id.String(), newTagRecords(id.String(), replacement))
}

// DeleteTag removes one client tag
func (s *Storage) DeleteTag(id uuid.UUID, key string) error {
	if share.IsReservedKey(key) {
		return fault.InvalidArgumentf("tag key %q is reserved", key)
	}
	lock := s.locks.of(id)
	lock.Lock()
	defer lock.Unlock()

	return s.db.DeleteTag(id.String(), key)
}
