///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package storage

// records.go contains the persisted forms of secret shares and tags

import (
	"github.com/google/uuid"
	"gitlab.com/elixxir/sharestore/internal/fault"
	"gitlab.com/elixxir/sharestore/internal/share"
)

// SecretRecord is a stored secret share
type SecretRecord struct {
	ID   string      `gorm:"primaryKey"`
	Data []byte      `gorm:"not null"`
	Tags []TagRecord `gorm:"foreignKey:SecretID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the gorm table name
func (SecretRecord) TableName() string {
	return "secrets"
}

// TagRecord is one tag of a stored secret. Position keeps the order tags
// were supplied in.
type TagRecord struct {
	SecretID  string `gorm:"primaryKey"`
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	ValueType string `gorm:"not null"`
	Position  int    `gorm:"not null"`
}

// TableName overrides the gorm table name
func (TagRecord) TableName() string {
	return "tags"
}

func newSecretRecord(s *share.SecretShare) *SecretRecord {
	id := s.ID.String()
	return &SecretRecord{
		ID:   id,
		Data: append([]byte(nil), s.Data...),
		Tags: newTagRecords(id, s.Tags),
	}
}

func newTagRecords(secretId string, tags []share.Tag) []TagRecord {
	out := make([]TagRecord, len(tags))
	for i, t := range tags {
		out[i] = newTagRecord(secretId, t, i)
	}
	return out
}

func newTagRecord(secretId string, t share.Tag, position int) TagRecord {
	return TagRecord{
		SecretID:  secretId,
		Key:       t.Key,
		Value:     t.Value,
		ValueType: string(t.ValueType),
		Position:  position,
	}
}

func (r *TagRecord) tag() share.Tag {
	return share.Tag{
		Key:       r.Key,
		Value:     r.Value,
		ValueType: share.TagValueType(r.ValueType),
	}
}

func tagsOf(records []TagRecord) []share.Tag {
	out := make([]share.Tag, len(records))
	for i := range records {
		out[i] = records[i].tag()
	}
	return out
}

func (r *SecretRecord) id() (uuid.UUID, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return uuid.Nil, fault.Wrap(fault.Internal, err,
			"stored secret has malformed identifier %q", r.ID)
	}
	return id, nil
}

func (r *SecretRecord) secretShare() (*share.SecretShare, error) {
	id, err := r.id()
	if err != nil {
		return nil, err
	}
	return &share.SecretShare{
		ID:   id,
		Data: append([]byte(nil), r.Data...),
		Tags: tagsOf(r.Tags),
	}, nil
}

func (r *SecretRecord) metadata() (share.Metadata, error) {
	id, err := r.id()
	if err != nil {
		return share.Metadata{}, err
	}
	return share.Metadata{ID: id, Tags: tagsOf(r.Tags)}, nil
}
