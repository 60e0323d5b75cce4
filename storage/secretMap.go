///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

// Handles the Map backend for secret storage

package storage

import (
	"github.com/jinzhu/copier"
	"gitlab.com/elixxir/sharestore/internal/fault"
	"gitlab.com/elixxir/sharestore/internal/share"
)

// copies records in and out of the map so callers never alias stored data
func deepCopy(to, from interface{}) error {
	err := copier.CopyWithOption(to, from, copier.Option{DeepCopy: true})
	if err != nil {
		return fault.Wrap(fault.Internal, err, "could not copy record")
	}
	return nil
}

func (m *MapImpl) secret(id string) (*SecretRecord, error) {
	s, ok := m.secrets[id]
	if !ok {
		return nil, fault.NotFoundf("no secret share with id %s", id)
	}
	return s, nil
}

func tagIndex(s *SecretRecord, key string) int {
	for i := range s.Tags {
		if s.Tags[i].Key == key {
			return i
		}
	}
	return -1
}

// renumber keeps positions dense after tags were removed
func renumber(s *SecretRecord) {
	for i := range s.Tags {
		s.Tags[i].SecretID = s.ID
		s.Tags[i].Position = i
	}
}

// InsertSecret stores a copy of the secret in the map
func (m *MapImpl) InsertSecret(secret *SecretRecord) error {
	m.Lock()
	defer m.Unlock()

	if _, ok := m.secrets[secret.ID]; ok {
		return fault.Conflictf("a secret share with id %s already exists",
			secret.ID)
	}
	stored := &SecretRecord{}
	if err := deepCopy(stored, secret); err != nil {
		return err
	}
	renumber(stored)
	m.secrets[secret.ID] = stored
	return nil
}

// GetSecret returns a copy of the stored secret
func (m *MapImpl) GetSecret(id string) (*SecretRecord, error) {
	m.Lock()
	defer m.Unlock()

	s, err := m.secret(id)
	if err != nil {
		return nil, err
	}
	out := &SecretRecord{}
	if err = deepCopy(out, s); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSecret removes the secret from the map
func (m *MapImpl) DeleteSecret(id string) error {
	m.Lock()
	defer m.Unlock()

	if _, err := m.secret(id); err != nil {
		return err
	}
	delete(m.secrets, id)
	return nil
}

// GetTags returns copies of a secret's tags
func (m *MapImpl) GetTags(secretId string) ([]TagRecord, error) {
	m.Lock()
	defer m.Unlock()

	s, err := m.secret(secretId)
	if err != nil {
		return nil, err
	}
	out := make([]TagRecord, len(s.Tags))
	copy(out, s.Tags)
	return out, nil
}

// GetTag returns a copy of one tag
func (m *MapImpl) GetTag(secretId, key string) (*TagRecord, error) {
	m.Lock()
	defer m.Unlock()

	s, err := m.secret(secretId)
	if err != nil {
		return nil, err
	}
	i := tagIndex(s, key)
	if i < 0 {
		return nil, fault.NotFoundf("no tag with key %q for secret share %s",
			key, secretId)
	}
	t := s.Tags[i]
	return &t, nil
}

// InsertTag appends a tag unless the key exists
func (m *MapImpl) InsertTag(tag *TagRecord) error {
	m.Lock()
	defer m.Unlock()

	s, err := m.secret(tag.SecretID)
	if err != nil {
		return err
	}
	if tagIndex(s, tag.Key) >= 0 {
		return fault.Conflictf("tag with key %q already exists for secret "+
			"share %s", tag.Key, tag.SecretID)
	}
	s.Tags = append(s.Tags, *tag)
	renumber(s)
	return nil
}

// UpsertTag replaces a tag in place or appends it
func (m *MapImpl) UpsertTag(tag *TagRecord) error {
	m.Lock()
	defer m.Unlock()

	s, err := m.secret(tag.SecretID)
	if err != nil {
		return err
	}
	if i := tagIndex(s, tag.Key); i >= 0 {
		s.Tags[i].Value = tag.Value
		s.Tags[i].ValueType = tag.ValueType
		return nil
	}
	s.Tags = append(s.Tags, *tag)
	renumber(s)
	return nil
}

// ReplaceTags swaps the tag list of a secret
func (m *MapImpl) ReplaceTags(secretId string, tags []TagRecord) error {
	m.Lock()
	defer m.Unlock()

	s, err := m.secret(secretId)
	if err != nil {
		return err
	}
	s.Tags = make([]TagRecord, len(tags))
	copy(s.Tags, tags)
	renumber(s)
	return nil
}

// DeleteTag removes one tag
func (m *MapImpl) DeleteTag(secretId, key string) error {
	m.Lock()
	defer m.Unlock()

	s, err := m.secret(secretId)
	if err != nil {
		return err
	}
	i := tagIndex(s, key)
	if i < 0 {
		return fault.NotFoundf("no tag with key %q for secret share %s",
			key, secretId)
	}
	s.Tags = append(s.Tags[:i], s.Tags[i+1:]...)
	renumber(s)
	return nil
}

// ListMetadata filters, sorts and pages the stored secrets in memory. The
// returned records carry no data.
func (m *MapImpl) ListMetadata(filters []share.TagFilter, sort share.Sort,
	page share.PageRequest) ([]SecretRecord, int64, error) {
	m.Lock()
	md := make([]share.Metadata, 0, len(m.secrets))
	for _, s := range m.secrets {
		entry, err := s.metadata()
		if err != nil {
			m.Unlock()
			return nil, 0, err
		}
		if share.MatchesAll(filters, entry.Tags) {
			md = append(md, entry)
		}
	}
	m.Unlock()

	sort.Apply(md)
	selected := share.Paginate(md, page)

	records := make([]SecretRecord, len(selected.Content))
	for i, entry := range selected.Content {
		id := entry.ID.String()
		records[i] = SecretRecord{ID: id, Tags: newTagRecords(id, entry.Tags)}
	}
	return records, selected.TotalElements, nil
}
