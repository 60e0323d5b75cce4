///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package io

// messages.go contains the wire messages of every service and their
// conversion to and from the internal types

import (
	"github.com/google/uuid"
	"gitlab.com/elixxir/sharestore/internal/fault"
	"gitlab.com/elixxir/sharestore/internal/field"
	"gitlab.com/elixxir/sharestore/internal/share"
)

// Empty is sent where a call has nothing to return
type Empty struct{}

type Tag struct {
	Key       string `cbor:"key"`
	Value     string `cbor:"value"`
	ValueType string `cbor:"valueType"`
}

// SecretShareMessage carries a whole share
type SecretShareMessage struct {
	SecretId string `cbor:"secretId"`
	Data     []byte `cbor:"data"`
	Tags     []Tag  `cbor:"tags"`
}

type MaskedInputMessage struct {
	SecretId string   `cbor:"secretId"`
	Data     [][]byte `cbor:"data"`
	Tags     []Tag    `cbor:"tags"`
}

// IdMessage names a secret
type IdMessage struct {
	SecretId string `cbor:"secretId"`
}

// DownloadRequest asks for a share together with the material to verify it
type DownloadRequest struct {
	SecretId  string `cbor:"secretId"`
	RequestId string `cbor:"requestId"`
}

type MetadataMessage struct {
	SecretId string `cbor:"secretId"`
	Tags     []Tag  `cbor:"tags"`
}

type OutputDeliveryMessage struct {
	SecretShares []byte `cbor:"secretShares"`
	RShares      []byte `cbor:"rShares"`
	VShares      []byte `cbor:"vShares"`
	WShares      []byte `cbor:"wShares"`
	UShares      []byte `cbor:"uShares"`
}

type VerifiableSecretShare struct {
	Metadata       MetadataMessage       `cbor:"metadata"`
	OutputDelivery OutputDeliveryMessage `cbor:"outputDelivery"`
}

// ObjectListRequest selects a page of metadata. Zero page values mean
// unpaged and an empty filter unfiltered.
type ObjectListRequest struct {
	Filter        string `cbor:"filter"`
	SortProperty  string `cbor:"sortProperty"`
	SortDirection string `cbor:"sortDirection"`
	PageNumber    int    `cbor:"pageNumber"`
	PageSize      int    `cbor:"pageSize"`
}

type MetadataPage struct {
	Content       []MetadataMessage `cbor:"content"`
	Number        int               `cbor:"number"`
	Size          int               `cbor:"size"`
	TotalElements int64             `cbor:"totalElements"`
	TotalPages    int               `cbor:"totalPages"`
}

// TagRequest addresses one tag of a secret. Tag is only set for calls which
// write it.
type TagRequest struct {
	SecretId string `cbor:"secretId"`
	Key      string `cbor:"key"`
	Tag      *Tag   `cbor:"tag"`
}

type TagsMessage struct {
	SecretId string `cbor:"secretId"`
	Tags     []Tag  `cbor:"tags"`
}

type InputMaskRequest struct {
	RequestId string `cbor:"requestId"`
	Count     int    `cbor:"count"`
}

type FactorPair struct {
	A []byte `cbor:"a"`
	B []byte `cbor:"b"`
}

type MultiplicationExchange struct {
	OperationId   string       `cbor:"operationId"`
	PlayerId      int          `cbor:"playerId"`
	InterimValues []FactorPair `cbor:"interimValues"`
}

// OperationRequest names an open operation
type OperationRequest struct {
	OperationId string `cbor:"operationId"`
}

type InterimValuesMessage struct {
	OperationId string                   `cbor:"operationId"`
	Players     []MultiplicationExchange `cbor:"players"`
}

// parseID turns a wire identifier into a UUID. A missing or malformed
// identifier is an InvalidArgument.
func parseID(name, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, fault.InvalidArgumentf("%s must not be empty", name)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fault.Wrap(fault.InvalidArgument, err,
			"%s %q is not a valid identifier", name, s)
	}
	return id, nil
}

func checkWords(name string, data []byte) error {
	if err := field.CheckLength(data); err != nil {
		return fault.Wrap(fault.InvalidArgument, err, "invalid %s", name)
	}
	return nil
}

func fromWireTag(t Tag) (share.Tag, error) {
	vt, err := share.ParseTagValueType(t.ValueType)
	if err != nil {
		return share.Tag{}, err
	}
	return share.Tag{Key: t.Key, Value: t.Value, ValueType: vt}, nil
}

func fromWireTags(in []Tag) ([]share.Tag, error) {
	out := make([]share.Tag, 0, len(in))
	for _, t := range in {
		tag, err := fromWireTag(t)
		if err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, nil
}

func toWireTag(t share.Tag) Tag {
	return Tag{Key: t.Key, Value: t.Value, ValueType: string(t.ValueType)}
}

func toWireTags(in []share.Tag) []Tag {
	out := make([]Tag, len(in))
	for i, t := range in {
		out[i] = toWireTag(t)
	}
	return out
}

func (m *SecretShareMessage) secretShare() (*share.SecretShare, error) {
	id, err := parseID("secret id", m.SecretId)
	if err != nil {
		return nil, err
	}
	if err = checkWords("secret share data", m.Data); err != nil {
		return nil, err
	}
	tags, err := fromWireTags(m.Tags)
	if err != nil {
		return nil, err
	}
	return &share.SecretShare{ID: id, Data: m.Data, Tags: tags}, nil
}

func toSecretShareMessage(s *share.SecretShare) *SecretShareMessage {
	return &SecretShareMessage{
		SecretId: s.ID.String(),
		Data:     s.Data,
		Tags:     toWireTags(s.Tags),
	}
}

func (m *MaskedInputMessage) maskedInput() (*share.MaskedInput, error) {
	id, err := parseID("secret id", m.SecretId)
	if err != nil {
		return nil, err
	}
	for i, d := range m.Data {
		if len(d) != field.WordWidth {
			return nil, fault.InvalidArgumentf("masked value %d has length "+
				"%d, expected %d", i, len(d), field.WordWidth)
		}
	}
	tags, err := fromWireTags(m.Tags)
	if err != nil {
		return nil, err
	}
	return &share.MaskedInput{ID: id, Data: m.Data, Tags: tags}, nil
}

func toMetadataMessage(md share.Metadata) MetadataMessage {
	return MetadataMessage{SecretId: md.ID.String(), Tags: toWireTags(md.Tags)}
}

func toMetadataPage(p share.Page) *MetadataPage {
	content := make([]MetadataMessage, len(p.Content))
	for i, md := range p.Content {
		content[i] = toMetadataMessage(md)
	}
	return &MetadataPage{
		Content:       content,
		Number:        p.Number,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
}

func toOutputDeliveryMessage(o *share.OutputDeliveryObject) OutputDeliveryMessage {
	return OutputDeliveryMessage{
		SecretShares: o.SecretShares(),
		RShares:      o.RShares(),
		VShares:      o.VShares(),
		WShares:      o.WShares(),
		UShares:      o.UShares(),
	}
}

// outputDeliveryObject validates a received delivery object
func (m *OutputDeliveryMessage) outputDeliveryObject() (*share.OutputDeliveryObject, error) {
	fields := [][]byte{m.SecretShares, m.RShares, m.VShares, m.WShares,
		m.UShares}
	for i, name := range []string{"secret", "r", "v", "w", "u"} {
		if err := checkWords(name+" shares", fields[i]); err != nil {
			return nil, err
		}
	}
	return share.NewOutputDeliveryObject(m.SecretShares, m.RShares, m.VShares,
		m.WShares, m.UShares)
}

func (m *MultiplicationExchange) exchangeObject() (*share.MultiplicationExchangeObject, error) {
	op, err := parseID("operation id", m.OperationId)
	if err != nil {
		return nil, err
	}
	pairs := make([]share.FactorPair, len(m.InterimValues))
	for i, fp := range m.InterimValues {
		pairs[i] = share.FactorPair{A: fp.A, B: fp.B}
	}
	obj := &share.MultiplicationExchangeObject{
		OperationID:   op,
		PlayerID:      m.PlayerId,
		InterimValues: pairs,
	}
	if err = obj.Validate(); err != nil {
		return nil, err
	}
	return obj, nil
}

func toMultiplicationExchange(obj *share.MultiplicationExchangeObject) *MultiplicationExchange {
	pairs := make([]FactorPair, len(obj.InterimValues))
	for i, fp := range obj.InterimValues {
		pairs[i] = FactorPair{A: fp.A, B: fp.B}
	}
	return &MultiplicationExchange{
		OperationId:   obj.OperationID.String(),
		PlayerId:      obj.PlayerID,
		InterimValues: pairs,
	}
}

func (m *MetadataMessage) metadata() (share.Metadata, error) {
	id, err := parseID("secret id", m.SecretId)
	if err != nil {
		return share.Metadata{}, err
	}
	tags, err := fromWireTags(m.Tags)
	if err != nil {
		return share.Metadata{}, err
	}
	return share.Metadata{ID: id, Tags: tags}, nil
}
