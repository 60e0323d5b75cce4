///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package io

// client.go contains the client for every call of a node. Responses are
// checked the same way requests are on the server.

import (
	"context"

	"github.com/google/uuid"
	"gitlab.com/elixxir/sharestore/internal/share"
)

// Client calls the services of one node
type Client struct {
	host *Host
}

// NewClient creates a client for the node reachable through host
func NewClient(host *Host) *Client {
	return &Client{host: host}
}

func (c *Client) UploadSecretShare(ctx context.Context,
	secret *share.SecretShare) (uuid.UUID, error) {
	resp := &IdMessage{}
	err := c.host.invoke(ctx, IntraVcpService, "UploadSecretShare",
		toSecretShareMessage(secret), resp)
	if err != nil {
		return uuid.Nil, err
	}
	return parseID("secret id", resp.SecretId)
}

func (c *Client) DownloadSecretShare(ctx context.Context,
	id uuid.UUID) (*share.SecretShare, error) {
	resp := &SecretShareMessage{}
	err := c.host.invoke(ctx, IntraVcpService, "DownloadSecretShare",
		&IdMessage{SecretId: id.String()}, resp)
	if err != nil {
		return nil, err
	}
	return resp.secretShare()
}

// OpenInterimValues asks the node to distribute its own interim values to
// its siblings
func (c *Client) OpenInterimValues(ctx context.Context,
	obj *share.MultiplicationExchangeObject) error {
	return c.host.invoke(ctx, IntraVcpService, "OpenInterimValues",
		toMultiplicationExchange(obj), &Empty{})
}

// GetInterimValues returns the contributions the node holds for an
// operation, keyed by player
func (c *Client) GetInterimValues(ctx context.Context,
	operationID uuid.UUID) (map[int][]share.FactorPair, error) {
	resp := &InterimValuesMessage{}
	err := c.host.invoke(ctx, IntraVcpService, "GetInterimValues",
		&OperationRequest{OperationId: operationID.String()}, resp)
	if err != nil {
		return nil, err
	}
	out := make(map[int][]share.FactorPair, len(resp.Players))
	for i := range resp.Players {
		obj, err := resp.Players[i].exchangeObject()
		if err != nil {
			return nil, err
		}
		out[obj.PlayerID] = obj.InterimValues
	}
	return out, nil
}

func (c *Client) UploadMaskedInput(ctx context.Context,
	input *share.MaskedInput) (uuid.UUID, error) {
	resp := &IdMessage{}
	err := c.host.invoke(ctx, MaskedInputService, "Upload",
		&MaskedInputMessage{
			SecretId: input.ID.String(),
			Data:     input.Data,
			Tags:     toWireTags(input.Tags),
		}, resp)
	if err != nil {
		return uuid.Nil, err
	}
	return parseID("secret id", resp.SecretId)
}

// GetObjectList lists metadata. filter uses the tag filter grammar; zero
// page values list everything.
func (c *Client) GetObjectList(ctx context.Context, filter, sortProperty,
	sortDirection string, pageNumber, pageSize int) (share.Page, error) {
	resp := &MetadataPage{}
	err := c.host.invoke(ctx, SecretShareService, "GetObjectList",
		&ObjectListRequest{
			Filter:        filter,
			SortProperty:  sortProperty,
			SortDirection: sortDirection,
			PageNumber:    pageNumber,
			PageSize:      pageSize,
		}, resp)
	if err != nil {
		return share.Page{}, err
	}
	content := make([]share.Metadata, len(resp.Content))
	for i := range resp.Content {
		if content[i], err = resp.Content[i].metadata(); err != nil {
			return share.Page{}, err
		}
	}
	return share.Page{
		Content:       content,
		Number:        resp.Number,
		Size:          resp.Size,
		TotalElements: resp.TotalElements,
		TotalPages:    resp.TotalPages,
	}, nil
}

// GetSecretShare fetches the node's share of a secret together with the
// output delivery object bound to requestID
func (c *Client) GetSecretShare(ctx context.Context, id,
	requestID uuid.UUID) (share.Metadata, *share.OutputDeliveryObject, error) {
	resp := &VerifiableSecretShare{}
	err := c.host.invoke(ctx, SecretShareService, "GetSecretShare",
		&DownloadRequest{SecretId: id.String(), RequestId: requestID.String()},
		resp)
	if err != nil {
		return share.Metadata{}, nil, err
	}
	md, err := resp.Metadata.metadata()
	if err != nil {
		return share.Metadata{}, nil, err
	}
	odo, err := resp.OutputDelivery.outputDeliveryObject()
	if err != nil {
		return share.Metadata{}, nil, err
	}
	return md, odo, nil
}

func (c *Client) DeleteSecretShare(ctx context.Context, id uuid.UUID) error {
	return c.host.invoke(ctx, SecretShareService, "DeleteSecretShare",
		&IdMessage{SecretId: id.String()}, &Empty{})
}

func (c *Client) GetTags(ctx context.Context, id uuid.UUID) ([]share.Tag, error) {
	resp := &TagsMessage{}
	err := c.host.invoke(ctx, TagsService, "GetTags",
		&IdMessage{SecretId: id.String()}, resp)
	if err != nil {
		return nil, err
	}
	return fromWireTags(resp.Tags)
}

func (c *Client) GetTag(ctx context.Context, id uuid.UUID,
	key string) (share.Tag, error) {
	resp := &Tag{}
	err := c.host.invoke(ctx, TagsService, "GetTag",
		&TagRequest{SecretId: id.String(), Key: key}, resp)
	if err != nil {
		return share.Tag{}, err
	}
	return fromWireTag(*resp)
}

func (c *Client) CreateTag(ctx context.Context, id uuid.UUID,
	tag share.Tag) error {
	wire := toWireTag(tag)
	return c.host.invoke(ctx, TagsService, "CreateTag",
		&TagRequest{SecretId: id.String(), Key: tag.Key, Tag: &wire}, &Empty{})
}

func (c *Client) PutTag(ctx context.Context, id uuid.UUID, key string,
	tag share.Tag) error {
	wire := toWireTag(tag)
	return c.host.invoke(ctx, TagsService, "PutTag",
		&TagRequest{SecretId: id.String(), Key: key, Tag: &wire}, &Empty{})
}

func (c *Client) UpdateTags(ctx context.Context, id uuid.UUID,
	tags []share.Tag) error {
	return c.host.invoke(ctx, TagsService, "UpdateTags",
		&TagsMessage{SecretId: id.String(), Tags: toWireTags(tags)}, &Empty{})
}

func (c *Client) DeleteTag(ctx context.Context, id uuid.UUID, key string) error {
	return c.host.invoke(ctx, TagsService, "DeleteTag",
		&TagRequest{SecretId: id.String(), Key: key}, &Empty{})
}

// GetInputMask reserves count input masks for requestID
func (c *Client) GetInputMask(ctx context.Context, requestID uuid.UUID,
	count int) (*share.OutputDeliveryObject, error) {
	req := &InputMaskRequest{Count: count}
	if requestID != uuid.Nil {
		req.RequestId = requestID.String()
	}
	resp := &OutputDeliveryMessage{}
	if err := c.host.invoke(ctx, InputMaskService, "GetInputMask", req,
		resp); err != nil {
		return nil, err
	}
	return resp.outputDeliveryObject()
}
