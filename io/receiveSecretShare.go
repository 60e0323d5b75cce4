///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package io

// receiveSecretShare.go contains the handlers for the client facing
// SecretShare service

import (
	"context"

	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/sharestore/internal"
	"gitlab.com/elixxir/sharestore/internal/share"
)

// ReceiveGetObjectList lists the metadata matching the request's filter
func ReceiveGetObjectList(instance *internal.Instance,
	msg *ObjectListRequest) (*MetadataPage, error) {
	filters, err := share.ParseTagFilters(msg.Filter)
	if err != nil {
		return nil, err
	}
	page, err := instance.GetStorage().ListMetadata(filters,
		share.NewSort(msg.SortProperty, msg.SortDirection),
		share.NewPageRequest(msg.PageNumber, msg.PageSize))
	if err != nil {
		return nil, err
	}
	jww.DEBUG.Printf("Listing for filter %q returned %d of %d secrets",
		msg.Filter, len(page.Content), page.TotalElements)
	return toMetadataPage(page), nil
}

// ReceiveGetSecretShare returns a share together with the output delivery
// object the client verifies it with
func ReceiveGetSecretShare(ctx context.Context, instance *internal.Instance,
	msg *DownloadRequest) (*VerifiableSecretShare, error) {
	id, err := parseID("secret id", msg.SecretId)
	if err != nil {
		return nil, err
	}
	requestID, err := parseID("request id", msg.RequestId)
	if err != nil {
		return nil, err
	}

	secret, err := instance.GetStorage().GetSecretShare(id)
	if err != nil {
		return nil, err
	}
	odo, err := instance.GetDeliveryEngine().ComputeOutputDeliveryObject(ctx,
		secret, requestID)
	if err != nil {
		return nil, err
	}
	return &VerifiableSecretShare{
		Metadata:       toMetadataMessage(secret.Metadata()),
		OutputDelivery: toOutputDeliveryMessage(odo),
	}, nil
}

// ReceiveDeleteSecretShare removes a share and its tags
func ReceiveDeleteSecretShare(instance *internal.Instance,
	msg *IdMessage) (*Empty, error) {
	id, err := parseID("secret id", msg.SecretId)
	if err != nil {
		return nil, err
	}
	if err = instance.GetStorage().DeleteSecretShare(id); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}
