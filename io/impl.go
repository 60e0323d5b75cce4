///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package io

// impl.go points every call of the node's services at its handler

import (
	"context"

	"gitlab.com/elixxir/sharestore/internal"
)

// NewServerImplementation creates the implementation of the node's services.
// When a call is added to services.go, point to its handler here.
func NewServerImplementation(instance *internal.Instance) *Implementation {
	impl := NewImplementation()

	impl.Functions.UploadSecretShare = func(_ context.Context,
		msg *SecretShareMessage) (*IdMessage, error) {
		return ReceiveUploadSecretShare(instance, msg)
	}
	impl.Functions.DownloadSecretShare = func(_ context.Context,
		msg *IdMessage) (*SecretShareMessage, error) {
		return ReceiveDownloadSecretShare(instance, msg)
	}
	impl.Functions.OpenInterimValues = func(ctx context.Context,
		msg *MultiplicationExchange) (*Empty, error) {
		return ReceiveOpenInterimValues(ctx, instance, msg)
	}
	impl.Functions.GetInterimValues = func(_ context.Context,
		msg *OperationRequest) (*InterimValuesMessage, error) {
		return ReceiveGetInterimValues(instance, msg)
	}

	impl.Functions.UploadMaskedInput = func(_ context.Context,
		msg *MaskedInputMessage) (*IdMessage, error) {
		return ReceiveUploadMaskedInput(instance, msg)
	}

	impl.Functions.GetObjectList = func(_ context.Context,
		msg *ObjectListRequest) (*MetadataPage, error) {
		return ReceiveGetObjectList(instance, msg)
	}
	impl.Functions.GetSecretShare = func(ctx context.Context,
		msg *DownloadRequest) (*VerifiableSecretShare, error) {
		return ReceiveGetSecretShare(ctx, instance, msg)
	}
	impl.Functions.DeleteSecretShare = func(_ context.Context,
		msg *IdMessage) (*Empty, error) {
		return ReceiveDeleteSecretShare(instance, msg)
	}

	impl.Functions.GetTags = func(_ context.Context,
		msg *IdMessage) (*TagsMessage, error) {
		return ReceiveGetTags(instance, msg)
	}
	impl.Functions.GetTag = func(_ context.Context,
		msg *TagRequest) (*Tag, error) {
		return ReceiveGetTag(instance, msg)
	}
	impl.Functions.CreateTag = func(_ context.Context,
		msg *TagRequest) (*Empty, error) {
		return ReceiveCreateTag(instance, msg)
	}
	impl.Functions.PutTag = func(_ context.Context,
		msg *TagRequest) (*Empty, error) {
		return ReceivePutTag(instance, msg)
	}
	impl.Functions.UpdateTags = func(_ context.Context,
		msg *TagsMessage) (*Empty, error) {
		return ReceiveUpdateTags(instance, msg)
	}
	impl.Functions.DeleteTag = func(_ context.Context,
		msg *TagRequest) (*Empty, error) {
		return ReceiveDeleteTag(instance, msg)
	}

	impl.Functions.GetInputMask = func(ctx context.Context,
		msg *InputMaskRequest) (*OutputDeliveryMessage, error) {
		return ReceiveGetInputMask(ctx, instance, msg)
	}

	impl.Functions.Open = func(_ context.Context,
		msg *MultiplicationExchange) (*Empty, error) {
		return ReceiveOpen(instance, msg)
	}

	return impl
}
