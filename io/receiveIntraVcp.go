///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package io

// receiveIntraVcp.go contains the handlers for calls made by the other
// components of this party

import (
	"context"
	"sort"

	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/sharestore/internal"
	"gitlab.com/elixxir/sharestore/internal/fault"
	"gitlab.com/elixxir/sharestore/internal/share"
)

// ReceiveUploadSecretShare stores a share uploaded within the party
func ReceiveUploadSecretShare(instance *internal.Instance,
	msg *SecretShareMessage) (*IdMessage, error) {
	secret, err := msg.secretShare()
	if err != nil {
		return nil, err
	}
	id, err := instance.GetStorage().StoreSecretShare(secret)
	if err != nil {
		return nil, err
	}
	return &IdMessage{SecretId: id.String()}, nil
}

// ReceiveDownloadSecretShare returns a stored share as is
func ReceiveDownloadSecretShare(instance *internal.Instance,
	msg *IdMessage) (*SecretShareMessage, error) {
	id, err := parseID("secret id", msg.SecretId)
	if err != nil {
		return nil, err
	}
	secret, err := instance.GetStorage().GetSecretShare(id)
	if err != nil {
		return nil, err
	}
	return toSecretShareMessage(secret), nil
}

// ReceiveOpenInterimValues records this party's contribution and sends it to
// every sibling, returning once all of them answered
func ReceiveOpenInterimValues(ctx context.Context, instance *internal.Instance,
	msg *MultiplicationExchange) (*Empty, error) {
	obj, err := msg.exchangeObject()
	if err != nil {
		return nil, err
	}
	if obj.PlayerID != instance.GetPlayerID() {
		return nil, fault.InvalidArgumentf("interim values of player %d "+
			"cannot be opened by player %d", obj.PlayerID,
			instance.GetPlayerID())
	}
	if err = instance.GetCoordinator().Open(ctx, obj); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

// ReceiveGetInterimValues returns every contribution recorded for an
// operation, ordered by player. Once every party's values have been returned
// the operation is dropped from the cache.
func ReceiveGetInterimValues(instance *internal.Instance,
	msg *OperationRequest) (*InterimValuesMessage, error) {
	op, err := parseID("operation id", msg.OperationId)
	if err != nil {
		return nil, err
	}
	recorded := instance.GetInterimCache().GetOperation(op)
	if len(recorded) == 0 {
		return nil, fault.NotFoundf("no interim values recorded for "+
			"operation %s", op)
	}

	players := make([]int, 0, len(recorded))
	for player := range recorded {
		players = append(players, player)
	}
	sort.Ints(players)

	resp := &InterimValuesMessage{OperationId: op.String()}
	for _, player := range players {
		resp.Players = append(resp.Players, *toMultiplicationExchange(
			&share.MultiplicationExchangeObject{
				OperationID:   op,
				PlayerID:      player,
				InterimValues: recorded[player],
			}))
	}
	if len(players) >= instance.GetParties() {
		instance.GetInterimCache().DeleteOperation(op)
		jww.DEBUG.Printf("Operation %s is complete, dropped its interim "+
			"values", op)
	}
	jww.DEBUG.Printf("Returning interim values of %d players for "+
		"operation %s", len(players), op)
	return resp, nil
}
