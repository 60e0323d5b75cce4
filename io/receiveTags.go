///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package io

// receiveTags.go contains the handlers for the Tags service

import (
	"github.com/google/uuid"
	"gitlab.com/elixxir/sharestore/internal"
	"gitlab.com/elixxir/sharestore/internal/fault"
	"gitlab.com/elixxir/sharestore/internal/share"
)

func ReceiveGetTags(instance *internal.Instance,
	msg *IdMessage) (*TagsMessage, error) {
	id, err := parseID("secret id", msg.SecretId)
	if err != nil {
		return nil, err
	}
	tags, err := instance.GetStorage().GetTags(id)
	if err != nil {
		return nil, err
	}
	return &TagsMessage{SecretId: id.String(), Tags: toWireTags(tags)}, nil
}

func ReceiveGetTag(instance *internal.Instance, msg *TagRequest) (*Tag, error) {
	id, err := parseID("secret id", msg.SecretId)
	if err != nil {
		return nil, err
	}
	tag, err := instance.GetStorage().GetTag(id, msg.Key)
	if err != nil {
		return nil, err
	}
	wire := toWireTag(tag)
	return &wire, nil
}

func ReceiveCreateTag(instance *internal.Instance,
	msg *TagRequest) (*Empty, error) {
	id, tag, err := tagOf(msg)
	if err != nil {
		return nil, err
	}
	if err = instance.GetStorage().CreateTag(id, tag); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func ReceivePutTag(instance *internal.Instance,
	msg *TagRequest) (*Empty, error) {
	id, tag, err := tagOf(msg)
	if err != nil {
		return nil, err
	}
	if err = instance.GetStorage().PutTag(id, msg.Key, tag); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

// ReceiveUpdateTags replaces every client tag of a secret
func ReceiveUpdateTags(instance *internal.Instance,
	msg *TagsMessage) (*Empty, error) {
	id, err := parseID("secret id", msg.SecretId)
	if err != nil {
		return nil, err
	}
	tags, err := fromWireTags(msg.Tags)
	if err != nil {
		return nil, err
	}
	if err = instance.GetStorage().ReplaceTags(id, tags); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func ReceiveDeleteTag(instance *internal.Instance,
	msg *TagRequest) (*Empty, error) {
	id, err := parseID("secret id", msg.SecretId)
	if err != nil {
		return nil, err
	}
	if err = instance.GetStorage().DeleteTag(id, msg.Key); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func tagOf(msg *TagRequest) (uuid.UUID, share.Tag, error) {
	id, err := parseID("secret id", msg.SecretId)
	if err != nil {
		return uuid.Nil, share.Tag{}, err
	}
	if msg.Tag == nil {
		return uuid.Nil, share.Tag{}, fault.InvalidArgumentf("tag must " +
			"not be null")
	}
	tag, err := fromWireTag(*msg.Tag)
	if err != nil {
		return uuid.Nil, share.Tag{}, err
	}
	return id, tag, nil
}
