///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package share

import (
	"strconv"
	"strings"

	"gitlab.com/elixxir/sharestore/internal/fault"
)

// TagValueType states how a tag's value is interpreted
type TagValueType string

const (
	STRING TagValueType = "STRING"
	LONG   TagValueType = "LONG"
)

// ParseTagValueType accepts the type names case insensitively; an empty
// name defaults to STRING
func ParseTagValueType(s string) (TagValueType, error) {
	switch strings.ToUpper(s) {
	case "", string(STRING):
		return STRING, nil
	case string(LONG):
		return LONG, nil
	default:
		return "", fault.InvalidArgumentf("unknown tag value type %q", s)
	}
}

// CreationDateKey is set by the store on every new secret and cannot be
// changed by clients
const CreationDateKey = "creation-date"

var reservedKeys = map[string]bool{
	CreationDateKey: true,
}

// IsReservedKey reports whether key is managed by the store
func IsReservedKey(key string) bool {
	return reservedKeys[key]
}

// Tag is a key/value annotation of a secret
type Tag struct {
	Key       string
	Value     string
	ValueType TagValueType
}

// Validate checks a single tag
func (t Tag) Validate() error {
	if t.Key == "" {
		return fault.InvalidArgumentf("tag key must not be empty")
	}
	switch t.ValueType {
	case STRING:
	case LONG:
		if _, err := strconv.ParseInt(t.Value, 10, 64); err != nil {
			return fault.InvalidArgumentf("value %q of tag %q is not a "+
				"valid %s", t.Value, t.Key, LONG)
		}
	default:
		return fault.InvalidArgumentf("tag %q has unknown value type %q",
			t.Key, t.ValueType)
	}
	return nil
}

// ValidateTags checks every tag and that keys are unique within the list
func ValidateTags(tags []Tag) error {
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.Key] {
			return fault.InvalidArgumentf("duplicate tag key %q", t.Key)
		}
		seen[t.Key] = true
	}
	return nil
}

// CopyTags returns a copy of tags which never aliases the input. A nil input
// yields an empty, non nil list.
func CopyTags(tags []Tag) []Tag {
	out := make([]Tag, len(tags))
	copy(out, tags)
	return out
}

// FindTag returns the tag with the given key
func FindTag(tags []Tag, key string) (Tag, bool) {
	for _, t := range tags {
		if t.Key == key {
			return t, true
		}
	}
	return Tag{}, false
}

// StripReserved splits tags into the ones clients may set and the reserved
// ones
func StripReserved(tags []Tag) (allowed []Tag, reserved []Tag) {
	allowed = make([]Tag, 0, len(tags))
	for _, t := range tags {
		if IsReservedKey(t.Key) {
			reserved = append(reserved, t)
			continue
		}
		allowed = append(allowed, t)
	}
	return allowed, reserved
}
