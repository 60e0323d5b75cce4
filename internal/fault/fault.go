///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

// Package fault defines the error kinds returned by the share store and maps
// them onto gRPC status codes at the transport boundary.
package fault

import (
	"fmt"

	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies an error by what the caller did wrong (or what went wrong)
type Kind uint8

const (
	Unknown Kind = iota
	InvalidArgument
	NotFound
	Conflict
	ResourceExhausted
	RemoteFailure
	ConstructionInvariantViolation
	Internal
)

var kindNames = map[Kind]string{
	Unknown:                        "UNKNOWN",
	InvalidArgument:                "INVALID_ARGUMENT",
	NotFound:                       "NOT_FOUND",
	Conflict:                       "CONFLICT",
	ResourceExhausted:              "RESOURCE_EXHAUSTED",
	RemoteFailure:                  "REMOTE_FAILURE",
	ConstructionInvariantViolation: "CONSTRUCTION_INVARIANT_VIOLATION",
	Internal:                       "INTERNAL",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Kinded is implemented by errors which know their own Kind. Errors defined
// outside this package (the open coordinator's aggregate failure) use it to
// take part in KindOf.
type Kinded interface {
	Kind() Kind
}

// Error is an error tagged with a Kind
type Error struct {
	kind  Kind
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.msg
	}
	if e.msg == "" {
		return e.cause.Error()
	}
	return e.msg + ": " + e.cause.Error()
}

// Kind returns the classification of the error
func (e *Error) Kind() Kind { return e.kind }

// Cause returns the wrapped error, if any
func (e *Error) Cause() error { return e.cause }

// Unwrap supports errors.Is / errors.As
func (e *Error) Unwrap() error { return e.cause }

// New creates an error of the given kind with a formatted message
func New(kind Kind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{kind: kind, msg: fmt.Sprintf(format, args...)})
}

// Wrap tags err with kind. A nil err returns nil.
func Wrap(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&Error{kind: kind, msg: fmt.Sprintf(format, args...), cause: err})
}

// Convenience constructors for the common kinds

func InvalidArgumentf(format string, args ...interface{}) error {
	return New(InvalidArgument, format, args...)
}

func NotFoundf(format string, args ...interface{}) error {
	return New(NotFound, format, args...)
}

func Conflictf(format string, args ...interface{}) error {
	return New(Conflict, format, args...)
}

func ResourceExhaustedf(format string, args ...interface{}) error {
	return New(ResourceExhausted, format, args...)
}

// KindOf returns the Kind of the first tagged error in err's chain, or
// Unknown if the chain carries none
func KindOf(err error) Kind {
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return Unknown
}

// Is reports whether err's chain carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

var kindToCode = map[Kind]codes.Code{
	Unknown:                        codes.Unknown,
	InvalidArgument:                codes.InvalidArgument,
	NotFound:                       codes.NotFound,
	Conflict:                       codes.AlreadyExists,
	ResourceExhausted:              codes.ResourceExhausted,
	RemoteFailure:                  codes.Unavailable,
	ConstructionInvariantViolation: codes.Internal,
	Internal:                       codes.Internal,
}

// ToStatus converts err into a gRPC status error carrying the code for its
// kind. Errors which already are status errors pass through untouched.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(kindToCode[KindOf(err)], err.Error())
}

// FromStatus converts a gRPC status error received from a remote party back
// into a tagged error so callers can test it with Is
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	kind := Unknown
	switch st.Code() {
	case codes.InvalidArgument:
		kind = InvalidArgument
	case codes.NotFound:
		kind = NotFound
	case codes.AlreadyExists:
		kind = Conflict
	case codes.ResourceExhausted:
		kind = ResourceExhausted
	case codes.Unavailable, codes.DeadlineExceeded:
		kind = RemoteFailure
	case codes.Internal:
		kind = Internal
	}
	return &Error{kind: kind, msg: st.Message()}
}
