///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package io

// services.go declares the gRPC services of the node. When a call is added,
// give it a field in Functions and a method in its service descriptor.

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	IntraVcpService    = "sharestore.IntraVcp"
	MaskedInputService = "sharestore.MaskedInput"
	SecretShareService = "sharestore.SecretShare"
	TagsService        = "sharestore.Tags"
	InputMaskService   = "sharestore.InputMask"
	InterVcpService    = "sharestore.InterVcp"
)

// Functions holds the handler of every call. A nil handler answers with
// codes.Unimplemented.
type Functions struct {
	// sharestore.IntraVcp
	UploadSecretShare   func(ctx context.Context, msg *SecretShareMessage) (*IdMessage, error)
	DownloadSecretShare func(ctx context.Context, msg *IdMessage) (*SecretShareMessage, error)
	OpenInterimValues   func(ctx context.Context, msg *MultiplicationExchange) (*Empty, error)
	GetInterimValues    func(ctx context.Context, msg *OperationRequest) (*InterimValuesMessage, error)

	// sharestore.MaskedInput
	UploadMaskedInput func(ctx context.Context, msg *MaskedInputMessage) (*IdMessage, error)

	// sharestore.SecretShare
	GetObjectList     func(ctx context.Context, msg *ObjectListRequest) (*MetadataPage, error)
	GetSecretShare    func(ctx context.Context, msg *DownloadRequest) (*VerifiableSecretShare, error)
	DeleteSecretShare func(ctx context.Context, msg *IdMessage) (*Empty, error)

	// sharestore.Tags
	GetTags    func(ctx context.Context, msg *IdMessage) (*TagsMessage, error)
	GetTag     func(ctx context.Context, msg *TagRequest) (*Tag, error)
	CreateTag  func(ctx context.Context, msg *TagRequest) (*Empty, error)
	PutTag     func(ctx context.Context, msg *TagRequest) (*Empty, error)
	UpdateTags func(ctx context.Context, msg *TagsMessage) (*Empty, error)
	DeleteTag  func(ctx context.Context, msg *TagRequest) (*Empty, error)

	// sharestore.InputMask
	GetInputMask func(ctx context.Context, msg *InputMaskRequest) (*OutputDeliveryMessage, error)

	// sharestore.InterVcp
	Open func(ctx context.Context, msg *MultiplicationExchange) (*Empty, error)
}

// Implementation is registered as the server of every service
type Implementation struct {
	Functions Functions
}

// NewImplementation returns an implementation with no handlers set
func NewImplementation() *Implementation {
	return &Implementation{}
}

type functionsHolder interface {
	functions() *Functions
}

func (i *Implementation) functions() *Functions {
	return &i.Functions
}

// unaryMethod builds the descriptor of one call. pick selects the handler
// out of the registered implementation.
func unaryMethod[Req, Resp any](service, name string,
	pick func(*Functions) func(context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context,
			dec func(interface{}) error,
			interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			fn := pick(srv.(functionsHolder).functions())
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				if fn == nil {
					return nil, status.Errorf(codes.Unimplemented,
						"method %s not implemented", fullMethod)
				}
				resp, err := fn(ctx, req.(*Req))
				if err != nil {
					return nil, err
				}
				return resp, nil
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func serviceDesc(name string, methods ...grpc.MethodDesc) *grpc.ServiceDesc {
	return &grpc.ServiceDesc{
		ServiceName: name,
		HandlerType: (*functionsHolder)(nil),
		Methods:     methods,
		Streams:     []grpc.StreamDesc{},
		Metadata:    "sharestore",
	}
}

// serviceDescs returns the descriptors of every service of the node
func serviceDescs() []*grpc.ServiceDesc {
	return []*grpc.ServiceDesc{
		serviceDesc(IntraVcpService,
			unaryMethod(IntraVcpService, "UploadSecretShare",
				func(f *Functions) func(context.Context, *SecretShareMessage) (*IdMessage, error) {
					return f.UploadSecretShare
				}),
			unaryMethod(IntraVcpService, "DownloadSecretShare",
				func(f *Functions) func(context.Context, *IdMessage) (*SecretShareMessage, error) {
					return f.DownloadSecretShare
				}),
			unaryMethod(IntraVcpService, "OpenInterimValues",
				func(f *Functions) func(context.Context, *MultiplicationExchange) (*Empty, error) {
					return f.OpenInterimValues
				}),
			unaryMethod(IntraVcpService, "GetInterimValues",
				func(f *Functions) func(context.Context, *OperationRequest) (*InterimValuesMessage, error) {
					return f.GetInterimValues
				}),
		),
		serviceDesc(MaskedInputService,
			unaryMethod(MaskedInputService, "Upload",
				func(f *Functions) func(context.Context, *MaskedInputMessage) (*IdMessage, error) {
					return f.UploadMaskedInput
				}),
		),
		serviceDesc(SecretShareService,
			unaryMethod(SecretShareService, "GetObjectList",
				func(f *Functions) func(context.Context, *ObjectListRequest) (*MetadataPage, error) {
					return f.GetObjectList
				}),
			unaryMethod(SecretShareService, "GetSecretShare",
				func(f *Functions) func(context.Context, *DownloadRequest) (*VerifiableSecretShare, error) {
					return f.GetSecretShare
				}),
			unaryMethod(SecretShareService, "DeleteSecretShare",
				func(f *Functions) func(context.Context, *IdMessage) (*Empty, error) {
					return f.DeleteSecretShare
				}),
		),
		serviceDesc(TagsService,
			unaryMethod(TagsService, "GetTags",
				func(f *Functions) func(context.Context, *IdMessage) (*TagsMessage, error) {
					return f.GetTags
				}),
			unaryMethod(TagsService, "GetTag",
				func(f *Functions) func(context.Context, *TagRequest) (*Tag, error) {
					return f.GetTag
				}),
			unaryMethod(TagsService, "CreateTag",
				func(f *Functions) func(context.Context, *TagRequest) (*Empty, error) {
					return f.CreateTag
				}),
			unaryMethod(TagsService, "PutTag",
				func(f *Functions) func(context.Context, *TagRequest) (*Empty, error) {
					return f.PutTag
				}),
			unaryMethod(TagsService, "UpdateTags",
				func(f *Functions) func(context.Context, *TagsMessage) (*Empty, error) {
					return f.UpdateTags
				}),
			unaryMethod(TagsService, "DeleteTag",
				func(f *Functions) func(context.Context, *TagRequest) (*Empty, error) {
					return f.DeleteTag
				}),
		),
		serviceDesc(InputMaskService,
			unaryMethod(InputMaskService, "GetInputMask",
				func(f *Functions) func(context.Context, *InputMaskRequest) (*OutputDeliveryMessage, error) {
					return f.GetInputMask
				}),
		),
		serviceDesc(InterVcpService,
			unaryMethod(InterVcpService, "Open",
				func(f *Functions) func(context.Context, *MultiplicationExchange) (*Empty, error) {
					return f.Open
				}),
		),
	}
}
