package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "pakegate.v1.Handshake"

// Full method names, usable with grpc.ClientConn.Invoke.
const (
	MethodRegisterStart  = "/" + ServiceName + "/RegisterStart"
	MethodRegisterFinish = "/" + ServiceName + "/RegisterFinish"
	MethodLoginStart     = "/" + ServiceName + "/LoginStart"
	MethodLoginFinish    = "/" + ServiceName + "/LoginFinish"
)

// HandshakeServer mirrors the HTTP API. Requests and responses are
// google.protobuf.Struct values shaped like the HTTP JSON bodies; finish
// requests carry the correlation key in a "key" field.
type HandshakeServer interface {
	RegisterStart(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RegisterFinish(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LoginStart(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LoginFinish(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var HandshakeServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HandshakeServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("RegisterStart", MethodRegisterStart, HandshakeServer.RegisterStart),
		unaryMethod("RegisterFinish", MethodRegisterFinish, HandshakeServer.RegisterFinish),
		unaryMethod("LoginStart", MethodLoginStart, HandshakeServer.LoginStart),
		unaryMethod("LoginFinish", MethodLoginFinish, HandshakeServer.LoginFinish),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pakegate/v1/handshake.proto",
}

type structCall func(HandshakeServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name, fullMethod string, call structCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(HandshakeServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(HandshakeServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
