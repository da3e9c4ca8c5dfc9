// Package sessionpb описывает gRPC-сервис сессий GridNode.
//
// Сообщения сервиса это стандартные типы protobuf: токен передаётся
// в google.protobuf.StringValue, ответ возвращается в google.protobuf.Struct.
// Описание сервиса зарегистрировано вручную, без генерации кода.
package sessionpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName полное имя сервиса.
const ServiceName = "gridnode.session.v1.SessionService"

// Полные имена методов.
const (
	ValidateFullMethod = "/" + ServiceName + "/Validate"
	UsageFullMethod    = "/" + ServiceName + "/Usage"
)

// SessionServiceServer серверная часть сервиса сессий.
type SessionServiceServer interface {
	// Validate проверяет токен и возвращает пользователя сессии.
	Validate(ctx context.Context, token *wrapperspb.StringValue) (*structpb.Struct, error)
	// Usage возвращает снимок квоты пользователя сессии.
	Usage(ctx context.Context, token *wrapperspb.StringValue) (*structpb.Struct, error)
}

// RegisterSessionServiceServer регистрирует srv на сервере s.
func RegisterSessionServiceServer(s grpc.ServiceRegistrar, srv SessionServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func validateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SessionServiceServer).Validate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ValidateFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionServiceServer).Validate(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func usageHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SessionServiceServer).Usage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: UsageFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionServiceServer).Usage(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc описание сервиса для grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SessionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Validate", Handler: validateHandler},
		{MethodName: "Usage", Handler: usageHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gridnode/session/v1/session.proto",
}

// SessionServiceClient клиентская часть сервиса сессий.
type SessionServiceClient interface {
	Validate(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Usage(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type sessionServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSessionServiceClient создаёт клиента поверх соединения cc.
func NewSessionServiceClient(cc grpc.ClientConnInterface) SessionServiceClient {
	return &sessionServiceClient{cc: cc}
}

func (c *sessionServiceClient) Validate(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ValidateFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *sessionServiceClient) Usage(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, UsageFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
