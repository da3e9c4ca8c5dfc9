// Package client содержит gRPC-клиента сервиса сессий.
package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/gridnode/internal/grpc/sessionpb"
)

// SessionClient клиент сервиса сессий.
type SessionClient struct {
	conn   *grpc.ClientConn
	client sessionpb.SessionServiceClient
}

// NewSessionClient создаёт клиента для addr. Дополнительные opts
// добавляются после insecure-транспорта.
func NewSessionClient(addr string, opts ...grpc.DialOption) (*SessionClient, error) {
	const op = "grpc.client.NewSessionClient"
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &SessionClient{conn: conn, client: sessionpb.NewSessionServiceClient(conn)}, nil
}

// Close закрывает соединение.
func (c *SessionClient) Close() error {
	return c.conn.Close()
}

// Validate возвращает пользователя сессии token.
func (c *SessionClient) Validate(ctx context.Context, token string) (map[string]any, error) {
	return c.call(ctx, c.client.Validate, token)
}

// Usage возвращает снимок квоты пользователя сессии token.
func (c *SessionClient) Usage(ctx context.Context, token string) (map[string]any, error) {
	return c.call(ctx, c.client.Usage, token)
}

// Ping проверяет, что сервис отвечает. Запрос с пустым токеном сервис
// отклоняет с InvalidArgument, такой ответ считается живым.
func (c *SessionClient) Ping(ctx context.Context) error {
	const op = "grpc.client.Ping"
	_, err := c.client.Validate(ctx, wrapperspb.String(""))
	if err == nil || status.Code(err) == codes.InvalidArgument {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

type method func(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)

func (c *SessionClient) call(ctx context.Context, m method, token string) (map[string]any, error) {
	out, err := m(ctx, wrapperspb.String(token))
	if err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}
