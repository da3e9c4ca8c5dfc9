// Package server реализует gRPC-сервер сервиса сессий.
//
// SessionServer проверяет токены сессий для внутренних потребителей
// и отдаёт пользователя и снимок его квоты. Бизнес-логика делегируется
// сервису сессий.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/gridnode/internal/grpc/sessionpb"
	"github.com/magabrotheeeer/gridnode/internal/lib/sl"
	"github.com/magabrotheeeer/gridnode/internal/models"
	"github.com/magabrotheeeer/gridnode/internal/quota"
)

// SessionService проверка токена сессии.
type SessionService interface {
	Authenticate(ctx context.Context, token string) (*models.User, string, error)
}

// SessionServer реализует sessionpb.SessionServiceServer.
type SessionServer struct {
	sessions SessionService
	log      *slog.Logger
}

var _ sessionpb.SessionServiceServer = (*SessionServer)(nil)

// NewSessionServer создает новый экземпляр SessionServer.
func NewSessionServer(sessions SessionService, log *slog.Logger) *SessionServer {
	return &SessionServer{sessions: sessions, log: log}
}

// Validate проверяет токен и возвращает пользователя.
func (s *SessionServer) Validate(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	const op = "grpc.server.Validate"
	u, err := s.authenticate(ctx, op, req)
	if err != nil {
		return nil, err
	}

	var expiry any
	if u.SubscriptionExpiry != nil {
		expiry = u.SubscriptionExpiry.UTC().Format(time.RFC3339)
	}
	out, err := structpb.NewStruct(map[string]any{
		"id":                  u.ID,
		"email":               u.Email,
		"role":                u.Role,
		"is_verified":         u.IsVerified,
		"subscription_plan":   string(u.SubscriptionPlan),
		"subscription_expiry": expiry,
		"scans_used":          u.ScansUsed,
	})
	if err != nil {
		s.log.Error("failed to encode user", sl.Op(op), sl.Err(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

// Usage возвращает снимок квоты пользователя.
func (s *SessionServer) Usage(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	const op = "grpc.server.Usage"
	u, err := s.authenticate(ctx, op, req)
	if err != nil {
		return nil, err
	}

	usage := quota.Compute(u)
	fields := map[string]any{
		"plan":          string(usage.Plan),
		"scans_used":    usage.ScansUsed,
		"unlimited":     usage.Unlimited,
		"usage_percent": usage.UsagePercent,
		"can_scan":      usage.CanScan,
		"limit":         nil,
		"remaining":     nil,
	}
	if usage.Limit != nil {
		fields["limit"] = *usage.Limit
		fields["remaining"] = *usage.Remaining
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		s.log.Error("failed to encode usage", sl.Op(op), sl.Err(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func (s *SessionServer) authenticate(ctx context.Context, op string, req *wrapperspb.StringValue) (*models.User, error) {
	token := req.GetValue()
	if token == "" {
		return nil, status.Error(codes.InvalidArgument, "token is required")
	}
	u, _, err := s.sessions.Authenticate(ctx, token)
	switch {
	case err == nil:
		return u, nil
	case errors.Is(err, models.ErrSessionNotFound), errors.Is(err, models.ErrUnauthenticated):
		s.log.Info("invalid token", sl.Op(op), sl.Err(err))
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	default:
		s.log.Error("failed to authenticate", sl.Op(op), sl.Err(err))
		return nil, status.Error(codes.Unavailable, "session store unavailable")
	}
}
