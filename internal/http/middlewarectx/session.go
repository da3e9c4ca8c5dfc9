// Package middlewarectx содержит HTTP middleware сессий и доступа.
//
// Session читает Bearer-токен из заголовка Authorization, восстанавливает
// состояние сессии и кладёт его в контекст запроса. Require применяет к
// состоянию те же правила, что и клиентские маршруты, а RateLimiter
// ограничивает частоту заглушечных вызовов на одну сессию.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/gridnode/internal/access"
	"github.com/magabrotheeeer/gridnode/internal/http/response"
	"github.com/magabrotheeeer/gridnode/internal/lib/sl"
	"github.com/magabrotheeeer/gridnode/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// State ключ состояния сессии в контексте.
	State Key = "session_state"
	// Token ключ токена сессии в контексте.
	Token Key = "session_token"
)

// SessionService восстанавливает сессию по токену.
type SessionService interface {
	Restore(ctx context.Context, token string) (models.SessionState, error)
}

// BearerToken возвращает токен из заголовка Authorization или пустую строку.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// Session восстанавливает состояние сессии и кладёт его в контекст.
// Запрос без токена или с недействительным токеном продолжается анонимно.
func Session(sessions SessionService, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Session"
			token := BearerToken(r)

			state, err := sessions.Restore(r.Context(), token)
			if err != nil {
				lvl := slog.LevelWarn
				if errors.Is(err, models.ErrSessionNotFound) {
					lvl = slog.LevelDebug
				}
				log.Log(r.Context(), lvl, "session not restored",
					sl.Op(op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err))
				state = models.SessionState{}
				token = ""
			}

			ctx := context.WithValue(r.Context(), State, state)
			ctx = context.WithValue(ctx, Token, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Require пропускает запрос, только если состояние сессии удовлетворяет guard.
// Должен стоять после Session.
func Require(guard access.Guard, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Require"
			if err := access.Check(guard, StateFromContext(r.Context())); err != nil {
				log.Info("access denied",
					sl.Op(op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("path", r.URL.Path),
					sl.Err(err))
				response.WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// StateFromContext возвращает состояние сессии из контекста.
func StateFromContext(ctx context.Context) models.SessionState {
	state, _ := ctx.Value(State).(models.SessionState)
	return state
}

// UserFromContext возвращает пользователя сессии или nil.
func UserFromContext(ctx context.Context) *models.User {
	return StateFromContext(ctx).User
}

// TokenFromContext возвращает токен восстановленной сессии.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(Token).(string)
	return token
}

// WithState кладёт состояние сессии в контекст.
func WithState(ctx context.Context, state models.SessionState, token string) context.Context {
	ctx = context.WithValue(ctx, State, state)
	return context.WithValue(ctx, Token, token)
}
