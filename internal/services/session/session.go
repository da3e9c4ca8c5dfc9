// Package session управляет сессиями пользователей: вход, регистрация,
// демо-вход через Google, выход и восстановление сессии по токену.
//
// Сессия хранится в Store (Redis) под jti из токена, запись пользователя
// меняется только версионным обновлением UpdateUser. Реестр (PostgreSQL)
// получает копию учётной записи, ошибки реестра не прерывают вход.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gridnode/internal/lib/jwt"
	"github.com/magabrotheeeer/gridnode/internal/lib/password"
	"github.com/magabrotheeeer/gridnode/internal/lib/sl"
	"github.com/magabrotheeeer/gridnode/internal/metrics"
	"github.com/magabrotheeeer/gridnode/internal/models"
)

// Идентификаторы фиксированных пользователей.
const (
	AdminID     = "admin-1"
	GoogleID    = "google-user-1"
	GoogleEmail = "user@gmail.com"
)

// Store хранилище сессий.
type Store interface {
	SaveSession(ctx context.Context, jti string, u *models.User, ttl time.Duration) error
	TokenUser(ctx context.Context, jti string) (string, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, fn func(u *models.User) error) (*models.User, error)
	DeleteSession(ctx context.Context, jti, userID string) error
	Ping(ctx context.Context) error
}

// Registry реестр учётных записей.
type Registry interface {
	UpsertAccount(ctx context.Context, acc models.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

// Config учётные данные администратора и режим проверки паролей.
type Config struct {
	AdminEmail        string
	AdminPasswordHash string
	StrictCredentials bool
	TokenTTL          time.Duration
}

// Service сервис сессий.
type Service struct {
	log      *slog.Logger
	store    Store
	registry Registry
	tokens   jwt.Maker
	metrics  *metrics.Metrics
	cfg      Config
	now      func() time.Time
}

// New создаёт сервис сессий.
func New(log *slog.Logger, store Store, registry Registry, tokens jwt.Maker, m *metrics.Metrics, cfg Config) *Service {
	return &Service{
		log:      log,
		store:    store,
		registry: registry,
		tokens:   tokens,
		metrics:  m,
		cfg:      cfg,
		now:      time.Now,
	}
}

// UserIDForEmail возвращает стабильный идентификатор пользователя для email.
func UserIDForEmail(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("gridnode:"+email)).String()
}

// Login выполняет вход. Администратор определяется по email и паролю из конфигурации.
// Без строгого режима любой другой email и пароль дают сессию на бесплатном тарифе.
func (s *Service) Login(ctx context.Context, email, pass string) (*models.Session, error) {
	const op = "services.session.Login"

	if s.isAdmin(email, pass) {
		u := s.newUser(AdminID, email)
		u.Role = models.RoleAdmin
		u.SubscriptionPlan = models.PlanUnlimited
		return s.issue(ctx, op, u, "", "admin")
	}

	if !s.cfg.StrictCredentials {
		return s.issue(ctx, op, s.newUser(UserIDForEmail(email), email), "", "password")
	}

	acc, err := s.registry.GetAccountByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if acc.PasswordHash == "" || password.CompareHash(acc.PasswordHash, pass) != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}

	u := s.newUser(acc.ID, acc.Email)
	if acc.PlanActive(s.now()) {
		u.SubscriptionPlan = acc.SubscriptionPlan
		u.SubscriptionExpiry = acc.SubscriptionExpiry
	}
	return s.issue(ctx, op, u, "", "password")
}

// Signup регистрирует пользователя. Уникальность email не проверяется.
// Если передан токен текущей сессии, она завершается.
func (s *Service) Signup(ctx context.Context, currentToken, email, pass, confirm string) (*models.Session, error) {
	const op = "services.session.Signup"
	if err := password.Validate(pass, confirm); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	hash, err := password.GetHash(pass)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if currentToken != "" {
		if err := s.Logout(ctx, currentToken); err != nil {
			s.log.Debug("previous session not revoked", sl.Op(op), sl.Err(err))
		}
	}

	u := s.newUser(uuid.NewString(), email)
	return s.issue(ctx, op, u, hash, "signup")
}

// LoginWithGoogle выдаёт сессию фиксированного демо-пользователя.
func (s *Service) LoginWithGoogle(ctx context.Context) (*models.Session, error) {
	const op = "services.session.LoginWithGoogle"
	return s.issue(ctx, op, s.newUser(GoogleID, GoogleEmail), "", "google")
}

// Logout удаляет сессию и запись пользователя.
func (s *Service) Logout(ctx context.Context, token string) error {
	const op = "services.session.Logout"
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
	}
	if err := s.store.DeleteSession(ctx, claims.ID, claims.UserID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("session closed", sl.Op(op), slog.String("user_id", claims.UserID))
	return nil
}

// Restore восстанавливает состояние сессии по токену.
//
// Пустой токен означает анонимного посетителя. Пока хранилище недоступно,
// возвращается состояние Loading без ошибки.
func (s *Service) Restore(ctx context.Context, token string) (models.SessionState, error) {
	const op = "services.session.Restore"
	if token == "" {
		return models.SessionState{}, nil
	}
	if err := s.store.Ping(ctx); err != nil {
		s.log.Warn("session store is not ready", sl.Op(op), sl.Err(err))
		return models.SessionState{Loading: true}, nil
	}
	u, _, err := s.Authenticate(ctx, token)
	if err != nil {
		return models.SessionState{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.SessionState{User: u}, nil
}

// Authenticate проверяет токен и возвращает пользователя и jti сессии.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, string, error) {
	const op = "services.session.Authenticate"
	if token == "" {
		return nil, "", fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
	}
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w: %w", op, models.ErrSessionNotFound, err)
	}
	id, err := s.store.TokenUser(ctx, claims.ID)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if id != claims.UserID {
		return nil, "", fmt.Errorf("%s: %w", op, models.ErrSessionNotFound)
	}
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return u, claims.ID, nil
}

// UpdateUser версионно изменяет запись пользователя.
func (s *Service) UpdateUser(ctx context.Context, userID string, fn func(u *models.User) error) (*models.User, error) {
	return s.store.UpdateUser(ctx, userID, fn)
}

func (s *Service) isAdmin(email, pass string) bool {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPasswordHash == "" {
		return false
	}
	if email != s.cfg.AdminEmail {
		return false
	}
	return password.CompareHash(s.cfg.AdminPasswordHash, pass) == nil
}

func (s *Service) newUser(id, email string) *models.User {
	return &models.User{
		ID:               id,
		Email:            email,
		Role:             models.RoleUser,
		IsVerified:       true,
		SubscriptionPlan: models.PlanFree,
		CreatedAt:        s.now().UTC(),
	}
}

func (s *Service) issue(ctx context.Context, op string, u *models.User, passwordHash, method string) (*models.Session, error) {
	token, jti, err := s.tokens.GenerateToken(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.SaveSession(ctx, jti, u, s.cfg.TokenTTL); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.registry.UpsertAccount(ctx, models.Account{User: *u, PasswordHash: passwordHash}); err != nil {
		s.log.Warn("failed to mirror account to registry", sl.Op(op), sl.Err(err))
	}
	s.metrics.Logins.WithLabelValues(method).Inc()
	s.log.Info("session issued", sl.Op(op), slog.String("user_id", u.ID), slog.String("method", method))

	return &models.Session{
		Token:     token,
		ExpiresIn: int64(s.cfg.TokenTTL / time.Second),
		User:      u.Clone(),
	}, nil
}
