package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gridnode/internal/cache"
	"github.com/magabrotheeeer/gridnode/internal/config"
	"github.com/magabrotheeeer/gridnode/internal/lib/jwt"
	"github.com/magabrotheeeer/gridnode/internal/lib/password"
	"github.com/magabrotheeeer/gridnode/internal/metrics"
	"github.com/magabrotheeeer/gridnode/internal/models"
	"github.com/magabrotheeeer/gridnode/internal/services/session"
)

const adminPassword = "Thien@Nguyen9898"

type RegistryMock struct {
	mock.Mock
}

func (m *RegistryMock) UpsertAccount(ctx context.Context, acc models.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *RegistryMock) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	svc      *session.Service
	store    *cache.Cache
	redis    *miniredis.Miniredis
	registry *RegistryMock
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	hash, err := password.GetHash(adminPassword)
	require.NoError(t, err)

	registry := new(RegistryMock)
	m := metrics.New(prometheus.NewRegistry())
	svc := session.New(newNoopLogger(), store, registry, jwt.NewJWTMaker("secret", time.Hour), m, session.Config{
		AdminEmail:        "admin@gridnode.info",
		AdminPasswordHash: hash,
		StrictCredentials: strict,
		TokenTTL:          time.Hour,
	})
	return &fixture{svc: svc, store: store, redis: mr, registry: registry, metrics: m}
}

func TestLogin_AnyCredentialsGiveFreeUser(t *testing.T) {
	f := newFixture(t, false)
	f.registry.On("UpsertAccount", mock.Anything, mock.MatchedBy(func(acc models.Account) bool {
		return acc.Email == "a@b.co" && acc.PasswordHash == ""
	})).Return(nil).Once()

	s, err := f.svc.Login(context.Background(), "a@b.co", "anything")
	require.NoError(t, err)

	assert.NotEmpty(t, s.Token)
	assert.Equal(t, int64(3600), s.ExpiresIn)
	assert.Equal(t, "a@b.co", s.User.Email)
	assert.Equal(t, models.RoleUser, s.User.Role)
	assert.Equal(t, models.PlanFree, s.User.SubscriptionPlan)
	assert.True(t, s.User.IsVerified)
	assert.Equal(t, 0, s.User.ScansUsed)
	assert.Nil(t, s.User.SubscriptionExpiry)
	assert.Equal(t, session.UserIDForEmail("a@b.co"), s.User.ID)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Logins.WithLabelValues("password")), 0)

	state, err := f.svc.Restore(context.Background(), s.Token)
	require.NoError(t, err)
	require.NotNil(t, state.User)
	assert.Equal(t, s.User.ID, state.User.ID)
	f.registry.AssertExpectations(t)
}

func TestLogin_StableIDForEmail(t *testing.T) {
	f := newFixture(t, false)
	f.registry.On("UpsertAccount", mock.Anything, mock.Anything).Return(nil)

	s1, err := f.svc.Login(context.Background(), "a@b.co", "x")
	require.NoError(t, err)
	s2, err := f.svc.Login(context.Background(), "a@b.co", "y")
	require.NoError(t, err)

	assert.Equal(t, s1.User.ID, s2.User.ID)
	assert.NotEqual(t, s1.Token, s2.Token)
}

func TestLogin_Admin(t *testing.T) {
	f := newFixture(t, false)
	f.registry.On("UpsertAccount", mock.Anything, mock.Anything).Return(nil)

	s, err := f.svc.Login(context.Background(), "admin@gridnode.info", adminPassword)
	require.NoError(t, err)

	assert.Equal(t, session.AdminID, s.User.ID)
	assert.Equal(t, models.RoleAdmin, s.User.Role)
	assert.Equal(t, models.PlanUnlimited, s.User.SubscriptionPlan)
	assert.True(t, s.User.IsVerified)
}

func TestLogin_AdminEmailWrongPasswordIsRegularUser(t *testing.T) {
	f := newFixture(t, false)
	f.registry.On("UpsertAccount", mock.Anything, mock.Anything).Return(nil)

	s, err := f.svc.Login(context.Background(), "admin@gridnode.info", "wrong")
	require.NoError(t, err)

	assert.Equal(t, models.RoleUser, s.User.Role)
	assert.Equal(t, models.PlanFree, s.User.SubscriptionPlan)
}

func TestLogin_EmailIsVerbatim(t *testing.T) {
	f := newFixture(t, false)
	f.registry.On("UpsertAccount", mock.Anything, mock.Anything).Return(nil)

	s, err := f.svc.Login(context.Background(), "Admin@GridNode.info", adminPassword)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, s.User.Role)
	assert.Equal(t, "Admin@GridNode.info", s.User.Email)

	s, err = f.svc.Login(context.Background(), " a@b.co ", "x")
	require.NoError(t, err)
	assert.Equal(t, " a@b.co ", s.User.Email)
	assert.Equal(t, session.UserIDForEmail(" a@b.co "), s.User.ID)
}

func TestLogin_RegistryFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, false)
	f.registry.On("UpsertAccount", mock.Anything, mock.Anything).Return(errors.New("db down"))

	s, err := f.svc.Login(context.Background(), "a@b.co", "x")
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
}

func TestLogin_Strict(t *testing.T) {
	hash, err := password.GetHash("secret1")
	require.NoError(t, err)
	expiry := time.Now().Add(24 * time.Hour)
	stored := &models.Account{
		User: models.User{
			ID:                 "user-42",
			Email:              "a@b.co",
			SubscriptionPlan:   models.PlanPro,
			SubscriptionExpiry: &expiry,
		},
		PasswordHash: hash,
	}

	tests := []struct {
		name     string
		email    string
		password string
		setup    func(r *RegistryMock)
		wantErr  error
	}{
		{
			name:     "unknown email",
			email:    "nobody@b.co",
			password: "secret1",
			setup: func(r *RegistryMock) {
				r.On("GetAccountByEmail", mock.Anything, "nobody@b.co").Return(nil, models.ErrNotFound)
			},
			wantErr: models.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "a@b.co",
			password: "nope",
			setup: func(r *RegistryMock) {
				r.On("GetAccountByEmail", mock.Anything, "a@b.co").Return(stored, nil)
			},
			wantErr: models.ErrInvalidCredentials,
		},
		{
			name:     "valid credentials keep active plan",
			email:    "a@b.co",
			password: "secret1",
			setup: func(r *RegistryMock) {
				r.On("GetAccountByEmail", mock.Anything, "a@b.co").Return(stored, nil)
				r.On("UpsertAccount", mock.Anything, mock.Anything).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			tt.setup(f.registry)

			s, err := f.svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-42", s.User.ID)
			assert.Equal(t, models.PlanPro, s.User.SubscriptionPlan)
			f.registry.AssertExpectations(t)
		})
	}
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name     string
		password string
		confirm  string
		wantErr  error
	}{
		{name: "ok", password: "secret1", confirm: "secret1"},
		{name: "mismatch", password: "secret1", confirm: "secret2", wantErr: models.ErrPasswordMismatch},
		{name: "too short", password: "123", confirm: "123", wantErr: models.ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			f.registry.On("UpsertAccount", mock.Anything, mock.MatchedBy(func(acc models.Account) bool {
				return acc.PasswordHash != "" && password.CompareHash(acc.PasswordHash, tt.password) == nil
			})).Return(nil).Maybe()

			s, err := f.svc.Signup(context.Background(), "", "new@b.co", tt.password, tt.confirm)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				f.registry.AssertNotCalled(t, "UpsertAccount", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "new@b.co", s.User.Email)
			assert.Equal(t, models.PlanFree, s.User.SubscriptionPlan)
			assert.True(t, s.User.IsVerified)
			f.registry.AssertExpectations(t)
		})
	}
}

func TestSignup_FreshIDsAndReplacesSession(t *testing.T) {
	f := newFixture(t, false)
	f.registry.On("UpsertAccount", mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	first, err := f.svc.Signup(ctx, "", "same@b.co", "secret1", "secret1")
	require.NoError(t, err)
	second, err := f.svc.Signup(ctx, first.Token, "same@b.co", "secret1", "secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first.User.ID, second.User.ID)

	_, err = f.svc.Restore(ctx, first.Token)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	state, err := f.svc.Restore(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, second.User.ID, state.User.ID)
}

func TestLoginWithGoogle(t *testing.T) {
	f := newFixture(t, false)
	f.registry.On("UpsertAccount", mock.Anything, mock.Anything).Return(nil)

	s, err := f.svc.LoginWithGoogle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, session.GoogleID, s.User.ID)
	assert.Equal(t, session.GoogleEmail, s.User.Email)
	assert.Equal(t, models.RoleUser, s.User.Role)
	assert.Equal(t, models.PlanFree, s.User.SubscriptionPlan)
}

func TestLogout(t *testing.T) {
	f := newFixture(t, false)
	f.registry.On("UpsertAccount", mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	s, err := f.svc.Login(ctx, "a@b.co", "x")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, s.Token))

	_, err = f.svc.Restore(ctx, s.Token)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	err = f.svc.Logout(ctx, "garbage")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestRestore(t *testing.T) {
	t.Run("empty token is anonymous", func(t *testing.T) {
		f := newFixture(t, false)
		state, err := f.svc.Restore(context.Background(), "")
		require.NoError(t, err)
		assert.Nil(t, state.User)
		assert.False(t, state.Loading)
	})

	t.Run("invalid token", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.svc.Restore(context.Background(), "not-a-token")
		assert.ErrorIs(t, err, models.ErrSessionNotFound)
	})

	t.Run("store unavailable reports loading", func(t *testing.T) {
		f := newFixture(t, false)
		f.registry.On("UpsertAccount", mock.Anything, mock.Anything).Return(nil)
		s, err := f.svc.Login(context.Background(), "a@b.co", "x")
		require.NoError(t, err)

		f.redis.SetError("LOADING Redis is loading the dataset in memory")
		state, err := f.svc.Restore(context.Background(), s.Token)
		require.NoError(t, err)
		assert.True(t, state.Loading)
		assert.Nil(t, state.User)
	})
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t, false)
	f.registry.On("UpsertAccount", mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	s, err := f.svc.Login(ctx, "a@b.co", "x")
	require.NoError(t, err)

	u, err := f.svc.UpdateUser(ctx, s.User.ID, func(u *models.User) error {
		u.ScansUsed = 2
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, u.ScansUsed)

	state, err := f.svc.Restore(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, 2, state.User.ScansUsed)
}
