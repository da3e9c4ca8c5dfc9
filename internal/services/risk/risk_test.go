package risk

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gridnode/internal/metrics"
	"github.com/magabrotheeeer/gridnode/internal/models"
)

type UserUpdaterMock struct {
	mock.Mock
	user *models.User
}

// UpdateUser применяет fn к копии user, как это делает хранилище сессий.
func (m *UserUpdaterMock) UpdateUser(ctx context.Context, userID string, fn func(u *models.User) error) (*models.User, error) {
	args := m.Called(ctx, userID)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	cur := m.user.Clone()
	if err := fn(cur); err != nil {
		return nil, err
	}
	m.user = cur
	return cur.Clone(), nil
}

type ScanLoggerMock struct {
	mock.Mock
}

func (m *ScanLoggerMock) CreateScanLog(ctx context.Context, log *models.ScanLog) (int64, error) {
	args := m.Called(ctx, log)
	return args.Get(0).(int64), args.Error(1)
}

type fixedPicker struct {
	v Verdict
}

func (p fixedPicker) Pick(string) Verdict { return p.v }

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func freeUser(used int) *models.User {
	return &models.User{
		ID:               "u1",
		Email:            "a@b.co",
		Role:             models.RoleUser,
		IsVerified:       true,
		SubscriptionPlan: models.PlanFree,
		ScansUsed:        used,
	}
}

func newService(users *UserUpdaterMock, scans *ScanLoggerMock, picker Picker) (*Service, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	s := New(newNoopLogger(), users, scans, picker, m, 0)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s, m
}

func TestCheck_Success(t *testing.T) {
	u := freeUser(2)
	users := &UserUpdaterMock{user: u.Clone()}
	scans := new(ScanLoggerMock)
	users.On("UpdateUser", mock.Anything, "u1").Return(nil).Once()
	scans.On("CreateScanLog", mock.Anything, mock.MatchedBy(func(l *models.ScanLog) bool {
		return l.UserID == "u1" && l.UserEmail == "a@b.co" && l.WalletAddress == "0xabc" &&
			l.RiskLevel == models.RiskHigh && l.Score == 85
	})).Return(int64(1), nil).Once()

	s, m := newService(users, scans, fixedPicker{v: Templates[2]})

	res, err := s.Check(context.Background(), u, "  0xabc  ")
	require.NoError(t, err)

	assert.Equal(t, "0xabc", res.Address)
	assert.Equal(t, models.RiskHigh, res.RiskLevel)
	assert.Equal(t, 85, res.Score)
	assert.Equal(t, Templates[2].Reasons, res.Reasons)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), res.Timestamp)
	assert.Equal(t, 3, users.user.ScansUsed)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RiskChecks.WithLabelValues("high")), 0)
	users.AssertExpectations(t)
	scans.AssertExpectations(t)
}

func TestCheck_RejectedBeforeMutation(t *testing.T) {
	tests := []struct {
		name    string
		user    *models.User
		address string
		wantErr error
	}{
		{name: "empty address", user: freeUser(0), address: "", wantErr: models.ErrEmptyAddress},
		{name: "whitespace address", user: freeUser(0), address: " \t ", wantErr: models.ErrEmptyAddress},
		{name: "free quota exhausted", user: freeUser(5), address: "0xabc", wantErr: models.ErrQuotaExceeded},
		{name: "no user", user: nil, address: "0xabc", wantErr: models.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &UserUpdaterMock{user: freeUser(0)}
			scans := new(ScanLoggerMock)
			s, _ := newService(users, scans, fixedPicker{v: Templates[0]})

			res, err := s.Check(context.Background(), tt.user, tt.address)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)
			users.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
			scans.AssertNotCalled(t, "CreateScanLog", mock.Anything, mock.Anything)
		})
	}
}

func TestCheck_EmptyAddressWinsOverQuota(t *testing.T) {
	s, _ := newService(&UserUpdaterMock{}, new(ScanLoggerMock), fixedPicker{v: Templates[0]})
	_, err := s.Check(context.Background(), freeUser(5), "")
	assert.ErrorIs(t, err, models.ErrEmptyAddress)
}

func TestCheck_QuotaRecheckedOnCommit(t *testing.T) {
	// Снимок сессии ещё позволяет проверку, а запись в хранилище уже исчерпана.
	users := &UserUpdaterMock{user: freeUser(5)}
	users.On("UpdateUser", mock.Anything, "u1").Return(nil).Once()
	scans := new(ScanLoggerMock)
	s, m := newService(users, scans, fixedPicker{v: Templates[0]})

	_, err := s.Check(context.Background(), freeUser(4), "0xabc")
	assert.ErrorIs(t, err, models.ErrQuotaExceeded)
	assert.Equal(t, 5, users.user.ScansUsed)
	assert.InDelta(t, 1, testutil.ToFloat64(m.QuotaRejected), 0)
	scans.AssertNotCalled(t, "CreateScanLog", mock.Anything, mock.Anything)
}

func TestCheck_StarterLastScan(t *testing.T) {
	u := freeUser(299)
	u.SubscriptionPlan = models.PlanStarter
	users := &UserUpdaterMock{user: u.Clone()}
	users.On("UpdateUser", mock.Anything, "u1").Return(nil).Once()
	scans := new(ScanLoggerMock)
	scans.On("CreateScanLog", mock.Anything, mock.Anything).Return(int64(1), nil).Once()

	s, m := newService(users, scans, fixedPicker{v: Templates[1]})

	res, err := s.Check(context.Background(), u, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, models.RiskMedium, res.RiskLevel)
	assert.Equal(t, 300, users.user.ScansUsed)

	res, err = s.Check(context.Background(), users.user.Clone(), "0xabc")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, models.ErrQuotaExceeded)
	assert.Equal(t, 300, users.user.ScansUsed)
	assert.InDelta(t, 1, testutil.ToFloat64(m.QuotaRejected), 0)
	users.AssertExpectations(t)
	scans.AssertExpectations(t)
}

func TestCheck_UnlimitedPlan(t *testing.T) {
	u := freeUser(1_000_000)
	u.SubscriptionPlan = models.PlanUnlimited
	users := &UserUpdaterMock{user: u.Clone()}
	users.On("UpdateUser", mock.Anything, "u1").Return(nil)
	scans := new(ScanLoggerMock)
	scans.On("CreateScanLog", mock.Anything, mock.Anything).Return(int64(1), nil)
	s, _ := newService(users, scans, fixedPicker{v: Templates[1]})

	res, err := s.Check(context.Background(), u, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, models.RiskMedium, res.RiskLevel)
	assert.Equal(t, 1_000_001, users.user.ScansUsed)
}

func TestCheck_ScanLogFailureIsNotFatal(t *testing.T) {
	users := &UserUpdaterMock{user: freeUser(0)}
	users.On("UpdateUser", mock.Anything, "u1").Return(nil)
	scans := new(ScanLoggerMock)
	scans.On("CreateScanLog", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))
	s, _ := newService(users, scans, fixedPicker{v: Templates[0]})

	res, err := s.Check(context.Background(), freeUser(0), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, models.RiskLow, res.RiskLevel)
	assert.Equal(t, 1, users.user.ScansUsed)
}

func TestCheck_StoreErrorLeavesCounter(t *testing.T) {
	users := &UserUpdaterMock{user: freeUser(0)}
	users.On("UpdateUser", mock.Anything, "u1").Return(models.ErrConflict)
	s, m := newService(users, new(ScanLoggerMock), fixedPicker{v: Templates[0]})

	_, err := s.Check(context.Background(), freeUser(0), "0xabc")
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Equal(t, 0, users.user.ScansUsed)
	assert.Zero(t, testutil.ToFloat64(m.QuotaRejected))
}

func TestCheck_CancelledDuringDelay(t *testing.T) {
	users := &UserUpdaterMock{user: freeUser(0)}
	s := New(newNoopLogger(), users, new(ScanLoggerMock), fixedPicker{v: Templates[0]},
		metrics.New(prometheus.NewRegistry()), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := s.Check(ctx, freeUser(0), "0xabc")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, users.user.ScansUsed)
	users.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
}

func TestRandomPicker_ReturnsTemplate(t *testing.T) {
	seen := map[models.RiskLevel]bool{}
	for range 300 {
		v := RandomPicker{}.Pick("0xabc")
		require.Contains(t, Templates, v)
		seen[v.Level] = true
	}
	assert.Len(t, seen, 3)
}
