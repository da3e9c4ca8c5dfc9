package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gridnode/internal/models"
)

type MockScanHistory struct {
	mock.Mock
}

func (m *MockScanHistory) ListUserScanLogs(ctx context.Context, userID string, limit int) ([]*models.ScanLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ScanLog), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func TestGet_PaidPlan(t *testing.T) {
	expiry := now.Add(10*24*time.Hour + time.Hour)
	u := &models.User{ID: "u1", SubscriptionPlan: models.PlanStarter, SubscriptionExpiry: &expiry, ScansUsed: 30}
	logs := []*models.ScanLog{{ID: 2}, {ID: 1}}

	scans := new(MockScanHistory)
	scans.On("ListUserScanLogs", mock.Anything, "u1", RecentLimit).Return(logs, nil)

	s := New(newNoopLogger(), scans)
	s.now = func() time.Time { return now }

	v, err := s.Get(context.Background(), u)
	require.NoError(t, err)
	assert.True(t, v.PlanActive)
	assert.Equal(t, 10, v.DaysLeft)
	require.NotNil(t, v.Usage.Remaining)
	assert.Equal(t, 270, *v.Usage.Remaining)
	assert.InDelta(t, 10, v.Usage.UsagePercent, 0.001)
	assert.Equal(t, logs, v.RecentScans)
}

func TestGet_FreePlanAndHistoryFailure(t *testing.T) {
	u := &models.User{ID: "u1", SubscriptionPlan: models.PlanFree, ScansUsed: 5}
	scans := new(MockScanHistory)
	scans.On("ListUserScanLogs", mock.Anything, "u1", RecentLimit).Return(nil, errors.New("db down"))

	s := New(newNoopLogger(), scans)
	s.now = func() time.Time { return now }

	v, err := s.Get(context.Background(), u)
	require.NoError(t, err)
	assert.False(t, v.PlanActive)
	assert.Zero(t, v.DaysLeft)
	assert.False(t, v.Usage.CanScan)
	assert.Empty(t, v.RecentScans)
}

func TestGet_Anonymous(t *testing.T) {
	s := New(newNoopLogger(), new(MockScanHistory))
	_, err := s.Get(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}
