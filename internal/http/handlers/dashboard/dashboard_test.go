package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gridnode/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gridnode/internal/models"
	"github.com/magabrotheeeer/gridnode/internal/quota"
	"github.com/magabrotheeeer/gridnode/internal/services/dashboard"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Get(ctx context.Context, u *models.User) (*dashboard.View, error) {
	args := m.Called(ctx, u)
	v, _ := args.Get(0).(*dashboard.View)
	return v, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestDashboardHandler_Success(t *testing.T) {
	user := &models.User{ID: "u1", SubscriptionPlan: models.PlanStarter, ScansUsed: 10}
	svc := new(ServiceMock)
	svc.On("Get", mock.Anything, user).Return(&dashboard.View{
		User:        user,
		Plan:        models.PlanStarter,
		PlanActive:  true,
		DaysLeft:    12,
		Usage:       quota.Compute(user),
		RecentScans: []*models.ScanLog{{ID: 1, WalletAddress: "0xabc", RiskLevel: models.RiskLow}},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	req = req.WithContext(middlewarectx.WithState(req.Context(), models.SessionState{User: user}, "tok"))
	rec := httptest.NewRecorder()

	New(newNoopLogger(), svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	data := got["data"].(map[string]any)
	assert.Equal(t, "starter", data["plan"])
	assert.Equal(t, float64(12), data["days_left"])
	assert.Len(t, data["recent_scans"], 1)
	svc.AssertExpectations(t)
}

func TestDashboardHandler_Anonymous(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Get", mock.Anything, (*models.User)(nil)).
		Return(nil, fmt.Errorf("services.dashboard.Get: %w", models.ErrUnauthenticated)).Once()

	rec := httptest.NewRecorder()
	New(newNoopLogger(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"status":"Error","error":"authentication required"}`, rec.Body.String())
}
