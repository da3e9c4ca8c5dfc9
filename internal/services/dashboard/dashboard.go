// Package dashboard собирает данные личного кабинета.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gridnode/internal/lib/month"
	"github.com/magabrotheeeer/gridnode/internal/lib/sl"
	"github.com/magabrotheeeer/gridnode/internal/models"
	"github.com/magabrotheeeer/gridnode/internal/quota"
)

// RecentLimit число последних проверок в кабинете.
const RecentLimit = 5

// ScanHistory журнал проверок пользователя.
type ScanHistory interface {
	ListUserScanLogs(ctx context.Context, userID string, limit int) ([]*models.ScanLog, error)
}

// View содержимое личного кабинета.
type View struct {
	User        *models.User      `json:"user"`
	Plan        models.Plan       `json:"plan"`
	PlanActive  bool              `json:"plan_active"`
	DaysLeft    int               `json:"days_left"`
	Usage       quota.Usage       `json:"usage"`
	RecentScans []*models.ScanLog `json:"recent_scans"`
}

// Service сервис личного кабинета.
type Service struct {
	log   *slog.Logger
	scans ScanHistory
	now   func() time.Time
}

// New создаёт сервис личного кабинета.
func New(log *slog.Logger, scans ScanHistory) *Service {
	return &Service{log: log, scans: scans, now: time.Now}
}

// Get возвращает тариф, квоту и последние проверки пользователя.
// Недоступный журнал не мешает показать тариф и квоту.
func (s *Service) Get(ctx context.Context, u *models.User) (*View, error) {
	const op = "services.dashboard.Get"
	if u == nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
	}

	now := s.now()
	v := &View{
		User:        u,
		Plan:        u.SubscriptionPlan,
		PlanActive:  u.PlanActive(now),
		Usage:       quota.Compute(u),
		RecentScans: []*models.ScanLog{},
	}
	if v.PlanActive {
		v.DaysLeft = month.DaysLeft(now, *u.SubscriptionExpiry)
	}

	recent, err := s.scans.ListUserScanLogs(ctx, u.ID, RecentLimit)
	if err != nil {
		s.log.Warn("failed to load recent scans", sl.Op(op), sl.Err(err))
		return v, nil
	}
	v.RecentScans = recent
	return v, nil
}
