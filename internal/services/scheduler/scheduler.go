// Package scheduler содержит периодические задачи по тарифам:
// перевод истёкших тарифов на бесплатный и уведомления о скором окончании.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gridnode/internal/lib/month"
	"github.com/magabrotheeeer/gridnode/internal/lib/sl"
	"github.com/magabrotheeeer/gridnode/internal/models"
)

// Repository реестр тарифов пользователей.
type Repository interface {
	FindExpiredPlans(ctx context.Context, now time.Time) ([]*models.User, error)
	FindPlansExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.User, error)
	DowngradeToFree(ctx context.Context, id string) error
}

// SessionUpdater версионно изменяет запись пользователя в хранилище сессий.
type SessionUpdater interface {
	UpdateUser(ctx context.Context, userID string, fn func(u *models.User) error) (*models.User, error)
}

// Publisher публикует события в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service планировщик задач по тарифам.
type Service struct {
	repo      Repository
	sessions  SessionUpdater
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
}

// New создает новый экземпляр Service.
func New(repo Repository, sessions SessionUpdater, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		sessions:  sessions,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// ExpirePlans переводит истёкшие платные тарифы на бесплатный в реестре
// и в живых сессиях. Возвращает число переведённых пользователей.
func (s *Service) ExpirePlans(ctx context.Context) (int, error) {
	const op = "services.scheduler.ExpirePlans"
	log := s.log.With(sl.Op(op))
	now := s.now().UTC()

	users, err := s.repo.FindExpiredPlans(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(users) == 0 {
		log.Info("no expired plans found")
		return 0, nil
	}
	log.Info("found expired plans", slog.Int("count", len(users)))

	done := 0
	for _, u := range users {
		if err := s.repo.DowngradeToFree(ctx, u.ID); err != nil {
			log.Error("failed to downgrade plan", slog.String("user_id", u.ID), sl.Err(err))
			continue
		}
		done++

		_, err := s.sessions.UpdateUser(ctx, u.ID, func(cur *models.User) error {
			if cur.SubscriptionPlan == models.PlanFree || cur.PlanActive(now) || cur.IsAdmin() {
				return errSkip
			}
			cur.SubscriptionPlan = models.PlanFree
			cur.SubscriptionExpiry = nil
			return nil
		})
		switch {
		case err == nil, errors.Is(err, errSkip), errors.Is(err, models.ErrSessionNotFound):
		default:
			log.Warn("failed to downgrade live session", slog.String("user_id", u.ID), sl.Err(err))
		}
	}
	return done, nil
}

// NotifyExpiring публикует уведомления о тарифах, которые заканчиваются завтра.
func (s *Service) NotifyExpiring(ctx context.Context) (int, error) {
	const op = "services.scheduler.NotifyExpiring"
	log := s.log.With(sl.Op(op))

	from, to := month.DayBounds(s.now().UTC().Add(24 * time.Hour))
	users, err := s.repo.FindPlansExpiringBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(users) == 0 {
		log.Info("no expiring plans found")
		return 0, nil
	}
	log.Info("found expiring plans", slog.Int("count", len(users)))

	sent := 0
	for _, u := range users {
		notice := models.PlanNotice{
			UserID:    u.ID,
			Email:     u.Email,
			Plan:      u.SubscriptionPlan,
			ExpiresAt: u.SubscriptionExpiry,
		}
		if err := s.publisher.Publish(ctx, models.EventPlanExpiring, notice); err != nil {
			log.Error("failed to publish message", slog.String("user_id", u.ID), sl.Err(err))
			continue
		}
		sent++
	}
	return sent, nil
}

// errSkip прерывает запись без изменений.
var errSkip = errors.New("nothing to change")
