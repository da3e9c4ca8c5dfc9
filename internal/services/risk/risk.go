// Package risk выполняет заглушечную проверку риска адреса кошелька.
package risk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/magabrotheeeer/gridnode/internal/lib/delay"
	"github.com/magabrotheeeer/gridnode/internal/lib/sl"
	"github.com/magabrotheeeer/gridnode/internal/metrics"
	"github.com/magabrotheeeer/gridnode/internal/models"
	"github.com/magabrotheeeer/gridnode/internal/quota"
)

// Verdict шаблон результата проверки.
type Verdict struct {
	Level   models.RiskLevel
	Score   int
	Reasons []string
}

// Templates три фиксированных вердикта заглушки.
var Templates = []Verdict{
	{
		Level: models.RiskLow,
		Score: 15,
		Reasons: []string{
			"Clean transaction history",
			"No suspicious activity detected",
			"High reputation score",
		},
	},
	{
		Level: models.RiskMedium,
		Score: 55,
		Reasons: []string{
			"Mixed funds detected",
			"Some transactions flagged",
			"Moderate risk indicators",
		},
	},
	{
		Level: models.RiskHigh,
		Score: 85,
		Reasons: []string{
			"Linked to suspicious activity",
			"High-risk transaction patterns",
			"Flagged by multiple sources",
		},
	},
}

// Picker источник вердикта для адреса.
type Picker interface {
	Pick(address string) Verdict
}

// RandomPicker выбирает один из шаблонов равновероятно, адрес не учитывается.
type RandomPicker struct{}

// Pick возвращает случайный шаблон.
func (RandomPicker) Pick(string) Verdict {
	return Templates[rand.IntN(len(Templates))]
}

// UserUpdater версионно изменяет запись пользователя в хранилище сессий.
type UserUpdater interface {
	UpdateUser(ctx context.Context, userID string, fn func(u *models.User) error) (*models.User, error)
}

// ScanLogger журнал проверок.
type ScanLogger interface {
	CreateScanLog(ctx context.Context, log *models.ScanLog) (int64, error)
}

// Service сервис проверки риска.
type Service struct {
	log     *slog.Logger
	users   UserUpdater
	scans   ScanLogger
	picker  Picker
	metrics *metrics.Metrics
	latency time.Duration
	now     func() time.Time
}

// New создаёт сервис проверки. latency имитирует время ответа анализатора.
func New(log *slog.Logger, users UserUpdater, scans ScanLogger, picker Picker, m *metrics.Metrics, latency time.Duration) *Service {
	return &Service{
		log:     log,
		users:   users,
		scans:   scans,
		picker:  picker,
		metrics: m,
		latency: latency,
		now:     time.Now,
	}
}

// Check проверяет адрес от имени пользователя u.
//
// Пустой адрес и исчерпанная квота отклоняются до задержки и без изменения
// счётчика. Счётчик проверок увеличивается только при успешном результате,
// повторная проверка квоты выполняется в момент записи.
func (s *Service) Check(ctx context.Context, u *models.User, address string) (*models.RiskResult, error) {
	const op = "services.risk.Check"
	log := s.log.With(sl.Op(op))

	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrEmptyAddress)
	}
	if u == nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
	}
	if !quota.CanScan(u.SubscriptionPlan, u.ScansUsed) {
		s.metrics.QuotaRejected.Inc()
		return nil, fmt.Errorf("%s: %w", op, models.ErrQuotaExceeded)
	}

	if err := delay.Wait(ctx, s.latency); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	v := s.picker.Pick(address)
	result := &models.RiskResult{
		Address:   address,
		RiskLevel: v.Level,
		Score:     v.Score,
		Reasons:   append([]string(nil), v.Reasons...),
		Timestamp: s.now().UTC(),
	}

	updated, err := s.users.UpdateUser(ctx, u.ID, func(cur *models.User) error {
		if !quota.CanScan(cur.SubscriptionPlan, cur.ScansUsed) {
			return models.ErrQuotaExceeded
		}
		cur.ScansUsed++
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrQuotaExceeded) {
			s.metrics.QuotaRejected.Inc()
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.scans.CreateScanLog(ctx, &models.ScanLog{
		UserID:        updated.ID,
		UserEmail:     updated.Email,
		WalletAddress: result.Address,
		RiskLevel:     result.RiskLevel,
		Score:         result.Score,
		Timestamp:     result.Timestamp,
	}); err != nil {
		log.Warn("failed to append scan log", sl.Err(err))
	}

	s.metrics.RiskChecks.WithLabelValues(string(result.RiskLevel)).Inc()
	log.Info("wallet checked",
		slog.String("user_id", updated.ID),
		slog.String("level", string(result.RiskLevel)),
		slog.Int("scans_used", updated.ScansUsed))
	return result, nil
}
