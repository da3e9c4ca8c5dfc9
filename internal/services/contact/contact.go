// Package contact принимает заявки с формы обратной связи.
package contact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/gridnode/internal/lib/delay"
	"github.com/magabrotheeeer/gridnode/internal/lib/sl"
	"github.com/magabrotheeeer/gridnode/internal/metrics"
	"github.com/magabrotheeeer/gridnode/internal/models"
)

// Repository хранилище заявок.
type Repository interface {
	CreateContact(ctx context.Context, c *models.Contact) error
	ListContacts(ctx context.Context) ([]*models.Contact, error)
}

// IDGenerator выдаёт идентификаторы заявок.
type IDGenerator interface {
	Prefixed(prefix string) string
}

// Publisher публикует события в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service сервис обратной связи.
type Service struct {
	log       *slog.Logger
	repo      Repository
	ids       IDGenerator
	publisher Publisher
	metrics   *metrics.Metrics
	latency   time.Duration
	now       func() time.Time
}

// New создаёт сервис обратной связи.
func New(log *slog.Logger, repo Repository, ids IDGenerator, publisher Publisher, m *metrics.Metrics, latency time.Duration) *Service {
	return &Service{
		log:       log,
		repo:      repo,
		ids:       ids,
		publisher: publisher,
		metrics:   m,
		latency:   latency,
		now:       time.Now,
	}
}

// Submit сохраняет заявку. Обязательность полей проверяет HTTP-слой,
// здесь поля обрезаются от пробелов. Имя и компания попадают в заголовки
// писем, поэтому переводы строк в них отклоняются.
func (s *Service) Submit(ctx context.Context, req models.ContactRequest) (*models.Contact, error) {
	const op = "services.contact.Submit"
	log := s.log.With(sl.Op(op))

	if strings.ContainsAny(req.Name, "\r\n") || strings.ContainsAny(req.Company, "\r\n") {
		return nil, fmt.Errorf("%s: %w", op, models.ErrMultilineField)
	}

	if err := delay.Wait(ctx, s.latency); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c := &models.Contact{
		ID:        s.ids.Prefixed("contact"),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Company:   strings.TrimSpace(req.Company),
		Message:   strings.TrimSpace(req.Message),
		Timestamp: s.now().UTC(),
	}
	if err := s.repo.CreateContact(ctx, c); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.Contacts.Inc()

	if err := s.publisher.Publish(ctx, models.EventContactSubmitted, c); err != nil {
		log.Warn("failed to publish contact event", sl.Err(err))
	}
	log.Info("contact submitted", slog.String("contact_id", c.ID))
	return c, nil
}

// List возвращает заявки в порядке поступления.
func (s *Service) List(ctx context.Context) ([]*models.Contact, error) {
	const op = "services.contact.List"
	contacts, err := s.repo.ListContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return contacts, nil
}
