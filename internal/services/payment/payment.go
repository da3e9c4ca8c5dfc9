// Package payment оформляет платные тарифы: выбор плана, выставление счёта
// через провайдера и активацию плана после уведомления об оплате.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gridnode/internal/lib/month"
	"github.com/magabrotheeeer/gridnode/internal/lib/sl"
	"github.com/magabrotheeeer/gridnode/internal/metrics"
	"github.com/magabrotheeeer/gridnode/internal/models"
	"github.com/magabrotheeeer/gridnode/internal/paymentprovider"
)

// Действия клиента после выбора тарифа.
const (
	ActionLogin         = "login"
	ActionNone          = "none"
	ActionChooseNetwork = "choose_network"
)

// Selection ответ на выбор тарифа.
type Selection struct {
	Action   string                 `json:"action"`
	Redirect string                 `json:"redirect,omitempty"`
	Message  string                 `json:"message,omitempty"`
	Plan     models.PlanInfo        `json:"plan"`
	Networks []models.NetworkOption `json:"networks,omitempty"`
}

// Provider платёжный провайдер.
type Provider interface {
	CreateInvoice(ctx context.Context, p paymentprovider.InvoiceParams) (*models.Invoice, error)
}

// Repository реестр счетов и тарифов пользователей.
type Repository interface {
	CreateDeposit(ctx context.Context, d *models.Deposit) error
	GetDeposit(ctx context.Context, paymentID string) (*models.Deposit, error)
	UpdateDepositStatus(ctx context.Context, paymentID, from, to string) (bool, error)
	UpdatePlan(ctx context.Context, id string, plan models.Plan, expiry *time.Time) error
}

// UserUpdater версионно изменяет запись пользователя в хранилище сессий.
type UserUpdater interface {
	UpdateUser(ctx context.Context, userID string, fn func(u *models.User) error) (*models.User, error)
}

// Publisher публикует события в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service сервис оплаты тарифов.
type Service struct {
	log       *slog.Logger
	provider  Provider
	repo      Repository
	users     UserUpdater
	publisher Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

// New создаёт сервис оплаты.
func New(log *slog.Logger, provider Provider, repo Repository, users UserUpdater, publisher Publisher, m *metrics.Metrics) *Service {
	return &Service{
		log:       log,
		provider:  provider,
		repo:      repo,
		users:     users,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
	}
}

// Plans возвращает каталог тарифов.
func (s *Service) Plans() []models.PlanInfo {
	return Catalog()
}

// Networks возвращает сети, в которых выставляются счета.
func (s *Service) Networks() []models.NetworkOption {
	return paymentprovider.Networks()
}

// SelectPlan определяет следующий шаг после нажатия на тариф.
// Анонимного посетителя отправляют на вход, бесплатный тариф не требует оплаты.
func (s *Service) SelectPlan(u *models.User, planID models.Plan) (Selection, error) {
	const op = "services.payment.SelectPlan"
	plan, ok := LookupPlan(planID)
	if !ok {
		return Selection{}, fmt.Errorf("%s: %w", op, models.ErrPlanNotFound)
	}
	switch {
	case u == nil:
		return Selection{Action: ActionLogin, Redirect: "/login", Plan: plan}, nil
	case plan.Price == 0:
		return Selection{Action: ActionNone, Message: "pricing.alreadyFree", Plan: plan}, nil
	default:
		return Selection{Action: ActionChooseNetwork, Plan: plan, Networks: paymentprovider.Networks()}, nil
	}
}

// CreateInvoice выставляет счёт на тариф planID в сети network и сохраняет его в реестре.
func (s *Service) CreateInvoice(ctx context.Context, u *models.User, planID models.Plan, network string) (*models.Invoice, error) {
	const op = "services.payment.CreateInvoice"
	log := s.log.With(sl.Op(op))

	if u == nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
	}
	plan, ok := LookupPlan(planID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrPlanNotFound)
	}
	if plan.Price == 0 {
		return nil, fmt.Errorf("%s: %w", op, models.ErrFreePlan)
	}
	if !paymentprovider.KnownNetwork(network) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnknownNetwork)
	}

	inv, err := s.provider.CreateInvoice(ctx, paymentprovider.InvoiceParams{
		PlanID:  plan.ID,
		Network: network,
		Amount:  plan.Price,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.CreateDeposit(ctx, &models.Deposit{
		Invoice:   *inv,
		UserID:    u.ID,
		UserEmail: u.Email,
		UpdatedAt: inv.CreatedAt,
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.Invoices.WithLabelValues(string(plan.ID), network).Inc()
	log.Info("invoice created",
		slog.String("user_id", u.ID),
		slog.String("payment_id", inv.PaymentID),
		slog.String("plan", string(plan.ID)),
		slog.String("network", network))
	return inv, nil
}

// ConfirmPayment обрабатывает уведомление провайдера о статусе платежа.
//
// finished переводит счёт из waiting и активирует тариф на месяц,
// failed и expired только закрывают счёт. Повторное уведомление
// по закрытому счёту ничего не меняет.
func (s *Service) ConfirmPayment(ctx context.Context, payload models.PaymentWebhook) error {
	const op = "services.payment.ConfirmPayment"
	log := s.log.With(sl.Op(op), slog.String("payment_id", payload.PaymentID))

	dep, err := s.repo.GetDeposit(ctx, payload.PaymentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if dep.OrderID != payload.OrderID {
		return fmt.Errorf("%s: order mismatch: %w", op, models.ErrNotFound)
	}

	switch payload.Status {
	case models.PaymentFinished, models.PaymentFailed, models.PaymentExpired:
	default:
		log.Info("payment status ignored", slog.String("status", payload.Status))
		return nil
	}
	s.metrics.Payments.WithLabelValues(payload.Status).Inc()

	changed, err := s.repo.UpdateDepositStatus(ctx, dep.PaymentID, models.PaymentWaiting, payload.Status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !changed {
		log.Info("payment already processed", slog.String("status", payload.Status))
		return nil
	}
	if payload.Status != models.PaymentFinished {
		log.Info("payment closed", slog.String("status", payload.Status))
		return nil
	}

	expiry := month.Expiry(s.now().UTC(), 1)
	if err := s.activate(ctx, log, dep, expiry); err != nil {
		// Счёт возвращается в waiting, чтобы повторное уведомление
		// провайдера снова активировало тариф.
		if _, rbErr := s.repo.UpdateDepositStatus(ctx, dep.PaymentID, models.PaymentFinished, models.PaymentWaiting); rbErr != nil {
			log.Error("failed to roll back deposit status", sl.Err(rbErr))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	notice := models.PlanNotice{
		UserID:    dep.UserID,
		Email:     dep.UserEmail,
		Plan:      dep.PlanID,
		OrderID:   dep.OrderID,
		Amount:    dep.PayAmount,
		ExpiresAt: &expiry,
	}
	if err := s.publisher.Publish(ctx, models.EventBillingPaid, notice); err != nil {
		log.Warn("failed to publish billing event", sl.Err(err))
	}

	log.Info("plan activated",
		slog.String("user_id", dep.UserID),
		slog.String("plan", string(dep.PlanID)),
		slog.Time("expires_at", expiry))
	return nil
}

func (s *Service) activate(ctx context.Context, log *slog.Logger, dep *models.Deposit, expiry time.Time) error {
	if _, err := s.users.UpdateUser(ctx, dep.UserID, func(u *models.User) error {
		u.SubscriptionPlan = dep.PlanID
		u.SubscriptionExpiry = &expiry
		return nil
	}); err != nil {
		if !errors.Is(err, models.ErrSessionNotFound) {
			return err
		}
		log.Info("user has no live session, plan stored in registry only", slog.String("user_id", dep.UserID))
	}
	return s.repo.UpdatePlan(ctx, dep.UserID, dep.PlanID, &expiry)
}
