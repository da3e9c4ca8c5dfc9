// Package admin собирает данные панели администратора и выгружает их в CSV.
package admin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/magabrotheeeer/gridnode/internal/lib/csvexport"
	"github.com/magabrotheeeer/gridnode/internal/lib/sl"
	"github.com/magabrotheeeer/gridnode/internal/models"
)

// Таблицы, доступные для выгрузки.
const (
	TableUsers    = "users"
	TableDeposits = "deposits"
	TableScanLogs = "scan_logs"
	TableContacts = "contacts"
)

// Tables возвращает имена выгружаемых таблиц.
func Tables() []string {
	return []string{TableUsers, TableDeposits, TableScanLogs, TableContacts}
}

// Repository источник данных панели.
type Repository interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	ListDeposits(ctx context.Context) ([]*models.Deposit, error)
	ListScanLogs(ctx context.Context, limit int) ([]*models.ScanLog, error)
}

// Contacts журнал заявок с формы обратной связи.
type Contacts interface {
	List(ctx context.Context) ([]*models.Contact, error)
}

// Service сервис панели администратора.
type Service struct {
	log      *slog.Logger
	repo     Repository
	contacts Contacts
}

// New создаёт сервис панели администратора.
func New(log *slog.Logger, repo Repository, contacts Contacts) *Service {
	return &Service{log: log, repo: repo, contacts: contacts}
}

// Overview возвращает содержимое панели и сводные показатели.
func (s *Service) Overview(ctx context.Context) (*models.AdminOverview, error) {
	const op = "services.admin.Overview"

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	deposits, err := s.repo.ListDeposits(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	scans, err := s.repo.ListScanLogs(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	contacts, err := s.contacts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats := models.AdminStats{
		TotalUsers: len(users),
		TotalScans: len(scans),
	}
	for _, d := range deposits {
		stats.TotalDeposits += d.PayAmount
		if d.Status == models.PaymentWaiting {
			stats.PendingDeposits++
		}
	}

	return &models.AdminOverview{
		Stats:    stats,
		Users:    users,
		Deposits: deposits,
		ScanLogs: scans,
		Contacts: contacts,
	}, nil
}

// Export пишет таблицу table в w в формате CSV.
func (s *Service) Export(ctx context.Context, table string, w io.Writer) error {
	const op = "services.admin.Export"

	header, rows, err := s.rows(ctx, table)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := csvexport.Write(w, header, rows); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("table exported", sl.Op(op), slog.String("table", table), slog.Int("rows", len(rows)))
	return nil
}

func (s *Service) rows(ctx context.Context, table string) ([]string, [][]string, error) {
	switch table {
	case TableUsers:
		users, err := s.repo.ListUsers(ctx)
		if err != nil {
			return nil, nil, err
		}
		rows := make([][]string, 0, len(users))
		for _, u := range users {
			rows = append(rows, []string{
				u.ID, u.Email, u.Role, strconv.FormatBool(u.IsVerified),
				string(u.SubscriptionPlan), formatTimePtr(u.SubscriptionExpiry),
				strconv.Itoa(u.ScansUsed), formatTime(u.CreatedAt),
			})
		}
		return []string{"id", "email", "role", "is_verified", "subscription_plan",
			"subscription_expiry", "scans_used", "created_at"}, rows, nil

	case TableDeposits:
		deposits, err := s.repo.ListDeposits(ctx)
		if err != nil {
			return nil, nil, err
		}
		rows := make([][]string, 0, len(deposits))
		for _, d := range deposits {
			rows = append(rows, []string{
				d.PaymentID, d.OrderID, d.UserEmail, string(d.PlanID),
				strconv.FormatFloat(d.PayAmount, 'f', 2, 64), d.PayCurrency,
				d.Status, formatTime(d.CreatedAt),
			})
		}
		return []string{"payment_id", "order_id", "user_email", "plan", "amount",
			"currency", "status", "created_at"}, rows, nil

	case TableScanLogs:
		scans, err := s.repo.ListScanLogs(ctx, 0)
		if err != nil {
			return nil, nil, err
		}
		rows := make([][]string, 0, len(scans))
		for _, l := range scans {
			rows = append(rows, []string{
				strconv.FormatInt(l.ID, 10), l.UserEmail, l.WalletAddress,
				string(l.RiskLevel), strconv.Itoa(l.Score), formatTime(l.Timestamp),
			})
		}
		return []string{"id", "user_email", "wallet_address", "risk_level", "score", "timestamp"}, rows, nil

	case TableContacts:
		contacts, err := s.contacts.List(ctx)
		if err != nil {
			return nil, nil, err
		}
		rows := make([][]string, 0, len(contacts))
		for _, c := range contacts {
			rows = append(rows, []string{c.ID, c.Name, c.Email, c.Company, c.Message, formatTime(c.Timestamp)})
		}
		return []string{"id", "name", "email", "company", "message", "timestamp"}, rows, nil
	}
	return nil, nil, fmt.Errorf("unknown table %q: %w", table, models.ErrNotFound)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
