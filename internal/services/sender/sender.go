// Package sender отправляет письма по событиям из брокера.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/magabrotheeeer/gridnode/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/gridnode/internal/lib/sl"
	"github.com/magabrotheeeer/gridnode/internal/lib/smtp"
	"github.com/magabrotheeeer/gridnode/internal/models"
)

// Service сервис отправки писем.
type Service struct {
	transport  smtp.TransportInterface
	adminInbox string
	log        *slog.Logger
}

// New создает новый экземпляр Service. Заявки с формы обратной связи
// уходят на adminInbox.
func New(transport smtp.TransportInterface, adminInbox string, log *slog.Logger) *Service {
	return &Service{
		transport:  transport,
		adminInbox: adminInbox,
		log:        log,
	}
}

// SendContactSubmitted пересылает заявку администратору.
func (s *Service) SendContactSubmitted(_ context.Context, body []byte) error {
	const op = "services.sender.SendContactSubmitted"
	var c models.Contact
	if err := json.Unmarshal(body, &c); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Op(op), sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w: %w", op, rabbitmq.ErrPermanent, err)
	}
	if s.adminInbox == "" {
		s.log.Warn("admin inbox is not configured, contact dropped", sl.Op(op), slog.String("contact_id", c.ID))
		return nil
	}

	company := c.Company
	if company == "" {
		company = "-"
	}
	subject := "GridNode: new contact request from " + c.Name
	text := fmt.Sprintf("Name: %s\nEmail: %s\nCompany: %s\nReceived: %s\n\n%s",
		c.Name, c.Email, company, c.Timestamp.UTC().Format(time.RFC1123), c.Message)

	return s.sendEmail([]string{s.adminInbox}, subject, text)
}

// SendBillingPaid подтверждает пользователю оплату тарифа.
func (s *Service) SendBillingPaid(_ context.Context, body []byte) error {
	const op = "services.sender.SendBillingPaid"
	var n models.PlanNotice
	if err := json.Unmarshal(body, &n); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Op(op), sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w: %w", op, rabbitmq.ErrPermanent, err)
	}

	subject := "GridNode: payment received"
	text := fmt.Sprintf("Hello!\n\nWe received your payment of %.2f USDT for order %s.\nYour %s plan is active until %s.\n\nThank you for choosing GridNode.",
		n.Amount, n.OrderID, n.Plan, formatDate(n.ExpiresAt))

	return s.sendEmail([]string{n.Email}, subject, text)
}

// SendPlanExpiring предупреждает пользователя об окончании тарифа.
func (s *Service) SendPlanExpiring(_ context.Context, body []byte) error {
	const op = "services.sender.SendPlanExpiring"
	var n models.PlanNotice
	if err := json.Unmarshal(body, &n); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Op(op), sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w: %w", op, rabbitmq.ErrPermanent, err)
	}

	subject := "GridNode: your plan expires tomorrow"
	text := fmt.Sprintf("Hello!\n\nYour %s plan expires on %s.\nAfter that your account moves to the free plan with 5 scans.\nRenew on the pricing page to keep your limits.",
		n.Plan, formatDate(n.ExpiresAt))

	return s.sendEmail([]string{n.Email}, subject, text)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}

// headerValue заменяет управляющие символы пробелами, чтобы значение
// осталось одной строкой заголовка.
func headerValue(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, v)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + headerValue(s.transport.GetSMTPUser()),
		"To: " + headerValue(strings.Join(to, ", ")),
		"Subject: " + headerValue(subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
