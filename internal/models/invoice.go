package models

import "time"

// Статусы платежа.
const (
	PaymentWaiting  = "waiting"
	PaymentFinished = "finished"
	PaymentFailed   = "failed"
	PaymentExpired  = "expired"
)

// Invoice счёт на оплату тарифа, выставленный в выбранной сети.
type Invoice struct {
	PaymentID   string    `json:"payment_id"`
	PlanID      Plan      `json:"plan_id"`
	Network     string    `json:"network"`
	Status      string    `json:"payment_status"`
	PayAddress  string    `json:"pay_address"`
	PayAmount   float64   `json:"pay_amount"`
	PayCurrency string    `json:"pay_currency"`
	QRCode      string    `json:"qr_code"`
	OrderID     string    `json:"order_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Deposit счёт, сохранённый в реестре вместе с владельцем.
type Deposit struct {
	Invoice
	UserID    string    `json:"user_id"`
	UserEmail string    `json:"user_email"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InvoiceRequest используется для приёма параметров счёта из JSON-запроса.
type InvoiceRequest struct {
	PlanID  string `json:"plan_id" validate:"required"`
	Network string `json:"network" validate:"required"`
}

// PaymentWebhook тело уведомления платёжного провайдера о смене статуса.
type PaymentWebhook struct {
	PaymentID string `json:"payment_id" validate:"required"`
	OrderID   string `json:"order_id" validate:"required"`
	Status    string `json:"payment_status" validate:"required"`
}
