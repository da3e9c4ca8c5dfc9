package models

import "time"

// Ключи маршрутизации событий в брокере.
const (
	EventContactSubmitted = "contact.submitted"
	EventBillingPaid      = "billing.paid"
	EventPlanExpiring     = "plan.expiring"
)

// PlanNotice уведомление об оплате или скором окончании тарифа.
type PlanNotice struct {
	UserID    string     `json:"user_id"`
	Email     string     `json:"email"`
	Plan      Plan       `json:"plan"`
	OrderID   string     `json:"order_id,omitempty"`
	Amount    float64    `json:"amount,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
