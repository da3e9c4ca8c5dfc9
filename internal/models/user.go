// Package models содержит доменные структуры сервиса GridNode: пользователя
// и его тарифный план, заявки с формы обратной связи, результаты проверки
// кошельков и платёжные счета. Здесь же объявлены ошибки предметной области,
// которые сервисный слой возвращает, а HTTP-слой переводит в коды ответа.
package models

import "time"

// Plan идентификатор тарифного плана.
type Plan string

// Тарифные планы в порядке возрастания цены.
const (
	PlanFree      Plan = "free"
	PlanStarter   Plan = "starter"
	PlanPro       Plan = "pro"
	PlanVIP1      Plan = "vip1"
	PlanVIPB2B    Plan = "vip_b2b"
	PlanUnlimited Plan = "unlimited"
)

// Роли пользователя.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User запись о пользователе текущей сессии.
//
// Запись целиком принадлежит хранилищу сессий; остальные слои получают
// копию и меняют её только через версионированное обновление.
type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Role               string     `json:"role"`
	IsVerified         bool       `json:"isVerified"`
	SubscriptionPlan   Plan       `json:"subscription_plan"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry"`
	ScansUsed          int        `json:"scans_used"`
	Version            int64      `json:"version"`
	CreatedAt          time.Time  `json:"created_at"`
}

// IsAdmin сообщает, есть ли у пользователя роль администратора.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// PlanActive возвращает true, если дата окончания подписки задана и ещё не наступила.
func (u *User) PlanActive(now time.Time) bool {
	return u != nil && u.SubscriptionExpiry != nil && u.SubscriptionExpiry.After(now)
}

// Clone возвращает независимую копию записи.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.SubscriptionExpiry != nil {
		exp := *u.SubscriptionExpiry
		c.SubscriptionExpiry = &exp
	}
	return &c
}

// Account строка реестра пользователей в PostgreSQL.
// Помимо полей сессии хранит bcrypt-хэш пароля для строгого режима входа.
type Account struct {
	User
	PasswordHash string `json:"-"`
}

// SessionState состояние сессии клиента. Пока хранилище сессий
// не готово, Loading равен true и закрытые разделы не отображаются.
type SessionState struct {
	User    *User `json:"user"`
	Loading bool  `json:"loading"`
}
