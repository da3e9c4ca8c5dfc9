// Package quota вычисляет лимиты проверок по тарифному плану.
//
// Все функции чистые: лимит и остаток считаются заново из плана и счётчика
// scansUsed при каждом обращении и нигде не кэшируются, поэтому списание
// проверки сразу отражается в следующем чтении.
package quota

import (
	"math"

	"github.com/magabrotheeeer/gridnode/internal/models"
)

// Unlimited обозначает неограниченный лимит.
const Unlimited = math.MaxInt

var allowances = map[models.Plan]int{
	models.PlanFree:      5,
	models.PlanStarter:   300,
	models.PlanPro:       2000,
	models.PlanVIP1:      5000,
	models.PlanVIPB2B:    100000,
	models.PlanUnlimited: Unlimited,
}

// Allowance возвращает лимит проверок для плана. Для неизвестного плана лимит нулевой.
func Allowance(plan models.Plan) int {
	return allowances[plan]
}

// Known сообщает, описан ли план в таблице лимитов.
func Known(plan models.Plan) bool {
	_, ok := allowances[plan]
	return ok
}

// IsUnlimited сообщает, что значение лимита или остатка не ограничено.
func IsUnlimited(n int) bool {
	return n == Unlimited
}

// Remaining возвращает остаток проверок: max(0, лимит - использовано),
// для безлимитного плана всегда Unlimited.
func Remaining(plan models.Plan, used int) int {
	limit := Allowance(plan)
	if IsUnlimited(limit) {
		return Unlimited
	}
	return max(0, limit-used)
}

// UsagePercent возвращает долю использованного лимита в процентах.
// Для безлимитного плана всегда 0.
func UsagePercent(plan models.Plan, used int) float64 {
	limit := Allowance(plan)
	if IsUnlimited(limit) || limit == 0 {
		return 0
	}
	return float64(used) / float64(limit) * 100
}

// CanScan сообщает, осталась ли хотя бы одна проверка.
func CanScan(plan models.Plan, used int) bool {
	return Remaining(plan, used) > 0
}

// Usage снимок квоты пользователя для ответа клиенту.
// Limit и Remaining равны nil для безлимитного плана.
type Usage struct {
	Plan         models.Plan `json:"plan"`
	ScansUsed    int         `json:"scans_used"`
	Limit        *int        `json:"limit"`
	Remaining    *int        `json:"remaining"`
	Unlimited    bool        `json:"unlimited"`
	UsagePercent float64     `json:"usage_percent"`
	CanScan      bool        `json:"can_scan"`
}

// Compute строит снимок квоты по текущей записи пользователя.
// Для nil-пользователя возвращает пустой снимок без права на проверку.
func Compute(u *models.User) Usage {
	if u == nil {
		zero := 0
		return Usage{Limit: &zero, Remaining: &zero}
	}
	usage := Usage{
		Plan:         u.SubscriptionPlan,
		ScansUsed:    u.ScansUsed,
		UsagePercent: UsagePercent(u.SubscriptionPlan, u.ScansUsed),
		CanScan:      CanScan(u.SubscriptionPlan, u.ScansUsed),
	}
	limit := Allowance(u.SubscriptionPlan)
	if IsUnlimited(limit) {
		usage.Unlimited = true
		return usage
	}
	remaining := Remaining(u.SubscriptionPlan, u.ScansUsed)
	usage.Limit = &limit
	usage.Remaining = &remaining
	return usage
}
