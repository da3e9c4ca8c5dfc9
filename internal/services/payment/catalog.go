package payment

import (
	"github.com/magabrotheeeer/gridnode/internal/models"
	"github.com/magabrotheeeer/gridnode/internal/quota"
)

type planDetails struct {
	id         models.Plan
	nameKey    string
	price      float64
	features   []string
	popular    bool
	enterprise bool
}

// Тарифы в порядке отображения на странице цен.
var plans = []planDetails{
	{
		id:      models.PlanFree,
		nameKey: "pricing.free",
		price:   0,
		features: []string{
			"Basic risk analysis",
			"Email support",
			"Standard reporting",
		},
	},
	{
		id:      models.PlanStarter,
		nameKey: "pricing.starter",
		price:   10,
		features: []string{
			"Advanced risk analysis",
			"Priority email support",
			"Detailed reporting",
			"API access",
		},
	},
	{
		id:      models.PlanPro,
		nameKey: "pricing.pro",
		price:   29,
		features: []string{
			"Premium risk analysis",
			"24/7 chat support",
			"Advanced reporting",
			"Full API access",
			"Custom alerts",
		},
		popular: true,
	},
	{
		id:      models.PlanVIP1,
		nameKey: "pricing.vip1",
		price:   99,
		features: []string{
			"Enterprise risk analysis",
			"Dedicated support",
			"Custom reporting",
			"Full API access",
			"Real-time monitoring",
			"Custom integrations",
		},
	},
	{
		id:      models.PlanVIPB2B,
		nameKey: "pricing.vipB2B",
		price:   4999,
		features: []string{
			"Enterprise-grade analysis",
			"Dedicated account manager",
			"Custom solutions",
			"Dedicated API",
			"SLA guarantee",
			"On-premise deployment",
		},
		enterprise: true,
	},
	{
		id:      models.PlanUnlimited,
		nameKey: "pricing.unlimited",
		price:   9999,
		features: []string{
			"Unlimited risk analysis",
			"White-label solution",
			"Custom development",
			"Priority support",
			"Advanced analytics",
			"Full customization",
		},
		enterprise: true,
	},
}

func (p planDetails) info() models.PlanInfo {
	info := models.PlanInfo{
		ID:         p.id,
		NameKey:    p.nameKey,
		Price:      p.price,
		Features:   append([]string(nil), p.features...),
		Popular:    p.popular,
		Enterprise: p.enterprise,
	}
	limit := quota.Allowance(p.id)
	if quota.IsUnlimited(limit) {
		info.Unlimited = true
	} else {
		info.Scans = &limit
	}
	return info
}

// Catalog возвращает тарифы для страницы цен.
func Catalog() []models.PlanInfo {
	out := make([]models.PlanInfo, 0, len(plans))
	for _, p := range plans {
		out = append(out, p.info())
	}
	return out
}

// LookupPlan возвращает описание тарифа по идентификатору.
func LookupPlan(id models.Plan) (models.PlanInfo, bool) {
	for _, p := range plans {
		if p.id == id {
			return p.info(), true
		}
	}
	return models.PlanInfo{}, false
}
