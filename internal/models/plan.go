package models

// Платёжные сети, в которых выставляются счета.
const (
	NetworkTRC20 = "usdttrc20"
	NetworkBEP20 = "usdtbsc"
)

// PlanInfo описание тарифа для страницы цен.
type PlanInfo struct {
	ID         Plan     `json:"id"`
	NameKey    string   `json:"name_key"`
	Price      float64  `json:"price"`
	Scans      *int     `json:"scans"`
	Unlimited  bool     `json:"unlimited"`
	Features   []string `json:"features"`
	Popular    bool     `json:"popular,omitempty"`
	Enterprise bool     `json:"enterprise,omitempty"`
}

// NetworkOption платёжная сеть, доступная при оформлении тарифа.
type NetworkOption struct {
	Value   string `json:"value"`
	Label   string `json:"label"`
	Warning string `json:"warning"`
}
