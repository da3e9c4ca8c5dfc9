package models

import "time"

// RiskLevel уровень риска кошелька.
type RiskLevel string

// Уровни риска.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskResult результат одной проверки адреса. Возвращается клиенту;
// в журнал попадает только его краткая запись ScanLog.
type RiskResult struct {
	Address   string    `json:"address"`
	RiskLevel RiskLevel `json:"riskLevel"`
	Score     int       `json:"score"`
	Reasons   []string  `json:"reasons"`
	Timestamp time.Time `json:"timestamp"`
}

// ScanLog запись журнала проверок для панели администратора и дашборда.
type ScanLog struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"user_id"`
	UserEmail     string    `json:"user_email"`
	WalletAddress string    `json:"wallet_address"`
	RiskLevel     RiskLevel `json:"risk_level"`
	Score         int       `json:"score"`
	Timestamp     time.Time `json:"timestamp"`
}
