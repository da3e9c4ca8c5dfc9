package models

// AdminStats сводные показатели панели администратора.
type AdminStats struct {
	TotalUsers      int     `json:"total_users"`
	TotalDeposits   float64 `json:"total_deposits"`
	TotalScans      int     `json:"total_scans"`
	PendingDeposits int     `json:"pending_deposits"`
}

// AdminOverview содержимое панели администратора.
type AdminOverview struct {
	Stats    AdminStats `json:"stats"`
	Users    []*User    `json:"users"`
	Deposits []*Deposit `json:"deposits"`
	ScanLogs []*ScanLog `json:"scan_logs"`
	Contacts []*Contact `json:"contacts"`
}
