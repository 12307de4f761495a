package dto

import "github.com/shopspring/decimal"

type ReportFilter struct {
	Start string `form:"start" validate:"required,datetime=2006-01-02"`
	End   string `form:"end"   validate:"required,datetime=2006-01-02"`
	// Granularity: "day" | "week" | "month"
	Granularity string `form:"granularity"`
}

// LedgerEntryResponse is one derived settlement entry; computed at read time,
// never persisted.
type LedgerEntryResponse struct {
	GrossAmount decimal.Decimal `json:"gross_amount"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	Status      string          `json:"status"` // pending | available
	TenderedAt  string          `json:"tendered_at"`
	AvailableAt string          `json:"available_at"`
	Source      string          `json:"source"` // sale | payment
}

type ReportBucket struct {
	Label   string          `json:"label"` // bucket start, YYYY-MM-DD
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

type IncomeStatementResponse struct {
	Start   string          `json:"start"`
	End     string          `json:"end"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
	Buckets []ReportBucket  `json:"buckets,omitempty"`

	// Pending lists deferred tenders whose funds are not yet available —
	// informational, excluded from Income.
	Pending []LedgerEntryResponse `json:"pending,omitempty"`
}
