package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenSessionRequest struct {
	OpeningFloat decimal.Decimal `json:"opening_float" validate:"min=0"`
}

type CloseSessionRequest struct {
	CountedAmount decimal.Decimal `json:"counted_amount" validate:"min=0"`
}

type SessionFilter struct {
	OperatorID string `form:"operator_id"`
	Status     string `form:"status"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SessionResponse struct {
	ID                    string           `json:"id"`
	OperatorID            string           `json:"operator_id"`
	Status                string           `json:"status"`
	OpeningFloat          decimal.Decimal  `json:"opening_float"`
	ExpectedClosingAmount *decimal.Decimal `json:"expected_closing_amount,omitempty"`
	ActualClosingAmount   *decimal.Decimal `json:"actual_closing_amount,omitempty"`
	Difference            *decimal.Decimal `json:"difference,omitempty"`
	OpenedAt              string           `json:"opened_at"`
	ClosedAt              *string          `json:"closed_at,omitempty"`
}

// SessionSummaryResponse is recomputed on every call while the session is open.
type SessionSummaryResponse struct {
	SessionID             string          `json:"session_id"`
	OpeningFloat          decimal.Decimal `json:"opening_float"`
	CashSalesTotal        decimal.Decimal `json:"cash_sales_total"`
	CashPaymentsTotal     decimal.Decimal `json:"cash_payments_total"`
	CashExpensesTotal     decimal.Decimal `json:"cash_expenses_total"`
	GrossTenderedTotal    decimal.Decimal `json:"gross_tendered_total"`
	ExpectedClosingAmount decimal.Decimal `json:"expected_closing_amount"`
}

type SessionListResponse struct {
	Data  []SessionResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
