package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleLineRequest struct {
	StockEntryID    string          `json:"stock_entry_id"   validate:"required,uuid"`
	Quantity        int             `json:"quantity"         validate:"required,gt=0"`
	UnitPrice       decimal.Decimal `json:"unit_price"       validate:"required,gt=0"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

type CreateSaleRequest struct {
	SaleType        string            `json:"sale_type"         validate:"required,oneof=cash credit"`
	PaymentMethodID *string           `json:"payment_method_id" validate:"omitempty,uuid"`
	CashSessionID   *string           `json:"cash_session_id"   validate:"omitempty,uuid"`
	ClientID        *string           `json:"client_id"         validate:"omitempty,uuid"`
	Items           []SaleLineRequest `json:"items"             validate:"required,min=1,dive"`

	// Credit terms — ignored for cash sales
	InstallmentCount int    `json:"installment_count" validate:"min=0"`
	PaymentFrequency string `json:"payment_frequency" validate:"omitempty,oneof=weekly biweekly monthly"`
}

type SaleFilter struct {
	Date     string `form:"date"`
	SaleType string `form:"sale_type"`
	ClientID string `form:"client_id"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleLineResponse struct {
	StockEntryID    string          `json:"stock_entry_id"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID                 string             `json:"id"`
	Folio              string             `json:"folio"`
	SaleType           string             `json:"sale_type"`
	Total              decimal.Decimal    `json:"total"`
	OutstandingBalance decimal.Decimal    `json:"outstanding_balance"`
	InstallmentCount   int                `json:"installment_count,omitempty"`
	InstallmentAmount  decimal.Decimal    `json:"installment_amount,omitempty"`
	PaymentFrequency   string             `json:"payment_frequency,omitempty"`
	Items              []SaleLineResponse `json:"items"`
	CreatedAt          string             `json:"created_at"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
