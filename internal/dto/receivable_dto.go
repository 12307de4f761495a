package dto

import "github.com/shopspring/decimal"

type RegisterPaymentRequest struct {
	ClientID        string          `json:"client_id"         validate:"required,uuid"`
	SaleID          string          `json:"sale_id"           validate:"required,uuid"`
	Amount          decimal.Decimal `json:"amount"            validate:"required,gt=0"`
	PaymentMethodID *string         `json:"payment_method_id" validate:"omitempty,uuid"`
	CashSessionID   *string         `json:"cash_session_id"   validate:"omitempty,uuid"`
}

type PaymentResponse struct {
	ID                 string          `json:"id"`
	SaleID             string          `json:"sale_id"`
	Amount             decimal.Decimal `json:"amount"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	CreatedAt          string          `json:"created_at"`
}

type ReceivableResponse struct {
	SaleID             string          `json:"sale_id"`
	Folio              string          `json:"folio"`
	ClientID           string          `json:"client_id,omitempty"`
	Total              decimal.Decimal `json:"total"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	InstallmentAmount  decimal.Decimal `json:"installment_amount"`
	PaymentFrequency   string          `json:"payment_frequency"`
	CreatedAt          string          `json:"created_at"`
}
