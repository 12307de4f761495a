package dto

import "github.com/shopspring/decimal"

type CreateExpenseRequest struct {
	Amount        decimal.Decimal `json:"amount"          validate:"required,gt=0"`
	Category      string          `json:"category"        validate:"required"`
	PaymentMethod string          `json:"payment_method"  validate:"required,oneof=cash transfer card"`
	Status        string          `json:"status"          validate:"required,oneof=settled pending"`
	Description   string          `json:"description"`
	DueDate       *string         `json:"due_date"        validate:"omitempty,datetime=2006-01-02"`
	CashSessionID *string         `json:"cash_session_id" validate:"omitempty,uuid"`
}

type RegisterExpensePaymentRequest struct {
	ExpenseID     string          `json:"expense_id"      validate:"required,uuid"`
	Amount        decimal.Decimal `json:"amount"          validate:"required,gt=0"`
	PaymentMethod string          `json:"payment_method"  validate:"required,oneof=cash transfer card"`
	CashSessionID *string         `json:"cash_session_id" validate:"omitempty,uuid"`
}

type ExpenseFilter struct {
	Status   string `form:"status"`
	Category string `form:"category"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

type ExpenseResponse struct {
	ID                 string          `json:"id"`
	Status             string          `json:"status"`
	Amount             decimal.Decimal `json:"amount"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	Category           string          `json:"category"`
	PaymentMethod      string          `json:"payment_method"`
	Description        string          `json:"description,omitempty"`
	DueDate            *string         `json:"due_date,omitempty"`
	CreatedAt          string          `json:"created_at"`
}

type ExpenseListResponse struct {
	Data  []ExpenseResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
