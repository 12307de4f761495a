package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense states.
const (
	ExpenseSettled = "settled"
	ExpensePending = "pending"
)

// Expense is an outflow in the expense ledger. A settled expense is fully paid
// at creation; a pending one carries an outstanding balance reduced by
// ExpensePayment records. Note that paying a pending expense down to zero does
// NOT flip Status — the field is categorization, not derived state.
type Expense struct {
	ID     uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Status string          `gorm:"type:varchar(10);not null;default:'settled'"`
	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// OutstandingBalance ∈ [0, Amount]
	OutstandingBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Category           string          `gorm:"not null;index"`
	// PaymentMethod: "cash" | "transfer" | "card" — plain tag, drives drawer scoping only
	PaymentMethod string `gorm:"type:varchar(20);not null;default:'cash'"`
	Description   string
	DueDate       *time.Time `gorm:"index"`
	CashSessionID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt     time.Time

	Payments []ExpensePayment `gorm:"foreignKey:ExpenseID"`
}

// ExpensePayment is an immutable partial payment against a pending expense.
type ExpensePayment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExpenseID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod string          `gorm:"type:varchar(20);not null;default:'cash'"`
	CashSessionID *uuid.UUID      `gorm:"type:uuid;index"`
	PaidAt        time.Time       `gorm:"index"`
}
