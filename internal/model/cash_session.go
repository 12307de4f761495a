package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cash session states.
const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// Cash movement kinds.
const (
	MovementSale    = "sale"
	MovementPayment = "payment"
	MovementExpense = "expense"
)

// CashSession represents one operator's register shift. At most one Open
// session may exist per operator (enforced by a partial unique index plus a
// service-level pre-check). The transition Open→Closed happens once;
// a closed session is immutable.
type CashSession struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OperatorID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status       string          `gorm:"type:varchar(10);not null;default:'open'"`
	OpeningFloat decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Closing fields are computed once at close time
	ExpectedClosingAmount *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ActualClosingAmount   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Difference            *decimal.Decimal `gorm:"type:decimal(12,2)"`
	OpenedAt              time.Time
	ClosedAt              *time.Time

	Movements []CashMovement `gorm:"foreignKey:CashSessionID"`
}

func (CashSession) TableName() string { return "cash_sessions" }

// CashMovement is an immutable event in the register ledger: one row per
// tendered amount (sale or abono) and per cash expense inside a session.
// Kind: "sale" | "payment" | "expense". Amount is negative for expenses.
// Cash is true only for immediate-cash tenders — those are the entries that
// count toward the drawer's expected closing amount.
type CashMovement struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashSessionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind          string          `gorm:"type:varchar(10);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Cash          bool            `gorm:"not null;default:false"`
	Description   string          `gorm:"not null"`
	ReferenceID   *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt     time.Time
}

func (CashMovement) TableName() string { return "cash_movements" }
