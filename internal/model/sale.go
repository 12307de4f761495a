package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale types.
const (
	SaleTypeCash   = "cash"
	SaleTypeCredit = "credit"
)

// Sale is created once by the sale transaction service and is immutable
// afterwards, except for OutstandingBalance which only the receivables
// ledger may reduce.
type Sale struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Folio string    `gorm:"uniqueIndex;not null"`
	// SaleType: "cash" | "credit"
	SaleType        string          `gorm:"type:varchar(10);not null;index"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethodID *uuid.UUID      `gorm:"type:uuid;index"`
	ClientID        *uuid.UUID      `gorm:"type:uuid;index"`
	CashSessionID   *uuid.UUID      `gorm:"type:uuid;index"`
	OperatorID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	// OutstandingBalance ∈ [0, Total]; zero for cash sales
	OutstandingBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	InstallmentCount   int             `gorm:"not null;default:0"`
	InstallmentAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// PaymentFrequency: "weekly" | "biweekly" | "monthly" | ""
	PaymentFrequency string `gorm:"type:varchar(10)"`
	CreatedAt        time.Time

	Items []SaleItem `gorm:"foreignKey:SaleID"`
}

// SaleItem is a snapshot of one sold line; created with the Sale, never mutated.
type SaleItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	StockEntryID    uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity        int             `gorm:"not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}
