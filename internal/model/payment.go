package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is a partial payment (abono) applied against a credit sale's
// outstanding balance. Immutable once created. Each accepted payment is a
// tendered event in its own right: its PaymentMethodID decides how the
// settlement projection splits it.
type Payment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethodID *uuid.UUID      `gorm:"type:uuid"`
	CashSessionID   *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt       time.Time
}

func (Payment) TableName() string { return "payments" }
