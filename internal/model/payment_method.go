package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Settlement categories. The category is an explicit configuration field —
// settlement policy is never inferred from the method's display name.
const (
	SettlementImmediate = "immediate"
	SettlementDeferred  = "deferred"
)

// PaymentMethod is external configuration, read-only to the core.
// A deferred method withholds CommissionRate and makes funds available
// SettlementDays after the tender.
type PaymentMethod struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name string    `gorm:"not null;uniqueIndex"`
	// Category: "immediate" | "deferred"
	Category       string          `gorm:"type:varchar(10);not null;default:'immediate'"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0"` // ∈ [0,1)
	SettlementDays int             `gorm:"not null;default:0"`
	Active         bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (PaymentMethod) TableName() string { return "payment_methods" }

// Deferred reports whether tenders through this method settle later, net of commission.
func (m PaymentMethod) Deferred() bool { return m.Category == SettlementDeferred }
