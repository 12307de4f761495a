package model

import (
	"time"

	"github.com/google/uuid"
)

// StockEntry is the authoritative quantity for one (product, size, warehouse)
// combination. SizeID and WarehouseID are nullable: products without size
// variants or warehouse assignment share a single row with NULLs.
// Quantity is mutated only through the Stock Ledger's debit/credit operations.
type StockEntry struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_stock_key,unique"`
	SizeID      *uuid.UUID `gorm:"type:uuid;index:idx_stock_key,unique"`
	WarehouseID *uuid.UUID `gorm:"type:uuid;index:idx_stock_key,unique"`
	Quantity    int        `gorm:"not null;default:0;check:quantity >= 0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (StockEntry) TableName() string { return "stock_entries" }

// Stock movement kinds.
const (
	MovementKindSale         = "sale"
	MovementKindCredit       = "credit"
	MovementKindTransferOut  = "transfer_out"
	MovementKindTransferIn   = "transfer_in"
	MovementKindCompensation = "compensation"
)

// StockMovement is an immutable audit event recorded for every stock change.
// Movements are NEVER modified or deleted — compensations create inverse entries.
type StockMovement struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StockEntryID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind           string    `gorm:"type:varchar(20);not null"`
	Quantity       int       `gorm:"not null"` // positive = credit, negative = debit
	QuantityBefore int       `gorm:"not null"`
	QuantityAfter  int       `gorm:"not null"`
	Reason         string
	// ReferenceID links to the originating Sale or transfer operation
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
}

func (StockMovement) TableName() string { return "stock_movements" }
