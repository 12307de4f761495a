package repository

import (
	"context"

	"lunapos/internal/dto"
	"lunapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockRepository is the data access contract for the stock ledger.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory stubs.
type StockRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockEntry, error)

	// DebitTx performs the single conditional write the ledger relies on:
	// "decrement iff quantity >= requested". Returns applied=false when the
	// guard fails — the caller translates that into ErrInsufficientStock.
	// Concurrent sales touching the same entry race at the database layer;
	// the returned after-quantity comes from the UPDATE itself (RETURNING),
	// so audit snapshots are exact even under contention.
	DebitTx(tx *gorm.DB, id uuid.UUID, qty int) (after int, applied bool, err error)

	// CreditTx atomically increments an existing entry and returns the
	// post-credit quantity.
	CreditTx(tx *gorm.DB, id uuid.UUID, qty int) (after int, err error)

	// EnsureEntryTx returns the entry for the given key, creating a zero-quantity
	// row when absent (adjustments and transfers into empty locations).
	EnsureEntryTx(tx *gorm.DB, productID uuid.UUID, sizeID, warehouseID *uuid.UUID) (*model.StockEntry, error)

	CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error
	ListMovements(ctx context.Context, filter dto.StockMovementFilter) ([]model.StockMovement, int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) DB() *gorm.DB { return r.db }

func (r *stockRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockEntry, error) {
	var e model.StockEntry
	err := r.db.WithContext(ctx).First(&e, id).Error
	return &e, err
}

func (r *stockRepo) DebitTx(tx *gorm.DB, id uuid.UUID, qty int) (int, bool, error) {
	var after []int
	err := tx.Raw(
		`UPDATE stock_entries
		    SET quantity = quantity - ?, updated_at = NOW()
		  WHERE id = ? AND quantity >= ?
		RETURNING quantity`,
		qty, id, qty,
	).Scan(&after).Error
	if err != nil {
		return 0, false, err
	}
	if len(after) == 0 {
		return 0, false, nil
	}
	return after[0], true, nil
}

func (r *stockRepo) CreditTx(tx *gorm.DB, id uuid.UUID, qty int) (int, error) {
	var after []int
	err := tx.Raw(
		`UPDATE stock_entries
		    SET quantity = quantity + ?, updated_at = NOW()
		  WHERE id = ?
		RETURNING quantity`,
		qty, id,
	).Scan(&after).Error
	if err != nil {
		return 0, err
	}
	if len(after) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return after[0], nil
}

func (r *stockRepo) EnsureEntryTx(tx *gorm.DB, productID uuid.UUID, sizeID, warehouseID *uuid.UUID) (*model.StockEntry, error) {
	entry := model.StockEntry{ProductID: productID, SizeID: sizeID, WarehouseID: warehouseID}
	q := tx.Where("product_id = ?", productID)
	if sizeID != nil {
		q = q.Where("size_id = ?", *sizeID)
	} else {
		q = q.Where("size_id IS NULL")
	}
	if warehouseID != nil {
		q = q.Where("warehouse_id = ?", *warehouseID)
	} else {
		q = q.Where("warehouse_id IS NULL")
	}
	err := q.FirstOrCreate(&entry).Error
	return &entry, err
}

func (r *stockRepo) CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockRepo) ListMovements(ctx context.Context, filter dto.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var movs []model.StockMovement
	var total int64

	q := r.db.WithContext(ctx).Model(&model.StockMovement{})
	if filter.StockEntryID != "" {
		q = q.Where("stock_entry_id = ?", filter.StockEntryID)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&movs).Error
	return movs, total, err
}
