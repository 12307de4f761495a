package service

import (
	"context"
	"fmt"

	"lunapos/internal/dto"
	"lunapos/internal/model"
	"lunapos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockService is the stock ledger: authoritative quantities mutated only
// through conditional debits and atomic credits, each recorded as an
// immutable StockMovement.
type StockService interface {
	// DebitTx decrements iff quantity >= requested; fails with
	// ErrInsufficientStock otherwise. Must run inside the caller's transaction
	// when part of a larger unit (sales).
	DebitTx(ctx context.Context, tx *gorm.DB, entryID uuid.UUID, qty int, kind, reason string, ref *uuid.UUID) error

	// CreditTx atomically increments, creating the entry when absent.
	CreditTx(ctx context.Context, tx *gorm.DB, req dto.CreditStockRequest, kind string) (*model.StockEntry, error)

	// Credit is the standalone variant used for adjustments outside a sale.
	Credit(ctx context.Context, req dto.CreditStockRequest) (*model.StockEntry, error)

	// CompensateDebitTx reverses an already-applied debit after a later step
	// of the same logical unit failed.
	CompensateDebitTx(ctx context.Context, tx *gorm.DB, entryID uuid.UUID, qty int, reason string)

	// Transfer debits the source and credits the destination; a failed credit
	// compensates the debit so no quantity is lost in transit.
	Transfer(ctx context.Context, req dto.TransferStockRequest) error

	ListMovements(ctx context.Context, filter dto.StockMovementFilter) ([]model.StockMovement, int64, error)
}

type stockService struct {
	repo repository.StockRepository
}

func NewStockService(repo repository.StockRepository) StockService {
	return &stockService{repo: repo}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func (s *stockService) DebitTx(ctx context.Context, tx *gorm.DB, entryID uuid.UUID, qty int, kind, reason string, ref *uuid.UUID) error {
	after, applied, err := s.repo.DebitTx(tx, entryID, qty)
	if err != nil {
		return err
	}
	if !applied {
		// The guard matched no row: either the entry is missing or the
		// quantity was short. Distinguish for the error message only.
		entry, ferr := s.repo.FindByID(ctx, entryID)
		if ferr != nil {
			return fmt.Errorf("%w: stock entry %s", ErrNotFound, entryID)
		}
		return fmt.Errorf("%w: entry %s has %d, requested %d", ErrInsufficientStock, entryID, entry.Quantity, qty)
	}

	// Before/after come from the UPDATE's RETURNING, so concurrent debits
	// each record their own exact snapshot.
	return s.repo.CreateMovementTx(tx, &model.StockMovement{
		StockEntryID:   entryID,
		Kind:           kind,
		Quantity:       -qty,
		QuantityBefore: after + qty,
		QuantityAfter:  after,
		Reason:         reason,
		ReferenceID:    ref,
	})
}

func (s *stockService) CreditTx(ctx context.Context, tx *gorm.DB, req dto.CreditStockRequest, kind string) (*model.StockEntry, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product_id: %w", err)
	}
	sizeID, err := parseOptionalUUID(req.SizeID)
	if err != nil {
		return nil, fmt.Errorf("invalid size_id: %w", err)
	}
	warehouseID, err := parseOptionalUUID(req.WarehouseID)
	if err != nil {
		return nil, fmt.Errorf("invalid warehouse_id: %w", err)
	}

	entry, err := s.repo.EnsureEntryTx(tx, productID, sizeID, warehouseID)
	if err != nil {
		return nil, err
	}
	after, err := s.repo.CreditTx(tx, entry.ID, req.Quantity)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateMovementTx(tx, &model.StockMovement{
		StockEntryID:   entry.ID,
		Kind:           kind,
		Quantity:       req.Quantity,
		QuantityBefore: after - req.Quantity,
		QuantityAfter:  after,
		Reason:         req.Reason,
	}); err != nil {
		return nil, err
	}
	entry.Quantity = after
	return entry, nil
}

func (s *stockService) Credit(ctx context.Context, req dto.CreditStockRequest) (*model.StockEntry, error) {
	var entry *model.StockEntry
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = s.CreditTx(ctx, tx, req, model.MovementKindCredit)
		return txErr
	})
	return entry, err
}

func (s *stockService) Transfer(ctx context.Context, req dto.TransferStockRequest) error {
	fromID, err := uuid.Parse(req.FromStockEntryID)
	if err != nil {
		return fmt.Errorf("invalid from_stock_entry_id: %w", err)
	}

	reason := req.Reason
	if reason == "" {
		reason = "stock transfer"
	}

	// Debit then credit. A failed credit compensates the debit explicitly so
	// no quantity is lost in transit; under a real transaction the rollback
	// discards both anyway.
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.DebitTx(ctx, tx, fromID, req.Quantity, model.MovementKindTransferOut, reason, nil); err != nil {
			return err
		}
		_, err := s.CreditTx(ctx, tx, dto.CreditStockRequest{
			ProductID:   req.ToProductID,
			SizeID:      req.ToSizeID,
			WarehouseID: req.ToWarehouseID,
			Quantity:    req.Quantity,
			Reason:      reason,
		}, model.MovementKindTransferIn)
		if err != nil {
			s.CompensateDebitTx(ctx, tx, fromID, req.Quantity, reason)
			return err
		}
		return nil
	})
}

// CompensateDebitTx reverses an already-applied debit. Best-effort: the entry
// is known to exist and increments never fail the conditional guard.
func (s *stockService) CompensateDebitTx(ctx context.Context, tx *gorm.DB, entryID uuid.UUID, qty int, reason string) {
	after, err := s.repo.CreditTx(tx, entryID, qty)
	if err != nil {
		return
	}
	_ = s.repo.CreateMovementTx(tx, &model.StockMovement{
		StockEntryID:   entryID,
		Kind:           model.MovementKindCompensation,
		Quantity:       qty,
		QuantityBefore: after - qty,
		QuantityAfter:  after,
		Reason:         "compensation: " + reason,
	})
}

func (s *stockService) ListMovements(ctx context.Context, filter dto.StockMovementFilter) ([]model.StockMovement, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	return s.repo.ListMovements(ctx, filter)
}

func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
