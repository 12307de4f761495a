package repository

import (
	"context"
	"time"

	"lunapos/internal/dto"
	"lunapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)

	// ListOutstanding returns credit sales with outstanding_balance > 0.
	// A fully paid sale disappears from the receivables view — that is a
	// query filter, not a state transition.
	ListOutstanding(ctx context.Context, clientID *uuid.UUID) ([]model.Sale, error)

	// ReduceOutstandingTx is the conditional balance write: "decrement iff
	// outstanding_balance >= amount". applied=false means overpayment.
	ReduceOutstandingTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) (applied bool, err error)

	// ListCashTenderedBetween returns cash sales created in [from, to) —
	// the sale-side tendered events consumed by settlement projection.
	ListCashTenderedBetween(ctx context.Context, from, to time.Time) ([]model.Sale, error)

	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items").First(&s, id).Error
	return &s, err
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if filter.SaleType != "" && filter.SaleType != "all" {
		q = q.Where("sale_type = ?", filter.SaleType)
	}
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) ListOutstanding(ctx context.Context, clientID *uuid.UUID) ([]model.Sale, error) {
	var sales []model.Sale
	q := r.db.WithContext(ctx).
		Where("sale_type = ? AND outstanding_balance > 0", model.SaleTypeCredit)
	if clientID != nil {
		q = q.Where("client_id = ?", *clientID)
	}
	err := q.Order("created_at ASC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) ReduceOutstandingTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	res := tx.Model(&model.Sale{}).
		Where("id = ? AND outstanding_balance >= ?", id, amount).
		Update("outstanding_balance", gorm.Expr("outstanding_balance - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *saleRepo) ListCashTenderedBetween(ctx context.Context, from, to time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Where("sale_type = ? AND created_at >= ? AND created_at < ?", model.SaleTypeCash, from, to).
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}
