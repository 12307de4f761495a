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

type ExpenseRepository interface {
	Create(ctx context.Context, e *model.Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	List(ctx context.Context, filter dto.ExpenseFilter) ([]model.Expense, int64, error)

	// ReduceOutstandingTx mirrors the receivables conditional write:
	// "decrement iff outstanding_balance >= amount".
	ReduceOutstandingTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) (applied bool, err error)

	CreatePaymentTx(tx *gorm.DB, p *model.ExpensePayment) error

	// ListBetween / ListPaymentsBetween feed the reconciliation aggregator.
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Expense, error)
	ListPaymentsBetween(ctx context.Context, from, to time.Time) ([]model.ExpensePayment, error)

	DB() *gorm.DB
}

type expenseRepo struct{ db *gorm.DB }

func NewExpenseRepository(db *gorm.DB) ExpenseRepository { return &expenseRepo{db: db} }

func (r *expenseRepo) DB() *gorm.DB { return r.db }

func (r *expenseRepo) Create(ctx context.Context, e *model.Expense) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *expenseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var e model.Expense
	err := r.db.WithContext(ctx).Preload("Payments").First(&e, id).Error
	return &e, err
}

func (r *expenseRepo) List(ctx context.Context, filter dto.ExpenseFilter) ([]model.Expense, int64, error) {
	var expenses []model.Expense
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Expense{})
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&expenses).Error
	return expenses, total, err
}

func (r *expenseRepo) ReduceOutstandingTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	res := tx.Model(&model.Expense{}).
		Where("id = ? AND outstanding_balance >= ?", id, amount).
		Update("outstanding_balance", gorm.Expr("outstanding_balance - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *expenseRepo) CreatePaymentTx(tx *gorm.DB, p *model.ExpensePayment) error {
	return tx.Create(p).Error
}

func (r *expenseRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.Expense, error) {
	var expenses []model.Expense
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepo) ListPaymentsBetween(ctx context.Context, from, to time.Time) ([]model.ExpensePayment, error) {
	var payments []model.ExpensePayment
	err := r.db.WithContext(ctx).
		Where("paid_at >= ? AND paid_at < ?", from, to).
		Order("paid_at ASC").
		Find(&payments).Error
	return payments, err
}
