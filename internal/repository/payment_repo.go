package repository

import (
	"context"
	"time"

	"lunapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	CreateTx(tx *gorm.DB, p *model.Payment) error
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]model.Payment, error)

	// ListTenderedBetween returns abonos created in [from, to) — the
	// payment-side tendered events consumed by settlement projection.
	ListTenderedBetween(ctx context.Context, from, to time.Time) ([]model.Payment, error)
}

type paymentRepo struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) PaymentRepository { return &paymentRepo{db: db} }

func (r *paymentRepo) CreateTx(tx *gorm.DB, p *model.Payment) error {
	return tx.Create(p).Error
}

func (r *paymentRepo) ListBySale(ctx context.Context, saleID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).Where("sale_id = ?", saleID).Order("created_at ASC").Find(&payments).Error
	return payments, err
}

func (r *paymentRepo) ListTenderedBetween(ctx context.Context, from, to time.Time) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}
