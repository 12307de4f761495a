package repository

import (
	"context"

	"lunapos/internal/dto"
	"lunapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CashSessionRepository interface {
	CreateSession(ctx context.Context, s *model.CashSession) error
	FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.CashSession, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	UpdateSession(ctx context.Context, s *model.CashSession) error
	ListSessions(ctx context.Context, filter dto.SessionFilter) ([]model.CashSession, int64, error)

	CreateMovement(ctx context.Context, m *model.CashMovement) error
	CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error
	ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error)
}

type cashSessionRepo struct{ db *gorm.DB }

func NewCashSessionRepository(db *gorm.DB) CashSessionRepository { return &cashSessionRepo{db: db} }

func (r *cashSessionRepo) CreateSession(ctx context.Context, s *model.CashSession) error {
	// The partial unique index on (operator_id) WHERE status='open' backs the
	// service-level pre-check: two racing opens cannot both commit.
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cashSessionRepo) FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where("operator_id = ? AND status = ?", operatorID, model.SessionOpen).
		First(&s).Error
	return &s, err
}

func (r *cashSessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *cashSessionRepo) UpdateSession(ctx context.Context, s *model.CashSession) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *cashSessionRepo) ListSessions(ctx context.Context, filter dto.SessionFilter) ([]model.CashSession, int64, error) {
	var sessions []model.CashSession
	var total int64

	q := r.db.WithContext(ctx).Model(&model.CashSession{})
	if filter.OperatorID != "" {
		q = q.Where("operator_id = ?", filter.OperatorID)
	}
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("opened_at DESC").Offset(offset).Limit(filter.Limit).Find(&sessions).Error
	return sessions, total, err
}

func (r *cashSessionRepo) CreateMovement(ctx context.Context, m *model.CashMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *cashSessionRepo) CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error {
	return tx.Create(m).Error
}

func (r *cashSessionRepo) ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error) {
	var movs []model.CashMovement
	err := r.db.WithContext(ctx).
		Where("cash_session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}
