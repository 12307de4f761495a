package service

import (
	"context"
	"fmt"
	"time"

	"lunapos/internal/dto"
	"lunapos/internal/model"
	"lunapos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExpenseService is the outflow ledger, parallel to receivables: committed
// (settled) expenses and partial payments against pending ones.
type ExpenseService interface {
	Create(ctx context.Context, req dto.CreateExpenseRequest) (*dto.ExpenseResponse, error)
	RegisterPayment(ctx context.Context, req dto.RegisterExpensePaymentRequest) (*dto.ExpenseResponse, error)
	List(ctx context.Context, filter dto.ExpenseFilter) (*dto.ExpenseListResponse, error)
}

type expenseService struct {
	repo        repository.ExpenseRepository
	sessionRepo repository.CashSessionRepository
	sessions    CashSessionService
	now         func() time.Time
}

func NewExpenseService(
	repo repository.ExpenseRepository,
	sessionRepo repository.CashSessionRepository,
	sessions CashSessionService,
) ExpenseService {
	return &expenseService{repo: repo, sessionRepo: sessionRepo, sessions: sessions, now: time.Now}
}

func (s *expenseService) Create(ctx context.Context, req dto.CreateExpenseRequest) (*dto.ExpenseResponse, error) {
	sessionID, err := parseOptionalUUID(req.CashSessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid cash_session_id: %w", err)
	}
	if sessionID != nil {
		if err := s.sessions.RequireOpen(ctx, *sessionID); err != nil {
			return nil, err
		}
	}

	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		t, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid due_date: %w", err)
		}
		dueDate = &t
	}

	// settled expenses carry no balance; pending ones owe the full amount
	outstanding := decimal.Zero
	if req.Status == model.ExpensePending {
		outstanding = req.Amount
	}

	expense := &model.Expense{
		Status:             req.Status,
		Amount:             req.Amount,
		OutstandingBalance: outstanding,
		Category:           req.Category,
		PaymentMethod:      req.PaymentMethod,
		Description:        req.Description,
		DueDate:            dueDate,
		CashSessionID:      sessionID,
	}
	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, err
	}

	// A settled cash expense drains the open drawer immediately.
	if sessionID != nil && req.Status == model.ExpenseSettled && req.PaymentMethod == "cash" {
		mov := model.CashMovement{
			CashSessionID: *sessionID,
			Kind:          model.MovementExpense,
			Amount:        req.Amount.Neg(),
			Cash:          true,
			Description:   "expense: " + req.Category,
			ReferenceID:   &expense.ID,
		}
		if err := s.sessionRepo.CreateMovement(ctx, &mov); err != nil {
			return nil, err
		}
	}

	return expenseToResponse(expense), nil
}

// RegisterPayment reduces a pending expense's outstanding balance. It does NOT
// flip Status when the balance reaches zero — Status stays a categorization
// field; the receivables-style listing filters on the balance instead.
func (s *expenseService) RegisterPayment(ctx context.Context, req dto.RegisterExpensePaymentRequest) (*dto.ExpenseResponse, error) {
	expenseID, err := uuid.Parse(req.ExpenseID)
	if err != nil {
		return nil, fmt.Errorf("invalid expense_id: %w", err)
	}
	sessionID, err := parseOptionalUUID(req.CashSessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid cash_session_id: %w", err)
	}

	expense, err := s.repo.FindByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("%w: expense %s", ErrNotFound, expenseID)
	}
	if req.Amount.GreaterThan(expense.OutstandingBalance) {
		return nil, fmt.Errorf("%w: amount %s, outstanding %s", ErrOverpayment, req.Amount, expense.OutstandingBalance)
	}
	if sessionID != nil {
		if err := s.sessions.RequireOpen(ctx, *sessionID); err != nil {
			return nil, err
		}
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		applied, err := s.repo.ReduceOutstandingTx(tx, expenseID, req.Amount)
		if err != nil {
			return err
		}
		if !applied {
			return fmt.Errorf("%w: amount %s", ErrOverpayment, req.Amount)
		}

		payment := model.ExpensePayment{
			ExpenseID:     expenseID,
			Amount:        req.Amount,
			PaymentMethod: req.PaymentMethod,
			CashSessionID: sessionID,
			PaidAt:        s.now(),
		}
		if err := s.repo.CreatePaymentTx(tx, &payment); err != nil {
			return err
		}

		if sessionID != nil && req.PaymentMethod == "cash" {
			mov := model.CashMovement{
				CashSessionID: *sessionID,
				Kind:          model.MovementExpense,
				Amount:        req.Amount.Neg(),
				Cash:          true,
				Description:   "expense payment: " + expense.Category,
				ReferenceID:   &payment.ID,
			}
			if err := s.sessionRepo.CreateMovementTx(tx, &mov); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	expense.OutstandingBalance = expense.OutstandingBalance.Sub(req.Amount)
	return expenseToResponse(expense), nil
}

func (s *expenseService) List(ctx context.Context, filter dto.ExpenseFilter) (*dto.ExpenseListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	expenses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		items = append(items, *expenseToResponse(&expenses[i]))
	}
	return &dto.ExpenseListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func expenseToResponse(e *model.Expense) *dto.ExpenseResponse {
	resp := &dto.ExpenseResponse{
		ID:                 e.ID.String(),
		Status:             e.Status,
		Amount:             e.Amount,
		OutstandingBalance: e.OutstandingBalance,
		Category:           e.Category,
		PaymentMethod:      e.PaymentMethod,
		Description:        e.Description,
		CreatedAt:          e.CreatedAt.Format(time.RFC3339),
	}
	if e.DueDate != nil {
		d := e.DueDate.Format("2006-01-02")
		resp.DueDate = &d
	}
	return resp
}
