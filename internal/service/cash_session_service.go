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
)

type CashSessionService interface {
	Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error)
	Close(ctx context.Context, sessionID uuid.UUID, req dto.CloseSessionRequest) (*dto.SessionResponse, error)
	Summary(ctx context.Context, sessionID uuid.UUID) (*dto.SessionSummaryResponse, error)
	Active(ctx context.Context, operatorID uuid.UUID) (*dto.SessionResponse, error)
	List(ctx context.Context, filter dto.SessionFilter) (*dto.SessionListResponse, error)

	// RequireOpen is called by SaleService and ExpenseService to gate tender
	// events on an open register.
	RequireOpen(ctx context.Context, sessionID uuid.UUID) error
}

type cashSessionService struct {
	repo repository.CashSessionRepository
	now  func() time.Time
}

func NewCashSessionService(repo repository.CashSessionRepository) CashSessionService {
	return &cashSessionService{repo: repo, now: time.Now}
}

// ── Open ──────────────────────────────────────────────────────────────────────

func (s *cashSessionService) Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	// Guard: at most one open session per operator. The partial unique index
	// catches the race two concurrent opens would otherwise win together.
	if existing, err := s.repo.FindOpenByOperator(ctx, operatorID); err == nil && existing != nil {
		return nil, ErrAlreadyOpenSession
	}

	session := &model.CashSession{
		OperatorID:   operatorID,
		Status:       model.SessionOpen,
		OpeningFloat: req.OpeningFloat,
		OpenedAt:     s.now(),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrAlreadyOpenSession
		}
		return nil, err
	}
	return sessionToResponse(session), nil
}

// ── Close ─────────────────────────────────────────────────────────────────────
// expected = openingFloat + Σ cash tender movements − Σ cash expense movements
// difference = counted − expected. The transition is irreversible.

func (s *cashSessionService) Close(ctx context.Context, sessionID uuid.UUID, req dto.CloseSessionRequest) (*dto.SessionResponse, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	if session.Status != model.SessionOpen {
		return nil, ErrClosedRegister
	}

	totals, err := s.computeTotals(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	expected := session.OpeningFloat.Add(totals.cashIn).Sub(totals.cashExpense)
	difference := req.CountedAmount.Sub(expected)
	counted := req.CountedAmount
	closedAt := s.now()

	session.ExpectedClosingAmount = &expected
	session.ActualClosingAmount = &counted
	session.Difference = &difference
	session.Status = model.SessionClosed
	session.ClosedAt = &closedAt

	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return sessionToResponse(session), nil
}

// ── Summary ───────────────────────────────────────────────────────────────────
// Recomputed on every call while the session is open — never cached.

func (s *cashSessionService) Summary(ctx context.Context, sessionID uuid.UUID) (*dto.SessionSummaryResponse, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}

	totals, err := s.computeTotals(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &dto.SessionSummaryResponse{
		SessionID:             session.ID.String(),
		OpeningFloat:          session.OpeningFloat,
		CashSalesTotal:        totals.cashSales,
		CashPaymentsTotal:     totals.cashPayments,
		CashExpensesTotal:     totals.cashExpense,
		GrossTenderedTotal:    totals.grossTendered,
		ExpectedClosingAmount: session.OpeningFloat.Add(totals.cashIn).Sub(totals.cashExpense),
	}, nil
}

func (s *cashSessionService) Active(ctx context.Context, operatorID uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.repo.FindOpenByOperator(ctx, operatorID)
	if err != nil || session == nil {
		return nil, ErrClosedRegister
	}
	return sessionToResponse(session), nil
}

func (s *cashSessionService) List(ctx context.Context, filter dto.SessionFilter) (*dto.SessionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sessions, total, err := s.repo.ListSessions(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		items = append(items, *sessionToResponse(&sessions[i]))
	}
	return &dto.SessionListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *cashSessionService) RequireOpen(ctx context.Context, sessionID uuid.UUID) error {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return ErrClosedRegister
	}
	if session.Status != model.SessionOpen {
		return ErrClosedRegister
	}
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

type sessionTotals struct {
	cashSales     decimal.Decimal
	cashPayments  decimal.Decimal
	cashExpense   decimal.Decimal
	cashIn        decimal.Decimal // cashSales + cashPayments
	grossTendered decimal.Decimal // all tender movements, any method
}

func (s *cashSessionService) computeTotals(ctx context.Context, sessionID uuid.UUID) (sessionTotals, error) {
	totals := sessionTotals{
		cashSales:     decimal.Zero,
		cashPayments:  decimal.Zero,
		cashExpense:   decimal.Zero,
		cashIn:        decimal.Zero,
		grossTendered: decimal.Zero,
	}

	movements, err := s.repo.ListMovements(ctx, sessionID)
	if err != nil {
		return totals, err
	}

	for _, m := range movements {
		switch m.Kind {
		case model.MovementSale:
			totals.grossTendered = totals.grossTendered.Add(m.Amount)
			if m.Cash {
				totals.cashSales = totals.cashSales.Add(m.Amount)
			}
		case model.MovementPayment:
			totals.grossTendered = totals.grossTendered.Add(m.Amount)
			if m.Cash {
				totals.cashPayments = totals.cashPayments.Add(m.Amount)
			}
		case model.MovementExpense:
			// Expense amounts are stored negative.
			if m.Cash {
				totals.cashExpense = totals.cashExpense.Add(m.Amount.Neg())
			}
		}
	}
	totals.cashIn = totals.cashSales.Add(totals.cashPayments)
	return totals, nil
}

func sessionToResponse(s *model.CashSession) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:                    s.ID.String(),
		OperatorID:            s.OperatorID.String(),
		Status:                s.Status,
		OpeningFloat:          s.OpeningFloat,
		ExpectedClosingAmount: s.ExpectedClosingAmount,
		ActualClosingAmount:   s.ActualClosingAmount,
		Difference:            s.Difference,
		OpenedAt:              s.OpenedAt.Format(time.RFC3339),
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}
