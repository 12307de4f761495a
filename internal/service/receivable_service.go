package service

import (
	"context"
	"fmt"
	"time"

	"lunapos/internal/dto"
	"lunapos/internal/model"
	"lunapos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReceivableService is the accounts receivable ledger: outstanding balances on
// credit sales, reduced by immutable abono records.
type ReceivableService interface {
	RegisterPayment(ctx context.Context, req dto.RegisterPaymentRequest) (*dto.PaymentResponse, error)
	ListOutstanding(ctx context.Context, clientID *uuid.UUID) ([]dto.ReceivableResponse, error)
	ListPayments(ctx context.Context, saleID uuid.UUID) ([]dto.PaymentResponse, error)
}

type receivableService struct {
	saleRepo    repository.SaleRepository
	paymentRepo repository.PaymentRepository
	sessionRepo repository.CashSessionRepository
	sessions    CashSessionService
	catalog     MethodCatalog
}

func NewReceivableService(
	saleRepo repository.SaleRepository,
	paymentRepo repository.PaymentRepository,
	sessionRepo repository.CashSessionRepository,
	sessions CashSessionService,
	catalog MethodCatalog,
) ReceivableService {
	return &receivableService{
		saleRepo:    saleRepo,
		paymentRepo: paymentRepo,
		sessionRepo: sessionRepo,
		sessions:    sessions,
		catalog:     catalog,
	}
}

// ── RegisterPayment ───────────────────────────────────────────────────────────
// The balance write is conditional ("decrement iff outstanding >= amount") so
// two concurrent abonos can never overdraw a receivable. An accepted payment
// is itself a tendered event: its own payment method decides how settlement
// projection splits it later.

func (s *receivableService) RegisterPayment(ctx context.Context, req dto.RegisterPaymentRequest) (*dto.PaymentResponse, error) {
	saleID, err := uuid.Parse(req.SaleID)
	if err != nil {
		return nil, fmt.Errorf("invalid sale_id: %w", err)
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("invalid client_id: %w", err)
	}
	methodID, err := parseOptionalUUID(req.PaymentMethodID)
	if err != nil {
		return nil, fmt.Errorf("invalid payment_method_id: %w", err)
	}
	sessionID, err := parseOptionalUUID(req.CashSessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid cash_session_id: %w", err)
	}

	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("%w: sale %s", ErrNotFound, saleID)
	}
	if req.Amount.GreaterThan(sale.OutstandingBalance) {
		return nil, fmt.Errorf("%w: amount %s, outstanding %s", ErrOverpayment, req.Amount, sale.OutstandingBalance)
	}

	// Movements scoped to a session require the register to be open.
	if sessionID != nil {
		if err := s.sessions.RequireOpen(ctx, *sessionID); err != nil {
			return nil, err
		}
	}

	var payment model.Payment
	txErr := runTx(ctx, s.saleRepo.DB(), func(tx *gorm.DB) error {
		applied, err := s.saleRepo.ReduceOutstandingTx(tx, saleID, req.Amount)
		if err != nil {
			return err
		}
		if !applied {
			// A concurrent payment won the race since the pre-check.
			return fmt.Errorf("%w: amount %s", ErrOverpayment, req.Amount)
		}

		payment = model.Payment{
			SaleID:          saleID,
			ClientID:        clientID,
			Amount:          req.Amount,
			PaymentMethodID: methodID,
			CashSessionID:   sessionID,
		}
		if err := s.paymentRepo.CreateTx(tx, &payment); err != nil {
			return err
		}

		if sessionID != nil {
			method := s.catalog.Resolve(ctx, methodID)
			mov := model.CashMovement{
				CashSessionID: *sessionID,
				Kind:          model.MovementPayment,
				Amount:        req.Amount,
				Cash:          method == nil || !method.Deferred(),
				Description:   "abono on " + sale.Folio,
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

	remaining := sale.OutstandingBalance.Sub(req.Amount)

	return &dto.PaymentResponse{
		ID:                 payment.ID.String(),
		SaleID:             saleID.String(),
		Amount:             req.Amount,
		OutstandingBalance: remaining,
		CreatedAt:          payment.CreatedAt.Format(time.RFC3339),
	}, nil
}

// ListOutstanding excludes fully paid sales — a query filter, not a state
// transition.
func (s *receivableService) ListOutstanding(ctx context.Context, clientID *uuid.UUID) ([]dto.ReceivableResponse, error) {
	sales, err := s.saleRepo.ListOutstanding(ctx, clientID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReceivableResponse, 0, len(sales))
	for _, sale := range sales {
		resp := dto.ReceivableResponse{
			SaleID:             sale.ID.String(),
			Folio:              sale.Folio,
			Total:              sale.Total,
			OutstandingBalance: sale.OutstandingBalance,
			InstallmentAmount:  sale.InstallmentAmount,
			PaymentFrequency:   sale.PaymentFrequency,
			CreatedAt:          sale.CreatedAt.Format(time.RFC3339),
		}
		if sale.ClientID != nil {
			resp.ClientID = sale.ClientID.String()
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *receivableService) ListPayments(ctx context.Context, saleID uuid.UUID) ([]dto.PaymentResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("%w: sale %s", ErrNotFound, saleID)
	}
	payments, err := s.paymentRepo.ListBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	// Replay the balance so each row shows the outstanding amount after it.
	balance := sale.Total
	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		balance = balance.Sub(p.Amount)
		out = append(out, dto.PaymentResponse{
			ID:                 p.ID.String(),
			SaleID:             saleID.String(),
			Amount:             p.Amount,
			OutstandingBalance: balance,
			CreatedAt:          p.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}
