package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"lunapos/internal/dto"
	"lunapos/internal/model"
	"lunapos/internal/repository"
	"lunapos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// folioRetries bounds folio regeneration on unique-index collisions.
// Collisions are retried transparently, never surfaced to the caller.
const folioRetries = 5

type SaleService interface {
	Create(ctx context.Context, operatorID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	repo        repository.SaleRepository
	stock       StockService
	sessions    CashSessionService
	sessionRepo repository.CashSessionRepository
	catalog     MethodCatalog
	dispatcher  *worker.Dispatcher
	now         func() time.Time
}

func NewSaleService(
	repo repository.SaleRepository,
	stock StockService,
	sessions CashSessionService,
	sessionRepo repository.CashSessionRepository,
	catalog MethodCatalog,
	dispatcher *worker.Dispatcher,
) SaleService {
	return &saleService{
		repo:        repo,
		stock:       stock,
		sessions:    sessions,
		sessionRepo: sessionRepo,
		catalog:     catalog,
		dispatcher:  dispatcher,
		now:         time.Now,
	}
}

var hundred = decimal.NewFromInt(100)

// ── Create ────────────────────────────────────────────────────────────────────
// All-or-nothing sale registration:
//  1. cash sales require an open session
//  2. validate lines, compute subtotals and total
//  3. ONE TX: folio (regenerated on collision), sale + items, per-line
//     conditional stock debits, cash movement for cash sales
//  4. any line failure or persistence failure unwinds every debit already
//     applied — readers never observe a partial sale

func (s *saleService) Create(ctx context.Context, operatorID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	var sessionID *uuid.UUID
	if req.CashSessionID != nil {
		id, err := uuid.Parse(*req.CashSessionID)
		if err != nil {
			return nil, fmt.Errorf("invalid cash_session_id: %w", err)
		}
		sessionID = &id
	}

	// 1. Cash sales must land in an open register.
	if req.SaleType == model.SaleTypeCash {
		if sessionID == nil {
			return nil, ErrClosedRegister
		}
		if err := s.sessions.RequireOpen(ctx, *sessionID); err != nil {
			return nil, err
		}
	}

	clientID, err := parseOptionalUUID(req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("invalid client_id: %w", err)
	}
	methodID, err := parseOptionalUUID(req.PaymentMethodID)
	if err != nil {
		return nil, fmt.Errorf("invalid payment_method_id: %w", err)
	}

	// 2. Resolve lines and totals before touching the ledger.
	type resolvedLine struct {
		entryID  uuid.UUID
		qty      int
		price    decimal.Decimal
		discount decimal.Decimal
		subtotal decimal.Decimal
	}
	resolved := make([]resolvedLine, 0, len(req.Items))
	total := decimal.Zero
	for i, item := range req.Items {
		entryID, err := uuid.Parse(item.StockEntryID)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid stock_entry_id: %w", i, err)
		}
		if item.DiscountPercent.IsNegative() || item.DiscountPercent.GreaterThan(hundred) {
			return nil, fmt.Errorf("%w: line %d: %s%% outside [0,100]", ErrInvalidDiscount, i, item.DiscountPercent)
		}
		subtotal := item.UnitPrice.
			Mul(decimal.NewFromInt(int64(item.Quantity))).
			Mul(hundred.Sub(item.DiscountPercent)).
			Div(hundred).
			Round(2)
		total = total.Add(subtotal)
		resolved = append(resolved, resolvedLine{
			entryID:  entryID,
			qty:      item.Quantity,
			price:    item.UnitPrice,
			discount: item.DiscountPercent,
			subtotal: subtotal,
		})
	}

	outstanding := decimal.Zero
	installmentAmount := decimal.Zero
	if req.SaleType == model.SaleTypeCredit {
		outstanding = total
		if req.InstallmentCount > 0 {
			installmentAmount = total.Div(decimal.NewFromInt(int64(req.InstallmentCount))).Round(2)
		}
	}

	// 3. One logical unit: debits + sale + items + cash movement.
	var sale model.Sale
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var debited []resolvedLine
		unwind := func() {
			for _, line := range debited {
				s.stock.CompensateDebitTx(ctx, tx, line.entryID, line.qty, "sale aborted")
			}
		}

		sale = model.Sale{
			SaleType:           req.SaleType,
			Total:              total,
			PaymentMethodID:    methodID,
			ClientID:           clientID,
			CashSessionID:      sessionID,
			OperatorID:         operatorID,
			OutstandingBalance: outstanding,
			InstallmentCount:   req.InstallmentCount,
			InstallmentAmount:  installmentAmount,
			PaymentFrequency:   req.PaymentFrequency,
		}
		for _, line := range resolved {
			sale.Items = append(sale.Items, model.SaleItem{
				StockEntryID:    line.entryID,
				Quantity:        line.qty,
				UnitPrice:       line.price,
				DiscountPercent: line.discount,
				Subtotal:        line.subtotal,
			})
		}

		for _, line := range resolved {
			if err := s.stock.DebitTx(ctx, tx, line.entryID, line.qty, model.MovementKindSale, "sale", nil); err != nil {
				unwind()
				return err
			}
			debited = append(debited, line)
		}

		if err := s.createWithFolio(tx, &sale); err != nil {
			unwind()
			return err
		}

		// Cash sale = one tendered event in the register ledger.
		if req.SaleType == model.SaleTypeCash && sessionID != nil {
			method := s.catalog.Resolve(ctx, methodID)
			mov := model.CashMovement{
				CashSessionID: *sessionID,
				Kind:          model.MovementSale,
				Amount:        total,
				Cash:          method == nil || !method.Deferred(),
				Description:   "sale " + sale.Folio,
				ReferenceID:   &sale.ID,
			}
			if err := s.sessionRepo.CreateMovementTx(tx, &mov); err != nil {
				unwind()
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Best-effort async low-stock check — fire & forget.
	if s.dispatcher != nil {
		for _, line := range resolved {
			_ = s.dispatcher.EnqueueStockCheck(ctx, worker.StockCheckPayload{
				StockEntryID: line.entryID.String(),
			})
		}
	}

	return saleToResponse(&sale), nil
}

// createWithFolio persists the sale, regenerating the folio on unique-index
// collisions. FolioCollision is an internal retry, never an API error.
func (s *saleService) createWithFolio(tx *gorm.DB, sale *model.Sale) error {
	var lastErr error
	for attempt := 0; attempt < folioRetries; attempt++ {
		sale.Folio = generateFolio(s.now())
		lastErr = s.repo.CreateTx(tx, sale)
		if lastErr == nil {
			return nil
		}
		if !isDuplicateKey(lastErr) {
			return lastErr
		}
		log.Debug().Str("folio", sale.Folio).Msg("sale: folio collision, regenerating")
	}
	return fmt.Errorf("folio generation exhausted retries: %w", lastErr)
}

const folioSuffixAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateFolio builds a human-readable unique id: timestamp plus a short
// random suffix to disambiguate same-second sales.
func generateFolio(now time.Time) string {
	var suffix [4]byte
	for i := range suffix {
		suffix[i] = folioSuffixAlphabet[rand.Intn(len(folioSuffixAlphabet))]
	}
	return fmt.Sprintf("V%s-%s", now.Format("20060102-150405"), suffix)
}

// isDuplicateKey detects a unique-constraint violation without depending on a
// specific driver error type.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: sale %s", ErrNotFound, id)
	}
	return saleToResponse(sale), nil
}

// List returns a paginated list of sales filtered by date, type and client.
func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func saleToResponse(sale *model.Sale) *dto.SaleResponse {
	items := make([]dto.SaleLineResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, dto.SaleLineResponse{
			StockEntryID:    item.StockEntryID.String(),
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			Subtotal:        item.Subtotal,
		})
	}
	return &dto.SaleResponse{
		ID:                 sale.ID.String(),
		Folio:              sale.Folio,
		SaleType:           sale.SaleType,
		Total:              sale.Total,
		OutstandingBalance: sale.OutstandingBalance,
		InstallmentCount:   sale.InstallmentCount,
		InstallmentAmount:  sale.InstallmentAmount,
		PaymentFrequency:   sale.PaymentFrequency,
		Items:              items,
		CreatedAt:          sale.CreatedAt.Format(time.RFC3339),
	}
}
