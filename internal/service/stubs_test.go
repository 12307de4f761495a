package service

// stubs_test.go — in-memory repository stubs shared by the service unit tests.
// All conditional writes are guarded by mutexes so concurrency tests exercise
// the same "check and decrement atomically" semantics the SQL layer provides.

import (
	"context"
	"errors"
	"sync"
	"time"

	"lunapos/internal/dto"
	"lunapos/internal/model"
	"lunapos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── StockRepository stub ──────────────────────────────────────────────────────

type stubStockRepo struct {
	mu        sync.Mutex
	entries   map[uuid.UUID]*model.StockEntry
	movements []model.StockMovement
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{entries: make(map[uuid.UUID]*model.StockEntry)}
}

func (r *stubStockRepo) addEntry(qty int) uuid.UUID {
	id := uuid.New()
	r.entries[id] = &model.StockEntry{ID: id, ProductID: uuid.New(), Quantity: qty}
	return id
}

func (r *stubStockRepo) DB() *gorm.DB { return nil }

func (r *stubStockRepo) FindByID(_ context.Context, id uuid.UUID) (*model.StockEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cloned := *e
	return &cloned, nil
}

func (r *stubStockRepo) DebitTx(_ *gorm.DB, id uuid.UUID, qty int) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.Quantity < qty {
		return 0, false, nil
	}
	e.Quantity -= qty
	return e.Quantity, true, nil
}

func (r *stubStockRepo) CreditTx(_ *gorm.DB, id uuid.UUID, qty int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return 0, errors.New("record not found")
	}
	e.Quantity += qty
	return e.Quantity, nil
}

func (r *stubStockRepo) EnsureEntryTx(_ *gorm.DB, productID uuid.UUID, sizeID, warehouseID *uuid.UUID) (*model.StockEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ProductID == productID && equalPtr(e.SizeID, sizeID) && equalPtr(e.WarehouseID, warehouseID) {
			cloned := *e
			return &cloned, nil
		}
	}
	e := &model.StockEntry{ID: uuid.New(), ProductID: productID, SizeID: sizeID, WarehouseID: warehouseID}
	r.entries[e.ID] = e
	cloned := *e
	return &cloned, nil
}

func equalPtr(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (r *stubStockRepo) CreateMovementTx(_ *gorm.DB, m *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubStockRepo) ListMovements(_ context.Context, filter dto.StockMovementFilter) ([]model.StockMovement, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockMovement
	for _, m := range r.movements {
		if filter.StockEntryID != "" && m.StockEntryID.String() != filter.StockEntryID {
			continue
		}
		if filter.Kind != "" && m.Kind != filter.Kind {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

var _ repository.StockRepository = (*stubStockRepo)(nil)

// ── SaleRepository stub ───────────────────────────────────────────────────────

type stubSaleRepo struct {
	mu    sync.Mutex
	sales map[uuid.UUID]*model.Sale
	// folioCollisions forces CreateTx to fail with a duplicate-key error the
	// first N times, simulating same-folio races.
	folioCollisions int
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.folioCollisions > 0 {
		r.folioCollisions--
		return errors.New(`duplicate key value violates unique constraint "idx_sales_folio"`)
	}
	for _, existing := range r.sales {
		if existing.Folio == s.Folio {
			return errors.New(`duplicate key value violates unique constraint "idx_sales_folio"`)
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	cloned := *s
	r.sales[s.ID] = &cloned
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cloned := *s
	return &cloned, nil
}

func (r *stubSaleRepo) List(_ context.Context, _ dto.SaleFilter) ([]model.Sale, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Sale
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) ListOutstanding(_ context.Context, clientID *uuid.UUID) ([]model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Sale
	for _, s := range r.sales {
		if s.SaleType != model.SaleTypeCredit || !s.OutstandingBalance.IsPositive() {
			continue
		}
		if clientID != nil && (s.ClientID == nil || *s.ClientID != *clientID) {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *stubSaleRepo) ReduceOutstandingTx(_ *gorm.DB, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return false, errors.New("record not found")
	}
	if s.OutstandingBalance.LessThan(amount) {
		return false, nil
	}
	s.OutstandingBalance = s.OutstandingBalance.Sub(amount)
	return true, nil
}

func (r *stubSaleRepo) ListCashTenderedBetween(_ context.Context, from, to time.Time) ([]model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Sale
	for _, s := range r.sales {
		if s.SaleType != model.SaleTypeCash {
			continue
		}
		if s.CreatedAt.Before(from) || !s.CreatedAt.Before(to) {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

// ── PaymentRepository stub ────────────────────────────────────────────────────

type stubPaymentRepo struct {
	mu       sync.Mutex
	payments []model.Payment
}

func newStubPaymentRepo() *stubPaymentRepo { return &stubPaymentRepo{} }

func (r *stubPaymentRepo) CreateTx(_ *gorm.DB, p *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.payments = append(r.payments, *p)
	return nil
}

func (r *stubPaymentRepo) ListBySale(_ context.Context, saleID uuid.UUID) ([]model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Payment
	for _, p := range r.payments {
		if p.SaleID == saleID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubPaymentRepo) ListTenderedBetween(_ context.Context, from, to time.Time) ([]model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Payment
	for _, p := range r.payments {
		if p.CreatedAt.Before(from) || !p.CreatedAt.Before(to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

var _ repository.PaymentRepository = (*stubPaymentRepo)(nil)

// ── CashSessionRepository stub ────────────────────────────────────────────────

type stubSessionRepo struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]*model.CashSession
	movements map[uuid.UUID][]model.CashMovement
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{
		sessions:  make(map[uuid.UUID]*model.CashSession),
		movements: make(map[uuid.UUID][]model.CashMovement),
	}
}

func (r *stubSessionRepo) CreateSession(_ context.Context, s *model.CashSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Mirror the DB-level partial unique index on open sessions.
	for _, existing := range r.sessions {
		if existing.OperatorID == s.OperatorID && existing.Status == model.SessionOpen {
			return errors.New(`duplicate key value violates unique constraint "uni_cash_sessions_open_operator"`)
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cloned := *s
	r.sessions[s.ID] = &cloned
	return nil
}

func (r *stubSessionRepo) FindOpenByOperator(_ context.Context, operatorID uuid.UUID) (*model.CashSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.OperatorID == operatorID && s.Status == model.SessionOpen {
			cloned := *s
			return &cloned, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CashSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *s
	return &cloned, nil
}

func (r *stubSessionRepo) UpdateSession(_ context.Context, s *model.CashSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cloned := *s
	r.sessions[s.ID] = &cloned
	return nil
}

func (r *stubSessionRepo) ListSessions(_ context.Context, _ dto.SessionFilter) ([]model.CashSession, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.CashSession
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSessionRepo) CreateMovement(_ context.Context, m *model.CashMovement) error {
	return r.CreateMovementTx(nil, m)
}

func (r *stubSessionRepo) CreateMovementTx(_ *gorm.DB, m *model.CashMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movements[m.CashSessionID] = append(r.movements[m.CashSessionID], *m)
	return nil
}

func (r *stubSessionRepo) ListMovements(_ context.Context, sessionID uuid.UUID) ([]model.CashMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.CashMovement(nil), r.movements[sessionID]...), nil
}

var _ repository.CashSessionRepository = (*stubSessionRepo)(nil)

// ── ExpenseRepository stub ────────────────────────────────────────────────────

type stubExpenseRepo struct {
	mu       sync.Mutex
	expenses map[uuid.UUID]*model.Expense
	payments []model.ExpensePayment
}

func newStubExpenseRepo() *stubExpenseRepo {
	return &stubExpenseRepo{expenses: make(map[uuid.UUID]*model.Expense)}
}

func (r *stubExpenseRepo) DB() *gorm.DB { return nil }

func (r *stubExpenseRepo) Create(_ context.Context, e *model.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	cloned := *e
	r.expenses[e.ID] = &cloned
	return nil
}

func (r *stubExpenseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.expenses[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cloned := *e
	return &cloned, nil
}

func (r *stubExpenseRepo) List(_ context.Context, filter dto.ExpenseFilter) ([]model.Expense, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Expense
	for _, e := range r.expenses {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *stubExpenseRepo) ReduceOutstandingTx(_ *gorm.DB, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.expenses[id]
	if !ok {
		return false, errors.New("record not found")
	}
	if e.OutstandingBalance.LessThan(amount) {
		return false, nil
	}
	e.OutstandingBalance = e.OutstandingBalance.Sub(amount)
	return true, nil
}

func (r *stubExpenseRepo) CreatePaymentTx(_ *gorm.DB, p *model.ExpensePayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.payments = append(r.payments, *p)
	return nil
}

func (r *stubExpenseRepo) ListBetween(_ context.Context, from, to time.Time) ([]model.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Expense
	for _, e := range r.expenses {
		if e.CreatedAt.Before(from) || !e.CreatedAt.Before(to) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *stubExpenseRepo) ListPaymentsBetween(_ context.Context, from, to time.Time) ([]model.ExpensePayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ExpensePayment
	for _, p := range r.payments {
		if p.PaidAt.Before(from) || !p.PaidAt.Before(to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

var _ repository.ExpenseRepository = (*stubExpenseRepo)(nil)

// ── PaymentMethodRepository stub ──────────────────────────────────────────────

type stubMethodRepo struct {
	mu      sync.Mutex
	methods []model.PaymentMethod
	// listCalls counts catalog reloads for TTL tests.
	listCalls int
	listErr   error
}

func newStubMethodRepo(methods ...model.PaymentMethod) *stubMethodRepo {
	return &stubMethodRepo{methods: methods}
}

func (r *stubMethodRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.methods {
		if m.ID == id {
			cloned := m
			return &cloned, nil
		}
	}
	return nil, errors.New("record not found")
}

func (r *stubMethodRepo) ListActive(_ context.Context) ([]model.PaymentMethod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]model.PaymentMethod(nil), r.methods...), nil
}

var _ repository.PaymentMethodRepository = (*stubMethodRepo)(nil)

// ── Test helpers ──────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func immediateMethod() model.PaymentMethod {
	return model.PaymentMethod{
		ID:       uuid.New(),
		Name:     "Cash",
		Category: model.SettlementImmediate,
		Active:   true,
	}
}

func deferredMethod(commission string, days int) model.PaymentMethod {
	return model.PaymentMethod{
		ID:             uuid.New(),
		Name:           "Card",
		Category:       model.SettlementDeferred,
		CommissionRate: dec(commission),
		SettlementDays: days,
		Active:         true,
	}
}

// newTestCatalog builds a MethodCatalog over the given methods with a long TTL.
func newTestCatalog(methods ...model.PaymentMethod) MethodCatalog {
	return NewMethodCatalog(newStubMethodRepo(methods...), time.Hour, time.Now)
}
