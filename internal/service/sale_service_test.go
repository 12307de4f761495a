package service

import (
	"context"
	"regexp"
	"testing"

	"lunapos/internal/dto"
	"lunapos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saleFixture struct {
	stockRepo   *stubStockRepo
	saleRepo    *stubSaleRepo
	sessionRepo *stubSessionRepo
	sessions    CashSessionService
	svc         SaleService
	sessionID   string
	operatorID  uuid.UUID
	cashMethod  model.PaymentMethod
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	f := &saleFixture{
		stockRepo:   newStubStockRepo(),
		saleRepo:    newStubSaleRepo(),
		sessionRepo: newStubSessionRepo(),
		operatorID:  uuid.New(),
		cashMethod:  immediateMethod(),
	}
	f.sessions = NewCashSessionService(f.sessionRepo)
	catalog := newTestCatalog(f.cashMethod)
	stock := NewStockService(f.stockRepo)
	f.svc = NewSaleService(f.saleRepo, stock, f.sessions, f.sessionRepo, catalog, nil)

	resp, err := f.sessions.Open(context.Background(), f.operatorID, dto.OpenSessionRequest{OpeningFloat: dec("1000")})
	require.NoError(t, err)
	f.sessionID = resp.ID
	return f
}

func (f *saleFixture) cashRequest(lines ...dto.SaleLineRequest) dto.CreateSaleRequest {
	methodID := f.cashMethod.ID.String()
	return dto.CreateSaleRequest{
		SaleType:        model.SaleTypeCash,
		PaymentMethodID: &methodID,
		CashSessionID:   &f.sessionID,
		Items:           lines,
	}
}

func TestCreateCashSale(t *testing.T) {
	f := newSaleFixture(t)
	entryID := f.stockRepo.addEntry(10)

	resp, err := f.svc.Create(context.Background(), f.operatorID, f.cashRequest(
		dto.SaleLineRequest{StockEntryID: entryID.String(), Quantity: 2, UnitPrice: dec("100"), DiscountPercent: dec("10")},
		dto.SaleLineRequest{StockEntryID: entryID.String(), Quantity: 1, UnitPrice: dec("50")},
	))

	require.NoError(t, err)
	// 2 × 100 × 0.90 + 1 × 50 = 230
	assert.True(t, resp.Total.Equal(dec("230")), "total = Σ line subtotals, got %s", resp.Total)
	assert.True(t, resp.OutstandingBalance.IsZero(), "cash sales carry no balance")
	assert.Regexp(t, regexp.MustCompile(`^V\d{8}-\d{6}-[A-Z2-9]{4}$`), resp.Folio)

	entry, _ := f.stockRepo.FindByID(context.Background(), entryID)
	assert.Equal(t, 7, entry.Quantity, "both lines debited")

	// The register saw exactly one tender movement for the full amount.
	sessionID := uuid.MustParse(f.sessionID)
	movements, _ := f.sessionRepo.ListMovements(context.Background(), sessionID)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementSale, movements[0].Kind)
	assert.True(t, movements[0].Amount.Equal(dec("230")))
	assert.True(t, movements[0].Cash, "immediate method counts toward the drawer")
}

func TestCreateSaleInvalidDiscount(t *testing.T) {
	f := newSaleFixture(t)
	entryID := f.stockRepo.addEntry(10)

	_, err := f.svc.Create(context.Background(), f.operatorID, f.cashRequest(
		dto.SaleLineRequest{StockEntryID: entryID.String(), Quantity: 1, UnitPrice: dec("100"), DiscountPercent: dec("101")},
	))

	require.ErrorIs(t, err, ErrInvalidDiscount)
	entry, _ := f.stockRepo.FindByID(context.Background(), entryID)
	assert.Equal(t, 10, entry.Quantity, "validation failures never touch the ledger")
}

func TestCreateSaleInsufficientStockUnwindsEarlierDebits(t *testing.T) {
	f := newSaleFixture(t)
	okEntry := f.stockRepo.addEntry(10)
	lowEntry := f.stockRepo.addEntry(1)

	_, err := f.svc.Create(context.Background(), f.operatorID, f.cashRequest(
		dto.SaleLineRequest{StockEntryID: okEntry.String(), Quantity: 2, UnitPrice: dec("10")},
		dto.SaleLineRequest{StockEntryID: lowEntry.String(), Quantity: 5, UnitPrice: dec("10")},
	))

	require.ErrorIs(t, err, ErrInsufficientStock)

	ok, _ := f.stockRepo.FindByID(context.Background(), okEntry)
	low, _ := f.stockRepo.FindByID(context.Background(), lowEntry)
	assert.Equal(t, 10, ok.Quantity, "the applied debit was compensated")
	assert.Equal(t, 1, low.Quantity)
	assert.Empty(t, f.saleRepo.sales, "no partial sale is persisted")
}

func TestCreateCashSaleRequiresOpenSession(t *testing.T) {
	f := newSaleFixture(t)
	entryID := f.stockRepo.addEntry(10)

	// No session at all.
	req := f.cashRequest(dto.SaleLineRequest{StockEntryID: entryID.String(), Quantity: 1, UnitPrice: dec("10")})
	req.CashSessionID = nil
	_, err := f.svc.Create(context.Background(), f.operatorID, req)
	require.ErrorIs(t, err, ErrClosedRegister)

	// Closed session.
	_, err = f.sessions.Close(context.Background(), uuid.MustParse(f.sessionID), dto.CloseSessionRequest{CountedAmount: dec("1000")})
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), f.operatorID, f.cashRequest(
		dto.SaleLineRequest{StockEntryID: entryID.String(), Quantity: 1, UnitPrice: dec("10")},
	))
	require.ErrorIs(t, err, ErrClosedRegister)

	entry, _ := f.stockRepo.FindByID(context.Background(), entryID)
	assert.Equal(t, 10, entry.Quantity)
}

func TestCreateCreditSale(t *testing.T) {
	f := newSaleFixture(t)
	entryID := f.stockRepo.addEntry(10)
	clientID := uuid.NewString()

	resp, err := f.svc.Create(context.Background(), f.operatorID, dto.CreateSaleRequest{
		SaleType:         model.SaleTypeCredit,
		ClientID:         &clientID,
		InstallmentCount: 4,
		PaymentFrequency: "weekly",
		Items: []dto.SaleLineRequest{
			{StockEntryID: entryID.String(), Quantity: 2, UnitPrice: dec("150")},
		},
	})

	require.NoError(t, err)
	assert.True(t, resp.Total.Equal(dec("300")))
	assert.True(t, resp.OutstandingBalance.Equal(dec("300")), "credit sales open fully outstanding")
	assert.True(t, resp.InstallmentAmount.Equal(dec("75")))

	// Credit sales do not touch the register.
	movements, _ := f.sessionRepo.ListMovements(context.Background(), uuid.MustParse(f.sessionID))
	assert.Empty(t, movements)
}

func TestFolioCollisionIsRetriedTransparently(t *testing.T) {
	f := newSaleFixture(t)
	entryID := f.stockRepo.addEntry(10)
	f.saleRepo.folioCollisions = 2

	resp, err := f.svc.Create(context.Background(), f.operatorID, f.cashRequest(
		dto.SaleLineRequest{StockEntryID: entryID.String(), Quantity: 1, UnitPrice: dec("10")},
	))

	require.NoError(t, err, "collisions below the retry bound are invisible to the caller")
	assert.NotEmpty(t, resp.Folio)
}

func TestFolioCollisionExhaustsRetries(t *testing.T) {
	f := newSaleFixture(t)
	entryID := f.stockRepo.addEntry(10)
	f.saleRepo.folioCollisions = folioRetries

	_, err := f.svc.Create(context.Background(), f.operatorID, f.cashRequest(
		dto.SaleLineRequest{StockEntryID: entryID.String(), Quantity: 1, UnitPrice: dec("10")},
	))

	require.Error(t, err)
	entry, _ := f.stockRepo.FindByID(context.Background(), entryID)
	assert.Equal(t, 10, entry.Quantity, "the debit is unwound when persistence fails")
}
