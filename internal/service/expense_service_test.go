package service

import (
	"context"
	"testing"

	"lunapos/internal/dto"
	"lunapos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expenseFixture struct {
	repo        *stubExpenseRepo
	sessionRepo *stubSessionRepo
	sessions    CashSessionService
	svc         ExpenseService
}

func newExpenseFixture() *expenseFixture {
	f := &expenseFixture{
		repo:        newStubExpenseRepo(),
		sessionRepo: newStubSessionRepo(),
	}
	f.sessions = NewCashSessionService(f.sessionRepo)
	f.svc = NewExpenseService(f.repo, f.sessionRepo, f.sessions)
	return f
}

func (f *expenseFixture) openSession(t *testing.T) string {
	t.Helper()
	resp, err := f.sessions.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{OpeningFloat: dec("1000")})
	require.NoError(t, err)
	return resp.ID
}

func TestCreateSettledExpense(t *testing.T) {
	f := newExpenseFixture()

	resp, err := f.svc.Create(context.Background(), dto.CreateExpenseRequest{
		Amount: dec("80"), Category: "supplies", PaymentMethod: "transfer", Status: model.ExpenseSettled,
	})
	require.NoError(t, err)
	assert.True(t, resp.OutstandingBalance.IsZero(), "settled expenses carry no balance")
	assert.Equal(t, model.ExpenseSettled, resp.Status)
}

func TestCreateSettledCashExpenseDrainsDrawer(t *testing.T) {
	f := newExpenseFixture()
	sessionID := f.openSession(t)

	_, err := f.svc.Create(context.Background(), dto.CreateExpenseRequest{
		Amount: dec("150"), Category: "cleaning", PaymentMethod: "cash",
		Status: model.ExpenseSettled, CashSessionID: &sessionID,
	})
	require.NoError(t, err)

	movements, _ := f.sessionRepo.ListMovements(context.Background(), uuid.MustParse(sessionID))
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementExpense, movements[0].Kind)
	assert.True(t, movements[0].Amount.Equal(dec("-150")), "drawer outflows are stored negative")
	assert.True(t, movements[0].Cash)
}

func TestCreatePendingExpenseOwesFullAmount(t *testing.T) {
	f := newExpenseFixture()
	due := "2026-09-15"

	resp, err := f.svc.Create(context.Background(), dto.CreateExpenseRequest{
		Amount: dec("1200"), Category: "rent", PaymentMethod: "transfer",
		Status: model.ExpensePending, DueDate: &due,
	})
	require.NoError(t, err)
	assert.True(t, resp.OutstandingBalance.Equal(dec("1200")))
	require.NotNil(t, resp.DueDate)
	assert.Equal(t, due, *resp.DueDate)
}

func TestCreateExpenseClosedSessionRejected(t *testing.T) {
	f := newExpenseFixture()
	sessionID := f.openSession(t)
	_, err := f.sessions.Close(context.Background(), uuid.MustParse(sessionID), dto.CloseSessionRequest{CountedAmount: dec("1000")})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), dto.CreateExpenseRequest{
		Amount: dec("10"), Category: "misc", PaymentMethod: "cash",
		Status: model.ExpenseSettled, CashSessionID: &sessionID,
	})
	assert.ErrorIs(t, err, ErrClosedRegister)
}

func TestRegisterExpensePayment(t *testing.T) {
	f := newExpenseFixture()
	created, err := f.svc.Create(context.Background(), dto.CreateExpenseRequest{
		Amount: dec("1000"), Category: "rent", PaymentMethod: "transfer", Status: model.ExpensePending,
	})
	require.NoError(t, err)

	resp, err := f.svc.RegisterPayment(context.Background(), dto.RegisterExpensePaymentRequest{
		ExpenseID: created.ID, Amount: dec("400"), PaymentMethod: "transfer",
	})
	require.NoError(t, err)
	assert.True(t, resp.OutstandingBalance.Equal(dec("600")))
}

func TestRegisterExpensePaymentOverpaymentRejected(t *testing.T) {
	f := newExpenseFixture()
	created, err := f.svc.Create(context.Background(), dto.CreateExpenseRequest{
		Amount: dec("100"), Category: "rent", PaymentMethod: "transfer", Status: model.ExpensePending,
	})
	require.NoError(t, err)

	_, err = f.svc.RegisterPayment(context.Background(), dto.RegisterExpensePaymentRequest{
		ExpenseID: created.ID, Amount: dec("100.01"), PaymentMethod: "transfer",
	})
	assert.ErrorIs(t, err, ErrOverpayment)
}

func TestRegisterExpensePaymentStatusStaysPendingAtZero(t *testing.T) {
	f := newExpenseFixture()
	created, err := f.svc.Create(context.Background(), dto.CreateExpenseRequest{
		Amount: dec("100"), Category: "rent", PaymentMethod: "transfer", Status: model.ExpensePending,
	})
	require.NoError(t, err)

	resp, err := f.svc.RegisterPayment(context.Background(), dto.RegisterExpensePaymentRequest{
		ExpenseID: created.ID, Amount: dec("100"), PaymentMethod: "transfer",
	})
	require.NoError(t, err)
	assert.True(t, resp.OutstandingBalance.IsZero())
	assert.Equal(t, model.ExpensePending, resp.Status, "status is a category, not a lifecycle flag")
}

func TestRegisterCashExpensePaymentRecordsMovement(t *testing.T) {
	f := newExpenseFixture()
	sessionID := f.openSession(t)
	created, err := f.svc.Create(context.Background(), dto.CreateExpenseRequest{
		Amount: dec("500"), Category: "utilities", PaymentMethod: "cash", Status: model.ExpensePending,
	})
	require.NoError(t, err)

	_, err = f.svc.RegisterPayment(context.Background(), dto.RegisterExpensePaymentRequest{
		ExpenseID: created.ID, Amount: dec("200"), PaymentMethod: "cash", CashSessionID: &sessionID,
	})
	require.NoError(t, err)

	movements, _ := f.sessionRepo.ListMovements(context.Background(), uuid.MustParse(sessionID))
	require.Len(t, movements, 1)
	assert.True(t, movements[0].Amount.Equal(dec("-200")))
}

func TestRegisterExpensePaymentUnknownExpense(t *testing.T) {
	f := newExpenseFixture()
	_, err := f.svc.RegisterPayment(context.Background(), dto.RegisterExpensePaymentRequest{
		ExpenseID: uuid.NewString(), Amount: dec("10"), PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListExpensesFiltersByStatus(t *testing.T) {
	f := newExpenseFixture()
	for _, status := range []string{model.ExpenseSettled, model.ExpensePending, model.ExpensePending} {
		_, err := f.svc.Create(context.Background(), dto.CreateExpenseRequest{
			Amount: dec("10"), Category: "misc", PaymentMethod: "transfer", Status: status,
		})
		require.NoError(t, err)
	}

	pending, err := f.svc.List(context.Background(), dto.ExpenseFilter{Status: model.ExpensePending})
	require.NoError(t, err)
	assert.Len(t, pending.Data, 2)

	all, err := f.svc.List(context.Background(), dto.ExpenseFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Data, 3)
	assert.Equal(t, int64(3), all.Total)
}
