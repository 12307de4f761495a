package service

import (
	"context"
	"fmt"
	"time"

	"lunapos/internal/dto"
	"lunapos/internal/model"
	"lunapos/internal/repository"

	"github.com/shopspring/decimal"
)

// ReportService is the reconciliation aggregator: it projects tendered events
// through the settlement engine and nets them against the expense ledger over
// a date window.
type ReportService interface {
	IncomeStatement(ctx context.Context, filter dto.ReportFilter) (*dto.IncomeStatementResponse, error)
}

type reportService struct {
	saleRepo    repository.SaleRepository
	paymentRepo repository.PaymentRepository
	expenseRepo repository.ExpenseRepository
	catalog     MethodCatalog
	bufferDays  int
}

func NewReportService(
	saleRepo repository.SaleRepository,
	paymentRepo repository.PaymentRepository,
	expenseRepo repository.ExpenseRepository,
	catalog MethodCatalog,
	bufferDays int,
) ReportService {
	return &reportService{
		saleRepo:    saleRepo,
		paymentRepo: paymentRepo,
		expenseRepo: expenseRepo,
		catalog:     catalog,
		bufferDays:  bufferDays,
	}
}

func (s *reportService) IncomeStatement(ctx context.Context, filter dto.ReportFilter) (*dto.IncomeStatementResponse, error) {
	start, err := time.Parse("2006-01-02", filter.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid start: %w", err)
	}
	endDay, err := time.Parse("2006-01-02", filter.End)
	if err != nil {
		return nil, fmt.Errorf("invalid end: %w", err)
	}
	end := endDay.AddDate(0, 0, 1) // window is [start, end)
	if end.Before(start) {
		return nil, fmt.Errorf("end before start")
	}

	// Source tenders from the widened interval: a deferred tender up to
	// maxSettlementDays before the window still settles inside it.
	srcFrom, srcTo := WidenWindow(start, end, s.catalog.MaxSettlementDays(ctx), s.bufferDays)

	events, err := s.collectTenders(ctx, srcFrom, srcTo)
	if err != nil {
		return nil, err
	}
	entries := ProjectWindow(events, start, end)

	expenses, err := s.expenseRepo.ListBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	expensePayments, err := s.expenseRepo.ListPaymentsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	granularity := filter.Granularity
	if granularity == "" {
		granularity = "day"
	}

	income := decimal.Zero
	expense := decimal.Zero
	buckets := map[string]*dto.ReportBucket{}
	var order []string

	bucketFor := func(t time.Time) *dto.ReportBucket {
		label := bucketLabel(t, granularity)
		b, ok := buckets[label]
		if !ok {
			b = &dto.ReportBucket{Label: label, Income: decimal.Zero, Expense: decimal.Zero, Balance: decimal.Zero}
			buckets[label] = b
			order = append(order, label)
		}
		return b
	}

	var pending []dto.LedgerEntryResponse
	for _, entry := range entries {
		if entry.Status != EntryAvailable {
			pending = append(pending, ledgerEntryToResponse(entry))
			continue
		}
		income = income.Add(entry.NetAmount)
		b := bucketFor(entry.AvailableAt)
		b.Income = b.Income.Add(entry.NetAmount)
	}

	// Settled expenses count at creation; pending ones count as their
	// payments land.
	for _, e := range expenses {
		if e.Status != model.ExpenseSettled {
			continue
		}
		expense = expense.Add(e.Amount)
		b := bucketFor(e.CreatedAt)
		b.Expense = b.Expense.Add(e.Amount)
	}
	for _, p := range expensePayments {
		expense = expense.Add(p.Amount)
		b := bucketFor(p.PaidAt)
		b.Expense = b.Expense.Add(p.Amount)
	}

	out := &dto.IncomeStatementResponse{
		Start:   filter.Start,
		End:     filter.End,
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
		Pending: pending,
	}
	for _, label := range order {
		b := buckets[label]
		b.Balance = b.Income.Sub(b.Expense)
		out.Buckets = append(out.Buckets, *b)
	}
	return out, nil
}

// collectTenders gathers every tendered event (cash sales + abonos) in
// [from, to) with its resolved payment method.
func (s *reportService) collectTenders(ctx context.Context, from, to time.Time) ([]TenderedEvent, error) {
	sales, err := s.saleRepo.ListCashTenderedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListTenderedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	events := make([]TenderedEvent, 0, len(sales)+len(payments))
	for _, sale := range sales {
		events = append(events, TenderedEvent{
			GrossAmount: sale.Total,
			TenderedAt:  sale.CreatedAt,
			Method:      s.catalog.Resolve(ctx, sale.PaymentMethodID),
			Source:      SourceSale,
		})
	}
	for _, p := range payments {
		events = append(events, TenderedEvent{
			GrossAmount: p.Amount,
			TenderedAt:  p.CreatedAt,
			Method:      s.catalog.Resolve(ctx, p.PaymentMethodID),
			Source:      SourcePayment,
		})
	}
	return events, nil
}

func bucketLabel(t time.Time, granularity string) string {
	switch granularity {
	case "month":
		return t.Format("2006-01")
	case "week":
		// ISO week start (Monday)
		offset := (int(t.Weekday()) + 6) % 7
		return t.AddDate(0, 0, -offset).Format("2006-01-02")
	default:
		return t.Format("2006-01-02")
	}
}

func ledgerEntryToResponse(e LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		GrossAmount: e.GrossAmount,
		NetAmount:   e.NetAmount,
		Status:      e.Status,
		TenderedAt:  e.TenderedAt.Format(time.RFC3339),
		AvailableAt: e.AvailableAt.Format(time.RFC3339),
		Source:      e.Source,
	}
}
