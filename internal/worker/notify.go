package worker

// notify.go — job handlers for the async notification workers.
// Both handlers deliver email through the mailer circuit breaker; a tripped
// breaker surfaces as a job failure, which the pool retries and eventually
// parks in the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"lunapos/internal/infra"
	"lunapos/internal/repository"
)

// StockCheckWorker inspects a stock entry after a sale debit and alerts the
// back office when it dropped to or below the reorder threshold.
type StockCheckWorker struct {
	stock      repository.StockRepository
	mailer     *infra.Mailer
	cb         *infra.MailBreaker
	threshold  int
	alertEmail string
}

func NewStockCheckWorker(stock repository.StockRepository, mailer *infra.Mailer, cb *infra.MailBreaker, threshold int, alertEmail string) *StockCheckWorker {
	return &StockCheckWorker{
		stock:      stock,
		mailer:     mailer,
		cb:         cb,
		threshold:  threshold,
		alertEmail: alertEmail,
	}
}

func (w *StockCheckWorker) Process(ctx context.Context, payload json.RawMessage) error {
	var p StockCheckPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("stock check: decode payload: %w", err)
	}
	entryID, err := uuid.Parse(p.StockEntryID)
	if err != nil {
		return fmt.Errorf("stock check: invalid entry id %q: %w", p.StockEntryID, err)
	}

	entry, err := w.stock.FindByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("stock check: load entry: %w", err)
	}
	if entry.Quantity > w.threshold {
		return nil
	}

	log.Warn().
		Str("stock_entry_id", entry.ID.String()).
		Int("quantity", entry.Quantity).
		Int("threshold", w.threshold).
		Msg("low stock detected")

	if w.alertEmail == "" {
		return nil
	}
	subject := fmt.Sprintf("Low stock: product %s", entry.ProductID)
	body := fmt.Sprintf(
		"Stock entry %s (product %s) is down to %d units (threshold %d).\nPlease restock.",
		entry.ID, entry.ProductID, entry.Quantity, w.threshold,
	)
	return w.cb.Deliver(func() error {
		return w.mailer.Send(w.alertEmail, subject, body)
	})
}

// ReminderWorker emails the back office about an overdue receivable.
// The cron re-scans outstanding balances each cycle, so a receivable settled
// between enqueue and delivery simply stops appearing in later cycles.
type ReminderWorker struct {
	mailer     *infra.Mailer
	cb         *infra.MailBreaker
	alertEmail string
}

func NewReminderWorker(mailer *infra.Mailer, cb *infra.MailBreaker, alertEmail string) *ReminderWorker {
	return &ReminderWorker{mailer: mailer, cb: cb, alertEmail: alertEmail}
}

func (w *ReminderWorker) Process(_ context.Context, payload json.RawMessage) error {
	var p ReminderPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("reminder: decode payload: %w", err)
	}
	if w.alertEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("Payment reminder: sale %s", p.Folio)
	body := fmt.Sprintf(
		"Credit sale %s (client %s) has an outstanding balance of %s.\nPlease follow up with the client.",
		p.Folio, p.ClientID, p.Outstanding,
	)
	return w.cb.Deliver(func() error {
		return w.mailer.Send(w.alertEmail, subject, body)
	})
}
