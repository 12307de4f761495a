package service

import (
	"time"

	"lunapos/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Derived ledger entry statuses.
const (
	EntryPending   = "pending"
	EntryAvailable = "available"
)

// Tender sources.
const (
	SourceSale    = "sale"
	SourcePayment = "payment"
)

// TenderedEvent is one cash-affecting transaction: a cash sale or an abono.
// Settlement projection is the only consumer.
type TenderedEvent struct {
	GrossAmount decimal.Decimal
	TenderedAt  time.Time
	Method      *model.PaymentMethod // nil when the catalog lookup failed
	Source      string
}

// LedgerEntry is a derived, time-shifted view of a tendered event. Entries are
// computed at read time from immutable source events and never persisted, so a
// report can be regenerated any number of times without double-booking.
type LedgerEntry struct {
	GrossAmount decimal.Decimal
	NetAmount   decimal.Decimal
	Status      string
	TenderedAt  time.Time
	AvailableAt time.Time
	Source      string
}

var one = decimal.NewFromInt(1)

// Project splits a tendered event according to its payment method's settlement
// policy:
//
//   - immediate: one available entry of the gross amount, dated at the tender.
//   - deferred: a pending entry of the gross amount at the tender (informational,
//     excluded from available-cash totals) plus an available entry of
//     gross × (1 − commission), dated tenderedAt + settlementDays.
//
// An unrecognized method falls back to immediate with zero commission — the
// gap is logged for audit, never returned as an error, so reporting is never
// blocked by configuration drift.
func Project(ev TenderedEvent) []LedgerEntry {
	method := ev.Method
	if method == nil {
		log.Warn().
			Str("source", ev.Source).
			Str("gross", ev.GrossAmount.String()).
			Time("tendered_at", ev.TenderedAt).
			Msg("settlement: unknown payment method, defaulting to immediate policy")
		method = &model.PaymentMethod{Category: model.SettlementImmediate}
	}

	if !method.Deferred() {
		return []LedgerEntry{{
			GrossAmount: ev.GrossAmount,
			NetAmount:   ev.GrossAmount,
			Status:      EntryAvailable,
			TenderedAt:  ev.TenderedAt,
			AvailableAt: ev.TenderedAt,
			Source:      ev.Source,
		}}
	}

	net := ev.GrossAmount.Mul(one.Sub(method.CommissionRate)).Round(2)
	availableAt := ev.TenderedAt.AddDate(0, 0, method.SettlementDays)
	return []LedgerEntry{
		{
			GrossAmount: ev.GrossAmount,
			NetAmount:   ev.GrossAmount,
			Status:      EntryPending,
			TenderedAt:  ev.TenderedAt,
			AvailableAt: ev.TenderedAt,
			Source:      ev.Source,
		},
		{
			GrossAmount: ev.GrossAmount,
			NetAmount:   net,
			Status:      EntryAvailable,
			TenderedAt:  ev.TenderedAt,
			AvailableAt: availableAt,
			Source:      ev.Source,
		},
	}
}

// ProjectWindow projects every source event and keeps only derived entries
// whose AvailableAt falls inside [start, end). Callers must source events from
// an interval widened by the maximum settlement delay plus a buffer, otherwise
// settlement entries whose tender predates the window are missed.
func ProjectWindow(events []TenderedEvent, start, end time.Time) []LedgerEntry {
	var out []LedgerEntry
	for _, ev := range events {
		for _, entry := range Project(ev) {
			if entry.AvailableAt.Before(start) || !entry.AvailableAt.Before(end) {
				continue
			}
			out = append(out, entry)
		}
	}
	return out
}

// WidenWindow computes the source-event query interval for a derived-entry
// window: a deferred tender up to maxSettlementDays old can still settle
// inside [start, end).
func WidenWindow(start, end time.Time, maxSettlementDays, bufferDays int) (time.Time, time.Time) {
	return start.AddDate(0, 0, -(maxSettlementDays + bufferDays)), end.AddDate(0, 0, bufferDays)
}
