package worker

// reminder_cron.go
// Background goroutine that periodically scans credit sales with an
// outstanding balance past their first due date and enqueues reminder jobs.
// A Redis SETNX key throttles reminders to one per sale per day.

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"lunapos/internal/infra"
	"lunapos/internal/repository"
)

const reminderThrottleTTL = 24 * time.Hour

// frequencyDays maps an installment frequency tag to calendar days.
func frequencyDays(freq string) int {
	switch freq {
	case "weekly":
		return 7
	case "biweekly":
		return 14
	case "monthly":
		return 30
	default:
		return 30
	}
}

// ReminderCronConfig holds all dependencies for the reminder goroutine.
type ReminderCronConfig struct {
	Sales      repository.SaleRepository
	Dispatcher *Dispatcher
	CB         *infra.MailBreaker
	RDB        *redis.Client
	Interval   time.Duration
}

// StartReminderCron launches a background goroutine that ticks at the
// configured interval and enqueues reminders for overdue receivables.
// It respects the context for graceful shutdown.
func StartReminderCron(ctx context.Context, cfg ReminderCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Msg("reminder_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("reminder_cron: shutting down")
				return
			case <-ticker.C:
				processReminders(ctx, cfg)
			}
		}
	}()
}

func processReminders(ctx context.Context, cfg ReminderCronConfig) {
	// If the mail CB is open, enqueueing would only feed the DLQ — skip the tick
	if cfg.CB.State() == infra.BreakerOpen {
		log.Debug().Msg("reminder_cron: circuit breaker is open, skipping tick")
		return
	}

	sales, err := cfg.Sales.ListOutstanding(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("reminder_cron: failed to query outstanding sales")
		return
	}

	now := time.Now()
	enqueued := 0
	for i := range sales {
		sale := &sales[i]

		// First installment is due one payment-frequency period after the sale
		due := sale.CreatedAt.AddDate(0, 0, frequencyDays(sale.PaymentFrequency))
		if now.Before(due) {
			continue
		}

		// Throttle: at most one reminder per sale per day
		key := "reminder:sent:" + sale.ID.String()
		ok, err := cfg.RDB.SetNX(ctx, key, 1, reminderThrottleTTL).Result()
		if err != nil {
			log.Error().Err(err).Str("sale_id", sale.ID.String()).Msg("reminder_cron: throttle check failed")
			continue
		}
		if !ok {
			continue
		}

		clientID := ""
		if sale.ClientID != nil {
			clientID = sale.ClientID.String()
		}
		payload := ReminderPayload{
			SaleID:      sale.ID.String(),
			ClientID:    clientID,
			Folio:       sale.Folio,
			Outstanding: sale.OutstandingBalance.StringFixed(2),
		}
		if err := cfg.Dispatcher.EnqueueReminder(ctx, payload); err != nil {
			log.Error().Err(err).Str("sale_id", sale.ID.String()).Msg("reminder_cron: enqueue failed")
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		log.Info().Int("count", enqueued).Msg("reminder_cron: reminders enqueued")
	}
}
