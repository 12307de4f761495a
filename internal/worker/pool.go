package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueStockCheck = "jobs:stockcheck"
	QueueReminder   = "jobs:reminder"

	maxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// StockCheckPayload asks the worker to inspect one stock entry after a sale
// and alert when it dropped below the low-stock threshold.
type StockCheckPayload struct {
	StockEntryID string `json:"stock_entry_id"`
}

// ReminderPayload identifies an overdue receivable to remind about.
type ReminderPayload struct {
	SaleID      string `json:"sale_id"`
	ClientID    string `json:"client_id"`
	Folio       string `json:"folio"`
	Outstanding string `json:"outstanding"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueStockCheck pushes a low-stock inspection job.
func (d *Dispatcher) EnqueueStockCheck(ctx context.Context, payload StockCheckPayload) error {
	return d.enqueue(ctx, QueueStockCheck, "stock_check", payload)
}

// EnqueueReminder pushes a payment-reminder job.
func (d *Dispatcher) EnqueueReminder(ctx context.Context, payload ReminderPayload) error {
	return d.enqueue(ctx, QueueReminder, "reminder", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handler processes one job payload. A returned error requeues the job until
// maxAttempts, then parks it in the DLQ.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Handlers maps each queue to its processor. Wired at the composition root so
// workers have full access to infrastructure dependencies.
type Handlers struct {
	StockCheck Handler
	Reminder   Handler
}

// StartPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartPool(ctx context.Context, rdb *redis.Client, handlers *Handlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *Handlers, id int) {
	queues := []string{QueueStockCheck, QueueReminder}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var handler Handler
	switch queue {
	case QueueStockCheck:
		handler = handlers.StockCheck
	case QueueReminder:
		handler = handlers.Reminder
	}
	if handler == nil {
		log.Warn().Str("queue", queue).Str("type", job.Type).Msg("no handler for queue")
		return
	}

	if err := handler.Process(ctx, job.Payload); err != nil {
		job.Attempts++
		if job.Attempts >= maxAttempts {
			SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
			return
		}
		encoded, mErr := json.Marshal(job)
		if mErr != nil {
			log.Error().Err(mErr).Msg("failed to re-marshal job for retry")
			return
		}
		if pErr := rdb.LPush(ctx, queue, encoded).Err(); pErr != nil {
			log.Error().Err(pErr).Str("queue", queue).Msg("failed to requeue job")
		}
	}
}
