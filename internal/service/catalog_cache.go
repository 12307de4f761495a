package service

import (
	"context"
	"sync"
	"time"

	"lunapos/internal/model"
	"lunapos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MethodCatalog resolves payment methods for the settlement engine.
type MethodCatalog interface {
	// Resolve returns nil (not an error) when the method is unknown — the
	// projection engine applies its immediate/no-commission fallback.
	Resolve(ctx context.Context, id *uuid.UUID) *model.PaymentMethod
	MaxSettlementDays(ctx context.Context) int
	// Invalidate discards the cached snapshot; the next read reloads.
	Invalidate()
}

// catalogCache is a TTL read-through cache over the externally owned
// payment-method catalog. The clock is injected so expiry is testable;
// there is no module-level singleton — wire one instance at composition.
type catalogCache struct {
	repo repository.PaymentMethodRepository
	ttl  time.Duration
	now  func() time.Time

	mu       sync.RWMutex
	methods  map[uuid.UUID]model.PaymentMethod
	maxDays  int
	loadedAt time.Time
}

func NewMethodCatalog(repo repository.PaymentMethodRepository, ttl time.Duration, now func() time.Time) MethodCatalog {
	if now == nil {
		now = time.Now
	}
	return &catalogCache{repo: repo, ttl: ttl, now: now}
}

func (c *catalogCache) Resolve(ctx context.Context, id *uuid.UUID) *model.PaymentMethod {
	if id == nil {
		return nil
	}
	snapshot := c.snapshot(ctx)
	if m, ok := snapshot[*id]; ok {
		return &m
	}
	return nil
}

func (c *catalogCache) MaxSettlementDays(ctx context.Context) int {
	c.snapshot(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxDays
}

func (c *catalogCache) Invalidate() {
	c.mu.Lock()
	c.methods = nil
	c.mu.Unlock()
}

// snapshot returns the cached method map, reloading when stale or invalidated.
func (c *catalogCache) snapshot(ctx context.Context) map[uuid.UUID]model.PaymentMethod {
	c.mu.RLock()
	fresh := c.methods != nil && c.now().Sub(c.loadedAt) < c.ttl
	snapshot := c.methods
	c.mu.RUnlock()
	if fresh {
		return snapshot
	}

	methods, err := c.repo.ListActive(ctx)
	if err != nil {
		log.Error().Err(err).Msg("catalog: reload failed, serving stale snapshot")
		return snapshot
	}

	m := make(map[uuid.UUID]model.PaymentMethod, len(methods))
	maxDays := 0
	for _, pm := range methods {
		m[pm.ID] = pm
		if pm.SettlementDays > maxDays {
			maxDays = pm.SettlementDays
		}
	}

	c.mu.Lock()
	c.methods = m
	c.maxDays = maxDays
	c.loadedAt = c.now()
	c.mu.Unlock()
	return m
}
