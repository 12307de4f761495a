package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ── Mail breaker ──────────────────────────────────────────────────────────────
// Trips email delivery when the SMTP relay misbehaves so the notification
// workers fail fast instead of blocking on dial timeouts. A tripped breaker
// turns every delivery into ErrMailerUnavailable until the cooldown elapses,
// after which a single probe delivery decides whether to close again.

// BreakerState is the delivery gate position.
type BreakerState int

const (
	BreakerClosed   BreakerState = iota // deliveries flow
	BreakerOpen                         // fast-fail until cooldown elapses
	BreakerHalfOpen                     // next delivery is the probe
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrMailerUnavailable is returned while the breaker is open.
var ErrMailerUnavailable = errors.New("mailer unavailable: delivery suspended")

// MailBreakerConfig tunes the trip behavior. The defaults assume an SMTP
// relay: dial errors tend to come in bursts, and a relay that answers one
// probe is usually back for good, so a single half-open success closes it.
type MailBreakerConfig struct {
	TripAfter    int           // consecutive failed deliveries before opening
	RecoverAfter int           // probe successes needed to close again
	Cooldown     time.Duration // open time before the next probe
}

func DefaultMailBreakerConfig() MailBreakerConfig {
	return MailBreakerConfig{
		TripAfter:    3,
		RecoverAfter: 1,
		Cooldown:     2 * time.Minute,
	}
}

// MailBreaker gates email delivery. Safe for concurrent use by the worker
// pool and the reminder cron.
type MailBreaker struct {
	mu        sync.Mutex
	state     BreakerState
	failures  int
	recovered int
	openedAt  time.Time
	cfg       MailBreakerConfig
	now       func() time.Time // injectable clock
}

func NewMailBreaker(cfg MailBreakerConfig) *MailBreaker {
	if cfg.TripAfter <= 0 {
		cfg.TripAfter = 3
	}
	if cfg.RecoverAfter <= 0 {
		cfg.RecoverAfter = 1
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 2 * time.Minute
	}
	return &MailBreaker{cfg: cfg, now: time.Now}
}

// State reports the gate position, moving open → half-open once the cooldown
// has elapsed.
func (b *MailBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *MailBreaker) stateLocked() BreakerState {
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.cfg.Cooldown {
		b.state = BreakerHalfOpen
		b.recovered = 0
		log.Info().Msg("mail breaker: cooldown elapsed, probing relay")
	}
	return b.state
}

// Deliver runs send through the gate. While open it returns
// ErrMailerUnavailable without touching the relay.
func (b *MailBreaker) Deliver(send func() error) error {
	if b.State() == BreakerOpen {
		return ErrMailerUnavailable
	}

	err := send()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.deliveryFailed()
		return err
	}
	b.deliverySucceeded()
	return nil
}

func (b *MailBreaker) deliveryFailed() {
	b.failures++
	b.openedAt = b.now()

	switch b.state {
	case BreakerClosed:
		if b.failures >= b.cfg.TripAfter {
			b.state = BreakerOpen
			b.recovered = 0
			log.Warn().Int("failures", b.failures).Msg("mail breaker: tripped open")
		}
	case BreakerHalfOpen:
		b.state = BreakerOpen
		b.failures = 0
		log.Warn().Msg("mail breaker: probe failed, reopening")
	}
}

func (b *MailBreaker) deliverySucceeded() {
	switch b.state {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		b.recovered++
		if b.recovered >= b.cfg.RecoverAfter {
			b.state = BreakerClosed
			b.failures = 0
			b.recovered = 0
			log.Info().Msg("mail breaker: relay recovered, closed")
		}
	}
}
