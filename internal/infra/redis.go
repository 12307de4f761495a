package infra

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewRedis creates and validates a go-redis client for the job queues.
// The worker pool parks goroutines in BRPOP, each holding a connection for
// the full block interval, so the pool is sized past the worker count and
// the read timeout must outlast the BRPOP block.
func NewRedis(redisURL string, workers int) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	opts.PoolSize = workers + 4
	opts.MinIdleConns = 1
	opts.ReadTimeout = 10 * time.Second

	rdb := redis.NewClient(opts)

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	log.Info().Str("addr", opts.Addr).Int("pool_size", opts.PoolSize).Msg("redis connected")
	return rdb, nil
}
