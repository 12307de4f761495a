package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lunapos/internal/config"
	"lunapos/internal/infra"
	"lunapos/internal/repository"
	"lunapos/internal/router"
	"lunapos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL, cfg.WorkerPoolSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Worker pool for async tasks (low-stock alerts, payment reminders).
	// Handlers are wired here (composition root) so the pool has full access
	// to infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	mailCB := infra.NewMailBreaker(infra.DefaultMailBreakerConfig())
	dispatcher := worker.NewDispatcher(rdb)
	stockRepo := repository.NewStockRepository(db)
	saleRepo := repository.NewSaleRepository(db)

	handlers := &worker.Handlers{
		StockCheck: worker.NewStockCheckWorker(stockRepo, mailer, mailCB, cfg.LowStockThreshold, cfg.AlertEmail),
		Reminder:   worker.NewReminderWorker(mailer, mailCB, cfg.AlertEmail),
	}
	worker.StartPool(ctx, rdb, handlers, cfg.WorkerPoolSize)

	worker.StartReminderCron(ctx, worker.ReminderCronConfig{
		Sales:      saleRepo,
		Dispatcher: dispatcher,
		CB:         mailCB,
		RDB:        rdb,
		Interval:   time.Duration(cfg.ReminderIntervalMinutes) * time.Minute,
	})

	r := router.New(cfg, db, rdb, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("lunapos core listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
