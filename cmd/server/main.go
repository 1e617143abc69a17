package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bank-ledger/config"
	httpHandler "bank-ledger/internal/adapter/http/handler"
	pgStorage "bank-ledger/internal/adapter/storage/postgres"
	"bank-ledger/internal/adapter/tcp"
	"bank-ledger/internal/service"
	"bank-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("addr", cfg.Server.Addr()).
		Msg("Starting bank ledger server")

	ctx := context.Background()

	// The server must not accept connections without durable account state:
	// any storage failure here is fatal.
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	if err := pgStorage.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize accounts table")
	}
	log.Info().Msg("PostgreSQL connected, schema ready")

	accountRepo := pgStorage.NewAccountRepo(pool)
	transactor := pgStorage.NewTransactor(pool)
	ledgerSvc := service.NewLedgerService(accountRepo, transactor, log)

	srv := tcp.NewServer(ledgerSvc, log)
	if err := srv.Listen(cfg.Server.Addr()); err != nil {
		log.Fatal().Err(err).Msg("Failed to bind TCP listener")
	}

	go func() {
		if err := srv.Serve(); err != nil {
			log.Fatal().Err(err).Msg("TCP server failed")
		}
	}()

	// Optional admin surface: deep health check over HTTP.
	var adminSrv *http.Server
	if cfg.Admin.Enabled {
		router := httpHandler.NewRouter(pgStorage.NewHealthCheck(pool))
		adminSrv = &http.Server{Addr: cfg.Admin.Addr(), Handler: router}
		go func() {
			log.Info().Str("addr", cfg.Admin.Addr()).Msg("admin HTTP server listening")
			if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("admin HTTP server failed")
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	if adminSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := adminSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Admin server forced to shutdown")
		}
	}
	if err := srv.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing TCP listener")
	}

	log.Info().Msg("Server exited")
}
