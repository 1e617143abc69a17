package main

import (
	"context"
	"fmt"
	"os"

	"bank-ledger/config"
	pgStorage "bank-ledger/internal/adapter/storage/postgres"
	"bank-ledger/internal/cli"
	"bank-ledger/internal/service"
	"bank-ledger/pkg/logger"
)

// Local mode: the same ledger rules against the same store, without the
// network layer.
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx := context.Background()
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	if err := pgStorage.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize accounts table")
	}

	accountRepo := pgStorage.NewAccountRepo(pool)
	transactor := pgStorage.NewTransactor(pool)
	ledgerSvc := service.NewLedgerService(accountRepo, transactor, log)

	local := cli.NewLocal(ledgerSvc, os.Stdin, os.Stdout)
	if err := local.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("local session failed")
	}
}
