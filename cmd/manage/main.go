// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command manage runs schema migrations and toggles administrator accounts.
//
// # Usage
//
//	manage migrate up
//	manage migrate down --steps 1
//	manage migrate version
//	manage promote <username>
//	manage demote <username>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/taibuivan/cryptonotify/internal/command"
	"github.com/taibuivan/cryptonotify/internal/platform/config"
	"github.com/taibuivan/cryptonotify/internal/platform/logger"
	"github.com/taibuivan/cryptonotify/internal/platform/migration"
	pgstore "github.com/taibuivan/cryptonotify/internal/platform/postgres"
	"github.com/taibuivan/cryptonotify/internal/users/account"
)

// backend opens PostgreSQL lazily so that --help works without a database.
type backend struct {
	cfg *config.Config
	log *slog.Logger
}

func (b backend) Migrator() (command.Migrator, error) {
	return migration.NewRunner(b.cfg.DatabaseURL, b.cfg.MigrationPath, b.log), nil
}

func (b backend) Accounts(ctx context.Context) (command.AdminSetter, func(), error) {
	pool, err := pgstore.NewPool(ctx, b.cfg.DatabaseURL, pgstore.CommandProfile, b.log)
	if err != nil {
		return nil, nil, err
	}
	return account.NewService(account.NewAccountRepository(pool), nil), pool.Close, nil
}

func main() {
	os.Exit(run())
}

func run() int {
	log := logger.New(os.Stderr, "manage", false)

	cfg, err := config.Load()
	if err != nil {
		log.Error("startup_failure", slog.String("context", "load configuration"), slog.Any("error", err))
		return 1
	}
	if cfg.Debug {
		log = logger.New(os.Stderr, "manage", true)
	}

	return command.Execute(command.ManageApp(backend{cfg: cfg, log: log}, os.Stdout), os.Args, log)
}
