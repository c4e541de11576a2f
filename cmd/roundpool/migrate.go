package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/osse101/roundpool/internal/config"
	"github.com/osse101/roundpool/internal/database"
	"github.com/osse101/roundpool/internal/database/postgres"
	"github.com/osse101/roundpool/internal/logger"
)

// MigrateCommand applies the embedded schema migrations to PostgreSQL
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string {
	return "migrate"
}

func (c *MigrateCommand) Description() string {
	return "Apply database migrations (up, status)"
}

func (c *MigrateCommand) Run(ctx context.Context, cfg *config.Config, args []string) error {
	subcmd := "up"
	if len(args) > 0 {
		subcmd = args[0]
	}
	if subcmd != "up" && subcmd != "status" {
		return fmt.Errorf("unknown subcommand %q: want up or status", subcmd)
	}
	if cfg.Store != config.StorePostgres {
		return errors.New("migrate requires STORE=postgres")
	}

	pool, err := database.NewPool(ctx, cfg.GetDBConnString(), cfg.DBMaxConns, database.DefaultMaxConnIdle, database.DefaultMaxConnLifetime)
	if err != nil {
		return err
	}
	defer pool.Close()

	if subcmd == "up" {
		if err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}
	}

	version, err := postgres.MigrationVersion(ctx, pool)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Schema version", "version", version)
	return nil
}
