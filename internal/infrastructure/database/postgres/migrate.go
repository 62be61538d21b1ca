package postgres

import (
	"context"
	"fmt"

	"bloodlink/internal/infrastructure/database/postgres/migrations"
	"bloodlink/internal/logger"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Migrate applies the embedded goose migrations.
func (d *DB) Migrate(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("error getting sql.DB: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("error setting migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("error reading migration version: %w", err)
	}
	logger.Info("Database migrations applied", zap.Int64("version", version))
	return nil
}
