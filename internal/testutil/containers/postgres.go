//go:build integration

package containers

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"bloodlink/internal/config"
	"bloodlink/internal/infrastructure/database/postgres"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// PostgresContainer wraps a migrated Postgres instance.
type PostgresContainer struct {
	Container testcontainers.Container
	DB        *postgres.DB
}

// NewPostgresContainer starts Postgres and applies the embedded migrations.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("bloodlink"),
		tcpostgres.WithUsername("bloodlink"),
		tcpostgres.WithPassword("bloodlink"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres port: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		Database: config.DatabaseConfig{
			Driver:   "postgres",
			Host:     host,
			Port:     port.Port(),
			User:     "bloodlink",
			Password: "bloodlink",
			DBName:   "bloodlink",
			SSLMode:  "disable",
		},
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to migrate postgres: %v", err)
	}

	return &PostgresContainer{Container: container, DB: db}
}

// TruncateTables empties the given tables and anything that references them.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	stmt := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", "))
	return p.DB.WithContext(ctx).Exec(stmt).Error
}
