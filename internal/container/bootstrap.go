package container

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/delivery-marketplace/config"
	"github.com/oksasatya/delivery-marketplace/internal/domain/repository"
	"github.com/oksasatya/delivery-marketplace/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/delivery-marketplace/internal/infrastructure/postgres"
)

const dbStatementTimeout = 30 * time.Second

// OpenStore builds the document store selected by cfg.StoreDriver and
// registers it (and the pool, for postgres). The returned func releases it.
func OpenStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger, migrate bool) (repository.DocumentStore, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory document store; data is lost on exit")
		s := memory.NewDocumentStore()
		SetStore(s)
		return s, func() {}, nil
	case config.StoreDriverPostgres:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:         cfg.DBMaxConns,
			MinConns:         cfg.DBMinConns,
			MaxConnLife:      cfg.DBMaxConnLife,
			AppName:          cfg.AppName,
			StatementTimeout: dbStatementTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if migrate {
			if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		s := pginfra.NewDocumentStore(pool)
		SetPGPool(pool)
		SetStore(s)
		return s, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
