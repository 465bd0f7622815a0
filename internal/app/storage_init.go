package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/antonrybakov/ordersaga/internal/domain"
	"github.com/antonrybakov/ordersaga/internal/storage/memory"
	"github.com/antonrybakov/ordersaga/internal/storage/postgres"
)

// initStorage выбирает хранилище заказов: PostgreSQL при заданном DSN
// (с применением миграций на старте), иначе in-memory.
func initStorage(ctx context.Context, databaseURL string, logger *log.Entry) (domain.OrderRepository, *postgres.Store, error) {
	if databaseURL == "" {
		logger.Info("DATABASE_URL not set, using in-memory order storage")
		return memory.NewOrderRepository(), nil, nil
	}

	store, err := postgres.Open(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.NewMigrator(store.DB(), logger).MigrateUp(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	logger.Info("postgres order storage initialized")
	return postgres.NewOrderRepository(store.DB(), logger), store, nil
}
