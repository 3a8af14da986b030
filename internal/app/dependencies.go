package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
	"github.com/vladislavdragonenkov/shop/internal/storage/postgres"
)

// Dependencies содержит хранилища приложения.
type Dependencies struct {
	Users       domain.UserRepository
	Categories  domain.CategoryRepository
	Products    domain.ProductRepository
	Carts       domain.CartRepository
	Orders      domain.OrderRepository
	Images      domain.ImageRepository
	Outbox      domain.OutboxRepository
	Idempotency domain.IdempotencyRepository
	Logger      *log.Entry

	pg *postgres.Store
}

// NewDependencies собирает хранилища: postgres при заданном DSN, иначе in-memory.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	if cfg.PostgresDSN == "" {
		logger.Info("using in-memory storage")
		store := memory.NewStore()
		return &Dependencies{
			Users:       memory.NewUserRepository(store),
			Categories:  memory.NewCategoryRepository(store),
			Products:    memory.NewProductRepository(store),
			Carts:       memory.NewCartRepository(store),
			Orders:      memory.NewOrderRepository(store),
			Images:      memory.NewImageRepository(store),
			Outbox:      memory.NewOutboxRepository(store),
			Idempotency: memory.NewIdempotencyRepository(store),
			Logger:      logger,
		}, nil
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("using postgres storage")

	return &Dependencies{
		Users:       postgres.NewUserRepository(store),
		Categories:  postgres.NewCategoryRepository(store),
		Products:    postgres.NewProductRepository(store),
		Carts:       postgres.NewCartRepository(store),
		Orders:      postgres.NewOrderRepository(store),
		Images:      postgres.NewImageRepository(store),
		Outbox:      postgres.NewOutboxRepository(store),
		Idempotency: postgres.NewIdempotencyRepository(store),
		Logger:      logger,
		pg:          store,
	}, nil
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close() error {
	if d.pg != nil {
		return d.pg.Close()
	}
	return nil
}

// PingStorage проверяет доступность постоянного хранилища; in-memory всегда готов.
func (d *Dependencies) PingStorage(ctx context.Context) error {
	if d.pg == nil {
		return nil
	}
	return d.pg.Ping(ctx)
}
