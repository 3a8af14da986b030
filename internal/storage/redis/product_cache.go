package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

const (
	productKeyPrefix = "product:detail:"
	defaultCacheTTL  = 5 * time.Minute
)

// ProductCache — read-through кеш карточек товара поверх Redis.
// Промах и недоступность бэкенда неразличимы для вызывающего: оба — miss.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Entry
}

// NewProductCache создаёт кеш с заданным TTL (0 — использовать значение по умолчанию).
func NewProductCache(client *redis.Client, ttl time.Duration, logger *log.Entry) *ProductCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &ProductCache{
		client: client,
		ttl:    ttl,
		logger: logger.WithField("component", "product_cache"),
	}
}

// Get возвращает товар из кеша. Второе значение — признак попадания.
func (c *ProductCache) Get(ctx context.Context, id string) (domain.Product, bool) {
	raw, err := c.client.Get(ctx, productKeyPrefix+id).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WithError(err).Warn("product cache get failed")
		}
		return domain.Product{}, false
	}

	var product domain.Product
	if err := json.Unmarshal([]byte(raw), &product); err != nil {
		c.logger.WithError(err).Warn("product cache payload is corrupted")
		return domain.Product{}, false
	}

	return product, true
}

// Set записывает товар в кеш. Ошибка записи не фатальна.
func (c *ProductCache) Set(ctx context.Context, product domain.Product) {
	raw, err := json.Marshal(product)
	if err != nil {
		c.logger.WithError(err).Warn("marshal product for cache failed")
		return
	}

	if err := c.client.Set(ctx, productKeyPrefix+product.ID, raw, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("product cache set failed")
	}
}

// Invalidate удаляет товар из кеша после изменения или удаления.
func (c *ProductCache) Invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, productKeyPrefix+id).Err(); err != nil {
		c.logger.WithError(err).Warn("product cache invalidate failed")
	}
}

var _ domain.ProductCache = (*ProductCache)(nil)
