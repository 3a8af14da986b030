package app

import (
	"os"
	"strconv"
	"time"
)

// Config описывает настройки запуска приложения. Все значения читаются из
// переменных окружения SHOP_*; пустые переменные оставляют значения по умолчанию.
type Config struct {
	// HTTPAddr — адрес основного API.
	HTTPAddr string
	// OpsAddr — адрес служебного HTTP: /metrics и health checks.
	OpsAddr string
	// PublicBaseURL — внешний адрес API для построения download-ссылок.
	PublicBaseURL string

	// PostgresDSN включает постоянное хранилище; пустой — in-memory.
	PostgresDSN string
	// KafkaBrokers — список брокеров через запятую; пустой отключает eventing.
	KafkaBrokers string
	// RedisAddr включает кеш карточек товара; пустой отключает его.
	RedisAddr     string
	RedisPassword string
	RedisCacheTTL time.Duration

	// StockTracking включает списание остатков при оформлении заказа.
	StockTracking bool

	OutboxPollInterval time.Duration
	IdempotencyTTL     time.Duration
}

// DefaultConfig возвращает значения по умолчанию для локального запуска.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:           ":8080",
		OpsAddr:            ":9090",
		PublicBaseURL:      "http://localhost:8080",
		RedisCacheTTL:      5 * time.Minute,
		OutboxPollInterval: time.Second,
		IdempotencyTTL:     24 * time.Hour,
	}
}

// LoadConfig читает конфигурацию из окружения поверх значений по умолчанию.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("SHOP_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("SHOP_OPS_ADDR"); v != "" {
		cfg.OpsAddr = v
	}
	if v := os.Getenv("SHOP_BASE_URL"); v != "" {
		cfg.PublicBaseURL = v
	}
	if v := os.Getenv("SHOP_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("SHOP_KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = v
	}
	if v := os.Getenv("SHOP_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("SHOP_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("SHOP_REDIS_CACHE_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil && ttl > 0 {
			cfg.RedisCacheTTL = ttl
		}
	}
	if v := os.Getenv("SHOP_STOCK_TRACKING"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.StockTracking = enabled
		}
	}
	if v := os.Getenv("SHOP_OUTBOX_POLL_INTERVAL"); v != "" {
		if interval, err := time.ParseDuration(v); err == nil && interval > 0 {
			cfg.OutboxPollInterval = interval
		}
	}
	if v := os.Getenv("SHOP_IDEMPOTENCY_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil && ttl > 0 {
			cfg.IdempotencyTTL = ttl
		}
	}

	return cfg
}
