package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/shop/internal/health"
	"github.com/vladislavdragonenkov/shop/internal/http/handler"
	"github.com/vladislavdragonenkov/shop/internal/http/middleware"
	"github.com/vladislavdragonenkov/shop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/shop/internal/metrics"
	"github.com/vladislavdragonenkov/shop/internal/service/cart"
	"github.com/vladislavdragonenkov/shop/internal/service/catalog"
	"github.com/vladislavdragonenkov/shop/internal/service/idempotency"
	"github.com/vladislavdragonenkov/shop/internal/service/image"
	"github.com/vladislavdragonenkov/shop/internal/service/order"
	"github.com/vladislavdragonenkov/shop/internal/service/outbox"
	"github.com/vladislavdragonenkov/shop/internal/service/user"
	redisstore "github.com/vladislavdragonenkov/shop/internal/storage/redis"
	"github.com/vladislavdragonenkov/shop/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run запускает приложение и блокируется до отмены ctx или фатальной ошибки.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.WithError(err).Warn("storage close failed")
		}
	}()

	// Kafka опциональна: без брокеров outbox копится до появления publisher.
	kafkaProducer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(kafkaProducer, logger)

	// Аудит-подписчик событий заказов живёт в той же группе процессов.
	if kafkaProducer != nil {
		if consumer, err := initOrderEventsConsumer(cfg.KafkaBrokers, kafkaProducer, logger); err == nil && consumer != nil {
			if err := consumer.Start(ctx); err != nil {
				logger.WithError(err).Warn("order events consumer start failed")
			} else {
				defer func() {
					if err := consumer.Stop(); err != nil {
						logger.WithError(err).Warn("order events consumer stop failed")
					}
				}()
			}
		}
	}

	var (
		eventPublisher = kafkaPublisher(kafkaProducer, kafka.TopicOrderEvents)
		dlqPublisher   = kafkaPublisher(kafkaProducer, kafka.TopicDeadLetterQueue)
	)

	// Redis-кеш карточек товара, тоже опционален.
	productCache, redisClient := initProductCache(ctx, cfg, logger)
	if redisClient != nil {
		defer func() {
			_ = redisClient.Close()
		}()
	}

	checkoutMetrics := metrics.NewCheckoutMetrics()

	orderOptions := []order.Option{
		order.WithLogger(logger.WithField("layer", "order")),
		order.WithOutbox(deps.Outbox),
		order.WithMetrics(checkoutMetrics),
	}
	if cfg.StockTracking {
		orderOptions = append(orderOptions, order.WithStockTracking())
	}

	services := handler.Services{
		Users:          user.NewService(deps.Users, logger.WithField("layer", "user")),
		Catalog:        catalog.NewService(deps.Products, deps.Categories, productCache, logger.WithField("layer", "catalog")),
		Carts:          cart.NewService(deps.Carts, deps.Products, deps.Users, logger.WithField("layer", "cart")),
		Orders:         order.NewService(deps.Orders, deps.Carts, deps.Users, orderOptions...),
		Images:         image.NewService(deps.Images, deps.Products, cfg.PublicBaseURL, logger.WithField("layer", "image")),
		Idempotency:    deps.Idempotency,
		IdempotencyTTL: cfg.IdempotencyTTL,
		Logger:         logger.WithField("layer", "http"),
	}

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler:          handler.ErrorHandler(),
		DisableStartupMessage: true,
	})
	fiberApp.Use(middleware.RequestID())
	fiberApp.Use(middleware.AccessLog(logger.WithField("layer", "http")))
	if prom, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer); err == nil {
		fiberApp.Use(prom.Handler())
	} else {
		logger.WithError(err).Warn("failed to register http metrics")
	}

	handler.RegisterRoutes(fiberApp, services)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("storage", healthcheck.NewSimpleChecker("storage", func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return deps.PingStorage(pingCtx)
	}))

	opsSrv := startOpsServer(ctx, cfg.OpsAddr, logger, healthHandler)

	// Фоновые воркеры: публикация outbox и чистка idempotency ключей.
	if eventPublisher != nil {
		outboxWorker := outbox.NewWorker(deps.Outbox, eventPublisher,
			outbox.WithLogger(logger.WithField("layer", "outbox")),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithDLQPublisher(dlqPublisher),
		)
		go outboxWorker.Run(ctx)
	}
	cleanupWorker := idempotency.NewCleanupWorker(deps.Idempotency,
		idempotency.WithLogger(logger.WithField("layer", "idempotency")),
	)
	go cleanupWorker.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		errCh <- fiberApp.Listen(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping http server")
		if err := fiberApp.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.WithError(err).Warn("http shutdown with error")
		}
		shutdownHTTP(opsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(opsSrv, logger)
		return err
	}
}

// kafkaPublisher возвращает publisher на topic или nil без producer.
func kafkaPublisher(producer *kafka.Producer, topic string) domain.OutboxPublisher {
	if producer == nil {
		return nil
	}
	return kafka.NewOutboxPublisher(producer, topic)
}

// initProductCache создаёт redis-кеш карточек, если адрес задан.
func initProductCache(ctx context.Context, cfg Config, logger *log.Entry) (*redisstore.ProductCache, *redis.Client) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).Warn("redis unavailable, continuing without product cache")
		_ = client.Close()
		return nil, nil
	}

	logger.WithField("addr", cfg.RedisAddr).Info("redis product cache initialized")
	return redisstore.NewProductCache(client, cfg.RedisCacheTTL, logger.WithField("layer", "cache")), client
}

// startOpsServer поднимает служебный HTTP: метрики и health checks.
func startOpsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.WithField("addr", addr).Info("ops server listening: /metrics /healthz /livez /readyz")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("ops server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("ops shutdown with error")
	}
}
