package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shareit/service-booking/internal/application"
	"github.com/shareit/service-booking/internal/cache"
	"github.com/shareit/service-booking/internal/config"
	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	"github.com/shareit/service-booking/internal/domain/catalog"
	bookingEvents "github.com/shareit/service-booking/internal/events"
	"github.com/shareit/service-booking/internal/handler"
	"github.com/shareit/service-booking/internal/metrics"
	"github.com/shareit/service-booking/internal/platform/auth"
	"github.com/shareit/service-booking/internal/platform/database"
	"github.com/shareit/service-booking/internal/platform/health"
	"github.com/shareit/service-booking/internal/platform/kafka"
	"github.com/shareit/service-booking/internal/platform/logger"
	"github.com/shareit/service-booking/internal/platform/middleware"
	"github.com/shareit/service-booking/internal/platform/rabbitmq"
	"github.com/shareit/service-booking/internal/repository"
	"github.com/shareit/service-booking/internal/repository/memory"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
		zap.String("store", cfg.StoreDriver),
		zap.String("broker", cfg.EventBroker),
	)

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(registry)

	// Initialize repositories
	var (
		db          *gorm.DB
		bookingRepo bookingDomain.BookingRepository
		userRepo    catalog.UserRepository
		itemRepo    catalog.ItemRepository
	)
	if cfg.UsesSQL() {
		db, err = database.Connect(cfg.DBConfig, log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		migrateSchema(cfg, db, log)

		bookingRepo = repository.NewGormBookingRepository(db)
		userRepo = repository.NewGormUserRepository(db)
		itemRepo = repository.NewGormItemRepository(db)
	} else {
		log.Warn("using in-memory store; data is lost on restart")
		users, items := memory.NewUserRepository(), memory.NewItemRepository()
		bookingRepo = memory.NewBookingRepository(users, items)
		userRepo = users
		itemRepo = items
	}

	// Wrap the directories with the Redis cache
	var redisClient *redis.Client
	if cfg.RedisConfig.Addr != "" {
		redisClient = cache.NewRedisClient(cache.Config{
			Addr:     cfg.RedisConfig.Addr,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
			PoolSize: cfg.RedisConfig.PoolSize,
		})
		defer func() { _ = redisClient.Close() }()

		userRepo = cache.NewUserRepository(userRepo, redisClient, cfg.RedisConfig.TTL, log)
		itemRepo = cache.NewItemRepository(itemRepo, redisClient, cfg.RedisConfig.TTL, log)
		log.Info("redis directory cache enabled", zap.String("addr", cfg.RedisConfig.Addr))
	}

	// Initialize event publisher
	publisher, closePublisher := newPublisher(cfg, log)
	defer func() { _ = closePublisher.Close() }()

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		userRepo,
		itemRepo,
		publisher,
		appMetrics,
		log,
	)
	directoryService := application.NewDirectoryService(userRepo, itemRepo, log)

	// Initialize and start catalog event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.EventBroker == config.BrokerKafka && cfg.KafkaConfig.ConsumeCatalog {
		groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
		catalogConsumer := bookingEvents.NewCatalogEventConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			directoryService,
			appMetrics,
			log,
		)
		defer func() { _ = catalogConsumer.Close() }()

		go func() {
			log.Info("starting catalog event consumer")
			if err := catalogConsumer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("catalog event consumer error", zap.Error(err))
			}
		}()
	}

	// Resolve caller identity
	var jwtManager *auth.JWTManager
	if cfg.AuthConfig.Mode == middleware.AuthModeJWT {
		jwtManager = auth.NewJWTManager(cfg.AuthConfig.JWTSecret, cfg.AuthConfig.TokenTTL)
	}
	identity := middleware.Identity(cfg.AuthConfig.Mode, jwtManager)

	var createMW []gin.HandlerFunc
	if cfg.RateLimit.RPS > 0 {
		createMW = append(createMW, middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware())
	}

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	itemHandler := handler.NewItemHandler(bookingService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.MetricsMiddleware(appMetrics))

	// Register health check and metrics routes
	healthHandler := health.NewHandler(db, "service-booking")
	if redisClient != nil {
		healthHandler.AddCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	healthHandler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, identity, createMW...)
	itemHandler.RegisterRoutes(&router.RouterGroup, identity)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}

// migrateSchema applies versioned migrations on postgres outside development
// and falls back to GORM auto-migration everywhere else.
func migrateSchema(cfg *config.ServiceConfig, db *gorm.DB, log *zap.Logger) {
	if cfg.StoreDriver == database.DriverPostgres && cfg.AppEnv != "development" {
		if err := database.RunMigrations(cfg.DBConfig.Postgres.DatabaseURL(), log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
		return
	}
	if err := db.AutoMigrate(&repository.UserModel{}, &repository.ItemModel{}, &repository.BookingModel{}); err != nil {
		log.Fatal("failed to run auto-migration", zap.Error(err))
	}
	log.Info("database migration completed (auto-migrate)", zap.String("driver", cfg.StoreDriver))
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newPublisher(cfg *config.ServiceConfig, log *zap.Logger) (application.EventPublisher, io.Closer) {
	switch cfg.EventBroker {
	case config.BrokerKafka:
		producer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		return producer, producer
	case config.BrokerRabbitMQ:
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, log)
		if err != nil {
			log.Fatal("failed to connect to rabbitmq", zap.Error(err))
		}
		return publisher, publisher
	default:
		log.Warn("event publishing disabled")
		return application.NoopPublisher{}, closerFunc(func() error { return nil })
	}
}
