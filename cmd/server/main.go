package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appstock "github.com/wms/inventory/internal/application/stock"
	appwarehouse "github.com/wms/inventory/internal/application/warehouse"
	"github.com/wms/inventory/internal/domain/shared"
	"github.com/wms/inventory/internal/infrastructure/cache"
	"github.com/wms/inventory/internal/infrastructure/config"
	"github.com/wms/inventory/internal/infrastructure/event"
	"github.com/wms/inventory/internal/infrastructure/logger"
	"github.com/wms/inventory/internal/infrastructure/messaging"
	"github.com/wms/inventory/internal/infrastructure/persistence"
	"github.com/wms/inventory/internal/infrastructure/remote"
	"github.com/wms/inventory/internal/infrastructure/scheduler"
	"github.com/wms/inventory/internal/infrastructure/telemetry"
	"github.com/wms/inventory/internal/interfaces/http/handler"
	"github.com/wms/inventory/internal/interfaces/http/middleware"
	"github.com/wms/inventory/internal/interfaces/http/router"
)

// version is stamped at build time via -ldflags
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting inventory service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Tracing first so everything below can pick up the global provider
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	db, err := persistence.NewDatabaseWithGormLogger(&cfg.Database,
		logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level)))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.DefaultDBTracingConfig()
		dbTracing.Enabled = true
		if err := telemetry.NewDBTracingPlugin(dbTracing, log).RegisterOtelGorm(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// Repositories
	stockRecordRepo := persistence.NewGormStockRecordRepository(db.DB)
	transactionRepo := persistence.NewGormStockTransactionRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	zoneRepo := persistence.NewGormZoneRepository(db.DB)
	locationRepo := persistence.NewGormLocationRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Idempotency store: Redis when configured, in-memory otherwise
	var idemStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		idemStore, err = cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
	} else {
		idemStore = cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateInMemoryStore()
		log.Info("Redis disabled, using in-memory idempotency store")
	}

	// Event bus with the low stock alert subscriber. The alert handler
	// is wrapped with event-ID deduplication so scheduler restarts or
	// re-published events do not double-notify.
	eventBus := event.NewInMemoryEventBus(log)
	alertHandler := appstock.NewLowStockAlertHandler(log).
		WithNotifier(appstock.NewLoggingLowStockNotifier(log))
	eventBus.Subscribe(event.NewIdempotentHandler(alertHandler, idemStore, log))

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	stockService := appstock.NewStockService(stockRecordRepo, transactionRepo, locationRepo, txScope, log)
	stockService.SetEventPublisher(eventBus)
	reservationService := appstock.NewReservationService(txScope, log)
	reservationService.SetEventPublisher(eventBus)
	warehouseService := appwarehouse.NewWarehouseService(warehouseRepo, zoneRepo, locationRepo, stockRecordRepo, log)
	warehouseService.SetEventPublisher(eventBus)

	// Kafka order flow
	if cfg.Kafka.Enabled {
		processor := appstock.NewOrderEventProcessor(
			txScope, reservationService, idemStore, shared.DefaultIdempotencyConfig(), log)

		consumerCfg := messaging.Config{
			Brokers:  cfg.Kafka.Brokers,
			GroupID:  cfg.Kafka.GroupID,
			MinBytes: cfg.Kafka.MinBytes,
			MaxBytes: cfg.Kafka.MaxBytes,
			MaxWait:  cfg.Kafka.MaxWait,
		}
		createdConsumer := messaging.NewOrderCreatedConsumer(consumerCfg, cfg.Kafka.OrderCreatedTopic, processor, log)
		cancelledConsumer := messaging.NewOrderCancelledConsumer(consumerCfg, cfg.Kafka.OrderCancelledTopic, processor, log)

		for _, consumer := range []*messaging.Consumer{createdConsumer, cancelledConsumer} {
			c := consumer
			if err := c.Start(ctx); err != nil {
				log.Fatal("Failed to start Kafka consumer", zap.Error(err))
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := c.Stop(stopCtx); err != nil {
					log.Error("Error stopping Kafka consumer", zap.Error(err))
				}
			}()
		}
		log.Info("Kafka consumers started",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("created_topic", cfg.Kafka.OrderCreatedTopic),
			zap.String("cancelled_topic", cfg.Kafka.OrderCancelledTopic),
		)
	}

	// Low stock scan schedule
	if cfg.Scheduler.Enabled {
		scanner := appstock.NewLowStockScanner(stockRecordRepo, eventBus, log)
		lowStockScheduler := scheduler.NewLowStockScheduler(scheduler.Config{
			Enabled:  true,
			Interval: cfg.Scheduler.LowStockInterval,
		}, scanner, log)
		if err := lowStockScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start low stock scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := lowStockScheduler.Stop(stopCtx); err != nil {
				log.Error("Error stopping low stock scheduler", zap.Error(err))
			}
		}()
		log.Info("Low stock scheduler started",
			zap.Duration("interval", cfg.Scheduler.LowStockInterval))
	}

	// Optional product directory for response enrichment
	var products handler.ProductDirectory
	if cfg.Product.Enabled {
		productClient, err := remote.NewProductClient(remote.ProductClientConfig{
			BaseURL:        cfg.Product.BaseURL,
			TimeoutSeconds: cfg.Product.TimeoutSeconds,
		}, log)
		if err != nil {
			log.Fatal("Failed to create product client", zap.Error(err))
		}
		products = productClient
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.New(router.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		APIVersion:  "v1",
		CORS: middleware.CORSConfig{
			AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
			AllowMethods:  cfg.HTTP.CORSAllowMethods,
			AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders: []string{"X-Request-ID"},
			MaxAge:        12 * time.Hour,
		},
		TracingEnabled: cfg.Telemetry.Enabled,
	}, log)

	r.Register(handler.NewStockHandler(stockService, products)).
		Register(handler.NewReservationHandler(reservationService)).
		Register(handler.NewWarehouseHandler(warehouseService)).
		Register(handler.NewSystemHandler(db, version))

	engine := r.Setup()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
