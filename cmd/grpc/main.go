package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-catalog-service/config"
	"github.com/fekuna/omnipos-catalog-service/internal/draft"
	"github.com/fekuna/omnipos-catalog-service/internal/metrics"
	"github.com/fekuna/omnipos-catalog-service/internal/ops"
	"github.com/fekuna/omnipos-catalog-service/internal/remote"
	"github.com/fekuna/omnipos-catalog-service/internal/validation"
	"github.com/fekuna/omnipos-catalog-service/internal/variant"
	"github.com/fekuna/omnipos-catalog-service/pkg/broker"
	"github.com/fekuna/omnipos-catalog-service/pkg/cache"
	"github.com/fekuna/omnipos-catalog-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-catalog-service/pkg/i18n"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/pkg/middleware"
	"github.com/fekuna/omnipos-catalog-service/pkg/search"

	"github.com/fekuna/omnipos-catalog-service/internal/queue"
	queueH "github.com/fekuna/omnipos-catalog-service/internal/queue/handler"
	queueListenerPkg "github.com/fekuna/omnipos-catalog-service/internal/queue/listener"
	queueRepoPkg "github.com/fekuna/omnipos-catalog-service/internal/queue/repository"
	queueUCPkg "github.com/fekuna/omnipos-catalog-service/internal/queue/usecase"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 2.5 Initialize i18n
	translator, err := i18n.New()
	if err != nil {
		appLogger.Fatal("Could not load locales", zap.Error(err))
	}
	if extra := os.Getenv("I18N_EXTRA_LOCALES"); extra != "" {
		for _, path := range strings.Split(extra, ",") {
			if err := translator.Load(strings.TrimSpace(path)); err != nil {
				appLogger.Warn("Failed to load locale file", zap.String("path", path), zap.Error(err))
			}
		}
	}

	// 3. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(cfg.Metrics.Prefix, registry)

	// 4. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	queueRepo := queueRepoPkg.NewPGRepository(db)
	if err := queueRepo.Migrate(context.Background()); err != nil {
		appLogger.Fatal("Could not migrate queue schema", zap.Error(err))
	}

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5.5 Initialize Kafka
	eventProducer := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.EventsTopic,
	})
	defer eventProducer.Close()

	sizingConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.SizingTopic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer sizingConsumer.Close()
	appLogger.Info("Connected to Kafka",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("events_topic", cfg.Kafka.EventsTopic),
		zap.String("sizing_topic", cfg.Kafka.SizingTopic),
	)

	// 5.8 Initialize Elasticsearch
	var indexer queue.Indexer
	if cfg.Elastic.Enabled {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			// Search falls back to the database when the index is unavailable
			appLogger.Warn("Could not connect to Elasticsearch (Search features might be limited)", zap.Error(err))
		} else {
			indexer = esClient
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 6. Collaborators
	catalogClient := remote.NewHTTPClient(&remote.Config{
		BaseURL: cfg.Catalog.BaseURL,
		Timeout: cfg.Catalog.Timeout,
	}, appLogger, appMetrics)

	// 7. Initialize UseCases
	validator := validation.New()
	validator.StrictGenderTag = cfg.Validation.StrictGenderTag
	validator.RequireFullMeasurements = cfg.Validation.RequireFullMeasurements

	queueUC := queueUCPkg.NewQueueUseCase(
		queueRepo,
		catalogClient,
		draft.NewEngine(variant.NewReconciler()),
		validator,
		redisClient,
		indexer,
		eventProducer,
		appMetrics,
		appLogger,
		queueUCPkg.Options{
			CatalogPageSize: cfg.Catalog.PageSize,
			CatalogMaxPages: cfg.Catalog.MaxPages,
			CacheTTL:        cfg.Redis.ListTTL,
		},
	)

	// 7.5 Initialize Listeners
	sizingListener := queueListenerPkg.NewSizingListener(sizingConsumer, queueUC, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sizingListener.Start(ctx)

	// 8. Ops HTTP server
	opsServer := ops.NewServer(registry, appMetrics, map[string]ops.HealthCheck{
		"postgres": db.PingContext,
		"redis": func(ctx context.Context) error {
			return redisClient.Client.Ping(ctx).Err()
		},
	}, appLogger)
	go func() {
		if err := opsServer.Start(cfg.Server.HTTPPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("ops server stopped", zap.Error(err))
		}
	}()

	// 9. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.ContextInterceptor(),
			middleware.LoggingInterceptor(appLogger),
		),
	)

	queueHandler := queueH.NewQueueHandler(queueUC, translator, appLogger)
	queueH.RegisterCatalogQueueServiceServer(grpcServer, queueHandler)

	appLogger.Info("Starting gRPC server", zap.String("port", port))

	// Graceful Shutdown
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("ops server shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
