package main

// @title Hindrance Reporter API
// @version 1.0.0
// @description Сервер полевых отчетов о препятствиях: синхронизация объектов из сессий пилотов,
// @description финализация черновиков в отчеты, проверка отчетов и экспорт в GeoJSON.

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/hindrance-reporter/docs"
	"github.com/hindrance-reporter/internal/config"
	httpDelivery "github.com/hindrance-reporter/internal/delivery/http"
	"github.com/hindrance-reporter/internal/delivery/http/handler"
	"github.com/hindrance-reporter/internal/domain"
	"github.com/hindrance-reporter/internal/domain/repository"
	"github.com/hindrance-reporter/internal/pkg/logger"
	"github.com/hindrance-reporter/internal/repository/cache"
	"github.com/hindrance-reporter/internal/repository/memory"
	"github.com/hindrance-reporter/internal/repository/postgres"
	redisRepo "github.com/hindrance-reporter/internal/repository/redis"
	"github.com/hindrance-reporter/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "hindrance-api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Hindrance Reporter API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("point_mode", cfg.Reconcile.PointMode),
	)

	checks := make(map[string]handler.HealthCheck)

	// Подключения, проверки и seed каталога укладываются в общий таймаут старта
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 3. Storage
	var (
		reportRepo repository.ReportRepository
		typeRepo   repository.HindranceTypeRepository
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		store := memory.NewStore()
		reportRepo = memory.NewReportRepository(store)
		typeRepo = memory.NewHindranceTypeRepository(store)
		log.Warn("Using in-memory storage, data is lost on restart")
	default:
		db, err := postgres.Connect(ctx, &cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close PostgreSQL connection", zap.Error(err))
			}
		}()
		reportRepo = postgres.NewReportRepository(db)
		typeRepo = postgres.NewHindranceTypeRepository(db)
		checks["database"] = db.Health
	}

	// 4. Redis (необязателен: без него нет кэша и событий для export worker)
	var (
		cacheRepo repository.CacheRepository
		events    repository.ReportEventPublisher
	)
	if cfg.Redis.Host != "" {
		redisClient, err := cache.Dial(ctx, &cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
		cacheRepo = cache.NewRepository(redisClient)
		events = redisRepo.NewReportEventStream(redisClient.Client(), domain.StreamReportSubmitted, log)
		checks["redis"] = redisClient.Health
	} else {
		log.Warn("REDIS_HOST is empty, caching and report events are disabled")
	}

	// 5. Health checks
	for name, check := range checks {
		if err := check(ctx); err != nil {
			log.Fatal("Health check failed", zap.String("dependency", name), zap.Error(err))
		}
	}

	// 6. Use cases
	pointMode, err := usecase.ParsePointUpdateMode(cfg.Reconcile.PointMode)
	if err != nil {
		log.Fatal("Invalid point update mode", zap.Error(err))
	}

	catalogUC := usecase.NewTypeCatalogUseCase(typeRepo, cacheRepo, log, cfg.Cache.TypesCacheTTL)
	if err := catalogUC.Seed(ctx, domain.DefaultHindranceTypes()); err != nil {
		log.Fatal("Failed to seed hindrance types", zap.Error(err))
	}

	service := usecase.NewHindranceService(catalogUC, pointMode, log)
	syncUC := usecase.NewSyncUseCase(reportRepo, service, catalogUC, log)
	finalizeUC := usecase.NewFinalizeUseCase(reportRepo, events, service, catalogUC, log)
	reportUC := usecase.NewReportUseCase(reportRepo, log)
	exportUC := usecase.NewExportUseCase(reportUC, catalogUC, cacheRepo, log, cfg.Cache.ExportCacheTTL)
	reviewUC := usecase.NewReviewUseCase(reportRepo, cacheRepo, log)

	log.Info("Use cases initialized")

	// 7. HTTP server
	server := httpDelivery.NewServer(cfg, log, httpDelivery.Handlers{
		Journey: handler.NewJourneyHandler(syncUC, finalizeUC, log),
		Types:   handler.NewTypeHandler(catalogUC, log),
		Reports: handler.NewReportHandler(reportUC, exportUC, log),
		Review:  handler.NewReviewHandler(reviewUC, log),
		Health:  handler.NewHealthHandler(checks),
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 8. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
