package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/config"
	"github.com/hindrance-reporter/internal/domain"
	"github.com/hindrance-reporter/internal/pkg/logger"
	"github.com/hindrance-reporter/internal/repository/cache"
	"github.com/hindrance-reporter/internal/repository/postgres"
	redisRepo "github.com/hindrance-reporter/internal/repository/redis"
	"github.com/hindrance-reporter/internal/usecase"
	"github.com/hindrance-reporter/internal/worker"
	"github.com/hindrance-reporter/internal/worker/export"
)

// Процесс export worker: читает stream:report:submitted и кладет GeoJSON
// выгрузки отправленных отчетов в Redis, откуда их отдает API.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Worker.Enabled {
		fmt.Println("WORKER_ENABLED is false, nothing to do")
		return
	}
	if cfg.Database.Driver != config.DriverPostgres {
		// Память процесса API недоступна воркеру
		fmt.Fprintln(os.Stderr, "export worker requires DB_DRIVER=postgres")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, "hindrance-worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Export worker failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	db, err := postgres.Connect(startCtx, &cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	conn, err := cache.Dial(startCtx, &cfg.Redis, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.Health(startCtx); err != nil {
		return err
	}

	cacheRepo := cache.NewRepository(conn)
	catalogUC := usecase.NewTypeCatalogUseCase(postgres.NewHindranceTypeRepository(db), cacheRepo, log, cfg.Cache.TypesCacheTTL)
	reportUC := usecase.NewReportUseCase(postgres.NewReportRepository(db), log)
	exportUC := usecase.NewExportUseCase(reportUC, catalogUC, cacheRepo, log, cfg.Cache.ExportCacheTTL)

	events := redisRepo.NewReportEventStream(conn.Client(), domain.StreamReportSubmitted, log)

	manager := worker.NewManager(log)
	manager.Register(export.NewReportExportWorker(events, exportUC, cfg.Worker.ConsumerGroup, cfg.Worker.MaxRetries, log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := manager.Start(ctx); err != nil {
		return err
	}
	log.Info("Export worker running",
		zap.String("stream", domain.StreamReportSubmitted),
		zap.String("group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries))

	<-ctx.Done()
	log.Info("Shutdown signal received")

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	return manager.Stop(stopCtx)
}
