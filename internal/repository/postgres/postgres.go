package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/config"
)

const (
	connectAttempts = 5
	connectBackoff  = 500 * time.Millisecond
)

// ErrSchemaMissing - база доступна, но миграции не применены
var ErrSchemaMissing = errors.New("hindrance schema is missing, apply migrations")

// DB - пул соединений с базой отчетов
type DB struct {
	*sqlx.DB
	logger *zap.Logger
}

// Connect открывает пул и ждет готовности базы. Postgres в docker-compose
// поднимается дольше API, поэтому ping повторяется с растущей паузой.
func Connect(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	conn, err := sqlx.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	conn.SetMaxOpenConns(cfg.MaxConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	backoff := connectBackoff
	for attempt := 1; ; attempt++ {
		err = conn.PingContext(ctx)
		if err == nil {
			break
		}
		if attempt == connectAttempts || ctx.Err() != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("postgres %s:%d unreachable after %d attempts: %w", cfg.Host, cfg.Port, attempt, err)
		}
		logger.Warn("Postgres not ready", zap.Int("attempt", attempt), zap.Duration("retry_in", backoff), zap.Error(err))
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
		}
		backoff *= 2
	}

	logger.Info("PostgreSQL connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.DBName),
		zap.Int("max_conns", cfg.MaxConns))

	return Wrap(conn, logger), nil
}

// Wrap оборачивает уже открытое соединение
func Wrap(conn *sqlx.DB, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{DB: conn, logger: logger}
}

// Health проверяет соединение и наличие таблицы отчетов
func (db *DB) Health(ctx context.Context) error {
	var migrated bool
	if err := db.QueryRowxContext(ctx, "SELECT to_regclass('public.reports') IS NOT NULL").Scan(&migrated); err != nil {
		return fmt.Errorf("postgres health: %w", err)
	}
	if !migrated {
		return ErrSchemaMissing
	}
	return nil
}

// Close закрывает пул
func (db *DB) Close() error {
	stats := db.Stats()
	db.logger.Info("Closing PostgreSQL pool",
		zap.Int("open", stats.OpenConnections),
		zap.Int64("wait_count", stats.WaitCount))
	return db.DB.Close()
}
