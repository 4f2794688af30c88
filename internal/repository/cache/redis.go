package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/config"
)

// Redis - соединение, общее для кэша каталога и выгрузок и для стрима событий
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// Dial подключается к Redis и проверяет соединение
func Dial(ctx context.Context, cfg *config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Addr(), err)
	}

	logger.Info("Redis connected", zap.String("addr", cfg.Addr()), zap.Int("db", cfg.DB))
	return Wrap(client, logger), nil
}

// Wrap оборачивает готовый клиент
func Wrap(client *redis.Client, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, logger: logger}
}

// Client возвращает клиент go-redis
func (r *Redis) Client() *redis.Client {
	return r.client
}

// Health - PING
func (r *Redis) Health(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health: %w", err)
	}
	return nil
}

// Close закрывает соединение
func (r *Redis) Close() error {
	return r.client.Close()
}
