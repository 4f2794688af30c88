package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/domain"
	"github.com/hindrance-reporter/internal/domain/repository"
)

const keyHindranceTypes = "hindrance:types"

func reportExportKey(reportID uuid.UUID) string {
	return "report:export:" + reportID.String()
}

// Repository - кэш каталога типов и выгрузок в Redis
type Repository struct {
	client *redis.Client
	logger *zap.Logger
}

var _ repository.CacheRepository = (*Repository)(nil)

// NewRepository создает кэш поверх соединения conn
func NewRepository(conn *Redis) *Repository {
	return &Repository{client: conn.Client(), logger: conn.logger}
}

// load возвращает nil, nil при промахе
func (r *Repository) load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return data, nil
}

func (r *Repository) store(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	r.logger.Debug("Cached", zap.String("key", key), zap.Int("bytes", len(data)), zap.Duration("ttl", ttl))
	return nil
}

// GetHindranceTypes читает каталог типов
func (r *Repository) GetHindranceTypes(ctx context.Context) ([]*domain.HindranceType, error) {
	data, err := r.load(ctx, keyHindranceTypes)
	if err != nil || data == nil {
		return nil, err
	}

	var types []*domain.HindranceType
	if err := json.Unmarshal(data, &types); err != nil {
		// Битая запись равносильна промаху, каталог будет перечитан из базы
		r.logger.Warn("Dropping unreadable cached catalog", zap.Error(err))
		return nil, nil
	}
	return types, nil
}

// SetHindranceTypes сохраняет каталог типов
func (r *Repository) SetHindranceTypes(ctx context.Context, types []*domain.HindranceType, ttl time.Duration) error {
	data, err := json.Marshal(types)
	if err != nil {
		return fmt.Errorf("marshal hindrance types: %w", err)
	}
	return r.store(ctx, keyHindranceTypes, data, ttl)
}

// GetReportExport читает выгрузку отчета
func (r *Repository) GetReportExport(ctx context.Context, reportID uuid.UUID) ([]byte, error) {
	return r.load(ctx, reportExportKey(reportID))
}

// SetReportExport сохраняет выгрузку отчета
func (r *Repository) SetReportExport(ctx context.Context, reportID uuid.UUID, data []byte, ttl time.Duration) error {
	return r.store(ctx, reportExportKey(reportID), data, ttl)
}

// DeleteReportExport удаляет выгрузку отчета
func (r *Repository) DeleteReportExport(ctx context.Context, reportID uuid.UUID) error {
	if err := r.client.Del(ctx, reportExportKey(reportID)).Err(); err != nil {
		return fmt.Errorf("cache delete export %s: %w", reportID, err)
	}
	return nil
}
