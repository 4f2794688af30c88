package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hindrance-reporter/internal/domain"
)

// TypeCatalogCache - второй уровень кэша каталога типов, общий для процессов API
type TypeCatalogCache interface {
	// GetHindranceTypes возвращает nil, nil при промахе
	GetHindranceTypes(ctx context.Context) ([]*domain.HindranceType, error)

	// SetHindranceTypes сохраняет каталог; ttl 0 - без срока
	SetHindranceTypes(ctx context.Context, types []*domain.HindranceType, ttl time.Duration) error
}

// ReportExportCache - готовые GeoJSON выгрузки отправленных отчетов
type ReportExportCache interface {
	// GetReportExport возвращает nil, nil при промахе
	GetReportExport(ctx context.Context, reportID uuid.UUID) ([]byte, error)

	SetReportExport(ctx context.Context, reportID uuid.UUID, data []byte, ttl time.Duration) error

	// DeleteReportExport сбрасывает выгрузку после изменения статусов объектов
	DeleteReportExport(ctx context.Context, reportID uuid.UUID) error
}

// CacheRepository - оба кэша поверх одного хранилища
type CacheRepository interface {
	TypeCatalogCache
	ReportExportCache
}
