package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/domain"
	"github.com/hindrance-reporter/internal/domain/repository"
	"github.com/hindrance-reporter/internal/pkg/errors"
	"github.com/hindrance-reporter/internal/usecase/dto"
)

// TypeCatalog - неизменяемый снимок каталога типов препятствий
type TypeCatalog struct {
	types    []*domain.HindranceType
	byID     map[int]*domain.HindranceType
	standard map[domain.GeometryType]*domain.HindranceType
}

func newTypeCatalog(types []*domain.HindranceType) *TypeCatalog {
	c := &TypeCatalog{
		types:    types,
		byID:     make(map[int]*domain.HindranceType, len(types)),
		standard: make(map[domain.GeometryType]*domain.HindranceType),
	}
	for _, t := range types {
		c.byID[t.ID] = t
		if t.IsStandard {
			if _, exists := c.standard[t.GeometryType]; !exists {
				c.standard[t.GeometryType] = t
			}
		}
	}
	return c
}

// Types возвращает все типы каталога
func (c *TypeCatalog) Types() []*domain.HindranceType {
	return c.types
}

// Get возвращает тип по ID
func (c *TypeCatalog) Get(id int) (*domain.HindranceType, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// Standard возвращает тип по умолчанию для вида геометрии
func (c *TypeCatalog) Standard(g domain.GeometryType) (*domain.HindranceType, bool) {
	t, ok := c.standard[g]
	return t, ok
}

// Resolve подбирает тип для объекта: указанный, если он есть в каталоге,
// иначе стандартный для вида геометрии.
func (c *TypeCatalog) Resolve(typeID *int, g domain.GeometryType) (*domain.HindranceType, error) {
	if typeID != nil {
		if t, ok := c.byID[*typeID]; ok {
			return t, nil
		}
	}
	if t, ok := c.standard[g]; ok {
		return t, nil
	}
	return nil, errors.ErrNoDefaultType.WithMessage("No standard hindrance type exists for geometry type %s", g)
}

// StandardTypeIDs - ID типа по умолчанию для каждого вида геометрии, у которого он есть
func (c *TypeCatalog) StandardTypeIDs() map[domain.GeometryType]int {
	ids := make(map[domain.GeometryType]int, len(c.standard))
	for g, t := range c.standard {
		ids[g] = t.ID
	}
	return ids
}

// TypeCatalogUseCase - каталог типов препятствий.
// Каталог загружается один раз на процесс (память -> Redis -> БД) и дальше не инвалидируется.
type TypeCatalogUseCase struct {
	typeRepo  repository.HindranceTypeRepository
	cacheRepo repository.TypeCatalogCache
	logger    *zap.Logger
	cacheTTL  time.Duration

	mu      sync.Mutex
	catalog *TypeCatalog
}

// NewTypeCatalogUseCase - создание нового TypeCatalogUseCase. cacheRepo может быть nil.
func NewTypeCatalogUseCase(
	typeRepo repository.HindranceTypeRepository,
	cacheRepo repository.TypeCatalogCache,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *TypeCatalogUseCase {
	return &TypeCatalogUseCase{
		typeRepo:  typeRepo,
		cacheRepo: cacheRepo,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// Catalog возвращает снимок каталога, загружая его при первом обращении
func (uc *TypeCatalogUseCase) Catalog(ctx context.Context) (*TypeCatalog, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.catalog != nil {
		return uc.catalog, nil
	}

	types, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}

	catalog := newTypeCatalog(types)
	// Пустой каталог не запоминаем, иначе типы, засеянные позже, не появятся до рестарта
	if len(types) > 0 {
		uc.catalog = catalog
	}
	return catalog, nil
}

func (uc *TypeCatalogUseCase) load(ctx context.Context) ([]*domain.HindranceType, error) {
	if uc.cacheRepo != nil {
		cached, err := uc.cacheRepo.GetHindranceTypes(ctx)
		if err != nil {
			uc.logger.Warn("Failed to read hindrance types from cache", zap.Error(err))
		} else if len(cached) > 0 {
			uc.logger.Debug("Hindrance types loaded from cache", zap.Int("count", len(cached)))
			return cached, nil
		}
	}

	types, err := uc.typeRepo.GetAll(ctx)
	if err != nil {
		uc.logger.Error("Failed to load hindrance types", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	if uc.cacheRepo != nil && len(types) > 0 {
		if err := uc.cacheRepo.SetHindranceTypes(ctx, types, uc.cacheTTL); err != nil {
			uc.logger.Warn("Failed to cache hindrance types", zap.Error(err))
		}
	}

	uc.logger.Info("Hindrance type catalog loaded", zap.Int("count", len(types)))
	return types, nil
}

// Seed добавляет недостающие типы каталога. Вызывается при старте до первого чтения.
func (uc *TypeCatalogUseCase) Seed(ctx context.Context, types []*domain.HindranceType) error {
	if err := uc.typeRepo.Seed(ctx, types); err != nil {
		uc.logger.Error("Failed to seed hindrance types", zap.Error(err))
		return err
	}
	return nil
}

// GetAll возвращает все типы препятствий
func (uc *TypeCatalogUseCase) GetAll(ctx context.Context) ([]*domain.HindranceType, error) {
	catalog, err := uc.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Types(), nil
}

// GetHindranceTypes - краткий список типов для выбора на клиенте
func (uc *TypeCatalogUseCase) GetHindranceTypes(ctx context.Context) ([]dto.HindranceTypeResponse, error) {
	types, err := uc.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.HindranceTypeResponse, 0, len(types))
	for _, t := range types {
		result = append(result, dto.HindranceTypeResponse{
			ID:              t.ID,
			Name:            t.Name,
			PrimaryImageURL: t.PrimaryImageURL,
			MarkerImageURL:  t.MarkerImageURL,
		})
	}
	return result, nil
}

// GetObjectTypes - полный каталог вместе с типами по умолчанию
func (uc *TypeCatalogUseCase) GetObjectTypes(ctx context.Context) (*dto.ObjectTypesResponse, error) {
	catalog, err := uc.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ObjectTypesResponse{
		ObjectTypes:     catalog.Types(),
		StandardTypeIDs: catalog.StandardTypeIDs(),
	}, nil
}
