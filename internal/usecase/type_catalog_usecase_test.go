package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/domain"
	apperrors "github.com/hindrance-reporter/internal/pkg/errors"
	"github.com/hindrance-reporter/internal/usecase"
)

func seededTypes() []*domain.HindranceType {
	types := domain.DefaultHindranceTypes()
	for i, t := range types {
		t.ID = i + 1
	}
	return types
}

func TestTypeCatalogUseCase_LoadsOncePerProcess(t *testing.T) {
	ctx := context.Background()
	typeRepo := &MockTypeRepository{}
	cacheRepo := &MockCacheRepository{}

	typeRepo.On("GetAll", mock.Anything).Return(seededTypes(), nil).Once()
	cacheRepo.On("GetHindranceTypes", mock.Anything).Return(nil, nil).Once()
	cacheRepo.On("SetHindranceTypes", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	uc := usecase.NewTypeCatalogUseCase(typeRepo, cacheRepo, zap.NewNop(), 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			types, err := uc.GetAll(ctx)
			assert.NoError(t, err)
			assert.Len(t, types, 7)
		}()
	}
	wg.Wait()

	typeRepo.AssertExpectations(t)
	cacheRepo.AssertExpectations(t)
}

func TestTypeCatalogUseCase_RedisHitSkipsDatabase(t *testing.T) {
	typeRepo := &MockTypeRepository{}
	cacheRepo := &MockCacheRepository{}
	cacheRepo.On("GetHindranceTypes", mock.Anything).Return(seededTypes(), nil).Once()

	uc := usecase.NewTypeCatalogUseCase(typeRepo, cacheRepo, zap.NewNop(), 0)

	resp, err := uc.GetObjectTypes(context.Background())
	require.NoError(t, err)
	assert.Len(t, resp.ObjectTypes, 7)
	assert.Equal(t, map[domain.GeometryType]int{
		domain.GeometryPoint: standardPointID,
		domain.GeometryLine:  standardLineID,
		domain.GeometryArea:  standardAreaID,
	}, resp.StandardTypeIDs)

	typeRepo.AssertNotCalled(t, "GetAll", mock.Anything)
}

func TestTypeCatalogUseCase_CacheErrorFallsBackToDatabase(t *testing.T) {
	typeRepo := &MockTypeRepository{}
	cacheRepo := &MockCacheRepository{}
	cacheRepo.On("GetHindranceTypes", mock.Anything).Return(nil, errors.New("redis down"))
	cacheRepo.On("SetHindranceTypes", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))
	typeRepo.On("GetAll", mock.Anything).Return(seededTypes(), nil)

	uc := usecase.NewTypeCatalogUseCase(typeRepo, cacheRepo, zap.NewNop(), 0)

	types, err := uc.GetHindranceTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 7)
	assert.Equal(t, "Mast", types[3].Name)
}

func TestTypeCatalogUseCase_DatabaseError(t *testing.T) {
	typeRepo := &MockTypeRepository{}
	typeRepo.On("GetAll", mock.Anything).Return(nil, errors.New("connection refused"))

	uc := usecase.NewTypeCatalogUseCase(typeRepo, nil, zap.NewNop(), 0)

	_, err := uc.GetAll(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.ErrDatabaseError))
}

func TestTypeCatalogUseCase_EmptyCatalogIsNotMemoized(t *testing.T) {
	typeRepo := &MockTypeRepository{}
	typeRepo.On("GetAll", mock.Anything).Return([]*domain.HindranceType{}, nil).Once()
	typeRepo.On("GetAll", mock.Anything).Return(seededTypes(), nil).Once()

	uc := usecase.NewTypeCatalogUseCase(typeRepo, nil, zap.NewNop(), 0)

	types, err := uc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, types)

	types, err = uc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, types, 7)
}

func TestTypeCatalog_Resolve(t *testing.T) {
	typeRepo := &MockTypeRepository{}
	typeRepo.On("GetAll", mock.Anything).Return(seededTypes(), nil)
	uc := usecase.NewTypeCatalogUseCase(typeRepo, nil, zap.NewNop(), 0)

	catalog, err := uc.Catalog(context.Background())
	require.NoError(t, err)

	tests := []struct {
		name     string
		typeID   *int
		geometry domain.GeometryType
		wantID   int
	}{
		{name: "known type kept", typeID: intPtr(mastTypeID), geometry: domain.GeometryPoint, wantID: mastTypeID},
		{name: "missing type uses standard", typeID: nil, geometry: domain.GeometryLine, wantID: standardLineID},
		{name: "unknown type uses standard", typeID: intPtr(999), geometry: domain.GeometryArea, wantID: standardAreaID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := catalog.Resolve(tt.typeID, tt.geometry)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, resolved.ID)
		})
	}
}

func TestTypeCatalog_ResolveWithoutStandard(t *testing.T) {
	types := []*domain.HindranceType{
		{ID: 1, Name: domain.StandardTypeName(domain.GeometryPoint), GeometryType: domain.GeometryPoint, IsStandard: true},
	}
	typeRepo := &MockTypeRepository{}
	typeRepo.On("GetAll", mock.Anything).Return(types, nil)
	uc := usecase.NewTypeCatalogUseCase(typeRepo, nil, zap.NewNop(), 0)

	catalog, err := uc.Catalog(context.Background())
	require.NoError(t, err)

	_, err = catalog.Resolve(nil, domain.GeometryArea)
	assert.True(t, apperrors.Is(err, apperrors.ErrNoDefaultType))
}
