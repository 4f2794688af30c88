package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/domain"
	"github.com/hindrance-reporter/internal/domain/repository"
	"github.com/hindrance-reporter/internal/repository/memory"
	"github.com/hindrance-reporter/internal/usecase"
	"github.com/hindrance-reporter/internal/usecase/dto"
)

// Seeded IDs follow domain.DefaultHindranceTypes order
const (
	standardPointID = 1
	standardLineID  = 2
	standardAreaID  = 3
	mastTypeID      = 4
	powerLineTypeID = 6
)

const pilotID = "pilot-1"

type fixture struct {
	store    *memory.Store
	reports  repository.ReportRepository
	catalog  *usecase.TypeCatalogUseCase
	service  *usecase.HindranceService
	sync     *usecase.SyncUseCase
	finalize *usecase.FinalizeUseCase
	events   *MockEventPublisher
}

func newFixture(t *testing.T, mode usecase.PointUpdateMode, types []*domain.HindranceType) *fixture {
	t.Helper()
	logger := zap.NewNop()

	store := memory.NewStore()
	reports := memory.NewReportRepository(store)
	typeRepo := memory.NewHindranceTypeRepository(store)
	require.NoError(t, typeRepo.Seed(context.Background(), types))

	catalog := usecase.NewTypeCatalogUseCase(typeRepo, nil, logger, 0)
	service := usecase.NewHindranceService(catalog, mode, logger)
	events := &MockEventPublisher{}

	return &fixture{
		store:    store,
		reports:  reports,
		catalog:  catalog,
		service:  service,
		sync:     usecase.NewSyncUseCase(reports, service, catalog, logger),
		finalize: usecase.NewFinalizeUseCase(reports, events, service, catalog, logger),
		events:   events,
	}
}

func (f *fixture) objects(t *testing.T, reportID uuid.UUID) []*domain.HindranceObject {
	t.Helper()
	objects, err := f.reports.ListObjects(context.Background(), reportID)
	require.NoError(t, err)
	return objects
}

func pt(lat, lng float64) dto.PointRequest {
	return dto.PointRequest{Lat: lat, Lng: lng, CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func intPtr(v int) *int { return &v }

func placed(g domain.GeometryType, typeID *int, points ...dto.PointRequest) dto.PlacedObjectRequest {
	return dto.PlacedObjectRequest{
		ID:           uuid.New(),
		Points:       points,
		TypeID:       typeID,
		GeometryType: g,
		Title:        "object",
	}
}
