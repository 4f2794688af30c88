package usecase_test

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/domain"
	apperrors "github.com/hindrance-reporter/internal/pkg/errors"
	"github.com/hindrance-reporter/internal/usecase"
	"github.com/hindrance-reporter/internal/usecase/dto"
)

func TestExportUseCase_GeoJSON(t *testing.T) {
	f := newFixture(t, usecase.PointUpdateMerge, domain.DefaultHindranceTypes())
	cacheRepo := &MockCacheRepository{}
	reports := usecase.NewReportUseCase(f.reports, zap.NewNop())
	uc := usecase.NewExportUseCase(reports, f.catalog, cacheRepo, zap.NewNop(), 0)
	ctx := context.Background()
	f.events.On("PublishSubmitted", mock.Anything, mock.Anything).Return("1-0", nil)

	synced, err := f.sync.SyncObject(ctx, pilotID, nil, placed(domain.GeometryPoint, intPtr(mastTypeID), pt(59.9, 10.7)))
	require.NoError(t, err)
	area := placed(domain.GeometryArea, nil, pt(1, 1), pt(1, 2), pt(2, 2))
	_, err = f.finalize.Finalize(ctx, pilotID, synced.JourneyID, dto.FinalizeJourneyRequest{
		Objects: []dto.PlacedObjectRequest{area},
	})
	require.NoError(t, err)

	cacheRepo.On("GetReportExport", mock.Anything, synced.JourneyID).Return(nil, nil).Once()
	cacheRepo.On("SetReportExport", mock.Anything, synced.JourneyID, mock.Anything, mock.Anything).Return(nil).Once()

	data, err := uc.GetGeoJSON(ctx, usecase.Viewer{UserID: pilotID}, synced.JourneyID)
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	mast := fc.Features[0]
	assert.Equal(t, orb.Point{10.7, 59.9}, mast.Geometry)
	assert.Equal(t, "Mast", mast.Properties["typeName"])

	polygon, ok := fc.Features[1].Geometry.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, polygon, 1)
	assert.True(t, polygon[0].Closed())
	assert.Len(t, polygon[0], 4)

	cacheRepo.AssertExpectations(t)
}

func TestExportUseCase_CachedExport(t *testing.T) {
	f := newFixture(t, usecase.PointUpdateMerge, domain.DefaultHindranceTypes())
	cacheRepo := &MockCacheRepository{}
	reports := usecase.NewReportUseCase(f.reports, zap.NewNop())
	uc := usecase.NewExportUseCase(reports, f.catalog, cacheRepo, zap.NewNop(), 0)

	synced := submittedReport(t, f)
	cached := []byte(`{"type":"FeatureCollection","features":[]}`)
	cacheRepo.On("GetReportExport", mock.Anything, synced.JourneyID).Return(cached, nil).Once()

	data, err := uc.GetGeoJSON(context.Background(), usecase.Viewer{Reviewer: true}, synced.JourneyID)
	require.NoError(t, err)
	assert.Equal(t, cached, data)
	cacheRepo.AssertNotCalled(t, "SetReportExport", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExportUseCase_DraftIsNotCached(t *testing.T) {
	f := newFixture(t, usecase.PointUpdateMerge, domain.DefaultHindranceTypes())
	cacheRepo := &MockCacheRepository{}
	reports := usecase.NewReportUseCase(f.reports, zap.NewNop())
	uc := usecase.NewExportUseCase(reports, f.catalog, cacheRepo, zap.NewNop(), 0)
	ctx := context.Background()

	synced, err := f.sync.SyncObject(ctx, pilotID, nil, placed(domain.GeometryLine, nil, pt(1, 1), pt(2, 2)))
	require.NoError(t, err)

	data, err := uc.GetGeoJSON(ctx, usecase.Viewer{UserID: pilotID}, synced.JourneyID)
	require.NoError(t, err)
	assert.Contains(t, string(data), "LineString")

	err = uc.Export(ctx, synced.JourneyID)
	assert.True(t, apperrors.Is(err, apperrors.ErrExportNotFound))
	cacheRepo.AssertNotCalled(t, "GetReportExport", mock.Anything, mock.Anything)
}

func TestExportUseCase_ForeignReportHidden(t *testing.T) {
	f := newFixture(t, usecase.PointUpdateMerge, domain.DefaultHindranceTypes())
	reports := usecase.NewReportUseCase(f.reports, zap.NewNop())
	uc := usecase.NewExportUseCase(reports, f.catalog, nil, zap.NewNop(), 0)

	synced := submittedReport(t, f)

	_, err := uc.GetGeoJSON(context.Background(), usecase.Viewer{UserID: "pilot-2"}, synced.JourneyID)
	assert.True(t, apperrors.Is(err, apperrors.ErrReportNotFound))
}

func TestExportUseCase_ExportCachesSubmitted(t *testing.T) {
	f := newFixture(t, usecase.PointUpdateMerge, domain.DefaultHindranceTypes())
	cacheRepo := &MockCacheRepository{}
	reports := usecase.NewReportUseCase(f.reports, zap.NewNop())
	uc := usecase.NewExportUseCase(reports, f.catalog, cacheRepo, zap.NewNop(), 0)

	synced := submittedReport(t, f)
	cacheRepo.On("SetReportExport", mock.Anything, synced.JourneyID, mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, uc.Export(context.Background(), synced.JourneyID))
	cacheRepo.AssertExpectations(t)
}
