package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/domain"
	"github.com/hindrance-reporter/internal/domain/repository"
	"github.com/hindrance-reporter/internal/pkg/errors"
)

// ExportUseCase - выгрузка отчета в GeoJSON FeatureCollection
type ExportUseCase struct {
	reports   *ReportUseCase
	catalog   *TypeCatalogUseCase
	cacheRepo repository.ReportExportCache
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewExportUseCase - создание нового ExportUseCase. cacheRepo может быть nil.
func NewExportUseCase(
	reports *ReportUseCase,
	catalog *TypeCatalogUseCase,
	cacheRepo repository.ReportExportCache,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *ExportUseCase {
	return &ExportUseCase{
		reports:   reports,
		catalog:   catalog,
		cacheRepo: cacheRepo,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// GetGeoJSON возвращает выгрузку отчета. Черновики не кешируются, они еще меняются.
func (uc *ExportUseCase) GetGeoJSON(ctx context.Context, viewer Viewer, reportID uuid.UUID) ([]byte, error) {
	report, err := uc.reports.GetReport(ctx, viewer, reportID)
	if err != nil {
		return nil, err
	}

	if !report.IsDraft() && uc.cacheRepo != nil {
		cached, err := uc.cacheRepo.GetReportExport(ctx, reportID)
		if err != nil {
			uc.logger.Warn("Failed to read report export from cache",
				zap.String("report_id", reportID.String()),
				zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	data, err := uc.build(ctx, report)
	if err != nil {
		return nil, err
	}

	if !report.IsDraft() {
		uc.store(ctx, reportID, data)
	}
	return data, nil
}

// Export строит и кеширует выгрузку отправленного отчета (вызывается воркером)
func (uc *ExportUseCase) Export(ctx context.Context, reportID uuid.UUID) error {
	report, err := uc.reports.GetReport(ctx, Viewer{Reviewer: true}, reportID)
	if err != nil {
		return err
	}
	if report.IsDraft() {
		return errors.ErrExportNotFound.WithMessage("Report %s is still a draft", reportID)
	}

	data, err := uc.build(ctx, report)
	if err != nil {
		return err
	}
	if uc.cacheRepo == nil {
		return nil
	}
	if err := uc.cacheRepo.SetReportExport(ctx, reportID, data, uc.cacheTTL); err != nil {
		uc.logger.Error("Failed to cache report export",
			zap.String("report_id", reportID.String()),
			zap.Error(err))
		return errors.ErrCacheError
	}
	return nil
}

// BuildFeatureCollection - по одному Feature на объект, свойства содержат данные типа и модерации
func (uc *ExportUseCase) BuildFeatureCollection(ctx context.Context, report *domain.Report) (*geojson.FeatureCollection, error) {
	catalog, err := uc.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	for _, obj := range report.Objects {
		geometry, err := obj.GeometryType.Geometry(obj.LatLngs())
		if err != nil {
			uc.logger.Warn("Skipping object without valid geometry",
				zap.String("object_id", obj.ID.String()),
				zap.Error(err))
			continue
		}

		f := geojson.NewFeature(geometry)
		f.ID = obj.ID.String()
		f.Properties["reportId"] = report.ID.String()
		f.Properties["title"] = obj.Title
		f.Properties["description"] = obj.Description
		f.Properties["geometryType"] = string(obj.GeometryType)
		f.Properties["status"] = string(obj.Status)
		f.Properties["typeId"] = obj.TypeID
		if t, ok := catalog.Get(obj.TypeID); ok {
			f.Properties["typeName"] = t.Name
			f.Properties["color"] = t.Color
		}
		if obj.Feedback != nil {
			f.Properties["feedback"] = *obj.Feedback
		}
		if elevations := elevationsOf(obj); len(elevations) > 0 {
			f.Properties["elevations"] = elevations
		}
		fc.Append(f)
	}
	return fc, nil
}

func (uc *ExportUseCase) build(ctx context.Context, report *domain.Report) ([]byte, error) {
	fc, err := uc.BuildFeatureCollection(ctx, report)
	if err != nil {
		return nil, err
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		uc.logger.Error("Failed to marshal report export",
			zap.String("report_id", report.ID.String()),
			zap.Error(err))
		return nil, errors.ErrInternalServer
	}
	return data, nil
}

func (uc *ExportUseCase) store(ctx context.Context, reportID uuid.UUID, data []byte) {
	if uc.cacheRepo == nil {
		return
	}
	if err := uc.cacheRepo.SetReportExport(ctx, reportID, data, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache report export",
			zap.String("report_id", reportID.String()),
			zap.Error(err))
	}
}

// elevationsOf - высоты точек в порядке вершин, nil если высот нет
func elevationsOf(obj *domain.HindranceObject) []*int {
	var found bool
	out := make([]*int, len(obj.Points))
	for i, p := range obj.Points {
		out[i] = p.Elevation
		found = found || p.Elevation != nil
	}
	if !found {
		return nil
	}
	return out
}
