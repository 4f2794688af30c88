package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/domain"
	"github.com/hindrance-reporter/internal/domain/repository"
	"github.com/hindrance-reporter/internal/pkg/errors"
	"github.com/hindrance-reporter/internal/usecase/dto"
)

// PointUpdateMode - как точки обновляемого объекта сводятся с пришедшими
type PointUpdateMode string

const (
	// PointUpdateMerge добавляет только новые точки (совпадение по lat/lng), существующие не трогает
	PointUpdateMerge PointUpdateMode = "merge"
	// PointUpdateReplace заменяет все точки объекта пришедшими
	PointUpdateReplace PointUpdateMode = "replace"
)

// ParsePointUpdateMode разбирает режим из конфигурации
func ParsePointUpdateMode(s string) (PointUpdateMode, error) {
	switch m := PointUpdateMode(s); m {
	case PointUpdateMerge, PointUpdateReplace:
		return m, nil
	}
	return "", fmt.Errorf("unknown point update mode %q", s)
}

// HindranceService - доменные операции над черновиками, объектами и точками.
// Методы, меняющие данные, принимают репозиторий явно, чтобы работать внутри транзакции вызывающего.
type HindranceService struct {
	catalog   *TypeCatalogUseCase
	pointMode PointUpdateMode
	logger    *zap.Logger
	now       func() time.Time
}

// NewHindranceService - создание нового HindranceService
func NewHindranceService(catalog *TypeCatalogUseCase, pointMode PointUpdateMode, logger *zap.Logger) *HindranceService {
	return &HindranceService{
		catalog:   catalog,
		pointMode: pointMode,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock подменяет источник времени (для тестов)
func (s *HindranceService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateDraft создает новый черновик отчета
func (s *HindranceService) CreateDraft(ctx context.Context, repo repository.ReportRepository, userID string) (*domain.Report, error) {
	report, err := repo.CreateDraft(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to create draft", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	s.logger.Debug("Draft created", zap.String("report_id", report.ID.String()), zap.String("user_id", userID))
	return report, nil
}

// GetDraft возвращает черновик пользователя и блокирует его до конца транзакции.
// Отсутствующий или чужой отчет - ErrReportNotFound, отчет не в Draft - ErrReportNotDraft.
func (s *HindranceService) GetDraft(ctx context.Context, repo repository.ReportRepository, userID string, journeyID uuid.UUID) (*domain.Report, error) {
	report, err := repo.GetByIDForUpdate(ctx, journeyID)
	if err != nil {
		return nil, err
	}
	if report.UserID != userID {
		return nil, errors.ErrReportNotFound
	}
	if !report.IsDraft() {
		return nil, errors.ErrReportNotDraft
	}
	return report, nil
}

// ResolveDraft возвращает черновик для синхронизации: указанный клиентом,
// последний черновик пользователя или новый.
func (s *HindranceService) ResolveDraft(ctx context.Context, repo repository.ReportRepository, userID string, journeyID *uuid.UUID) (*domain.Report, error) {
	if journeyID != nil {
		return s.GetDraft(ctx, repo, userID, *journeyID)
	}

	latest, err := repo.GetLatestDraft(ctx, userID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		// Блокируем так же, как и указанный черновик
		report, err := s.GetDraft(ctx, repo, userID, latest.ID)
		if !errors.Is(err, errors.ErrReportNotDraft) {
			return report, err
		}
		// Черновик успели финализировать, начинаем новый
	}
	return s.CreateDraft(ctx, repo, userID)
}

// FinaliseReport применяет метаданные и переводит отчет в Submitted (без записи в хранилище)
func (s *HindranceService) FinaliseReport(report *domain.Report, title, description string) error {
	if err := report.Finalise(title, description, s.now()); err != nil {
		return errors.ErrReportNotDraft
	}
	return nil
}

// GetAllHindranceTypes возвращает каталог типов
func (s *HindranceService) GetAllHindranceTypes(ctx context.Context) ([]*domain.HindranceType, error) {
	return s.catalog.GetAll(ctx)
}

// CreateHindranceObject создает объект с точками в порядке поступления (Order 0..n-1)
func (s *HindranceService) CreateHindranceObject(
	ctx context.Context,
	repo repository.ReportRepository,
	reportID uuid.UUID,
	hindranceType *domain.HindranceType,
	req dto.PlacedObjectRequest,
) (*domain.HindranceObject, error) {
	obj := &domain.HindranceObject{
		ID:           uuid.New(),
		ReportID:     reportID,
		TypeID:       hindranceType.ID,
		GeometryType: req.GeometryType,
		Title:        req.Title,
		Description:  req.Description,
		Status:       domain.ReviewDraft,
		Points:       s.toPoints(req.Points, 0),
	}

	if err := repo.CreateObject(ctx, obj); err != nil {
		s.logger.Error("Failed to create hindrance object",
			zap.String("report_id", reportID.String()),
			zap.Error(err))
		return nil, err
	}
	return obj, nil
}

// UpdateHindranceObject обновляет поля объекта и сводит точки согласно режиму сервиса
func (s *HindranceService) UpdateHindranceObject(
	ctx context.Context,
	repo repository.ReportRepository,
	obj *domain.HindranceObject,
	hindranceType *domain.HindranceType,
	req dto.PlacedObjectRequest,
) error {
	obj.TypeID = hindranceType.ID
	obj.GeometryType = req.GeometryType
	obj.Title = req.Title
	obj.Description = req.Description

	if err := repo.UpdateObject(ctx, obj); err != nil {
		s.logger.Error("Failed to update hindrance object",
			zap.String("object_id", obj.ID.String()),
			zap.Error(err))
		return err
	}

	if s.pointMode == PointUpdateReplace {
		points := s.toPoints(req.Points, 0)
		if err := repo.ReplacePoints(ctx, obj.ID, points); err != nil {
			return err
		}
		obj.Points = points
		return nil
	}

	return s.AddPoints(ctx, repo, obj, req.Points)
}

// AddPoints добавляет к объекту точки, координат которых у него еще нет.
// Повторы внутри пришедшего списка тоже отбрасываются.
func (s *HindranceService) AddPoints(ctx context.Context, repo repository.ReportRepository, obj *domain.HindranceObject, incoming []dto.PointRequest) error {
	fresh := newPoints(obj.Points, incoming)
	if len(fresh) == 0 {
		return nil
	}

	points := s.toPoints(fresh, obj.NextOrder())
	if err := repo.AddPoints(ctx, obj.ID, points); err != nil {
		s.logger.Error("Failed to add points",
			zap.String("object_id", obj.ID.String()),
			zap.Int("count", len(points)),
			zap.Error(err))
		return err
	}
	obj.Points = append(obj.Points, points...)
	return nil
}

// DeleteObject удаляет объект вместе с точками
func (s *HindranceService) DeleteObject(ctx context.Context, repo repository.ReportRepository, objectID uuid.UUID) error {
	if err := repo.DeleteObject(ctx, objectID); err != nil {
		s.logger.Error("Failed to delete hindrance object",
			zap.String("object_id", objectID.String()),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *HindranceService) toPoints(in []dto.PointRequest, firstOrder int) []domain.HindrancePoint {
	now := s.now()
	points := make([]domain.HindrancePoint, 0, len(in))
	for i, p := range in {
		createdAt := p.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		points = append(points, domain.HindrancePoint{
			Lat:       p.Lat,
			Lng:       p.Lng,
			Elevation: p.Elevation,
			Label:     p.Label,
			Order:     firstOrder + i,
			CreatedAt: createdAt,
		})
	}
	return points
}

// newPoints отбирает точки, координаты которых еще не встречались, сохраняя порядок
func newPoints(existing []domain.HindrancePoint, incoming []dto.PointRequest) []dto.PointRequest {
	seen := make(map[domain.LatLng]struct{}, len(existing)+len(incoming))
	for _, p := range existing {
		seen[domain.LatLng{Lat: p.Lat, Lng: p.Lng}] = struct{}{}
	}

	var fresh []dto.PointRequest
	for _, p := range incoming {
		key := domain.LatLng{Lat: p.Lat, Lng: p.Lng}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		fresh = append(fresh, p)
	}
	return fresh
}
