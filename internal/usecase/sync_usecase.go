package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/domain"
	"github.com/hindrance-reporter/internal/domain/repository"
	"github.com/hindrance-reporter/internal/pkg/errors"
	"github.com/hindrance-reporter/internal/usecase/dto"
)

// SyncUseCase - сохранение одного объекта в черновик по мере работы пилота
type SyncUseCase struct {
	reportRepo repository.ReportRepository
	service    *HindranceService
	catalog    *TypeCatalogUseCase
	logger     *zap.Logger
}

// NewSyncUseCase - создание нового SyncUseCase
func NewSyncUseCase(
	reportRepo repository.ReportRepository,
	service *HindranceService,
	catalog *TypeCatalogUseCase,
	logger *zap.Logger,
) *SyncUseCase {
	return &SyncUseCase{
		reportRepo: reportRepo,
		service:    service,
		catalog:    catalog,
		logger:     logger,
	}
}

// SyncObject создает или обновляет объект в черновике.
// Без journeyID используется последний черновик пользователя или создается новый.
// С ServerID объект обновляется, без него создается новый.
func (uc *SyncUseCase) SyncObject(
	ctx context.Context,
	userID string,
	journeyID *uuid.UUID,
	req dto.PlacedObjectRequest,
) (*dto.SyncObjectResponse, error) {
	if req.Deleted {
		return nil, errors.ErrObjectDeleted
	}
	if err := validateObject(req); err != nil {
		return nil, err
	}

	catalog, err := uc.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	hindranceType, err := catalog.Resolve(req.TypeID, req.GeometryType)
	if err != nil {
		return nil, err
	}

	var resp *dto.SyncObjectResponse
	err = uc.reportRepo.Transaction(ctx, func(tx repository.ReportRepository) error {
		report, err := uc.service.ResolveDraft(ctx, tx, userID, journeyID)
		if err != nil {
			return err
		}

		obj, err := uc.upsert(ctx, tx, report, hindranceType, req)
		if err != nil {
			return err
		}

		resp = &dto.SyncObjectResponse{JourneyID: report.ID, ObjectID: obj.ID}
		return nil
	})
	if err != nil {
		uc.logger.Warn("Failed to sync object",
			zap.String("user_id", userID),
			zap.String("client_object_id", req.ID.String()),
			zap.Error(err))
		return nil, err
	}

	uc.logger.Debug("Object synced",
		zap.String("report_id", resp.JourneyID.String()),
		zap.String("object_id", resp.ObjectID.String()))
	return resp, nil
}

func (uc *SyncUseCase) upsert(
	ctx context.Context,
	tx repository.ReportRepository,
	report *domain.Report,
	hindranceType *domain.HindranceType,
	req dto.PlacedObjectRequest,
) (*domain.HindranceObject, error) {
	if req.ServerID == nil {
		return uc.service.CreateHindranceObject(ctx, tx, report.ID, hindranceType, req)
	}

	existing, err := tx.GetObject(ctx, *req.ServerID)
	if err != nil {
		return nil, err
	}
	if existing.ReportID != report.ID {
		return nil, errors.ErrObjectNotFound
	}
	if err := uc.service.UpdateHindranceObject(ctx, tx, existing, hindranceType, req); err != nil {
		return nil, err
	}
	return existing, nil
}
