package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/domain"
	"github.com/hindrance-reporter/internal/domain/repository"
	"github.com/hindrance-reporter/internal/usecase/dto"
)

// FinalizeUseCase - сверка полного набора объектов сессии с черновиком и его отправка
type FinalizeUseCase struct {
	reportRepo repository.ReportRepository
	events     repository.ReportEventPublisher
	service    *HindranceService
	catalog    *TypeCatalogUseCase
	logger     *zap.Logger
}

// NewFinalizeUseCase - создание нового FinalizeUseCase. events может быть nil.
func NewFinalizeUseCase(
	reportRepo repository.ReportRepository,
	events repository.ReportEventPublisher,
	service *HindranceService,
	catalog *TypeCatalogUseCase,
	logger *zap.Logger,
) *FinalizeUseCase {
	return &FinalizeUseCase{
		reportRepo: reportRepo,
		events:     events,
		service:    service,
		catalog:    catalog,
		logger:     logger,
	}
}

// Finalize сверяет объекты с черновиком journeyID и переводит его в Submitted.
// Все изменения выполняются в одной транзакции: при любой ошибке черновик остается как был.
func (uc *FinalizeUseCase) Finalize(
	ctx context.Context,
	userID string,
	journeyID uuid.UUID,
	req dto.FinalizeJourneyRequest,
) (uuid.UUID, error) {
	if err := validateBatch(req.Objects); err != nil {
		return uuid.Nil, err
	}

	catalog, err := uc.catalog.Catalog(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	var (
		report      *domain.Report
		objectCount int
	)
	err = uc.reportRepo.Transaction(ctx, func(tx repository.ReportRepository) error {
		var err error
		report, err = uc.service.GetDraft(ctx, tx, userID, journeyID)
		if err != nil {
			return err
		}
		if err := uc.service.FinaliseReport(report, req.Journey.Title, req.Journey.Description); err != nil {
			return err
		}

		objectCount, err = uc.reconcile(ctx, tx, catalog, report, req.Objects)
		if err != nil {
			return err
		}

		return tx.Update(ctx, report)
	})
	if err != nil {
		uc.logger.Warn("Failed to finalize journey",
			zap.String("user_id", userID),
			zap.String("report_id", journeyID.String()),
			zap.Error(err))
		return uuid.Nil, err
	}

	uc.logger.Info("Journey finalized",
		zap.String("report_id", report.ID.String()),
		zap.Int("objects", objectCount))

	uc.publishSubmitted(ctx, report, objectCount)
	return report.ID, nil
}

// reconcile применяет пришедшие объекты к черновику и возвращает число оставшихся объектов
func (uc *FinalizeUseCase) reconcile(
	ctx context.Context,
	tx repository.ReportRepository,
	catalog *TypeCatalog,
	report *domain.Report,
	objects []dto.PlacedObjectRequest,
) (int, error) {
	existing, err := tx.ListObjects(ctx, report.ID)
	if err != nil {
		return 0, err
	}
	byID := make(map[uuid.UUID]*domain.HindranceObject, len(existing))
	for _, obj := range existing {
		byID[obj.ID] = obj
	}

	for i, req := range objects {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		var matched *domain.HindranceObject
		if req.ServerID != nil {
			matched = byID[*req.ServerID]
		}

		switch {
		case req.Deleted && matched != nil:
			if err := uc.service.DeleteObject(ctx, tx, matched.ID); err != nil {
				return 0, fmt.Errorf("objects[%d]: %w", i, err)
			}
			delete(byID, matched.ID)

		case req.Deleted:
			// Объект удален до первой синхронизации, на сервере его нет

		default:
			hindranceType, err := catalog.Resolve(req.TypeID, req.GeometryType)
			if err != nil {
				return 0, err
			}
			if matched != nil {
				err = uc.service.UpdateHindranceObject(ctx, tx, matched, hindranceType, req)
			} else {
				var created *domain.HindranceObject
				created, err = uc.service.CreateHindranceObject(ctx, tx, report.ID, hindranceType, req)
				if created != nil {
					byID[created.ID] = created
				}
			}
			if err != nil {
				return 0, fmt.Errorf("objects[%d]: %w", i, err)
			}
		}
	}

	return len(byID), nil
}

func (uc *FinalizeUseCase) publishSubmitted(ctx context.Context, report *domain.Report, objectCount int) {
	if uc.events == nil {
		return
	}

	submittedAt := time.Now()
	if report.SubmittedAt != nil {
		submittedAt = *report.SubmittedAt
	}
	event := domain.ReportSubmittedEvent{
		ReportID:    report.ID,
		UserID:      report.UserID,
		ObjectCount: objectCount,
		SubmittedAt: submittedAt,
	}

	// Отчет уже сохранен, ошибка публикации не отменяет финализацию
	if _, err := uc.events.PublishSubmitted(ctx, event); err != nil {
		uc.logger.Error("Failed to publish report submitted event",
			zap.String("report_id", report.ID.String()),
			zap.Error(err))
	}
}
