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

// ReviewUseCase - модерация отправленных отчетов
type ReviewUseCase struct {
	reportRepo repository.ReportRepository
	cacheRepo  repository.ReportExportCache
	logger     *zap.Logger
}

// NewReviewUseCase - создание нового ReviewUseCase. cacheRepo может быть nil.
func NewReviewUseCase(reportRepo repository.ReportRepository, cacheRepo repository.ReportExportCache, logger *zap.Logger) *ReviewUseCase {
	return &ReviewUseCase{
		reportRepo: reportRepo,
		cacheRepo:  cacheRepo,
		logger:     logger,
	}
}

// ListReports возвращает отчеты в статусе (по умолчанию Submitted)
func (uc *ReviewUseCase) ListReports(ctx context.Context, query dto.ListReportsQuery) ([]*domain.Report, error) {
	status := query.Status
	if status == "" {
		status = domain.ReviewSubmitted
	}
	return uc.reportRepo.ListByStatus(ctx, status)
}

// ReviewObject выставляет объекту Approved/Rejected. Объекты черновиков не модерируются.
func (uc *ReviewUseCase) ReviewObject(ctx context.Context, reviewerID string, objectID uuid.UUID, req dto.ReviewObjectRequest) (*domain.HindranceObject, error) {
	if !req.Status.ValidObjectVerdict() {
		return nil, errors.ErrInvalidReviewTransition.WithMessage("%s is not an object verdict", req.Status)
	}

	var reviewed *domain.HindranceObject
	err := uc.reportRepo.Transaction(ctx, func(tx repository.ReportRepository) error {
		obj, err := tx.GetObject(ctx, objectID)
		if err != nil {
			return err
		}
		report, err := tx.GetByIDForUpdate(ctx, obj.ReportID)
		if err != nil {
			return err
		}
		if report.IsDraft() {
			return errors.ErrInvalidReviewTransition.WithMessage("Report %s is still a draft", report.ID)
		}

		obj.Status = req.Status
		obj.Feedback = req.Feedback
		if err := tx.UpdateObject(ctx, obj); err != nil {
			return err
		}
		reviewed = obj
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.dropExport(ctx, reviewed.ReportID)

	uc.logger.Info("Object reviewed",
		zap.String("object_id", objectID.String()),
		zap.String("reviewer_id", reviewerID),
		zap.String("status", string(req.Status)))
	return reviewed, nil
}

// SetReportStatus переводит отчет по жизненному циклу модерации
func (uc *ReviewUseCase) SetReportStatus(ctx context.Context, reviewerID string, reportID uuid.UUID, req dto.ReportStatusRequest) (*domain.Report, error) {
	var updated *domain.Report
	err := uc.reportRepo.Transaction(ctx, func(tx repository.ReportRepository) error {
		report, err := tx.GetByIDForUpdate(ctx, reportID)
		if err != nil {
			return err
		}
		if !report.Status.CanTransition(req.Status) {
			return errors.ErrInvalidReviewTransition.WithMessage("Cannot move report from %s to %s", report.Status, req.Status)
		}

		report.Status = req.Status
		if err := tx.Update(ctx, report); err != nil {
			return err
		}
		updated = report
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.dropExport(ctx, reportID)

	uc.logger.Info("Report status changed",
		zap.String("report_id", reportID.String()),
		zap.String("reviewer_id", reviewerID),
		zap.String("status", string(req.Status)))
	return updated, nil
}

// dropExport - выгрузка содержит статусы модерации и после решения устаревает
func (uc *ReviewUseCase) dropExport(ctx context.Context, reportID uuid.UUID) {
	if uc.cacheRepo == nil {
		return
	}
	if err := uc.cacheRepo.DeleteReportExport(ctx, reportID); err != nil {
		uc.logger.Warn("Failed to drop report export",
			zap.String("report_id", reportID.String()),
			zap.Error(err))
	}
}
