package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/domain"
	"github.com/hindrance-reporter/internal/domain/repository"
	"github.com/hindrance-reporter/internal/pkg/errors"
)

// Viewer - кто запрашивает отчет
type Viewer struct {
	UserID   string
	Reviewer bool
}

// CanSee - владелец видит свои отчеты, ревьюер видит все
func (v Viewer) CanSee(report *domain.Report) bool {
	return v.Reviewer || report.UserID == v.UserID
}

// ReportUseCase - чтение отчетов
type ReportUseCase struct {
	reportRepo repository.ReportRepository
	logger     *zap.Logger
}

// NewReportUseCase - создание нового ReportUseCase
func NewReportUseCase(reportRepo repository.ReportRepository, logger *zap.Logger) *ReportUseCase {
	return &ReportUseCase{
		reportRepo: reportRepo,
		logger:     logger,
	}
}

// GetReport возвращает отчет вместе с объектами и точками
func (uc *ReportUseCase) GetReport(ctx context.Context, viewer Viewer, id uuid.UUID) (*domain.Report, error) {
	report, err := uc.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Чужой отчет неотличим от отсутствующего
	if !viewer.CanSee(report) {
		return nil, errors.ErrReportNotFound
	}

	objects, err := uc.reportRepo.ListObjects(ctx, id)
	if err != nil {
		uc.logger.Error("Failed to list report objects",
			zap.String("report_id", id.String()),
			zap.Error(err))
		return nil, err
	}
	report.Objects = objects
	return report, nil
}

// ListReports возвращает отчеты пользователя без объектов
func (uc *ReportUseCase) ListReports(ctx context.Context, userID string) ([]*domain.Report, error) {
	reports, err := uc.reportRepo.ListByUser(ctx, userID)
	if err != nil {
		uc.logger.Error("Failed to list reports", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return reports, nil
}
