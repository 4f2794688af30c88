package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/delivery/http/middleware"
	"github.com/hindrance-reporter/internal/pkg/utils"
	"github.com/hindrance-reporter/internal/pkg/validator"
	"github.com/hindrance-reporter/internal/usecase"
	"github.com/hindrance-reporter/internal/usecase/dto"
)

// ReviewHandler - модерация отчетов (роль reviewer)
type ReviewHandler struct {
	reviewUC *usecase.ReviewUseCase
	logger   *zap.Logger
}

// NewReviewHandler - создание нового ReviewHandler
func NewReviewHandler(reviewUC *usecase.ReviewUseCase, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewUC: reviewUC,
		logger:   logger,
	}
}

// ListReports godoc
// @Summary Отчеты на модерации
// @Tags Review
// @Produce json
// @Param X-User-ID header string true "Идентификатор ревьюера"
// @Param X-User-Role header string true "reviewer"
// @Param status query string false "Статус отчета" default(Submitted)
// @Success 200 {object} utils.SuccessResponse{data=[]domain.Report}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Router /api/v1/review/reports [get]
func (h *ReviewHandler) ListReports(c *fiber.Ctx) error {
	var query dto.ListReportsQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, invalidField("status", err.Error()))
	}
	if err := validator.Validate(&query); err != nil {
		return utils.SendError(c, err)
	}

	reports, err := h.reviewUC.ListReports(c.UserContext(), query)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, reports, &utils.Meta{Total: len(reports)})
}

// ReviewObject godoc
// @Summary Решение по объекту
// @Tags Review
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Идентификатор ревьюера"
// @Param X-User-Role header string true "reviewer"
// @Param id path string true "ID объекта"
// @Param request body dto.ReviewObjectRequest true "Решение"
// @Success 200 {object} utils.SuccessResponse{data=domain.HindranceObject}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/review/objects/{id} [post]
func (h *ReviewHandler) ReviewObject(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.ReviewObjectRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, invalidBody(err))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	obj, err := h.reviewUC.ReviewObject(c.UserContext(), middleware.UserID(c), id, req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, obj, nil)
}

// SetReportStatus godoc
// @Summary Смена статуса отчета
// @Tags Review
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Идентификатор ревьюера"
// @Param X-User-Role header string true "reviewer"
// @Param id path string true "ID отчета"
// @Param request body dto.ReportStatusRequest true "Новый статус"
// @Success 200 {object} utils.SuccessResponse{data=domain.Report}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/review/reports/{id}/status [post]
func (h *ReviewHandler) SetReportStatus(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.ReportStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, invalidBody(err))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	report, err := h.reviewUC.SetReportStatus(c.UserContext(), middleware.UserID(c), id, req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, report, nil)
}
