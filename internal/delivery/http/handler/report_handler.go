package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/delivery/http/middleware"
	"github.com/hindrance-reporter/internal/pkg/utils"
	"github.com/hindrance-reporter/internal/usecase"
)

// ReportHandler - просмотр отчетов и их выгрузка
type ReportHandler struct {
	reportUC *usecase.ReportUseCase
	exportUC *usecase.ExportUseCase
	logger   *zap.Logger
}

// NewReportHandler - создание нового ReportHandler
func NewReportHandler(reportUC *usecase.ReportUseCase, exportUC *usecase.ExportUseCase, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportUC: reportUC,
		exportUC: exportUC,
		logger:   logger,
	}
}

func viewerOf(c *fiber.Ctx) usecase.Viewer {
	return usecase.Viewer{
		UserID:   middleware.UserID(c),
		Reviewer: middleware.IsReviewer(c),
	}
}

// ListReports godoc
// @Summary Отчеты пользователя
// @Tags Reports
// @Produce json
// @Param X-User-ID header string true "Идентификатор пользователя"
// @Success 200 {object} utils.SuccessResponse{data=[]domain.Report}
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/v1/reports [get]
func (h *ReportHandler) ListReports(c *fiber.Ctx) error {
	reports, err := h.reportUC.ListReports(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, reports, &utils.Meta{Total: len(reports)})
}

// GetReport godoc
// @Summary Отчет с объектами и точками
// @Tags Reports
// @Produce json
// @Param X-User-ID header string true "Идентификатор пользователя"
// @Param id path string true "ID отчета"
// @Success 200 {object} utils.SuccessResponse{data=domain.Report}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/reports/{id} [get]
func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	report, err := h.reportUC.GetReport(c.UserContext(), viewerOf(c), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, report, nil)
}

// GetReportGeoJSON godoc
// @Summary Выгрузка отчета в GeoJSON
// @Description FeatureCollection, по одному Feature на объект
// @Tags Reports
// @Produce json
// @Param X-User-ID header string true "Идентификатор пользователя"
// @Param id path string true "ID отчета"
// @Success 200 {object} map[string]interface{} "GeoJSON FeatureCollection"
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/reports/{id}/geojson [get]
func (h *ReportHandler) GetReportGeoJSON(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	data, err := h.exportUC.GetGeoJSON(c.UserContext(), viewerOf(c), id)
	if err != nil {
		return utils.SendError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.Send(data)
}
