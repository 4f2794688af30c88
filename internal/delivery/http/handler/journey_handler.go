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

// JourneyHandler - синхронизация и финализация сессий пилота
type JourneyHandler struct {
	syncUC     *usecase.SyncUseCase
	finalizeUC *usecase.FinalizeUseCase
	logger     *zap.Logger
}

// NewJourneyHandler - создание нового JourneyHandler
func NewJourneyHandler(syncUC *usecase.SyncUseCase, finalizeUC *usecase.FinalizeUseCase, logger *zap.Logger) *JourneyHandler {
	return &JourneyHandler{
		syncUC:     syncUC,
		finalizeUC: finalizeUC,
		logger:     logger,
	}
}

// SyncObject godoc
// @Summary Синхронизация одного объекта
// @Description Создает объект в черновике (без serverId) или обновляет ранее синхронизированный. Без journeyId используется последний черновик пользователя или создается новый.
// @Tags Journey
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Идентификатор пользователя"
// @Param journeyId query string false "ID черновика"
// @Param request body dto.PlacedObjectRequest true "Объект"
// @Success 200 {object} dto.SyncObjectResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/sync-object [post]
func (h *JourneyHandler) SyncObject(c *fiber.Ctx) error {
	journeyID, err := optionalUUIDQuery(c, "journeyId")
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.PlacedObjectRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, invalidBody(err))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.syncUC.SyncObject(c.UserContext(), middleware.UserID(c), journeyID, req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return c.JSON(result)
}

// FinalizeJourney godoc
// @Summary Финализация сессии
// @Description Сверяет полный набор объектов с черновиком и переводит отчет в Submitted. Выполняется атомарно.
// @Tags Journey
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Идентификатор пользователя"
// @Param journeyId query string true "ID черновика"
// @Param request body dto.FinalizeJourneyRequest true "Метаданные и объекты сессии"
// @Success 200 {object} dto.FinalizeJourneyResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/finalize-journey [post]
func (h *JourneyHandler) FinalizeJourney(c *fiber.Ctx) error {
	journeyID, err := optionalUUIDQuery(c, "journeyId")
	if err != nil {
		return utils.SendError(c, err)
	}
	if journeyID == nil {
		return utils.SendError(c, invalidField("journeyId", "is required"))
	}

	var req dto.FinalizeJourneyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, invalidBody(err))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	reportID, err := h.finalizeUC.Finalize(c.UserContext(), middleware.UserID(c), *journeyID, req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return c.JSON(dto.FinalizeJourneyResponse{ReportID: reportID})
}
