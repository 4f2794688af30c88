package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/pkg/utils"
	"github.com/hindrance-reporter/internal/usecase"
)

// TypeHandler - каталог типов препятствий
type TypeHandler struct {
	catalogUC *usecase.TypeCatalogUseCase
	logger    *zap.Logger
}

// NewTypeHandler - создание нового TypeHandler
func NewTypeHandler(catalogUC *usecase.TypeCatalogUseCase, logger *zap.Logger) *TypeHandler {
	return &TypeHandler{
		catalogUC: catalogUC,
		logger:    logger,
	}
}

// GetHindranceTypes godoc
// @Summary Список типов препятствий
// @Description Краткий каталог для выбора типа после размещения объекта
// @Tags Types
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]dto.HindranceTypeResponse}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/hindrance-types [get]
func (h *TypeHandler) GetHindranceTypes(c *fiber.Ctx) error {
	types, err := h.catalogUC.GetHindranceTypes(c.UserContext())
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, types, &utils.Meta{Total: len(types)})
}

// GetObjectTypes godoc
// @Summary Полный каталог типов
// @Description Все типы и ID типа по умолчанию для каждого вида геометрии
// @Tags Types
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.ObjectTypesResponse}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/object-types [get]
func (h *TypeHandler) GetObjectTypes(c *fiber.Ctx) error {
	result, err := h.catalogUC.GetObjectTypes(c.UserContext())
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}
