package utils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hindrance-reporter/internal/pkg/errors"
	"github.com/hindrance-reporter/internal/pkg/validator"
)

// generalErrorKey - ключ для ошибок, не привязанных к конкретному полю
const generalErrorKey = "general"

type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Error  *errors.AppError    `json:"error"`
	Errors map[string][]string `json:"errors"`
}

type Meta struct {
	Total    int     `json:"total,omitempty"`
	Page     int     `json:"page,omitempty"`
	Limit    int     `json:"limit,omitempty"`
	TimeMSec float64 `json:"time_ms,omitempty"`
}

func SendSuccess(c *fiber.Ctx, data interface{}, meta *Meta) error {
	return c.JSON(SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func SendError(c *fiber.Ctx, err error) error {
	if fields := validator.FieldErrors(err); fields != nil {
		err = errors.NewValidation(fields)
	}

	if appErr, ok := errors.As(err); ok {
		return c.Status(appErr.StatusCode).JSON(ErrorResponse{
			Error:  appErr,
			Errors: fieldsOf(appErr),
		})
	}

	// Unknown error - return 500
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:  errors.ErrInternalServer,
		Errors: fieldsOf(errors.ErrInternalServer),
	})
}

func fieldsOf(appErr *errors.AppError) map[string][]string {
	if len(appErr.Fields) > 0 {
		return appErr.Fields
	}
	return map[string][]string{generalErrorKey: {appErr.Message}}
}
