package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/hindrance-reporter/internal/pkg/errors"
)

// uuidParam разбирает UUID из пути запроса
func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, invalidField(name, "must be a valid UUID")
	}
	return id, nil
}

// optionalUUIDQuery разбирает необязательный UUID из query, nil если параметра нет
func optionalUUIDQuery(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, invalidField(name, "must be a valid UUID")
	}
	return &id, nil
}

func invalidField(field, message string) error {
	return errors.ErrInvalidRequest.WithFields(map[string][]string{field: {message}})
}

func invalidBody(err error) error {
	return errors.ErrInvalidRequest.WithMessage("Invalid request body: %v", err)
}
