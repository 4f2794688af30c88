package repository

import (
	"context"

	"github.com/hindrance-reporter/internal/domain"
)

// HindranceTypeRepository - каталог типов препятствий
type HindranceTypeRepository interface {
	// GetAll возвращает все типы, отсортированные по ID
	GetAll(ctx context.Context) ([]*domain.HindranceType, error)

	// Seed добавляет отсутствующие типы (по имени), существующие не изменяются
	Seed(ctx context.Context, types []*domain.HindranceType) error
}
