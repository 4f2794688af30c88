package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hindrance-reporter/internal/domain"
)

// ReportRepository определяет методы для работы с отчетами, объектами препятствий и их точками
type ReportRepository interface {
	// Transaction выполняет fn в одной транзакции. Ошибка fn или отмена ctx откатывает все изменения.
	// Репозиторий, переданный в fn, работает внутри транзакции.
	Transaction(ctx context.Context, fn func(repo ReportRepository) error) error

	// CreateDraft создает новый черновик отчета для пользователя
	CreateDraft(ctx context.Context, userID string) (*domain.Report, error)

	// GetByID возвращает отчет без объектов (ErrReportNotFound если нет)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error)

	// GetByIDForUpdate возвращает отчет и блокирует его до конца транзакции
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Report, error)

	// GetLatestDraft возвращает последний черновик пользователя или nil
	GetLatestDraft(ctx context.Context, userID string) (*domain.Report, error)

	// ListByUser возвращает отчеты пользователя, новые первыми
	ListByUser(ctx context.Context, userID string) ([]*domain.Report, error)

	// ListByStatus возвращает отчеты в указанном статусе, старые первыми
	ListByStatus(ctx context.Context, status domain.ReviewStatus) ([]*domain.Report, error)

	// Update сохраняет заголовок, описание и статус отчета
	Update(ctx context.Context, report *domain.Report) error

	// ListObjects возвращает объекты отчета вместе с точками, отсортированными по Order
	ListObjects(ctx context.Context, reportID uuid.UUID) ([]*domain.HindranceObject, error)

	// GetObject возвращает объект с точками (ErrObjectNotFound если нет)
	GetObject(ctx context.Context, id uuid.UUID) (*domain.HindranceObject, error)

	// CreateObject сохраняет новый объект и все его точки
	CreateObject(ctx context.Context, obj *domain.HindranceObject) error

	// UpdateObject обновляет поля объекта, точки не затрагиваются
	UpdateObject(ctx context.Context, obj *domain.HindranceObject) error

	// AddPoints добавляет точки к объекту с уже проставленным Order
	AddPoints(ctx context.Context, objectID uuid.UUID, points []domain.HindrancePoint) error

	// ReplacePoints удаляет все точки объекта и сохраняет новые
	ReplacePoints(ctx context.Context, objectID uuid.UUID, points []domain.HindrancePoint) error

	// DeleteObject удаляет объект вместе с точками
	DeleteObject(ctx context.Context, id uuid.UUID) error
}
