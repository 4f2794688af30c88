package repository

import (
	"context"

	"github.com/hindrance-reporter/internal/domain"
)

// ReportEventPublisher - публикация событий об отправленных отчетах
type ReportEventPublisher interface {
	// PublishSubmitted публикует событие и возвращает ID записи в стриме
	PublishSubmitted(ctx context.Context, event domain.ReportSubmittedEvent) (string, error)
}

// ReportEventConsumer - чтение событий об отправленных отчетах в составе consumer group
type ReportEventConsumer interface {
	// EnsureGroup создает группу, если ее еще нет
	EnsureGroup(ctx context.Context, group string) error

	// Deliveries сначала отдает неподтвержденные записи consumer, затем новые.
	// Канал закрывается при отмене ctx.
	Deliveries(ctx context.Context, group, consumer string) (<-chan domain.EventDelivery, error)

	// Ack подтверждает обработку записей
	Ack(ctx context.Context, group string, ids ...string) error
}

// ReportEventStream - обе стороны стрима отправленных отчетов
type ReportEventStream interface {
	ReportEventPublisher
	ReportEventConsumer
}
