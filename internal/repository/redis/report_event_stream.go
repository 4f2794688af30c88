package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/domain"
	"github.com/hindrance-reporter/internal/domain/repository"
)

const (
	// payloadField - поле записи с JSON события
	payloadField = "event"
	// maxStreamLen - приблизительный предел длины стрима (XADD MAXLEN ~)
	maxStreamLen = 10000
	readCount    = 16
	readBlock    = 2 * time.Second
	readBackoff  = time.Second
)

// ReportEventStream - стрим отправленных отчетов поверх Redis Streams
type ReportEventStream struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

var _ repository.ReportEventStream = (*ReportEventStream)(nil)

// NewReportEventStream создает ReportEventStream для стрима stream
func NewReportEventStream(client *redis.Client, stream string, logger *zap.Logger) *ReportEventStream {
	return &ReportEventStream{
		client: client,
		stream: stream,
		logger: logger.With(zap.String("stream", stream)),
	}
}

// PublishSubmitted добавляет событие в стрим
func (s *ReportEventStream) PublishSubmitted(ctx context.Context, event domain.ReportSubmittedEvent) (string, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal report submitted event: %w", err)
	}

	id, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: map[string]interface{}{payloadField: payload},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("publish report submitted event: %w", err)
	}

	s.logger.Debug("Report event published",
		zap.String("entry_id", id),
		zap.String("report_id", event.ReportID.String()))
	return id, nil
}

// EnsureGroup создает группу вместе со стримом. Группа видит и события,
// опубликованные до первого запуска воркера.
func (s *ReportEventStream) EnsureGroup(ctx context.Context, group string) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, group, "0").Err()
	switch {
	case err == nil:
		s.logger.Info("Consumer group created", zap.String("group", group))
		return nil
	case strings.HasPrefix(err.Error(), "BUSYGROUP"):
		return nil
	default:
		return fmt.Errorf("create consumer group %s: %w", group, err)
	}
}

// Deliveries читает стрим от имени consumer
func (s *ReportEventStream) Deliveries(ctx context.Context, group, consumer string) (<-chan domain.EventDelivery, error) {
	out := make(chan domain.EventDelivery, readCount)

	go func() {
		defer close(out)

		// Сначала история consumer (неподтвержденные записи начиная с "0"), затем ">"
		cursor, history := "0", true
		for ctx.Err() == nil {
			block := readBlock
			if history {
				block = -1
			}
			streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    group,
				Consumer: consumer,
				Streams:  []string{s.stream, cursor},
				Count:    readCount,
				Block:    block,
			}).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || ctx.Err() != nil {
					continue
				}
				s.logger.Error("Failed to read report events", zap.String("group", group), zap.Error(err))
				select {
				case <-time.After(readBackoff):
				case <-ctx.Done():
				}
				continue
			}

			received := 0
			for _, st := range streams {
				for _, msg := range st.Messages {
					received++
					if history {
						cursor = msg.ID
					}
					if !s.emit(ctx, out, group, msg, history) {
						return
					}
				}
			}
			if history && received == 0 {
				cursor, history = ">", false
			}
		}
	}()

	return out, nil
}

func (s *ReportEventStream) emit(ctx context.Context, out chan<- domain.EventDelivery, group string, msg redis.XMessage, redelivered bool) bool {
	payload, ok := msg.Values[payloadField].(string)
	if !ok {
		// Без payload запись бесполезна, иначе она навсегда останется в PEL
		s.logger.Warn("Report event without payload", zap.String("entry_id", msg.ID))
		if err := s.Ack(ctx, group, msg.ID); err != nil {
			s.logger.Error("Failed to ack empty entry", zap.String("entry_id", msg.ID), zap.Error(err))
		}
		return true
	}

	select {
	case out <- domain.EventDelivery{ID: msg.ID, Payload: []byte(payload), Redelivered: redelivered}:
		return true
	case <-ctx.Done():
		return false
	}
}

// Ack подтверждает записи
func (s *ReportEventStream) Ack(ctx context.Context, group string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.client.XAck(ctx, s.stream, group, ids...).Err(); err != nil {
		return fmt.Errorf("ack report events: %w", err)
	}
	return nil
}
