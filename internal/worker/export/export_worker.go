// Package export содержит воркер, строящий GeoJSON выгрузки отправленных отчетов.
package export

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/domain"
	"github.com/hindrance-reporter/internal/domain/repository"
	"github.com/hindrance-reporter/internal/pkg/errors"
	"github.com/hindrance-reporter/internal/worker"
)

const defaultRetryDelay = 500 * time.Millisecond

// ReportExporter строит и сохраняет выгрузку отправленного отчета
type ReportExporter interface {
	Export(ctx context.Context, reportID uuid.UUID) error
}

// ReportExportWorker читает события об отправленных отчетах и прогревает кэш выгрузок
type ReportExportWorker struct {
	*worker.Lifecycle
	events     repository.ReportEventConsumer
	exporter   ReportExporter
	group      string
	consumer   string
	maxRetries int
	retryDelay time.Duration
}

var _ worker.Reporter = (*ReportExportWorker)(nil)

// NewReportExportWorker создает новый ReportExportWorker. Имя consumer строится
// из hostname и pid, так что несколько процессов делят одну группу.
func NewReportExportWorker(
	events repository.ReportEventConsumer,
	exporter ReportExporter,
	group string,
	maxRetries int,
	logger *zap.Logger,
) *ReportExportWorker {
	hostname, _ := os.Hostname()
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &ReportExportWorker{
		Lifecycle:  worker.NewLifecycle("report-export", logger),
		events:     events,
		exporter:   exporter,
		group:      group,
		consumer:   fmt.Sprintf("%s-%d", hostname, os.Getpid()),
		maxRetries: maxRetries,
		retryDelay: defaultRetryDelay,
	}
}

// SetRetryDelay задает базовую паузу между попытками
func (w *ReportExportWorker) SetRetryDelay(d time.Duration) {
	w.retryDelay = d
}

// Group возвращает consumer group воркера
func (w *ReportExportWorker) Group() string {
	return w.group
}

// Run обрабатывает события, пока канал доставок не закроется
func (w *ReportExportWorker) Run(ctx context.Context) error {
	if err := w.events.EnsureGroup(ctx, w.group); err != nil {
		return fmt.Errorf("report export worker: %w", err)
	}

	runCtx, cancel := w.Bind(ctx)
	defer cancel()

	deliveries, err := w.events.Deliveries(runCtx, w.group, w.consumer)
	if err != nil {
		return fmt.Errorf("report export worker: %w", err)
	}

	w.Logger().Info("Consuming report events",
		zap.String("group", w.group),
		zap.String("consumer", w.consumer),
		zap.Int("max_retries", w.maxRetries))

	for d := range deliveries {
		w.process(runCtx, d)
	}
	return nil
}

// process подтверждает событие после успешной выгрузки, после исчерпания попыток
// и для событий, которые выгрузить нельзя. При остановке событие остается в PEL.
func (w *ReportExportWorker) process(ctx context.Context, d domain.EventDelivery) {
	logger := w.Logger().With(zap.String("entry_id", d.ID), zap.Bool("redelivered", d.Redelivered))

	event, err := domain.DecodeReportSubmitted(d.Payload)
	if err != nil {
		logger.Warn("Skipping malformed report event", zap.Error(err))
		w.Dropped()
		w.ack(ctx, d.ID)
		return
	}
	logger = logger.With(zap.String("report_id", event.ReportID.String()))

	for attempt := 1; ; attempt++ {
		err := w.exporter.Export(ctx, event.ReportID)
		switch {
		case err == nil:
			logger.Info("Report export cached", zap.Int("objects", event.ObjectCount))
			w.Handled()
			w.ack(ctx, d.ID)
			return
		case permanent(err):
			logger.Warn("Report is not exportable", zap.Error(err))
			w.Dropped()
			w.ack(ctx, d.ID)
			return
		case attempt >= w.maxRetries:
			logger.Error("Giving up on report export", zap.Int("attempts", attempt), zap.Error(err))
			w.Dropped()
			w.ack(ctx, d.ID)
			return
		}

		logger.Warn("Report export failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-time.After(w.retryDelay * time.Duration(attempt)):
		case <-ctx.Done():
			return
		}
	}
}

func (w *ReportExportWorker) ack(ctx context.Context, id string) {
	if err := w.events.Ack(ctx, w.group, id); err != nil {
		w.Logger().Error("Failed to ack report event", zap.String("entry_id", id), zap.Error(err))
	}
}

// permanent - отсутствующий отчет или черновик не станут экспортируемыми при повторе
func permanent(err error) bool {
	return errors.Is(err, errors.ErrReportNotFound) || errors.Is(err, errors.ErrExportNotFound)
}
