package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Lifecycle - остановка и счетчики, общие для воркеров. Встраивается в конкретный воркер.
type Lifecycle struct {
	name    string
	logger  *zap.Logger
	once    sync.Once
	done    chan struct{}
	handled atomic.Int64
	dropped atomic.Int64
}

// NewLifecycle создает Lifecycle воркера name
func NewLifecycle(name string, logger *zap.Logger) *Lifecycle {
	return &Lifecycle{
		name:   name,
		logger: logger.With(zap.String("worker", name)),
		done:   make(chan struct{}),
	}
}

// Name возвращает имя воркера
func (l *Lifecycle) Name() string {
	return l.name
}

// Logger возвращает логгер с именем воркера
func (l *Lifecycle) Logger() *zap.Logger {
	return l.logger
}

// Stop закрывает канал остановки
func (l *Lifecycle) Stop() {
	l.once.Do(func() {
		l.logger.Info("Stopping worker")
		close(l.done)
	})
}

// Stopped закрывается после Stop
func (l *Lifecycle) Stopped() <-chan struct{} {
	return l.done
}

// Bind возвращает контекст, отменяемый при Stop или отмене parent
func (l *Lifecycle) Bind(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-l.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Handled учитывает успешно обработанное событие
func (l *Lifecycle) Handled() {
	l.handled.Add(1)
}

// Dropped учитывает событие, подтвержденное без обработки
func (l *Lifecycle) Dropped() {
	l.dropped.Add(1)
}

// Stats возвращает текущие счетчики
func (l *Lifecycle) Stats() Stats {
	return Stats{Handled: l.handled.Load(), Dropped: l.dropped.Load()}
}
