package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrNoWorkers - менеджер запущен без воркеров
var ErrNoWorkers = errors.New("no workers registered")

// Manager запускает воркеры в отдельных горутинах и останавливает их вместе
type Manager struct {
	logger  *zap.Logger
	mu      sync.Mutex
	workers []Worker
	running sync.WaitGroup
}

// NewManager создает новый Manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// Register добавляет воркер. Воркеры, добавленные после Start, не запускаются.
func (m *Manager) Register(w Worker) {
	m.mu.Lock()
	m.workers = append(m.workers, w)
	m.mu.Unlock()
}

func (m *Manager) registered() []Worker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Worker(nil), m.workers...)
}

// Start запускает воркеры и сразу возвращается. Ошибка Run логируется,
// остальные воркеры продолжают работать.
func (m *Manager) Start(ctx context.Context) error {
	workers := m.registered()
	if len(workers) == 0 {
		return ErrNoWorkers
	}

	for _, w := range workers {
		m.running.Add(1)
		go func(w Worker) {
			defer m.running.Done()
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				m.logger.Error("Worker exited with error", zap.String("worker", w.Name()), zap.Error(err))
			}
		}(w)
	}

	m.logger.Info("Workers started", zap.Int("count", len(workers)))
	return nil
}

// Stop останавливает воркеры и ждет их завершения не дольше ctx.
// Незавершенные события остаются в PEL и будут выданы повторно.
func (m *Manager) Stop(ctx context.Context) error {
	workers := m.registered()
	for _, w := range workers {
		w.Stop()
	}

	finished := make(chan struct{})
	go func() {
		m.running.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		m.logger.Warn("Workers did not stop in time")
		return ctx.Err()
	}

	for _, w := range workers {
		fields := []zap.Field{zap.String("worker", w.Name())}
		if r, ok := w.(Reporter); ok {
			st := r.Stats()
			fields = append(fields, zap.Int64("handled", st.Handled), zap.Int64("dropped", st.Dropped))
		}
		m.logger.Info("Worker stopped", fields...)
	}
	return nil
}
