package journey

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/domain"
)

// SyncClient - серверное API синхронизации
type SyncClient interface {
	SyncObject(ctx context.Context, journeyID *uuid.UUID, obj domain.PlacedObject) (*domain.SyncResult, error)
	FinalizeJourney(ctx context.Context, journeyID uuid.UUID, req domain.FinalizeRequest) (uuid.UUID, error)
}

// Syncer отправляет объекты на сервер. Повторов нет: неотправленный объект остается
// в очереди до следующего вызова SyncPending или Finalize.
type Syncer struct {
	store  *Store
	client SyncClient
	logger *zap.Logger

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewSyncer(store *Store, client SyncClient, logger *zap.Logger) *Syncer {
	return &Syncer{
		store:    store,
		client:   client,
		logger:   logger,
		inFlight: make(map[uuid.UUID]struct{}),
	}
}

func (s *Syncer) acquire(objectID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[objectID]; busy {
		return false
	}
	s.inFlight[objectID] = struct{}{}
	return true
}

func (s *Syncer) release(objectID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, objectID)
}

// SyncObject отправляет один объект рабочей сессии.
// Пока предыдущая отправка того же объекта не завершилась, возвращает ErrSyncInProgress.
func (s *Syncer) SyncObject(ctx context.Context, objectID uuid.UUID) (*domain.SyncResult, error) {
	if !s.acquire(objectID) {
		return nil, ErrSyncInProgress
	}
	defer s.release(objectID)

	snapshot := s.store.Snapshot()
	j := snapshot.working()
	if j == nil {
		return nil, ErrNoActiveJourney
	}
	obj := j.FindObject(objectID)
	if obj == nil {
		return nil, ErrObjectNotFound
	}

	result, err := s.client.SyncObject(ctx, j.ServerID, *obj)
	if err != nil {
		s.logger.Warn("Object sync failed, left pending",
			zap.String("object_id", obj.ID.String()),
			zap.Error(err))
		return nil, err
	}

	if err := s.store.recordSync(obj.ID, obj.Revision, *result); err != nil {
		return nil, err
	}

	s.logger.Debug("Object synced",
		zap.String("object_id", obj.ID.String()),
		zap.String("server_id", result.ObjectID.String()),
		zap.String("journey_id", result.JourneyID.String()))

	return result, nil
}

// SyncPending отправляет все неотправленные объекты. Пока у сессии нет черновика на сервере,
// первый объект уходит один, остальные параллельно.
func (s *Syncer) SyncPending(ctx context.Context) (int, error) {
	journeyID, pending := s.store.PendingObjects()
	if len(pending) == 0 {
		return 0, nil
	}

	synced := 0
	var errs []error

	if journeyID == nil {
		first := pending[0]
		pending = pending[1:]
		if _, err := s.SyncObject(ctx, first.ID); err != nil {
			// Без черновика остальные создали бы по своему отчету
			return 0, fmt.Errorf("sync object %s: %w", first.ID, err)
		}
		synced++
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, obj := range pending {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := s.SyncObject(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("sync object %s: %w", id, err))
				return
			}
			synced++
		}(obj.ID)
	}
	wg.Wait()

	return synced, errors.Join(errs...)
}

// Finalize отправляет завершенную сессию целиком и после успеха удаляет ее с устройства.
// Возвращает id отправленного отчета.
func (s *Syncer) Finalize(ctx context.Context) (uuid.UUID, error) {
	finished := s.store.Snapshot().FinishedJourney
	if finished == nil {
		return uuid.Nil, ErrNoFinishedJourney
	}

	_, syncErr := s.SyncPending(ctx)
	if syncErr != nil {
		s.logger.Warn("Some objects were not synced before finalize",
			zap.String("journey_id", finished.ID.String()),
			zap.Error(syncErr))
	}

	// Берем состояние заново: SyncPending проставил серверные id
	finished = s.store.Snapshot().FinishedJourney
	if finished == nil {
		return uuid.Nil, ErrNoFinishedJourney
	}
	if finished.ServerID == nil {
		// Черновик не создан из-за ошибки отправки: сессия остается в очереди
		if syncErr != nil {
			return uuid.Nil, fmt.Errorf("%w: %w", ErrNothingToSubmit, syncErr)
		}
		return uuid.Nil, ErrNothingToSubmit
	}

	req := domain.FinalizeRequest{
		Journey: domain.JourneyMeta{
			ID:          *finished.ServerID,
			Title:       finished.Title,
			Description: finished.Description,
		},
		Objects: finished.Objects,
	}

	reportID, err := s.client.FinalizeJourney(ctx, *finished.ServerID, req)
	if err != nil {
		s.logger.Error("Finalize failed",
			zap.String("journey_id", finished.ServerID.String()),
			zap.Error(err))
		return uuid.Nil, err
	}

	if err := s.store.clearFinished(finished.ID); err != nil {
		return reportID, err
	}

	s.logger.Info("Journey submitted",
		zap.String("journey_id", finished.ID.String()),
		zap.String("report_id", reportID.String()),
		zap.Int("objects", len(finished.Objects)))

	return reportID, nil
}
