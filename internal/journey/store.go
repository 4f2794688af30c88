// Package journey - клиентская часть: сохраняемое на устройстве состояние сессии,
// размещение объектов и синхронизация с сервером.
package journey

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hindrance-reporter/internal/domain"
)

// MetaPatch - частичное изменение метаданных сессии (nil - поле не меняется)
type MetaPatch struct {
	Title       *string
	Description *string
}

func (p MetaPatch) apply(j *domain.Journey) {
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.Description != nil {
		j.Description = *p.Description
	}
}

// ObjectPatch - частичное изменение объекта
type ObjectPatch struct {
	Title       *string
	Description *string
	Deleted     *bool
	TypeID      *int
}

func (p ObjectPatch) apply(obj *domain.PlacedObject) {
	if p.Title != nil {
		obj.Title = *p.Title
	}
	if p.Description != nil {
		obj.Description = *p.Description
	}
	if p.Deleted != nil {
		obj.Deleted = *p.Deleted
	}
	if p.TypeID != nil {
		id := *p.TypeID
		obj.TypeID = &id
	}
	obj.Revision++
}

// Store - состояние клиента. Каждое изменение сохраняется в Storage до того,
// как становится видимым; при ошибке сохранения состояние не меняется.
type Store struct {
	mu      sync.Mutex
	storage Storage
	state   *State
	now     func() time.Time
}

// Open загружает состояние из storage или начинает с пустого
func Open(storage Storage) (*Store, error) {
	state, err := storage.Load()
	if errors.Is(err, ErrNoState) {
		state = NewState()
	} else if err != nil {
		return nil, fmt.Errorf("load journey state: %w", err)
	}

	return &Store{
		storage: storage,
		state:   state,
		now:     time.Now,
	}, nil
}

// SetClock подменяет источник времени (для тестов)
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now()
}

// Snapshot - копия текущего состояния
func (s *Store) Snapshot() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// mutate применяет fn к копии состояния, сохраняет ее и только потом подменяет текущее
func (s *Store) mutate(fn func(st *State, now time.Time) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(next, s.now()); err != nil {
		return err
	}
	if err := s.storage.Save(next); err != nil {
		return fmt.Errorf("save journey state: %w", err)
	}
	s.state = next
	return nil
}

// StartJourney начинает новую сессию
func (s *Store) StartJourney() (*domain.Journey, error) {
	var started *domain.Journey
	err := s.mutate(func(st *State, now time.Time) error {
		if st.CurrentJourney != nil {
			return ErrJourneyActive
		}
		if st.FinishedJourney != nil {
			return ErrFinishedPending
		}
		st.CurrentJourney = &domain.Journey{
			ID:        uuid.New(),
			StartTime: now,
			Objects:   []domain.PlacedObject{},
		}
		st.resetPlacement()
		started = st.CurrentJourney.Clone()
		return nil
	})
	return started, err
}

// EndJourney завершает сессию и оставляет ее на экране подтверждения.
// Недоставленный объект отбрасывается.
func (s *Store) EndJourney() error {
	return s.mutate(func(st *State, now time.Time) error {
		if st.CurrentJourney == nil {
			return ErrNoActiveJourney
		}
		j := st.CurrentJourney
		j.EndTime = &now
		st.FinishedJourney = j
		st.CurrentJourney = nil
		st.resetPlacement()
		return nil
	})
}

// UndoEndJourney возвращает завершенную сессию в работу. Без завершенной сессии ничего не делает.
func (s *Store) UndoEndJourney() error {
	return s.mutate(func(st *State, now time.Time) error {
		if st.FinishedJourney == nil || st.CurrentJourney != nil {
			return nil
		}
		j := st.FinishedJourney
		j.EndTime = nil
		st.CurrentJourney = j
		st.FinishedJourney = nil
		return nil
	})
}

// UpdateJourneyMeta меняет заголовок/описание идущей сессии
func (s *Store) UpdateJourneyMeta(patch MetaPatch) error {
	return s.mutate(func(st *State, now time.Time) error {
		if st.CurrentJourney == nil {
			return ErrNoActiveJourney
		}
		patch.apply(st.CurrentJourney)
		return nil
	})
}

// UpdateFinishedJourneyMeta меняет заголовок/описание завершенной сессии
func (s *Store) UpdateFinishedJourneyMeta(patch MetaPatch) error {
	return s.mutate(func(st *State, now time.Time) error {
		if st.FinishedJourney == nil {
			return ErrNoFinishedJourney
		}
		patch.apply(st.FinishedJourney)
		return nil
	})
}

// UpdateObjectInFinishedJourney меняет объект завершенной сессии. Неизвестный id игнорируется.
func (s *Store) UpdateObjectInFinishedJourney(objectID uuid.UUID, patch ObjectPatch) error {
	return s.mutate(func(st *State, now time.Time) error {
		if st.FinishedJourney == nil {
			return ErrNoFinishedJourney
		}
		if obj := st.FinishedJourney.FindObject(objectID); obj != nil {
			patch.apply(obj)
		}
		return nil
	})
}

// UpdateObject меняет объект идущей сессии
func (s *Store) UpdateObject(objectID uuid.UUID, patch ObjectPatch) error {
	return s.mutate(func(st *State, now time.Time) error {
		if st.CurrentJourney == nil {
			return ErrNoActiveJourney
		}
		obj := st.CurrentJourney.FindObject(objectID)
		if obj == nil {
			return ErrObjectNotFound
		}
		patch.apply(obj)
		return nil
	})
}

// DeleteStore сбрасывает все сохраненное состояние
func (s *Store) DeleteStore() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Clear(); err != nil {
		return fmt.Errorf("clear journey state: %w", err)
	}
	s.state = NewState()
	return nil
}

// PendingObjects - объекты рабочей сессии, которые нужно отправить, и id ее черновика на сервере
func (s *Store) PendingObjects() (*uuid.UUID, []domain.PlacedObject) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j := s.state.working()
	if j == nil {
		return nil, nil
	}

	var pending []domain.PlacedObject
	for _, obj := range j.Objects {
		if !obj.Deleted && obj.PendingSync() {
			pending = append(pending, obj.Clone())
		}
	}
	return j.Clone().ServerID, pending
}

// recordSync привязывает серверные id после успешной синхронизации ревизии revision.
// Если объект успели изменить, он остается в очереди.
func (s *Store) recordSync(objectID uuid.UUID, revision int, result domain.SyncResult) error {
	return s.mutate(func(st *State, now time.Time) error {
		j := st.working()
		if j == nil {
			return ErrNoActiveJourney
		}
		obj := j.FindObject(objectID)
		if obj == nil {
			// Хранилище сбросили, пока шел запрос
			return ErrObjectNotFound
		}

		if j.ServerID == nil {
			journeyID := result.JourneyID
			j.ServerID = &journeyID
		}
		serverID := result.ObjectID
		obj.ServerID = &serverID
		if revision > obj.SyncedRevision {
			obj.SyncedRevision = revision
		}
		return nil
	})
}

// clearFinished удаляет отправленную сессию
func (s *Store) clearFinished(journeyID uuid.UUID) error {
	return s.mutate(func(st *State, now time.Time) error {
		if st.FinishedJourney != nil && st.FinishedJourney.ID == journeyID {
			st.FinishedJourney = nil
		}
		return nil
	})
}
