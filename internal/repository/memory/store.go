// Package memory - хранилище в памяти процесса. Используется в режиме DB_DRIVER=memory
// (локальная разработка без PostgreSQL) и в тестах use case слоя.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hindrance-reporter/internal/domain"
)

// Store - общее состояние для репозиториев в памяти
type Store struct {
	mu sync.Mutex
	// txMu сериализует транзакции: одновременно выполняется не более одной
	txMu sync.Mutex

	reports     map[uuid.UUID]*domain.Report
	reportOrder []uuid.UUID
	objects     map[uuid.UUID]*domain.HindranceObject
	objectOrder []uuid.UUID
	types       []*domain.HindranceType

	nextPointID int64
	nextTypeID  int

	now func() time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		reports:     make(map[uuid.UUID]*domain.Report),
		objects:     make(map[uuid.UUID]*domain.HindranceObject),
		nextPointID: 1,
		nextTypeID:  1,
		now:         time.Now,
	}
}

// SetClock подменяет источник времени (для тестов)
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

type snapshot struct {
	reports     map[uuid.UUID]*domain.Report
	reportOrder []uuid.UUID
	objects     map[uuid.UUID]*domain.HindranceObject
	objectOrder []uuid.UUID
	nextPointID int64
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		reports:     make(map[uuid.UUID]*domain.Report, len(s.reports)),
		reportOrder: append([]uuid.UUID(nil), s.reportOrder...),
		objects:     make(map[uuid.UUID]*domain.HindranceObject, len(s.objects)),
		objectOrder: append([]uuid.UUID(nil), s.objectOrder...),
		nextPointID: s.nextPointID,
	}
	for id, r := range s.reports {
		snap.reports[id] = cloneReport(r)
	}
	for id, o := range s.objects {
		snap.objects[id] = cloneObject(o)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = snap.reports
	s.reportOrder = snap.reportOrder
	s.objects = snap.objects
	s.objectOrder = snap.objectOrder
	s.nextPointID = snap.nextPointID
}

func cloneReport(r *domain.Report) *domain.Report {
	cp := *r
	if r.SubmittedAt != nil {
		t := *r.SubmittedAt
		cp.SubmittedAt = &t
	}
	cp.Objects = nil
	return &cp
}

func cloneObject(o *domain.HindranceObject) *domain.HindranceObject {
	cp := *o
	if o.Feedback != nil {
		f := *o.Feedback
		cp.Feedback = &f
	}
	cp.Points = append([]domain.HindrancePoint(nil), o.Points...)
	return &cp
}
