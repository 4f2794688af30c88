package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/hindrance-reporter/internal/domain"
	"github.com/hindrance-reporter/internal/domain/repository"
	"github.com/hindrance-reporter/internal/pkg/errors"
)

type reportRepository struct {
	store *Store
	inTx  bool
}

// NewReportRepository создает репозиторий отчетов поверх Store
func NewReportRepository(store *Store) repository.ReportRepository {
	return &reportRepository{store: store}
}

func (r *reportRepository) Transaction(ctx context.Context, fn func(repo repository.ReportRepository) error) error {
	if r.inTx {
		return fn(r)
	}

	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()

	snap := r.store.snapshot()
	err := fn(&reportRepository{store: r.store, inTx: true})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

func (r *reportRepository) CreateDraft(ctx context.Context, userID string) (*domain.Report, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	report := domain.NewDraftReport(userID, s.now())
	s.reports[report.ID] = cloneReport(report)
	s.reportOrder = append(s.reportOrder, report.ID)
	return report, nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.reports[id]
	if !ok {
		return nil, errors.ErrReportNotFound
	}
	return cloneReport(report), nil
}

// GetByIDForUpdate - блокировку обеспечивает txMu в Transaction
func (r *reportRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	return r.GetByID(ctx, id)
}

func (r *reportRepository) GetLatestDraft(ctx context.Context, userID string) (*domain.Report, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.reportOrder) - 1; i >= 0; i-- {
		report := s.reports[s.reportOrder[i]]
		if report.UserID == userID && report.IsDraft() {
			return cloneReport(report), nil
		}
	}
	return nil, nil
}

func (r *reportRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Report, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.Report, 0)
	for i := len(s.reportOrder) - 1; i >= 0; i-- {
		report := s.reports[s.reportOrder[i]]
		if report.UserID == userID {
			result = append(result, cloneReport(report))
		}
	}
	return result, nil
}

func (r *reportRepository) ListByStatus(ctx context.Context, status domain.ReviewStatus) ([]*domain.Report, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.Report, 0)
	for _, id := range s.reportOrder {
		report := s.reports[id]
		if report.Status == status {
			result = append(result, cloneReport(report))
		}
	}
	return result, nil
}

func (r *reportRepository) Update(ctx context.Context, report *domain.Report) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.reports[report.ID]
	if !ok {
		return errors.ErrReportNotFound
	}
	existing.Title = report.Title
	existing.Description = report.Description
	existing.Status = report.Status
	existing.SubmittedAt = report.SubmittedAt
	existing.UpdatedAt = s.now()
	report.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *reportRepository) ListObjects(ctx context.Context, reportID uuid.UUID) ([]*domain.HindranceObject, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.HindranceObject, 0)
	for _, id := range s.objectOrder {
		obj := s.objects[id]
		if obj.ReportID == reportID {
			result = append(result, sortedCopy(obj))
		}
	}
	return result, nil
}

func (r *reportRepository) GetObject(ctx context.Context, id uuid.UUID) (*domain.HindranceObject, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[id]
	if !ok {
		return nil, errors.ErrObjectNotFound
	}
	return sortedCopy(obj), nil
}

func (r *reportRepository) CreateObject(ctx context.Context, obj *domain.HindranceObject) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[obj.ReportID]; !ok {
		return errors.ErrReportNotFound
	}
	if obj.ID == uuid.Nil {
		obj.ID = uuid.New()
	}
	now := s.now()
	obj.CreatedAt, obj.UpdatedAt = now, now
	for i := range obj.Points {
		obj.Points[i].ID = s.nextPointID
		obj.Points[i].ObjectID = obj.ID
		s.nextPointID++
	}

	s.objects[obj.ID] = cloneObject(obj)
	s.objectOrder = append(s.objectOrder, obj.ID)
	return nil
}

func (r *reportRepository) UpdateObject(ctx context.Context, obj *domain.HindranceObject) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.objects[obj.ID]
	if !ok {
		return errors.ErrObjectNotFound
	}
	existing.TypeID = obj.TypeID
	existing.GeometryType = obj.GeometryType
	existing.Title = obj.Title
	existing.Description = obj.Description
	existing.Status = obj.Status
	existing.Feedback = obj.Feedback
	existing.UpdatedAt = s.now()
	obj.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *reportRepository) AddPoints(ctx context.Context, objectID uuid.UUID, points []domain.HindrancePoint) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[objectID]
	if !ok {
		return errors.ErrObjectNotFound
	}
	for _, p := range points {
		p.ID = s.nextPointID
		p.ObjectID = objectID
		s.nextPointID++
		obj.Points = append(obj.Points, p)
	}
	return nil
}

func (r *reportRepository) ReplacePoints(ctx context.Context, objectID uuid.UUID, points []domain.HindrancePoint) error {
	s := r.store
	s.mu.Lock()
	obj, ok := s.objects[objectID]
	if ok {
		obj.Points = nil
	}
	s.mu.Unlock()

	if !ok {
		return errors.ErrObjectNotFound
	}
	return r.AddPoints(ctx, objectID, points)
}

func (r *reportRepository) DeleteObject(ctx context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[id]; !ok {
		return errors.ErrObjectNotFound
	}
	delete(s.objects, id)
	for i, oid := range s.objectOrder {
		if oid == id {
			s.objectOrder = append(s.objectOrder[:i], s.objectOrder[i+1:]...)
			break
		}
	}
	return nil
}

func sortedCopy(obj *domain.HindranceObject) *domain.HindranceObject {
	cp := cloneObject(obj)
	sort.SliceStable(cp.Points, func(i, j int) bool {
		return cp.Points[i].Order < cp.Points[j].Order
	})
	return cp
}
