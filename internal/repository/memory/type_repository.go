package memory

import (
	"context"
	"sort"

	"github.com/hindrance-reporter/internal/domain"
	"github.com/hindrance-reporter/internal/domain/repository"
)

type typeRepository struct {
	store *Store
}

// NewHindranceTypeRepository создает каталог типов в памяти
func NewHindranceTypeRepository(store *Store) repository.HindranceTypeRepository {
	return &typeRepository{store: store}
}

func (r *typeRepository) GetAll(ctx context.Context) ([]*domain.HindranceType, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.HindranceType, 0, len(s.types))
	for _, t := range s.types {
		cp := *t
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *typeRepository) Seed(ctx context.Context, types []*domain.HindranceType) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]bool, len(s.types))
	for _, t := range s.types {
		existing[t.Name] = true
	}

	for _, t := range types {
		if existing[t.Name] {
			continue
		}
		cp := *t
		cp.ID = s.nextTypeID
		s.nextTypeID++
		s.types = append(s.types, &cp)
		existing[t.Name] = true
	}
	return nil
}
