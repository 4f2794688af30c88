package postgres

import (
	"context"
	"fmt"

	"github.com/hindrance-reporter/internal/domain"
	"github.com/hindrance-reporter/internal/domain/repository"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type typeRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewHindranceTypeRepository создает репозиторий каталога типов препятствий
func NewHindranceTypeRepository(db *DB) repository.HindranceTypeRepository {
	return &typeRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *typeRepository) GetAll(ctx context.Context) ([]*domain.HindranceType, error) {
	query := `
		SELECT id, name, geometry_type, color, primary_image_url, marker_image_url, is_standard
		FROM hindrance_types
		ORDER BY id`

	types := make([]*domain.HindranceType, 0)
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		r.logger.Error("Failed to get hindrance types", zap.Error(err))
		return nil, fmt.Errorf("get hindrance types: %w", err)
	}
	return types, nil
}

func (r *typeRepository) Seed(ctx context.Context, types []*domain.HindranceType) error {
	query := `
		INSERT INTO hindrance_types (name, geometry_type, color, primary_image_url, marker_image_url, is_standard)
		VALUES (:name, :geometry_type, :color, :primary_image_url, :marker_image_url, :is_standard)
		ON CONFLICT (name) DO NOTHING`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for _, t := range types {
		res, err := tx.NamedExecContext(ctx, query, t)
		if err != nil {
			r.logger.Error("Failed to seed hindrance type", zap.String("name", t.Name), zap.Error(err))
			return fmt.Errorf("seed hindrance type %q: %w", t.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}

	r.logger.Info("Hindrance types seeded",
		zap.Int("inserted", inserted),
		zap.Int("total", len(types)))
	return nil
}
