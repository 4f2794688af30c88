package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hindrance-reporter/internal/domain"
	"github.com/hindrance-reporter/internal/domain/repository"
	"github.com/hindrance-reporter/internal/pkg/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const reportColumns = `id, user_id, title, description, status, created_at, updated_at, submitted_at`

const objectColumns = `id, report_id, type_id, geometry_type, title, description, status, feedback, created_at, updated_at`

const pointColumns = `id, object_id, lat, lng, elevation, label, point_order, created_at`

type reportRepository struct {
	db     *DB
	q      sqlx.ExtContext
	logger *zap.Logger
}

// NewReportRepository создает репозиторий отчетов
func NewReportRepository(db *DB) repository.ReportRepository {
	return &reportRepository{
		db:     db,
		q:      db.DB,
		logger: db.logger,
	}
}

func (r *reportRepository) Transaction(ctx context.Context, fn func(repo repository.ReportRepository) error) error {
	if _, inTx := r.q.(*sqlx.Tx); inTx {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&reportRepository{db: r.db, q: tx, logger: r.logger}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !stderrors.Is(rbErr, sql.ErrTxDone) {
			r.logger.Error("Failed to rollback transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *reportRepository) CreateDraft(ctx context.Context, userID string) (*domain.Report, error) {
	query := `
		INSERT INTO reports (id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING ` + reportColumns

	var report domain.Report
	if err := sqlx.GetContext(ctx, r.q, &report, query, uuid.New(), userID, domain.ReviewDraft); err != nil {
		r.logger.Error("Failed to create draft report", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("create draft: %w", err)
	}
	return &report, nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	return r.getReport(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
}

func (r *reportRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	return r.getReport(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1 FOR UPDATE`, id)
}

func (r *reportRepository) getReport(ctx context.Context, query string, id uuid.UUID) (*domain.Report, error) {
	var report domain.Report
	err := sqlx.GetContext(ctx, r.q, &report, query, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrReportNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get report", zap.String("report_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("get report: %w", err)
	}
	return &report, nil
}

func (r *reportRepository) GetLatestDraft(ctx context.Context, userID string) (*domain.Report, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE`

	var report domain.Report
	err := sqlx.GetContext(ctx, r.q, &report, query, userID, domain.ReviewDraft)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get latest draft", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("get latest draft: %w", err)
	}
	return &report, nil
}

func (r *reportRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE user_id = $1 ORDER BY created_at DESC`

	reports := make([]*domain.Report, 0)
	if err := sqlx.SelectContext(ctx, r.q, &reports, query, userID); err != nil {
		r.logger.Error("Failed to list reports by user", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("list reports by user: %w", err)
	}
	return reports, nil
}

func (r *reportRepository) ListByStatus(ctx context.Context, status domain.ReviewStatus) ([]*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE status = $1 ORDER BY created_at`

	reports := make([]*domain.Report, 0)
	if err := sqlx.SelectContext(ctx, r.q, &reports, query, status); err != nil {
		r.logger.Error("Failed to list reports by status", zap.String("status", string(status)), zap.Error(err))
		return nil, fmt.Errorf("list reports by status: %w", err)
	}
	return reports, nil
}

func (r *reportRepository) Update(ctx context.Context, report *domain.Report) error {
	query := `
		UPDATE reports
		SET title = $2, description = $3, status = $4, submitted_at = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.q.QueryRowxContext(ctx, query,
		report.ID, report.Title, report.Description, report.Status, report.SubmittedAt,
	).Scan(&report.UpdatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.ErrReportNotFound
	}
	if err != nil {
		r.logger.Error("Failed to update report", zap.String("report_id", report.ID.String()), zap.Error(err))
		return fmt.Errorf("update report: %w", err)
	}
	return nil
}

func (r *reportRepository) ListObjects(ctx context.Context, reportID uuid.UUID) ([]*domain.HindranceObject, error) {
	query := `SELECT ` + objectColumns + ` FROM hindrance_objects WHERE report_id = $1 ORDER BY created_at, id`

	objects := make([]*domain.HindranceObject, 0)
	if err := sqlx.SelectContext(ctx, r.q, &objects, query, reportID); err != nil {
		r.logger.Error("Failed to list objects", zap.String("report_id", reportID.String()), zap.Error(err))
		return nil, fmt.Errorf("list objects: %w", err)
	}
	if len(objects) == 0 {
		return objects, nil
	}

	if err := r.loadPoints(ctx, objects); err != nil {
		return nil, err
	}
	return objects, nil
}

// loadPoints загружает точки для набора объектов одним запросом
func (r *reportRepository) loadPoints(ctx context.Context, objects []*domain.HindranceObject) error {
	ids := make([]string, 0, len(objects))
	byID := make(map[uuid.UUID]*domain.HindranceObject, len(objects))
	for _, obj := range objects {
		ids = append(ids, obj.ID.String())
		byID[obj.ID] = obj
		obj.Points = make([]domain.HindrancePoint, 0)
	}

	query := `
		SELECT ` + pointColumns + `
		FROM hindrance_points
		WHERE object_id = ANY($1::uuid[])
		ORDER BY object_id, point_order`

	var points []domain.HindrancePoint
	if err := sqlx.SelectContext(ctx, r.q, &points, query, pq.Array(ids)); err != nil {
		r.logger.Error("Failed to load points", zap.Int("objects", len(objects)), zap.Error(err))
		return fmt.Errorf("load points: %w", err)
	}

	for _, p := range points {
		if obj, ok := byID[p.ObjectID]; ok {
			obj.Points = append(obj.Points, p)
		}
	}
	return nil
}

func (r *reportRepository) GetObject(ctx context.Context, id uuid.UUID) (*domain.HindranceObject, error) {
	query := `SELECT ` + objectColumns + ` FROM hindrance_objects WHERE id = $1`

	var obj domain.HindranceObject
	err := sqlx.GetContext(ctx, r.q, &obj, query, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrObjectNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get object", zap.String("object_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("get object: %w", err)
	}

	if err := r.loadPoints(ctx, []*domain.HindranceObject{&obj}); err != nil {
		return nil, err
	}
	return &obj, nil
}

func (r *reportRepository) CreateObject(ctx context.Context, obj *domain.HindranceObject) error {
	if obj.ID == uuid.Nil {
		obj.ID = uuid.New()
	}

	query := `
		INSERT INTO hindrance_objects (id, report_id, type_id, geometry_type, title, description, status, feedback)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.q.QueryRowxContext(ctx, query,
		obj.ID, obj.ReportID, obj.TypeID, obj.GeometryType,
		obj.Title, obj.Description, obj.Status, obj.Feedback,
	).Scan(&obj.CreatedAt, &obj.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create object",
			zap.String("report_id", obj.ReportID.String()),
			zap.Error(err))
		return fmt.Errorf("create object: %w", err)
	}

	return r.insertPoints(ctx, obj.ID, obj.Points)
}

func (r *reportRepository) UpdateObject(ctx context.Context, obj *domain.HindranceObject) error {
	query := `
		UPDATE hindrance_objects
		SET type_id = $2, geometry_type = $3, title = $4, description = $5,
		    status = $6, feedback = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.q.QueryRowxContext(ctx, query,
		obj.ID, obj.TypeID, obj.GeometryType, obj.Title, obj.Description, obj.Status, obj.Feedback,
	).Scan(&obj.UpdatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.ErrObjectNotFound
	}
	if err != nil {
		r.logger.Error("Failed to update object", zap.String("object_id", obj.ID.String()), zap.Error(err))
		return fmt.Errorf("update object: %w", err)
	}
	return nil
}

func (r *reportRepository) AddPoints(ctx context.Context, objectID uuid.UUID, points []domain.HindrancePoint) error {
	return r.insertPoints(ctx, objectID, points)
}

func (r *reportRepository) ReplacePoints(ctx context.Context, objectID uuid.UUID, points []domain.HindrancePoint) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM hindrance_points WHERE object_id = $1`, objectID); err != nil {
		r.logger.Error("Failed to delete points", zap.String("object_id", objectID.String()), zap.Error(err))
		return fmt.Errorf("delete points: %w", err)
	}
	return r.insertPoints(ctx, objectID, points)
}

// insertPoints вставляет все точки объекта одним запросом: колонки передаются массивами
// и разворачиваются через unnest. Нулевой CreatedAt заменяется временем базы.
func (r *reportRepository) insertPoints(ctx context.Context, objectID uuid.UUID, points []domain.HindrancePoint) error {
	if len(points) == 0 {
		return nil
	}

	var (
		lats       = make([]float64, len(points))
		lngs       = make([]float64, len(points))
		elevations = make([]sql.NullInt64, len(points))
		labels     = make([]sql.NullString, len(points))
		orders     = make([]int64, len(points))
		createdAt  = make([]sql.NullString, len(points))
	)
	for i, p := range points {
		lats[i], lngs[i], orders[i] = p.Lat, p.Lng, int64(p.Order)
		if p.Elevation != nil {
			elevations[i] = sql.NullInt64{Int64: int64(*p.Elevation), Valid: true}
		}
		if p.Label != nil {
			labels[i] = sql.NullString{String: *p.Label, Valid: true}
		}
		if !p.CreatedAt.IsZero() {
			createdAt[i] = sql.NullString{String: p.CreatedAt.UTC().Format(time.RFC3339Nano), Valid: true}
		}
	}

	query := `
		INSERT INTO hindrance_points (object_id, lat, lng, elevation, label, point_order, created_at)
		SELECT $1, t.lat, t.lng, t.elevation, t.label, t.point_order, COALESCE(t.created_at, NOW())
		FROM unnest($2::float8[], $3::float8[], $4::int[], $5::text[], $6::int[], $7::timestamptz[])
			AS t(lat, lng, elevation, label, point_order, created_at)
		RETURNING id, point_order`

	rows, err := r.q.QueryxContext(ctx, query, objectID,
		pq.Array(lats), pq.Array(lngs), pq.Array(elevations), pq.Array(labels), pq.Array(orders), pq.Array(createdAt))
	if err != nil {
		r.logger.Error("Failed to insert points",
			zap.String("object_id", objectID.String()),
			zap.Int("count", len(points)),
			zap.Error(err))
		return fmt.Errorf("insert points: %w", err)
	}
	defer rows.Close()

	// point_order уникален в пределах объекта, по нему id возвращаются на свои точки
	ids := make(map[int]int64, len(points))
	for rows.Next() {
		var (
			id    int64
			order int
		)
		if err := rows.Scan(&id, &order); err != nil {
			return fmt.Errorf("scan inserted point: %w", err)
		}
		ids[order] = id
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("insert points: %w", err)
	}

	for i := range points {
		points[i].ObjectID = objectID
		points[i].ID = ids[points[i].Order]
	}
	return nil
}

func (r *reportRepository) DeleteObject(ctx context.Context, id uuid.UUID) error {
	// Точки удаляются каскадно (ON DELETE CASCADE)
	res, err := r.q.ExecContext(ctx, `DELETE FROM hindrance_objects WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete object", zap.String("object_id", id.String()), zap.Error(err))
		return fmt.Errorf("delete object: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.ErrObjectNotFound
	}
	return nil
}
