// Package testhelpers поднимает тестовую базу отчетов для интеграционных тестов.
package testhelpers

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/domain/repository"
	"github.com/hindrance-reporter/internal/repository/postgres"
)

// resetTables - данные сессий; каталог типов переживает Reset
var resetTables = []string{"hindrance_points", "hindrance_objects", "reports"}

// TestDB - соединение с тестовой базой
type TestDB struct {
	DB     *sqlx.DB
	Logger *zap.Logger
}

// SetupTestDB подключается к базе из TEST_DATABASE_URL (или TEST_DB_*).
// Если база недоступна, тест пропускается. Соединение закрывается в t.Cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	db, err := sqlx.Open("postgres", testDatabaseURL())
	if err == nil {
		err = db.PingContext(ctx)
	}
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		t.Skipf("Test database not available: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return &TestDB{DB: db, Logger: zap.NewNop()}
}

func testDatabaseURL() string {
	if raw := os.Getenv("TEST_DATABASE_URL"); raw != "" {
		return raw
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(env("TEST_DB_USER", "postgres"), env("TEST_DB_PASSWORD", "postgres")),
		Host:     env("TEST_DB_HOST", "localhost") + ":" + env("TEST_DB_PORT", "5433"),
		Path:     env("TEST_DB_NAME", "hindrance_test"),
		RawQuery: "sslmode=" + env("TEST_DB_SSLMODE", "disable"),
	}
	return u.String()
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Reports - репозиторий отчетов поверх тестовой базы
func (tdb *TestDB) Reports() repository.ReportRepository {
	return postgres.NewReportRepository(postgres.Wrap(tdb.DB, tdb.Logger))
}

// Types - репозиторий каталога типов поверх тестовой базы
func (tdb *TestDB) Types() repository.HindranceTypeRepository {
	return postgres.NewHindranceTypeRepository(postgres.Wrap(tdb.DB, tdb.Logger))
}

// Reset очищает отчеты, объекты и точки
func (tdb *TestDB) Reset(ctx context.Context) error {
	stmt := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(resetTables, ", "))
	if _, err := tdb.DB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("reset test tables: %w", err)
	}
	return nil
}
