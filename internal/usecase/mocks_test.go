package usecase_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/hindrance-reporter/internal/domain"
)

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) GetHindranceTypes(ctx context.Context) ([]*domain.HindranceType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.HindranceType), args.Error(1)
}

func (m *MockCacheRepository) SetHindranceTypes(ctx context.Context, types []*domain.HindranceType, ttl time.Duration) error {
	args := m.Called(ctx, types, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) GetReportExport(ctx context.Context, reportID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) SetReportExport(ctx context.Context, reportID uuid.UUID, data []byte, ttl time.Duration) error {
	args := m.Called(ctx, reportID, data, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) DeleteReportExport(ctx context.Context, reportID uuid.UUID) error {
	args := m.Called(ctx, reportID)
	return args.Error(0)
}

// MockEventPublisher is a mock of ReportEventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishSubmitted(ctx context.Context, event domain.ReportSubmittedEvent) (string, error) {
	args := m.Called(ctx, event)
	return args.String(0), args.Error(1)
}

// MockTypeRepository is a mock of HindranceTypeRepository
type MockTypeRepository struct {
	mock.Mock
}

func (m *MockTypeRepository) GetAll(ctx context.Context) ([]*domain.HindranceType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.HindranceType), args.Error(1)
}

func (m *MockTypeRepository) Seed(ctx context.Context, types []*domain.HindranceType) error {
	args := m.Called(ctx, types)
	return args.Error(0)
}
