package export_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/domain"
	apperrors "github.com/hindrance-reporter/internal/pkg/errors"
	"github.com/hindrance-reporter/internal/worker"
	"github.com/hindrance-reporter/internal/worker/export"
)

// MockEventConsumer is a mock of ReportEventConsumer
type MockEventConsumer struct {
	mock.Mock
}

func (m *MockEventConsumer) EnsureGroup(ctx context.Context, group string) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockEventConsumer) Deliveries(ctx context.Context, group, consumer string) (<-chan domain.EventDelivery, error) {
	args := m.Called(ctx, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.EventDelivery), args.Error(1)
}

func (m *MockEventConsumer) Ack(ctx context.Context, group string, ids ...string) error {
	args := m.Called(ctx, group, ids)
	return args.Error(0)
}

// MockExporter is a mock of ReportExporter
type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) Export(ctx context.Context, reportID uuid.UUID) error {
	args := m.Called(ctx, reportID)
	return args.Error(0)
}

const group = "hindrance-export"

func feed(deliveries ...domain.EventDelivery) <-chan domain.EventDelivery {
	ch := make(chan domain.EventDelivery, len(deliveries))
	for _, d := range deliveries {
		ch <- d
	}
	close(ch)
	return ch
}

func delivery(t *testing.T, id string, reportID uuid.UUID) domain.EventDelivery {
	t.Helper()
	payload, err := json.Marshal(domain.ReportSubmittedEvent{
		ReportID:    reportID,
		UserID:      "pilot-1",
		ObjectCount: 2,
		SubmittedAt: time.Now(),
	})
	require.NoError(t, err)
	return domain.EventDelivery{ID: id, Payload: payload}
}

func newWorker(events *MockEventConsumer, exporter *MockExporter, maxRetries int) *export.ReportExportWorker {
	w := export.NewReportExportWorker(events, exporter, group, maxRetries, zap.NewNop())
	w.SetRetryDelay(time.Millisecond)
	return w
}

func TestReportExportWorker_Identity(t *testing.T) {
	w := newWorker(&MockEventConsumer{}, &MockExporter{}, 3)
	assert.Equal(t, "report-export", w.Name())
	assert.Equal(t, group, w.Group())
}

func TestReportExportWorker_ExportsAndAcks(t *testing.T) {
	events := &MockEventConsumer{}
	exporter := &MockExporter{}
	reportID := uuid.New()

	events.On("EnsureGroup", mock.Anything, group).Return(nil)
	events.On("Deliveries", mock.Anything, group, mock.Anything).Return(feed(delivery(t, "1-0", reportID)), nil)
	events.On("Ack", mock.Anything, group, []string{"1-0"}).Return(nil).Once()
	exporter.On("Export", mock.Anything, reportID).Return(nil).Once()

	w := newWorker(events, exporter, 3)
	require.NoError(t, w.Run(context.Background()))

	events.AssertExpectations(t)
	exporter.AssertExpectations(t)
	assert.Equal(t, worker.Stats{Handled: 1}, w.Stats())
}

func TestReportExportWorker_RetriesThenDrops(t *testing.T) {
	events := &MockEventConsumer{}
	exporter := &MockExporter{}
	reportID := uuid.New()

	events.On("EnsureGroup", mock.Anything, mock.Anything).Return(nil)
	events.On("Deliveries", mock.Anything, mock.Anything, mock.Anything).Return(feed(delivery(t, "2-0", reportID)), nil)
	events.On("Ack", mock.Anything, mock.Anything, []string{"2-0"}).Return(nil).Once()
	exporter.On("Export", mock.Anything, reportID).Return(errors.New("redis timeout"))

	w := newWorker(events, exporter, 3)
	require.NoError(t, w.Run(context.Background()))

	exporter.AssertNumberOfCalls(t, "Export", 3)
	events.AssertExpectations(t)
	assert.Equal(t, worker.Stats{Dropped: 1}, w.Stats())
}

func TestReportExportWorker_RetrySucceeds(t *testing.T) {
	events := &MockEventConsumer{}
	exporter := &MockExporter{}
	reportID := uuid.New()

	events.On("EnsureGroup", mock.Anything, mock.Anything).Return(nil)
	events.On("Deliveries", mock.Anything, mock.Anything, mock.Anything).Return(feed(delivery(t, "3-0", reportID)), nil)
	events.On("Ack", mock.Anything, mock.Anything, []string{"3-0"}).Return(nil).Once()
	exporter.On("Export", mock.Anything, reportID).Return(errors.New("redis timeout")).Once()
	exporter.On("Export", mock.Anything, reportID).Return(nil).Once()

	require.NoError(t, newWorker(events, exporter, 3).Run(context.Background()))

	exporter.AssertNumberOfCalls(t, "Export", 2)
}

func TestReportExportWorker_SkipsUnprocessable(t *testing.T) {
	events := &MockEventConsumer{}
	exporter := &MockExporter{}
	missing := uuid.New()

	events.On("EnsureGroup", mock.Anything, mock.Anything).Return(nil)
	events.On("Deliveries", mock.Anything, mock.Anything, mock.Anything).Return(feed(
		domain.EventDelivery{ID: "4-0", Payload: []byte("not json")},
		domain.EventDelivery{ID: "5-0", Payload: []byte(`{"user_id":"pilot-1"}`)},
		delivery(t, "6-0", missing),
	), nil)
	events.On("Ack", mock.Anything, mock.Anything, []string{"4-0"}).Return(nil).Once()
	events.On("Ack", mock.Anything, mock.Anything, []string{"5-0"}).Return(nil).Once()
	events.On("Ack", mock.Anything, mock.Anything, []string{"6-0"}).Return(nil).Once()
	exporter.On("Export", mock.Anything, missing).Return(apperrors.ErrReportNotFound).Once()

	w := newWorker(events, exporter, 3)
	require.NoError(t, w.Run(context.Background()))

	events.AssertExpectations(t)
	exporter.AssertExpectations(t)
	assert.Equal(t, int64(3), w.Stats().Dropped)
}

func TestReportExportWorker_StopLeavesEventPending(t *testing.T) {
	events := &MockEventConsumer{}
	exporter := &MockExporter{}
	reportID := uuid.New()

	events.On("EnsureGroup", mock.Anything, mock.Anything).Return(nil)
	events.On("Deliveries", mock.Anything, mock.Anything, mock.Anything).Return(feed(delivery(t, "7-0", reportID)), nil)
	exporter.On("Export", mock.Anything, reportID).Return(errors.New("redis timeout"))

	w := export.NewReportExportWorker(events, exporter, group, 5, zap.NewNop())
	w.SetRetryDelay(time.Hour)
	w.Stop()

	require.NoError(t, w.Run(context.Background()))
	exporter.AssertNumberOfCalls(t, "Export", 1)
	events.AssertNotCalled(t, "Ack", mock.Anything, mock.Anything, mock.Anything)
}

func TestReportExportWorker_GroupError(t *testing.T) {
	events := &MockEventConsumer{}
	events.On("EnsureGroup", mock.Anything, mock.Anything).Return(errors.New("NOAUTH"))

	err := newWorker(events, &MockExporter{}, 3).Run(context.Background())
	assert.Error(t, err)
	events.AssertNotCalled(t, "Deliveries", mock.Anything, mock.Anything, mock.Anything)
}
