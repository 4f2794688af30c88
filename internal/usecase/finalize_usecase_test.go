package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hindrance-reporter/internal/domain"
	apperrors "github.com/hindrance-reporter/internal/pkg/errors"
	"github.com/hindrance-reporter/internal/usecase"
	"github.com/hindrance-reporter/internal/usecase/dto"
)

func TestFinalizeUseCase_EndToEnd(t *testing.T) {
	f := newFixture(t, usecase.PointUpdateMerge, domain.DefaultHindranceTypes())
	ctx := context.Background()

	var event domain.ReportSubmittedEvent
	f.events.On("PublishSubmitted", mock.Anything, mock.AnythingOfType("domain.ReportSubmittedEvent")).
		Run(func(args mock.Arguments) {
			event = args.Get(1).(domain.ReportSubmittedEvent)
		}).
		Return("1-0", nil).Once()

	obj := placed(domain.GeometryPoint, nil, pt(59.9, 10.7))
	synced, err := f.sync.SyncObject(ctx, pilotID, nil, obj)
	require.NoError(t, err)
	assert.NotEqual(t, obj.ID, synced.ObjectID)

	obj.ServerID = &synced.ObjectID
	obj.Title = "Mast set"
	reportID, err := f.finalize.Finalize(ctx, pilotID, synced.JourneyID, dto.FinalizeJourneyRequest{
		Journey: dto.JourneyMetaRequest{ID: uuid.New(), Title: "Morning flight", Description: "North ridge"},
		Objects: []dto.PlacedObjectRequest{obj},
	})
	require.NoError(t, err)
	assert.Equal(t, synced.JourneyID, reportID)

	report, err := f.reports.GetByID(ctx, reportID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewSubmitted, report.Status)
	assert.Equal(t, "Morning flight", report.Title)
	assert.Equal(t, "North ridge", report.Description)
	assert.NotNil(t, report.SubmittedAt)

	objects := f.objects(t, reportID)
	require.Len(t, objects, 1)
	assert.Equal(t, "Mast set", objects[0].Title)
	assert.Equal(t, standardPointID, objects[0].TypeID)
	assert.Equal(t, domain.ReviewDraft, objects[0].Status)

	assert.Equal(t, reportID, event.ReportID)
	assert.Equal(t, pilotID, event.UserID)
	assert.Equal(t, 1, event.ObjectCount)
	f.events.AssertExpectations(t)
}

func TestFinalizeUseCase_RoundTripPreservesOrder(t *testing.T) {
	f := newFixture(t, usecase.PointUpdateMerge, domain.DefaultHindranceTypes())
	f.events.On("PublishSubmitted", mock.Anything, mock.Anything).Return("1-0", nil)
	ctx := context.Background()

	obj := placed(domain.GeometryLine, nil, pt(60.0, 10.0), pt(61.0, 11.0))
	synced, err := f.sync.SyncObject(ctx, pilotID, nil, obj)
	require.NoError(t, err)

	stored, err := f.reports.GetObject(ctx, synced.ObjectID)
	require.NoError(t, err)
	assert.Equal(t, []domain.LatLng{{Lat: 60.0, Lng: 10.0}, {Lat: 61.0, Lng: 11.0}}, stored.LatLngs())

	obj.ServerID = &synced.ObjectID
	_, err = f.finalize.Finalize(ctx, pilotID, synced.JourneyID, dto.FinalizeJourneyRequest{Objects: []dto.PlacedObjectRequest{obj}})
	require.NoError(t, err)

	stored, err = f.reports.GetObject(ctx, synced.ObjectID)
	require.NoError(t, err)
	assert.Equal(t, []domain.LatLng{{Lat: 60.0, Lng: 10.0}, {Lat: 61.0, Lng: 11.0}}, stored.LatLngs())
}

func TestFinalizeUseCase_SecondFinalizeFails(t *testing.T) {
	f := newFixture(t, usecase.PointUpdateMerge, domain.DefaultHindranceTypes())
	f.events.On("PublishSubmitted", mock.Anything, mock.Anything).Return("1-0", nil).Once()
	ctx := context.Background()

	synced, err := f.sync.SyncObject(ctx, pilotID, nil, placed(domain.GeometryPoint, nil, pt(1, 1)))
	require.NoError(t, err)

	req := dto.FinalizeJourneyRequest{Objects: []dto.PlacedObjectRequest{placed(domain.GeometryPoint, nil, pt(2, 2))}}
	_, err = f.finalize.Finalize(ctx, pilotID, synced.JourneyID, req)
	require.NoError(t, err)
	require.Len(t, f.objects(t, synced.JourneyID), 2)

	_, err = f.finalize.Finalize(ctx, pilotID, synced.JourneyID, req)
	assert.True(t, apperrors.Is(err, apperrors.ErrReportNotDraft))
	assert.Len(t, f.objects(t, synced.JourneyID), 2)
	f.events.AssertNumberOfCalls(t, "PublishSubmitted", 1)
}

func TestFinalizeUseCase_KeepsObjectsMissingFromBatch(t *testing.T) {
	f := newFixture(t, usecase.PointUpdateMerge, domain.DefaultHindranceTypes())
	var event domain.ReportSubmittedEvent
	f.events.On("PublishSubmitted", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			event = args.Get(1).(domain.ReportSubmittedEvent)
		}).
		Return("1-0", nil).Once()
	ctx := context.Background()

	first, err := f.sync.SyncObject(ctx, pilotID, nil, placed(domain.GeometryPoint, nil, pt(1, 1)))
	require.NoError(t, err)
	_, err = f.sync.SyncObject(ctx, pilotID, &first.JourneyID, placed(domain.GeometryPoint, nil, pt(2, 2)))
	require.NoError(t, err)

	listed := placed(domain.GeometryPoint, nil, pt(1, 1))
	listed.ServerID = &first.ObjectID
	_, err = f.finalize.Finalize(ctx, pilotID, first.JourneyID, dto.FinalizeJourneyRequest{
		Objects: []dto.PlacedObjectRequest{listed},
	})
	require.NoError(t, err)

	assert.Len(t, f.objects(t, first.JourneyID), 2)
	assert.Equal(t, 2, event.ObjectCount)
}

func TestFinalizeUseCase_MergeNeverRemovesPoints(t *testing.T) {
	f := newFixture(t, usecase.PointUpdateMerge, domain.DefaultHindranceTypes())
	f.events.On("PublishSubmitted", mock.Anything, mock.Anything).Return("1-0", nil)
	ctx := context.Background()

	obj := placed(domain.GeometryArea, nil, pt(1, 1), pt(1, 2), pt(2, 2))
	synced, err := f.sync.SyncObject(ctx, pilotID, nil, obj)
	require.NoError(t, err)

	// Надмножество в другом порядке
	obj.ServerID = &synced.ObjectID
	obj.Points = []dto.PointRequest{pt(2, 2), pt(3, 3), pt(1, 1), pt(1, 2), pt(4, 4)}
	_, err = f.finalize.Finalize(ctx, pilotID, synced.JourneyID, dto.FinalizeJourneyRequest{Objects: []dto.PlacedObjectRequest{obj}})
	require.NoError(t, err)

	stored, err := f.reports.GetObject(ctx, synced.ObjectID)
	require.NoError(t, err)
	assert.Equal(t, []domain.LatLng{
		{Lat: 1, Lng: 1}, {Lat: 1, Lng: 2}, {Lat: 2, Lng: 2}, {Lat: 3, Lng: 3}, {Lat: 4, Lng: 4},
	}, stored.LatLngs())
}

func TestFinalizeUseCase_DeletedObjects(t *testing.T) {
	f := newFixture(t, usecase.PointUpdateMerge, domain.DefaultHindranceTypes())
	f.events.On("PublishSubmitted", mock.Anything, mock.Anything).Return("1-0", nil)
	ctx := context.Background()

	kept := placed(domain.GeometryPoint, nil, pt(1, 1))
	keptSync, err := f.sync.SyncObject(ctx, pilotID, nil, kept)
	require.NoError(t, err)
	removed := placed(domain.GeometryPoint, nil, pt(2, 2))
	removedSync, err := f.sync.SyncObject(ctx, pilotID, &keptSync.JourneyID, removed)
	require.NoError(t, err)

	kept.ServerID = &keptSync.ObjectID
	removed.ServerID = &removedSync.ObjectID
	removed.Deleted = true
	neverSynced := placed(domain.GeometryArea, nil, pt(5, 5))
	neverSynced.Deleted = true

	_, err = f.finalize.Finalize(ctx, pilotID, keptSync.JourneyID, dto.FinalizeJourneyRequest{
		Objects: []dto.PlacedObjectRequest{kept, removed, neverSynced},
	})
	require.NoError(t, err)

	objects := f.objects(t, keptSync.JourneyID)
	require.Len(t, objects, 1)
	assert.Equal(t, keptSync.ObjectID, objects[0].ID)

	_, err = f.reports.GetObject(ctx, removedSync.ObjectID)
	assert.True(t, apperrors.Is(err, apperrors.ErrObjectNotFound))
}

func TestFinalizeUseCase_ValidationCollectsAllObjects(t *testing.T) {
	f := newFixture(t, usecase.PointUpdateMerge, domain.DefaultHindranceTypes())
	ctx := context.Background()

	synced, err := f.sync.SyncObject(ctx, pilotID, nil, placed(domain.GeometryPoint, nil, pt(1, 1)))
	require.NoError(t, err)

	_, err = f.finalize.Finalize(ctx, pilotID, synced.JourneyID, dto.FinalizeJourneyRequest{
		Objects: []dto.PlacedObjectRequest{
			placed(domain.GeometryPoint, nil, pt(1, 1)),
			placed(domain.GeometryLine, nil, pt(1, 1)),
			placed(domain.GeometryArea, nil, pt(1, 1), pt(2, 2)),
		},
	})
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotEnoughPoints.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "objects[1].points")
	assert.Contains(t, appErr.Fields, "objects[2].points")
	assert.NotContains(t, appErr.Fields, "objects[0].points")

	report, err := f.reports.GetByID(ctx, synced.JourneyID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewDraft, report.Status)
}

func TestFinalizeUseCase_MissingDefaultTypeRollsBack(t *testing.T) {
	types := []*domain.HindranceType{
		{Name: domain.StandardTypeName(domain.GeometryPoint), GeometryType: domain.GeometryPoint, IsStandard: true},
	}
	f := newFixture(t, usecase.PointUpdateMerge, types)
	ctx := context.Background()

	synced, err := f.sync.SyncObject(ctx, pilotID, nil, placed(domain.GeometryPoint, nil, pt(1, 1)))
	require.NoError(t, err)

	_, err = f.finalize.Finalize(ctx, pilotID, synced.JourneyID, dto.FinalizeJourneyRequest{
		Objects: []dto.PlacedObjectRequest{
			placed(domain.GeometryPoint, nil, pt(3, 3)),
			placed(domain.GeometryArea, nil, pt(1, 1), pt(1, 2), pt(2, 2)),
		},
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrNoDefaultType))

	report, err := f.reports.GetByID(ctx, synced.JourneyID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewDraft, report.Status)
	assert.Len(t, f.objects(t, synced.JourneyID), 1)
	f.events.AssertNotCalled(t, "PublishSubmitted", mock.Anything, mock.Anything)
}

func TestFinalizeUseCase_AccessErrors(t *testing.T) {
	f := newFixture(t, usecase.PointUpdateMerge, domain.DefaultHindranceTypes())
	ctx := context.Background()

	synced, err := f.sync.SyncObject(ctx, pilotID, nil, placed(domain.GeometryPoint, nil, pt(1, 1)))
	require.NoError(t, err)

	_, err = f.finalize.Finalize(ctx, pilotID, uuid.New(), dto.FinalizeJourneyRequest{})
	assert.True(t, apperrors.Is(err, apperrors.ErrReportNotFound))

	_, err = f.finalize.Finalize(ctx, "pilot-2", synced.JourneyID, dto.FinalizeJourneyRequest{})
	assert.True(t, apperrors.Is(err, apperrors.ErrReportNotFound))
}

func TestFinalizeUseCase_PublishFailureKeepsSubmission(t *testing.T) {
	f := newFixture(t, usecase.PointUpdateMerge, domain.DefaultHindranceTypes())
	f.events.On("PublishSubmitted", mock.Anything, mock.Anything).Return("", errors.New("redis down"))
	ctx := context.Background()

	synced, err := f.sync.SyncObject(ctx, pilotID, nil, placed(domain.GeometryPoint, nil, pt(1, 1)))
	require.NoError(t, err)

	reportID, err := f.finalize.Finalize(ctx, pilotID, synced.JourneyID, dto.FinalizeJourneyRequest{})
	require.NoError(t, err)

	report, err := f.reports.GetByID(ctx, reportID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewSubmitted, report.Status)
}

func TestFinalizeUseCase_CancelledContextRollsBack(t *testing.T) {
	f := newFixture(t, usecase.PointUpdateMerge, domain.DefaultHindranceTypes())

	synced, err := f.sync.SyncObject(context.Background(), pilotID, nil, placed(domain.GeometryPoint, nil, pt(1, 1)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.finalize.Finalize(ctx, pilotID, synced.JourneyID, dto.FinalizeJourneyRequest{
		Objects: []dto.PlacedObjectRequest{placed(domain.GeometryPoint, nil, pt(2, 2))},
	})
	assert.ErrorIs(t, err, context.Canceled)

	report, err := f.reports.GetByID(context.Background(), synced.JourneyID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewDraft, report.Status)
	assert.Len(t, f.objects(t, synced.JourneyID), 1)
}
