package journey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hindrance-reporter/internal/domain"
)

// placeObject проводит объект через все шаги размещения
func placeObject(t *testing.T, p *Placement, kind domain.GeometryType, typeID *int, points ...domain.Point) *domain.PlacedObject {
	t.Helper()
	require.NoError(t, p.StartPlacingObjects(kind))
	for _, pt := range points {
		require.NoError(t, p.AddPoint(pt))
	}
	require.NoError(t, p.FinishPlace())
	obj, err := p.SelectType(typeID)
	require.NoError(t, err)
	return obj
}

func TestPlacement_RequiresActiveJourney(t *testing.T) {
	store, _ := newTestStore(t)
	p := NewPlacement(store)

	assert.ErrorIs(t, p.StartPlacingObjects(domain.GeometryPoint), ErrNoActiveJourney)
	assert.ErrorIs(t, p.StartPlacingObjects("Circle"), ErrInvalidGeometry)
}

func TestPlacement_MinimumPoints(t *testing.T) {
	tests := []struct {
		kind domain.GeometryType
		min  int
	}{
		{domain.GeometryPoint, 1},
		{domain.GeometryLine, 2},
		{domain.GeometryArea, 3},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			store, _ := newTestStore(t)
			_, err := store.StartJourney()
			require.NoError(t, err)
			p := NewPlacement(store)

			require.NoError(t, p.StartPlacingObjects(tt.kind))
			for i := 0; i < tt.min-1; i++ {
				require.NoError(t, p.AddPoint(domain.Point{Lat: 60 + float64(i), Lng: 10}))
			}

			assert.ErrorIs(t, p.FinishPlace(), ErrNotEnoughPoints)
			assert.Equal(t, PlacePlacing, p.Mode().State)
			assert.True(t, p.Warning())
			assert.Empty(t, store.Snapshot().CurrentJourney.Objects)

			require.NoError(t, p.AddPoint(domain.Point{Lat: 70, Lng: 10}))
			require.NoError(t, p.FinishPlace())
			assert.Equal(t, PlaceAwaitingType, p.Mode().State)
			assert.False(t, p.Warning())
		})
	}
}

func TestPlacement_WarningExpires(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.StartJourney()
	require.NoError(t, err)
	p := NewPlacement(store)

	require.NoError(t, p.StartPlacingObjects(domain.GeometryLine))
	require.ErrorIs(t, p.FinishPlace(), ErrNotEnoughPoints)
	assert.True(t, p.Warning())

	store.SetClock(func() time.Time { return testNow.Add(WarningDuration) })
	assert.False(t, p.Warning())
}

func TestPlacement_SelectTypeCommitsObject(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.StartJourney()
	require.NoError(t, err)
	p := NewPlacement(store)

	typeID := 4
	obj := placeObject(t, p, domain.GeometryLine, &typeID,
		domain.Point{Lat: 60, Lng: 10},
		domain.Point{Lat: 61, Lng: 11},
	)

	assert.Equal(t, domain.GeometryLine, obj.GeometryType)
	assert.Equal(t, 4, *obj.TypeID)
	assert.Equal(t, 1, obj.Revision)
	assert.True(t, obj.PendingSync())
	require.Len(t, obj.Points, 2)
	assert.Equal(t, testNow, obj.Points[0].CreatedAt)

	st := store.Snapshot()
	assert.Equal(t, PlaceCommitted, st.PlaceMode.State)
	assert.Empty(t, st.CurrentObjectPoints)
	require.Len(t, st.CurrentJourney.Objects, 1)
	assert.Equal(t, obj.ID, st.CurrentJourney.Objects[0].ID)

	// Из Committed можно сразу начинать следующий объект
	assert.NoError(t, p.StartPlacingObjects(domain.GeometryPoint))
}

func TestPlacement_SelectTypeWithoutType(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.StartJourney()
	require.NoError(t, err)

	obj := placeObject(t, NewPlacement(store), domain.GeometryPoint, nil, domain.Point{Lat: 60, Lng: 10})
	assert.Nil(t, obj.TypeID)
}

func TestPlacement_Cancel(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.StartJourney()
	require.NoError(t, err)
	p := NewPlacement(store)

	require.NoError(t, p.StartPlacingObjects(domain.GeometryPoint))
	require.NoError(t, p.AddPoint(domain.Point{Lat: 60, Lng: 10}))
	require.NoError(t, p.CancelPlace())
	assert.Equal(t, PlaceIdle, p.Mode().State)
	assert.Empty(t, p.Points())

	require.NoError(t, p.StartPlacingObjects(domain.GeometryPoint))
	require.NoError(t, p.AddPoint(domain.Point{Lat: 60, Lng: 10}))
	require.NoError(t, p.FinishPlace())
	require.NoError(t, p.CancelTypeSelect())
	assert.Equal(t, PlaceIdle, p.Mode().State)
	assert.Empty(t, store.Snapshot().CurrentJourney.Objects)
}

func TestPlacement_InvalidTransitions(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.StartJourney()
	require.NoError(t, err)
	p := NewPlacement(store)

	assert.ErrorIs(t, p.AddPoint(domain.Point{Lat: 60, Lng: 10}), ErrNotPlacing)
	assert.ErrorIs(t, p.FinishPlace(), ErrNotPlacing)
	assert.ErrorIs(t, p.CancelPlace(), ErrNotPlacing)
	assert.ErrorIs(t, p.CancelTypeSelect(), ErrNotAwaitingType)
	_, err = p.SelectType(nil)
	assert.ErrorIs(t, err, ErrNotAwaitingType)

	require.NoError(t, p.StartPlacingObjects(domain.GeometryPoint))
	assert.ErrorIs(t, p.StartPlacingObjects(domain.GeometryLine), ErrNotPlacing)
	assert.ErrorIs(t, p.AddPoint(domain.Point{Lat: 91, Lng: 10}), ErrInvalidPoint)
}

func TestPlacement_EndJourneyDiscardsScratch(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.StartJourney()
	require.NoError(t, err)
	p := NewPlacement(store)

	require.NoError(t, p.StartPlacingObjects(domain.GeometryArea))
	require.NoError(t, p.AddPoint(domain.Point{Lat: 60, Lng: 10}))
	require.NoError(t, store.EndJourney())

	assert.Equal(t, PlaceIdle, p.Mode().State)
	assert.Empty(t, p.Points())
}
