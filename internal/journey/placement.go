package journey

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hindrance-reporter/internal/domain"
	"github.com/hindrance-reporter/internal/pkg/utils"
)

// WarningDuration - сколько держится предупреждение о нехватке точек
const WarningDuration = 5 * time.Second

// Placement - пошаговое размещение объекта: Idle -> Placing -> AwaitingType -> Committed.
// Состояние шага хранится в Store и переживает перезапуск клиента.
type Placement struct {
	store        *Store
	warningUntil time.Time
}

func NewPlacement(store *Store) *Placement {
	return &Placement{store: store}
}

// Mode - текущий шаг
func (p *Placement) Mode() PlaceMode {
	return p.store.Snapshot().PlaceMode
}

// Points - уже поставленные точки текущего объекта
func (p *Placement) Points() []domain.Point {
	return p.store.Snapshot().CurrentObjectPoints
}

// Warning - показывать ли предупреждение "недостаточно точек"
func (p *Placement) Warning() bool {
	return !p.warningUntil.IsZero() && p.store.clock().Before(p.warningUntil)
}

// StartPlacingObjects начинает сбор точек для объекта вида kind
func (p *Placement) StartPlacingObjects(kind domain.GeometryType) error {
	if !kind.Valid() {
		return ErrInvalidGeometry
	}
	p.warningUntil = time.Time{}
	return p.store.mutate(func(st *State, now time.Time) error {
		if st.CurrentJourney == nil {
			return ErrNoActiveJourney
		}
		if st.PlaceMode.State != PlaceIdle && st.PlaceMode.State != PlaceCommitted {
			return ErrNotPlacing
		}
		st.PlaceMode = PlaceMode{State: PlacePlacing, Kind: kind}
		st.CurrentObjectPoints = []domain.Point{}
		return nil
	})
}

// AddPoint добавляет точку с отметкой времени
func (p *Placement) AddPoint(point domain.Point) error {
	if !utils.ValidateCoordinates(point.Lat, point.Lng) || !utils.ValidateElevation(point.Elevation) {
		return ErrInvalidPoint
	}
	return p.store.mutate(func(st *State, now time.Time) error {
		if st.PlaceMode.State != PlacePlacing {
			return ErrNotPlacing
		}
		if point.CreatedAt.IsZero() {
			point.CreatedAt = now
		}
		st.CurrentObjectPoints = append(st.CurrentObjectPoints, point)
		return nil
	})
}

// FinishPlace переходит к выбору типа, если точек достаточно.
// Иначе остается в Placing и включает предупреждение.
func (p *Placement) FinishPlace() error {
	err := p.store.mutate(func(st *State, now time.Time) error {
		if st.PlaceMode.State != PlacePlacing {
			return ErrNotPlacing
		}
		if !st.PlaceMode.Kind.HasEnoughPoints(len(st.CurrentObjectPoints)) {
			return ErrNotEnoughPoints
		}
		st.PlaceMode.State = PlaceAwaitingType
		return nil
	})
	if errors.Is(err, ErrNotEnoughPoints) {
		p.warningUntil = p.store.clock().Add(WarningDuration)
	} else if err == nil {
		p.warningUntil = time.Time{}
	}
	return err
}

// SelectType создает объект из собранных точек. typeID == nil - тип по умолчанию назначит сервер.
func (p *Placement) SelectType(typeID *int) (*domain.PlacedObject, error) {
	var created domain.PlacedObject
	err := p.store.mutate(func(st *State, now time.Time) error {
		if st.PlaceMode.State != PlaceAwaitingType {
			return ErrNotAwaitingType
		}
		if st.CurrentJourney == nil {
			return ErrNoActiveJourney
		}

		obj := domain.PlacedObject{
			ID:           uuid.New(),
			Points:       st.CurrentObjectPoints,
			GeometryType: st.PlaceMode.Kind,
			CreatedAt:    now,
			Revision:     1,
		}
		if typeID != nil {
			id := *typeID
			obj.TypeID = &id
		}
		st.CurrentJourney.Objects = append(st.CurrentJourney.Objects, obj)
		st.PlaceMode = PlaceMode{State: PlaceCommitted, Kind: obj.GeometryType}
		st.CurrentObjectPoints = []domain.Point{}
		created = obj.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// CancelTypeSelect отбрасывает собранные точки
func (p *Placement) CancelTypeSelect() error {
	return p.store.mutate(func(st *State, now time.Time) error {
		if st.PlaceMode.State != PlaceAwaitingType {
			return ErrNotAwaitingType
		}
		st.resetPlacement()
		return nil
	})
}

// CancelPlace прерывает сбор точек
func (p *Placement) CancelPlace() error {
	p.warningUntil = time.Time{}
	return p.store.mutate(func(st *State, now time.Time) error {
		if st.PlaceMode.State != PlacePlacing {
			return ErrNotPlacing
		}
		st.resetPlacement()
		return nil
	})
}
