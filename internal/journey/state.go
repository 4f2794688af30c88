package journey

import (
	"github.com/hindrance-reporter/internal/domain"
)

// StateVersion - версия формата сохраненного состояния
const StateVersion = 1

// PlaceState - шаг размещения объекта
type PlaceState string

const (
	PlaceIdle         PlaceState = "Idle"
	PlacePlacing      PlaceState = "Placing"
	PlaceAwaitingType PlaceState = "AwaitingType"
	PlaceCommitted    PlaceState = "Committed"
)

// PlaceMode - текущий шаг размещения и вид геометрии объекта
type PlaceMode struct {
	State PlaceState          `json:"state"`
	Kind  domain.GeometryType `json:"kind,omitempty"`
}

// State - все, что клиент хранит на устройстве.
// CurrentJourney - идущая сессия, FinishedJourney - завершенная и ожидающая подтверждения отправки.
type State struct {
	CurrentJourney      *domain.Journey `json:"currentJourney,omitempty"`
	FinishedJourney     *domain.Journey `json:"finishedJourney,omitempty"`
	PlaceMode           PlaceMode       `json:"placeMode"`
	CurrentObjectPoints []domain.Point  `json:"currentObjectPoints"`
}

// NewState - пустое состояние
func NewState() *State {
	return &State{
		PlaceMode:           PlaceMode{State: PlaceIdle},
		CurrentObjectPoints: []domain.Point{},
	}
}

// Clone - глубокая копия
func (s *State) Clone() *State {
	cp := *s
	cp.CurrentJourney = s.CurrentJourney.Clone()
	cp.FinishedJourney = s.FinishedJourney.Clone()
	cp.CurrentObjectPoints = make([]domain.Point, len(s.CurrentObjectPoints))
	copy(cp.CurrentObjectPoints, s.CurrentObjectPoints)
	return &cp
}

// working - сессия, с которой работает синхронизация: идущая, иначе завершенная
func (s *State) working() *domain.Journey {
	if s.CurrentJourney != nil {
		return s.CurrentJourney
	}
	return s.FinishedJourney
}

func (s *State) resetPlacement() {
	s.PlaceMode = PlaceMode{State: PlaceIdle}
	s.CurrentObjectPoints = []domain.Point{}
}
