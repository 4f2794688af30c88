package domain

import (
	"time"

	"github.com/google/uuid"
)

// Point - точка, поставленная пилотом
type Point struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Elevation *int      `json:"elevation,omitempty"`
	Label     *string   `json:"label,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (p Point) LatLng() LatLng {
	return LatLng{Lat: p.Lat, Lng: p.Lng}
}

// Journey - полевая сессия пилота, хранится на устройстве до финализации.
// ID генерируется клиентом; ServerID - id черновика отчета после первой успешной синхронизации.
type Journey struct {
	ID          uuid.UUID      `json:"id"`
	ServerID    *uuid.UUID     `json:"serverId,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	StartTime   time.Time      `json:"startTime"`
	EndTime     *time.Time     `json:"endTime,omitempty"`
	Objects     []PlacedObject `json:"objects"`
}

// Ended - пользователь завершил сессию, но еще не подтвердил отправку
func (j *Journey) Ended() bool {
	return j.EndTime != nil
}

// FindObject возвращает указатель на объект по клиентскому id или серверному id
func (j *Journey) FindObject(id uuid.UUID) *PlacedObject {
	for i := range j.Objects {
		obj := &j.Objects[i]
		if obj.ID == id || (obj.ServerID != nil && *obj.ServerID == id) {
			return obj
		}
	}
	return nil
}

// Clone - глубокая копия
func (j *Journey) Clone() *Journey {
	if j == nil {
		return nil
	}
	cp := *j
	cp.ServerID = cloneUUID(j.ServerID)
	cp.EndTime = cloneTime(j.EndTime)
	cp.Objects = make([]PlacedObject, len(j.Objects))
	for i, obj := range j.Objects {
		cp.Objects[i] = obj.Clone()
	}
	return &cp
}

// PlacedObject - геометрический объект, поставленный на клиенте.
// Revision растет при каждом изменении, SyncedRevision - ревизия, подтвержденная сервером.
type PlacedObject struct {
	ID             uuid.UUID    `json:"id"`
	ServerID       *uuid.UUID   `json:"serverId,omitempty"`
	Points         []Point      `json:"points"`
	TypeID         *int         `json:"typeId,omitempty"`
	GeometryType   GeometryType `json:"geometryType"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Deleted        bool         `json:"deleted"`
	CreatedAt      time.Time    `json:"createdAt"`
	Revision       int          `json:"revision"`
	SyncedRevision int          `json:"syncedRevision"`
}

// PendingSync - объект изменен после последней успешной синхронизации
func (o *PlacedObject) PendingSync() bool {
	return o.ServerID == nil || o.Revision != o.SyncedRevision
}

func (o PlacedObject) Clone() PlacedObject {
	cp := o
	cp.ServerID = cloneUUID(o.ServerID)
	if o.TypeID != nil {
		id := *o.TypeID
		cp.TypeID = &id
	}
	cp.Points = make([]Point, len(o.Points))
	copy(cp.Points, o.Points)
	return cp
}

// SyncResult - ответ сервера на синхронизацию одного объекта
type SyncResult struct {
	JourneyID uuid.UUID `json:"journeyId"`
	ObjectID  uuid.UUID `json:"objectId"`
}

// JourneyMeta - метаданные сессии в запросе финализации
type JourneyMeta struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

// FinalizeRequest - полный список объектов сессии для пакетной сверки на сервере
type FinalizeRequest struct {
	Journey JourneyMeta    `json:"journey"`
	Objects []PlacedObject `json:"objects"`
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	cp := *id
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}
