package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/hindrance-reporter/internal/domain"
)

// PointRequest - точка объекта в запросе синхронизации/финализации
type PointRequest struct {
	Lat       float64   `json:"lat" validate:"min=-90,max=90"`
	Lng       float64   `json:"lng" validate:"min=-180,max=180"`
	Elevation *int      `json:"elevation,omitempty" validate:"omitempty,min=-430,max=8850"`
	Label     *string   `json:"label,omitempty" validate:"omitempty,max=100"`
	CreatedAt time.Time `json:"createdAt"`
}

// PlacedObjectRequest - объект, поставленный на клиенте.
// ID - клиентский идентификатор, ServerID - идентификатор, выданный сервером при прошлой синхронизации.
type PlacedObjectRequest struct {
	ID           uuid.UUID           `json:"id"`
	ServerID     *uuid.UUID          `json:"serverId,omitempty"`
	Points       []PointRequest      `json:"points" validate:"dive"`
	TypeID       *int                `json:"typeId,omitempty" validate:"omitempty,min=1"`
	GeometryType domain.GeometryType `json:"geometryType" validate:"required,oneof=Point Line Area"`
	Title        string              `json:"title" validate:"max=100"`
	Description  string              `json:"description" validate:"max=1000"`
	Deleted      bool                `json:"deleted"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// JourneyMetaRequest - метаданные сессии
type JourneyMetaRequest struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title" validate:"max=100"`
	Description string    `json:"description" validate:"max=1000"`
}

// FinalizeJourneyRequest - пакетная сверка всех объектов сессии
type FinalizeJourneyRequest struct {
	Journey JourneyMetaRequest    `json:"journey"`
	Objects []PlacedObjectRequest `json:"objects" validate:"dive"`
}

// SyncObjectResponse - ответ на синхронизацию одного объекта
type SyncObjectResponse struct {
	JourneyID uuid.UUID `json:"journeyId"`
	ObjectID  uuid.UUID `json:"objectId"`
}

// FinalizeJourneyResponse - ответ на финализацию
type FinalizeJourneyResponse struct {
	ReportID uuid.UUID `json:"reportId"`
}
