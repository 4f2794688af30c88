package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReviewStatus - статус модерации отчета или отдельного объекта
type ReviewStatus string

const (
	ReviewDraft     ReviewStatus = "Draft"
	ReviewSubmitted ReviewStatus = "Submitted"
	ReviewResolved  ReviewStatus = "Resolved"
	ReviewClosed    ReviewStatus = "Closed"

	// Статусы только для объектов
	ReviewApproved ReviewStatus = "Approved"
	ReviewRejected ReviewStatus = "Rejected"
)

// reportTransitions - допустимые переходы статуса отчета
var reportTransitions = map[ReviewStatus][]ReviewStatus{
	ReviewDraft:     {ReviewSubmitted},
	ReviewSubmitted: {ReviewResolved, ReviewClosed},
	ReviewResolved:  {ReviewClosed},
}

// CanTransition проверяет, разрешен ли переход статуса отчета
func (s ReviewStatus) CanTransition(to ReviewStatus) bool {
	for _, allowed := range reportTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidObjectVerdict - статусы, которые ревьюер может выставить объекту
func (s ReviewStatus) ValidObjectVerdict() bool {
	return s == ReviewApproved || s == ReviewRejected
}

// Report - отчет пилота, агрегирует объекты препятствий
type Report struct {
	ID          uuid.UUID          `json:"id" db:"id"`
	UserID      string             `json:"userId" db:"user_id"`
	Title       string             `json:"title" db:"title"`
	Description string             `json:"description" db:"description"`
	Status      ReviewStatus       `json:"status" db:"status"`
	CreatedAt   time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" db:"updated_at"`
	SubmittedAt *time.Time         `json:"submittedAt,omitempty" db:"submitted_at"`
	Objects     []*HindranceObject `json:"objects,omitempty" db:"-"`
}

// NewDraftReport создает пустой черновик для пользователя
func NewDraftReport(userID string, now time.Time) *Report {
	return &Report{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    ReviewDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *Report) IsDraft() bool {
	return r.Status == ReviewDraft
}

// Finalise применяет метаданные и переводит отчет Draft -> Submitted.
// Чистая мутация состояния, без обращений к хранилищу.
func (r *Report) Finalise(title, description string, now time.Time) error {
	if !r.IsDraft() {
		return fmt.Errorf("report %s is %s, expected %s", r.ID, r.Status, ReviewDraft)
	}
	r.Title = title
	r.Description = description
	r.Status = ReviewSubmitted
	r.SubmittedAt = &now
	r.UpdatedAt = now
	return nil
}

// HindranceObject - объект препятствия на сервере. Статус модерации независим от статуса отчета.
type HindranceObject struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	ReportID     uuid.UUID        `json:"reportId" db:"report_id"`
	TypeID       int              `json:"typeId" db:"type_id"`
	GeometryType GeometryType     `json:"geometryType" db:"geometry_type"`
	Title        string           `json:"title" db:"title"`
	Description  string           `json:"description" db:"description"`
	Status       ReviewStatus     `json:"status" db:"status"`
	Feedback     *string          `json:"feedback,omitempty" db:"feedback"`
	CreatedAt    time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time        `json:"updatedAt" db:"updated_at"`
	Points       []HindrancePoint `json:"points" db:"-"`
}

// LatLngs возвращает координаты точек в сохраненном порядке
func (o *HindranceObject) LatLngs() []LatLng {
	out := make([]LatLng, 0, len(o.Points))
	for _, p := range o.Points {
		out = append(out, LatLng{Lat: p.Lat, Lng: p.Lng})
	}
	return out
}

// NextOrder - порядковый номер для следующей добавляемой точки
func (o *HindranceObject) NextOrder() int {
	next := 0
	for _, p := range o.Points {
		if p.Order >= next {
			next = p.Order + 1
		}
	}
	return next
}

// HindrancePoint - сохраненная точка объекта. Order задает порядок вершин линии/полигона.
type HindrancePoint struct {
	ID        int64     `json:"id" db:"id"`
	ObjectID  uuid.UUID `json:"objectId" db:"object_id"`
	Lat       float64   `json:"lat" db:"lat"`
	Lng       float64   `json:"lng" db:"lng"`
	Elevation *int      `json:"elevation,omitempty" db:"elevation"`
	Label     *string   `json:"label,omitempty" db:"label"`
	Order     int       `json:"order" db:"point_order"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// HindranceType - элемент каталога типов препятствий
type HindranceType struct {
	ID              int          `json:"id" db:"id"`
	Name            string       `json:"name" db:"name"`
	GeometryType    GeometryType `json:"geometryType" db:"geometry_type"`
	Color           string       `json:"color" db:"color"`
	PrimaryImageURL string       `json:"primaryImageUrl" db:"primary_image_url"`
	MarkerImageURL  *string      `json:"markerImageUrl,omitempty" db:"marker_image_url"`
	IsStandard      bool         `json:"isStandard" db:"is_standard"`
}

// StandardTypeName - имя типа по умолчанию для вида геометрии
func StandardTypeName(g GeometryType) string {
	return "Standard " + string(g)
}

// DefaultHindranceTypes - каталог, который засевается при старте API
func DefaultHindranceTypes() []*HindranceType {
	marker := func(s string) *string { return &s }
	return []*HindranceType{
		{Name: StandardTypeName(GeometryPoint), GeometryType: GeometryPoint, Color: "#ff8c00", PrimaryImageURL: "/img/types/standard-point.svg", MarkerImageURL: marker("/img/markers/standard.svg"), IsStandard: true},
		{Name: StandardTypeName(GeometryLine), GeometryType: GeometryLine, Color: "#ff8c00", PrimaryImageURL: "/img/types/standard-line.svg", IsStandard: true},
		{Name: StandardTypeName(GeometryArea), GeometryType: GeometryArea, Color: "#ff8c00", PrimaryImageURL: "/img/types/standard-area.svg", IsStandard: true},
		{Name: "Mast", GeometryType: GeometryPoint, Color: "#d7263d", PrimaryImageURL: "/img/types/mast.svg", MarkerImageURL: marker("/img/markers/mast.svg")},
		{Name: "Wind turbine", GeometryType: GeometryPoint, Color: "#1b998b", PrimaryImageURL: "/img/types/wind-turbine.svg", MarkerImageURL: marker("/img/markers/wind-turbine.svg")},
		{Name: "Power line", GeometryType: GeometryLine, Color: "#f46036", PrimaryImageURL: "/img/types/power-line.svg"},
		{Name: "No-fly zone", GeometryType: GeometryArea, Color: "#2e294e", PrimaryImageURL: "/img/types/no-fly-zone.svg"},
	}
}
