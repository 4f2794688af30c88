package dto

import "github.com/hindrance-reporter/internal/domain"

// HindranceTypeResponse - краткое описание типа для выбора на карте
type HindranceTypeResponse struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	PrimaryImageURL string  `json:"primaryImageUrl"`
	MarkerImageURL  *string `json:"markerImageUrl,omitempty"`
}

// ObjectTypesResponse - полный каталог и типы по умолчанию для каждого вида геометрии
type ObjectTypesResponse struct {
	ObjectTypes     []*domain.HindranceType     `json:"objectTypes"`
	StandardTypeIDs map[domain.GeometryType]int `json:"standardTypeIds"`
}
