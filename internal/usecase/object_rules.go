package usecase

import (
	"fmt"
	"strings"

	"github.com/hindrance-reporter/internal/pkg/errors"
	"github.com/hindrance-reporter/internal/usecase/dto"
)

// checkPoints проверяет количество точек объекта для его вида геометрии.
// Удаленные объекты не проверяются: на сервере они только удаляются.
func checkPoints(field string, obj dto.PlacedObjectRequest, fields map[string][]string) {
	if obj.Deleted {
		return
	}
	if !obj.GeometryType.Valid() {
		fields[field+"geometryType"] = append(fields[field+"geometryType"],
			fmt.Sprintf("unknown geometry type %q", obj.GeometryType))
		return
	}
	if !obj.GeometryType.HasEnoughPoints(len(obj.Points)) {
		fields[field+"points"] = append(fields[field+"points"],
			fmt.Sprintf("%s requires at least %d points, got %d",
				obj.GeometryType, obj.GeometryType.MinPoints(), len(obj.Points)))
	}
}

// validateObject - правила для одиночной синхронизации
func validateObject(obj dto.PlacedObjectRequest) error {
	fields := make(map[string][]string)
	checkPoints("", obj, fields)
	return fieldsError(fields)
}

// validateBatch - правила для всех объектов финализации, ошибки собираются по всем объектам
func validateBatch(objects []dto.PlacedObjectRequest) error {
	fields := make(map[string][]string)
	for i, obj := range objects {
		checkPoints(fmt.Sprintf("objects[%d].", i), obj, fields)
	}
	return fieldsError(fields)
}

// fieldsError - NOT_ENOUGH_POINTS, если все ошибки про количество точек, иначе общая ошибка валидации
func fieldsError(fields map[string][]string) error {
	if len(fields) == 0 {
		return nil
	}
	for field := range fields {
		if !strings.HasSuffix(field, "points") {
			return errors.NewValidation(fields)
		}
	}
	return errors.ErrNotEnoughPoints.WithFields(fields)
}
