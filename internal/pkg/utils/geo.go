package utils

const (
	// MinElevation / MaxElevation - реальные пределы высоты над уровнем моря в метрах
	MinElevation = -430
	MaxElevation = 8850
)

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ValidateElevation проверяет, что высота в допустимых пределах
func ValidateElevation(elevation *int) bool {
	if elevation == nil {
		return true
	}
	return *elevation >= MinElevation && *elevation <= MaxElevation
}
