package testhelpers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// CountPoints returns the number of persisted points for an object
func CountPoints(db *sql.DB, objectID uuid.UUID) (int, error) {
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM hindrance_points WHERE object_id = $1", objectID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count points of %s: %w", objectID, err)
	}
	return n, nil
}

// StandardTypeID returns the id of the standard type for a geometry kind
func StandardTypeID(db *sql.DB, geometryType string) (int, error) {
	var id int
	err := db.QueryRowContext(context.Background(),
		"SELECT id FROM hindrance_types WHERE geometry_type = $1 AND is_standard", geometryType).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("get standard type for %s: %w", geometryType, err)
	}
	return id, nil
}
