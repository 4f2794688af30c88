package errors

import "net/http"

// Validation
var (
	ErrValidationFailed = New(
		"VALIDATION_FAILED",
		"Request validation failed",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrNotEnoughPoints = New(
		"NOT_ENOUGH_POINTS",
		"Object has fewer points than its geometry type requires",
		http.StatusBadRequest,
	)

	ErrObjectDeleted = New(
		"OBJECT_DELETED",
		"Deleted objects are reconciled at finalize",
		http.StatusBadRequest,
	)
)

// NotFound
var (
	ErrReportNotFound = New(
		"REPORT_NOT_FOUND",
		"Report not found",
		http.StatusNotFound,
	)

	ErrObjectNotFound = New(
		"OBJECT_NOT_FOUND",
		"Hindrance object not found",
		http.StatusNotFound,
	)

	ErrExportNotFound = New(
		"EXPORT_NOT_FOUND",
		"Report export not found",
		http.StatusNotFound,
	)
)

// InvalidState
var (
	ErrReportNotDraft = New(
		"REPORT_NOT_DRAFT",
		"Report is not in Draft status",
		http.StatusConflict,
	)

	ErrNoDefaultType = New(
		"NO_DEFAULT_TYPE",
		"No standard hindrance type exists for geometry type",
		http.StatusConflict,
	)

	ErrInvalidReviewTransition = New(
		"INVALID_REVIEW_TRANSITION",
		"Review status transition is not allowed",
		http.StatusConflict,
	)
)

// Access
var (
	ErrUnauthorized = New(
		"UNAUTHORIZED",
		"Missing user identity",
		http.StatusUnauthorized,
	)

	ErrForbidden = New(
		"FORBIDDEN",
		"Insufficient role",
		http.StatusForbidden,
	)
)

// Infrastructure
var (
	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
