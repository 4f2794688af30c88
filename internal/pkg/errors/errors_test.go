package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_CopiesKeepIdentity(t *testing.T) {
	custom := ErrNoDefaultType.WithMessage("no standard type for %s", "Area")

	assert.True(t, Is(custom, ErrNoDefaultType))
	assert.Equal(t, "No standard hindrance type exists for geometry type", ErrNoDefaultType.Message)
	assert.Equal(t, "no standard type for Area", custom.Message)
	assert.Equal(t, http.StatusConflict, custom.StatusCode)
}

func TestAppError_WrappedAs(t *testing.T) {
	wrapped := fmt.Errorf("finalize: %w", ErrReportNotDraft)

	appErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "REPORT_NOT_DRAFT", appErr.Code)
	assert.False(t, Is(wrapped, ErrReportNotFound))
}

func TestNewValidation(t *testing.T) {
	err := NewValidation(map[string][]string{"title": {"title is required"}})

	assert.True(t, Is(err, ErrValidationFailed))
	assert.Nil(t, ErrValidationFailed.Fields)
	assert.Equal(t, []string{"title is required"}, err.Fields["title"])
}
