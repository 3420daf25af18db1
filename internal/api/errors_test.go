package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rwi-modeling/backend/internal/models"
	"github.com/rwi-modeling/backend/internal/session"
	"github.com/rwi-modeling/backend/internal/storage"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"format error", models.NewFormatError(models.ErrNameTooLong, "72 characters"), http.StatusUnprocessableEntity, "FORMAT_ERROR"},
		{"wrapped parse error", fmt.Errorf("parsing x: %w", models.UnexpectedToken(3, "end_<face>", "junk")), http.StatusUnprocessableEntity, "PARSE_ERROR"},
		{"missing boundary", models.MissingBoundary("end_<face>"), http.StatusUnprocessableEntity, "PARSE_ERROR"},
		{"unknown session", fmt.Errorf("%w: abc", session.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"unknown file", fmt.Errorf("%w: abc", storage.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"wrong kind", session.ErrWrongKind, http.StatusBadRequest, "BAD_REQUEST"},
		{"api error passes through", NewValidationError("x"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"anything else", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromError("failed", tt.err)
			assert.Equal(t, tt.wantStatus, apiErr.Status)
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
}

func TestNewParseError_Details(t *testing.T) {
	apiErr := NewParseError(models.UnexpectedToken(7, "nVertices <n>", "vertices 4"))

	details, ok := apiErr.Details.(map[string]any)
	if assert.True(t, ok) {
		assert.Equal(t, 7, details["line"])
		assert.Equal(t, "nVertices <n>", details["expected"])
		assert.Equal(t, "vertices 4", details["found"])
	}
}
