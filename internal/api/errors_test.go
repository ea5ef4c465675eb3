package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"

	domainerrors "github.com/ArturoRiosMock/CRMAIRE/internal/errors"
	"github.com/ArturoRiosMock/CRMAIRE/internal/store"
)

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "domain validation",
			err:        domainerrors.Validation("tags is required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION",
			wantMsg:    "tags is required",
		},
		{
			name:       "wrapped store error",
			err:        fmt.Errorf("get board: %w", store.ErrCorrupt.WithCause(errors.New("eof"))),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
			wantMsg:    store.ErrCorrupt.Message,
		},
		{
			name:       "store unavailable",
			err:        store.ErrUnavailable,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "UNAVAILABLE",
			wantMsg:    store.ErrUnavailable.Message,
		},
		{
			name:       "unknown error hides details",
			err:        errors.New("disk I/O error"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
			wantMsg:    "failed to load board",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toAPIError(tt.err, "failed to load board")
			assert.Equal(t, tt.wantStatus, got.GetStatus())
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMsg, got.Message)
		})
	}
}

func TestRegisterErrorHandler(t *testing.T) {
	RegisterErrorHandler()

	se := huma.NewError(http.StatusUnprocessableEntity, "validation failed", errors.New("body.name: required"))
	apiErr, ok := se.(*APIError)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusUnprocessableEntity, apiErr.GetStatus())
		assert.Equal(t, "VALIDATION", apiErr.Code)
		assert.Equal(t, []string{"body.name: required"}, apiErr.Details)
	}

	se = huma.NewError(http.StatusInternalServerError, "boom", domainerrors.NotFoundf("column %s not found", "c1"))
	assert.Equal(t, http.StatusNotFound, se.GetStatus())
}
