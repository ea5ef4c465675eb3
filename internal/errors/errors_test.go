package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFoundf("column %s not found", "col-1")

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrValidation))
	assert.Equal(t, "column col-1 not found", err.Error())
}

func TestError_WrapKeepsCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, CodeInternal, "save board")

	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, ErrInternal))
	assert.Equal(t, "save board: disk full", err.Error())
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeValidation, http.StatusBadRequest},
		{CodeConflict, http.StatusConflict},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_WithDetails(t *testing.T) {
	details := map[string]string{"columns": "is required"}
	err := ValidationWithDetails("invalid board", nil).WithDetails(details)

	assert.Equal(t, details, err.Details)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
}
