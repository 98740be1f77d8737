package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"app error", NotFound("version missing", ErrVersionNotFound), CodeNotFound},
		{"wrapped sentinel", fmt.Errorf("load: %w", ErrItemNotFound), CodeNotFound},
		{"unauthenticated", Unauthenticated("login required"), CodeUnauthenticated},
		{"wrapped unauthorized", fmt.Errorf("auth: %w", ErrUnauthorized), CodeUnauthenticated},
		{"invalid input", fmt.Errorf("term: %w", ErrInvalidInput), CodeInvalidArgument},
		{"schedule in past", ErrScheduleInPast, CodeInvalidArgument},
		{"sweep running", fmt.Errorf("trigger: %w", ErrSweepInProgress), CodeConflict},
		{"unknown", errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	err := Internal("restore failed", ErrNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "internal")
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusOf(CodeInvalidArgument))
	assert.Equal(t, http.StatusUnauthorized, StatusOf(CodeUnauthenticated))
	assert.Equal(t, http.StatusForbidden, StatusOf(CodePermissionDenied))
	assert.Equal(t, http.StatusNotFound, StatusOf(CodeNotFound))
	assert.Equal(t, http.StatusConflict, StatusOf(CodeConflict))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(CodeInternal))
}
