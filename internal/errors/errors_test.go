package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrappedErrorMatchesSentinelByCode(t *testing.T) {
	wrapped := WrapError(ErrInvalidToken, errors.New("row not found"))
	assert.ErrorIs(t, wrapped, ErrInvalidToken)
	assert.NotErrorIs(t, wrapped, ErrInvalidCredentials)

	// Matching survives another layer of fmt wrapping.
	double := fmt.Errorf("verify: %w", wrapped)
	assert.ErrorIs(t, double, ErrInvalidToken)
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrWeakPassword, http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrInvalidCSRF, http.StatusForbidden},
		{ErrDoctorNotFound, http.StatusNotFound},
		{ErrEmailExists, http.StatusConflict},
		{ErrInternal, http.StatusInternalServerError},
		{WrapError(ErrInvalidToken, errors.New("gone")), http.StatusUnauthorized},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToHTTPStatus(tt.err))
	}
}
