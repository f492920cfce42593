package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassesThroughDomainErrors(t *testing.T) {
	orig := NewValidationError("bad input", map[string]any{"field": "required"})
	wrapped := fmt.Errorf("handler: %w", orig)

	de := ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, "required", de.Details["field"])
}

func TestToDomainErrorMapsNoRowsToNotFound(t *testing.T) {
	de := ToDomainError(fmt.Errorf("lookup: %w", sql.ErrNoRows))
	require.NotNil(t, de)
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
}

func TestToDomainErrorWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("boom")
	de := ToDomainError(cause)
	require.NotNil(t, de)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.ErrorIs(t, de, cause)
}

func TestNewUnauthorizedCodeCarriesCallerCode(t *testing.T) {
	err := NewUnauthorizedCode("TOKEN_EXPIRED", "credential expired")

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "TOKEN_EXPIRED", de.Code)
	assert.Equal(t, http.StatusUnauthorized, de.HTTPStatus)
}
