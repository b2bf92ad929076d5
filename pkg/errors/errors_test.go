package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", Clone(ErrNotFound, "class not found"))
	appErr := FromError(wrapped)
	assert.Equal(t, ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "class not found", appErr.Message)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, "internal server error: boom", appErr.Error())
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "name is required")
	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Equal(t, "name is required", clone.Message)
	assert.True(t, errors.Is(Wrap(ErrCacheMiss, "X", 500, "x"), ErrCacheMiss))
}

func TestLookupMapsMissingRecords(t *testing.T) {
	missing := Clone(ErrNotFound, "class not found")
	assert.Same(t, missing, Lookup(fmt.Errorf("find class: %w", sql.ErrNoRows), missing, "failed to load class"))

	failed := Lookup(errors.New("connection reset"), missing, "failed to load class")
	assert.Equal(t, ErrInternal.Code, failed.Code)
	assert.Equal(t, "failed to load class", failed.Message)
	assert.Nil(t, Lookup(nil, missing, "unused"))
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("pay: %w", Clone(ErrAlreadyPaid, ""))
	assert.True(t, HasCode(err, "ALREADY_PAID"))
	assert.False(t, HasCode(err, ErrConflict.Code))
	assert.False(t, HasCode(errors.New("plain"), ErrInternal.Code))
}
