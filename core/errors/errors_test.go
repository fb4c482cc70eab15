package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := NewAppError(ErrUpstream, "fetch preferences", stderrors.New("timeout"))
	assert.Equal(t, "UPSTREAM_FETCH_FAILED: fetch preferences: timeout", err.Error())

	bare := NewAppError(ErrEmptyResult, "no event parts", nil)
	assert.Equal(t, "EMPTY_RESULT: no event parts", bare.Error())
}

func TestHasCode_ThroughWrapping(t *testing.T) {
	inner := NewAppError(ErrDispatchFailed, "solver returned 500", nil)
	wrapped := fmt.Errorf("compile: %w", inner)

	assert.True(t, HasCode(wrapped, ErrDispatchFailed))
	assert.False(t, HasCode(wrapped, ErrNotFound))
	assert.False(t, HasCode(stderrors.New("plain"), ErrDispatchFailed))
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("root")
	err := NewAppError(ErrInternalServer, "wrapped", cause)
	assert.ErrorIs(t, err, cause)
}
