package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"schedule-compiler/core/constants"
	"schedule-compiler/core/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(errors.ErrInvalidInput))
	assert.Equal(t, http.StatusNotFound, StatusFor(errors.ErrNotFound))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(errors.ErrEmptyResult))
	assert.Equal(t, http.StatusBadGateway, StatusFor(errors.ErrDispatchFailed))
	assert.Equal(t, http.StatusForbidden, StatusFor(errors.ErrForbidden))
	assert.Equal(t, http.StatusInternalServerError, StatusFor("SOMETHING_ELSE"))
}

func TestErrorResponse_AppError(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	err := NewBaseController().ErrorResponse(c, errors.NewAppError(errors.ErrEmptyResult, "no time slots", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, errors.ErrEmptyResult, body.Code)
	assert.Equal(t, "no time slots", body.Message)
}

func TestSuccessResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, NewBaseController().SuccessResponse(c, map[string]int{"n": 1}, "ok"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"ok"`)
}

func TestErrorResponse_WrappedAppError(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	c.Set(constants.ContextRequestID, "req-1")

	wrapped := fmt.Errorf("compile: %w", errors.NewAppError(errors.ErrUpstream, "data service unavailable", nil))
	require.NoError(t, NewBaseController().ErrorResponse(c, wrapped))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, errors.ErrUpstream, body.Code)
	assert.Equal(t, "req-1", body.RequestID)
}

func TestAcceptedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	c.Set(constants.ContextRequestID, "req-2")

	require.NoError(t, NewBaseController().AcceptedResponse(c, map[string]string{"singletonId": "run-1"}, "dispatched"))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	var body Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusAccepted, body.Status)
	assert.Equal(t, "req-2", body.RequestID)
}
