package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"schedule-compiler/core/constants"
	"schedule-compiler/core/errors"
	"schedule-compiler/core/utils"
	"schedule-compiler/modules/meetingassist/dto"
	"schedule-compiler/modules/planner/entity"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockScheduleAssistService struct {
	runFunc     func(ctx context.Context, req *dto.ScheduleAssistRequest) (*entity.RunReport, *errors.AppError)
	enqueueFunc func(ctx context.Context, req *dto.ScheduleAssistRequest) (*dto.EnqueueResponse, *errors.AppError)
}

func (m *mockScheduleAssistService) Run(ctx context.Context, req *dto.ScheduleAssistRequest) (*entity.RunReport, *errors.AppError) {
	return m.runFunc(ctx, req)
}

func (m *mockScheduleAssistService) Enqueue(ctx context.Context, req *dto.ScheduleAssistRequest) (*dto.EnqueueResponse, *errors.AppError) {
	return m.enqueueFunc(ctx, req)
}

func newContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

const windowBody = `{"windowStartDate":"2024-03-04T09:00:00","windowEndDate":"2024-03-08T17:00:00","timezone":"UTC"}`

func TestScheduleAssistController_Run(t *testing.T) {
	var got *dto.ScheduleAssistRequest
	svc := &mockScheduleAssistService{runFunc: func(ctx context.Context, req *dto.ScheduleAssistRequest) (*entity.RunReport, *errors.AppError) {
		got = req
		return &entity.RunReport{SingletonID: "run-1"}, nil
	}}
	ctrl := NewScheduleAssistController(svc)

	c, rec := newContext(windowBody)
	c.Set(constants.ContextTokenData, &utils.TokenClaims{UserID: "h1"})

	require.NoError(t, ctrl.Run(c))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), `"singletonId":"run-1"`)
	require.NotNil(t, got)
	assert.Equal(t, "h1", got.UserID)
}

func TestScheduleAssistController_Run_RejectsForeignUser(t *testing.T) {
	ctrl := NewScheduleAssistController(&mockScheduleAssistService{})

	c, _ := newContext(`{"userId":"someone-else","windowStartDate":"2024-03-04T09:00:00","windowEndDate":"2024-03-08T17:00:00","timezone":"UTC"}`)
	c.Set(constants.ContextTokenData, &utils.TokenClaims{UserID: "h1"})

	err := ctrl.Run(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestScheduleAssistController_Enqueue_Conflict(t *testing.T) {
	svc := &mockScheduleAssistService{enqueueFunc: func(ctx context.Context, req *dto.ScheduleAssistRequest) (*dto.EnqueueResponse, *errors.AppError) {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "A run for this window is already queued", nil)
	}}
	ctrl := NewScheduleAssistController(svc)

	c, rec := newContext(windowBody)
	c.Set(constants.ContextTokenData, &utils.TokenClaims{UserID: "h1"})

	require.NoError(t, ctrl.Enqueue(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestScheduleAssistController_Run_BadBody(t *testing.T) {
	ctrl := NewScheduleAssistController(&mockScheduleAssistService{})

	c, _ := newContext(`{"timezone":`)

	err := ctrl.Run(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
