package controller

import (
	stderrors "errors"
	"net/http"
	"time"

	"schedule-compiler/core/constants"
	"schedule-compiler/core/errors"
	"schedule-compiler/core/logger"

	"github.com/labstack/echo/v4"
)

// Envelope is the body of every successful response.
type Envelope struct {
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	RequestID string    `json:"requestId,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the body of every failed response.
type ErrorResponse struct {
	Status    string           `json:"status"`
	Code      errors.ErrorCode `json:"code"`
	Message   string           `json:"message"`
	RequestID string           `json:"requestId,omitempty"`
	Details   any              `json:"details,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

type BaseController interface {
	BadRequest(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	NotFound(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	Unauthorized(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	Forbidden(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	SuccessResponse(c echo.Context, data any, message string) error
	AcceptedResponse(c echo.Context, data any, message string) error
	ErrorResponse(c echo.Context, err error) error
}

type responseHandler struct{}

func NewBaseController() BaseController {
	return &responseHandler{}
}

// StatusFor maps an application error code to an HTTP status.
func StatusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrInvalidInput, errors.ErrInvalidRequestData:
		return http.StatusBadRequest
	case errors.ErrUnauthorized, errors.ErrTokenExpired, errors.ErrInvalidTokenFormat, errors.ErrMissingAuthorizationHeader:
		return http.StatusUnauthorized
	case errors.ErrForbidden:
		return http.StatusForbidden
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrAlreadyExists:
		return http.StatusConflict
	case errors.ErrEmptyResult:
		return http.StatusUnprocessableEntity
	case errors.ErrUpstream, errors.ErrSnapshotFailed, errors.ErrDispatchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// httpError builds an echo error whose message is the error envelope. Echo's default
// error handler writes it as the response body.
func httpError(status int, code errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	body := &ErrorResponse{Status: "error", Code: code, Message: message, Timestamp: time.Now()}
	if len(details) > 0 {
		body.Details = details[0]
	}
	return echo.NewHTTPError(status, body)
}

func (h *responseHandler) BadRequest(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return httpError(http.StatusBadRequest, appErrCode, message, details...)
}

func (h *responseHandler) NotFound(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return httpError(http.StatusNotFound, appErrCode, message, details...)
}

func (h *responseHandler) Unauthorized(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return httpError(http.StatusUnauthorized, appErrCode, message, details...)
}

func (h *responseHandler) Forbidden(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return httpError(http.StatusForbidden, appErrCode, message, details...)
}

func (h *responseHandler) SuccessResponse(c echo.Context, data any, message string) error {
	return h.write(c, http.StatusOK, data, message)
}

// AcceptedResponse answers runs that were handed to the solver and finish asynchronously.
func (h *responseHandler) AcceptedResponse(c echo.Context, data any, message string) error {
	return h.write(c, http.StatusAccepted, data, message)
}

func (h *responseHandler) write(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, &Envelope{
		Status:    status,
		Message:   message,
		RequestID: requestID(c),
		Data:      data,
		Timestamp: time.Now(),
	})
}

// ErrorResponse writes err as an error envelope. AppErrors keep their code and message,
// anything else becomes an internal error.
func (h *responseHandler) ErrorResponse(c echo.Context, err error) error {
	code := errors.ErrInternalServer
	msg := "internal server error"

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr != nil {
		code = appErr.Code
		if appErr.Message != "" {
			msg = appErr.Message
		}
	} else if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	status := StatusFor(code)

	kv := []any{"status", status, "code", code, "path", c.Path(), "requestId", requestID(c)}
	if status >= http.StatusInternalServerError {
		logger.Error("BaseController:ErrorResponse", append(kv, "error", err)...)
	} else {
		logger.Warn("BaseController:ErrorResponse", append(kv, "message", msg)...)
	}

	return c.JSON(status, &ErrorResponse{
		Status:    "error",
		Code:      code,
		Message:   msg,
		RequestID: requestID(c),
		Timestamp: time.Now(),
	})
}

func requestID(c echo.Context) string {
	id, _ := c.Get(constants.ContextRequestID).(string)
	return id
}
