package middleware

import (
	"errors"
	"strings"

	"schedule-compiler/core/constants"
	"schedule-compiler/core/controller"
	apperrors "schedule-compiler/core/errors"
	"schedule-compiler/core/logger"
	"schedule-compiler/core/utils"

	"github.com/labstack/echo/v4"
)

type Middleware struct {
	jwtSecret string
	base      controller.BaseController
}

func NewMiddleware(jwtSecret string) *Middleware {
	return &Middleware{
		jwtSecret: jwtSecret,
		base:      controller.NewBaseController(),
	}
}

// AuthMiddleware checks the bearer token and stores its claims under constants.ContextTokenData.
// With no secret configured it lets every request through.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m.jwtSecret == "" {
				return next(c)
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return m.base.Unauthorized(apperrors.ErrMissingAuthorizationHeader, "Missing authorization header")
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return m.base.Unauthorized(apperrors.ErrInvalidTokenFormat, "Invalid authorization header format")
			}

			claims, err := utils.ParseToken(m.jwtSecret, raw)
			if err != nil {
				if errors.Is(err, utils.ErrTokenExpired) {
					return m.base.Unauthorized(apperrors.ErrTokenExpired, "Token expired")
				}
				logger.Warn("Middleware:Auth:InvalidToken", "error", err)
				return m.base.Unauthorized(apperrors.ErrUnauthorized, "Invalid token")
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// RequestID tags each request with a short id, echoed in the X-Request-ID header.
func (m *Middleware) RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = utils.GenerateID()
			}
			c.Set(constants.ContextRequestID, id)
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			return next(c)
		}
	}
}
