package controller

import (
	"schedule-compiler/core/constants"
	"schedule-compiler/core/controller"
	"schedule-compiler/core/errors"
	"schedule-compiler/core/utils"
	"schedule-compiler/modules/meetingassist/dto"
	"schedule-compiler/modules/meetingassist/service"

	"github.com/labstack/echo/v4"
)

// ScheduleAssistController handles schedule-assist HTTP requests
type ScheduleAssistController struct {
	controller.BaseController
	ScheduleAssistService service.ScheduleAssistServiceInterface
}

// NewScheduleAssistController creates a new controller
func NewScheduleAssistController(svc service.ScheduleAssistServiceInterface) *ScheduleAssistController {
	return &ScheduleAssistController{
		BaseController:        controller.NewBaseController(),
		ScheduleAssistService: svc,
	}
}

func (c *ScheduleAssistController) bind(ctx echo.Context) (*dto.ScheduleAssistRequest, error) {
	var req dto.ScheduleAssistRequest
	if err := ctx.Bind(&req); err != nil {
		return nil, c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	if claims, ok := ctx.Get(constants.ContextTokenData).(*utils.TokenClaims); ok && claims != nil && claims.UserID != "" {
		if req.UserID != "" && req.UserID != claims.UserID {
			return nil, c.Forbidden(errors.ErrForbidden, "userId does not match the authenticated user")
		}
		req.UserID = claims.UserID
	}
	return &req, nil
}

// Run handles POST /schedule-assist
func (c *ScheduleAssistController) Run(ctx echo.Context) error {
	req, err := c.bind(ctx)
	if err != nil {
		return err
	}

	report, appErr := c.ScheduleAssistService.Run(ctx.Request().Context(), req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.AcceptedResponse(ctx, report, "Planning run dispatched")
}

// Enqueue handles POST /schedule-assist/enqueue
func (c *ScheduleAssistController) Enqueue(ctx echo.Context) error {
	req, err := c.bind(ctx)
	if err != nil {
		return err
	}

	result, appErr := c.ScheduleAssistService.Enqueue(ctx.Request().Context(), req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.AcceptedResponse(ctx, result, "Planning run queued")
}
