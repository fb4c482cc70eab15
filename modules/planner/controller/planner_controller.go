package controller

import (
	"schedule-compiler/core/constants"
	"schedule-compiler/core/controller"
	"schedule-compiler/core/errors"
	"schedule-compiler/core/utils"
	"schedule-compiler/modules/planner/dto"
	"schedule-compiler/modules/planner/service"

	"github.com/labstack/echo/v4"
)

// PlannerController handles planner HTTP requests
type PlannerController struct {
	controller.BaseController
	PlannerService service.PlannerServiceInterface
}

// NewPlannerController creates a new controller
func NewPlannerController(svc service.PlannerServiceInterface) *PlannerController {
	return &PlannerController{
		BaseController: controller.NewBaseController(),
		PlannerService: svc,
	}
}

// callerID returns the authenticated user id, or "" when auth is disabled.
func (c *PlannerController) callerID(ctx echo.Context) string {
	claims, ok := ctx.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok || claims == nil {
		return ""
	}
	return claims.UserID
}

// Compile handles POST /planner/compile
func (c *PlannerController) Compile(ctx echo.Context) error {
	var req dto.CompileRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	if caller := c.callerID(ctx); caller != "" {
		if req.HostID != "" && req.HostID != caller {
			return c.Forbidden(errors.ErrForbidden, "hostId does not match the authenticated user")
		}
		req.HostID = caller
	}

	report, appErr := c.PlannerService.Compile(ctx.Request().Context(), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.AcceptedResponse(ctx, dto.CompileResponse{Run: report}, "Planning run dispatched")
}

// Replan handles POST /planner/replan
func (c *PlannerController) Replan(ctx echo.Context) error {
	var req dto.ReplanRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	req.CallerID = c.callerID(ctx)

	report, appErr := c.PlannerService.Replan(ctx.Request().Context(), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.AcceptedResponse(ctx, dto.CompileResponse{Run: report}, "Replan dispatched")
}

// GetRun handles GET /planner/runs/:id
func (c *PlannerController) GetRun(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return c.BadRequest(errors.ErrInvalidInput, "Run id is required")
	}

	report, appErr := c.PlannerService.GetRun(ctx.Request().Context(), id)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, report, "Run retrieved successfully")
}
