package router

import (
	"schedule-compiler/core/middleware"
	"schedule-compiler/modules/planner/controller"

	"github.com/labstack/echo/v4"
)

// PlannerRouter handles planner routes
type PlannerRouter struct {
	PlannerController *controller.PlannerController
}

// NewPlannerRouter creates a new router
func NewPlannerRouter(plannerController *controller.PlannerController) *PlannerRouter {
	return &PlannerRouter{
		PlannerController: plannerController,
	}
}

// Setup registers planner routes
func (r *PlannerRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	plannerRoutes := v1.Group("/planner", mw.AuthMiddleware())
	plannerRoutes.POST("/compile", r.PlannerController.Compile)
	plannerRoutes.POST("/replan", r.PlannerController.Replan)
	plannerRoutes.GET("/runs/:id", r.PlannerController.GetRun)
}
