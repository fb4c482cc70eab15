package router

import (
	"schedule-compiler/core/middleware"
	"schedule-compiler/modules/meetingassist/controller"

	"github.com/labstack/echo/v4"
)

// ScheduleAssistRouter handles schedule-assist routes
type ScheduleAssistRouter struct {
	ScheduleAssistController *controller.ScheduleAssistController
}

// NewScheduleAssistRouter creates a new router
func NewScheduleAssistRouter(ctrl *controller.ScheduleAssistController) *ScheduleAssistRouter {
	return &ScheduleAssistRouter{
		ScheduleAssistController: ctrl,
	}
}

// Setup registers schedule-assist routes
func (r *ScheduleAssistRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	assistRoutes := v1.Group("/schedule-assist", mw.AuthMiddleware())
	assistRoutes.POST("", r.ScheduleAssistController.Run)
	assistRoutes.POST("/enqueue", r.ScheduleAssistController.Enqueue)
}
