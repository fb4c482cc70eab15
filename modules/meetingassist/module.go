package meetingassist

import (
	"schedule-compiler/core/middleware"
	"schedule-compiler/core/queue"
	"schedule-compiler/modules/meetingassist/controller"
	"schedule-compiler/modules/meetingassist/router"
	"schedule-compiler/modules/meetingassist/service"
	"schedule-compiler/modules/meetingassist/task"
	"schedule-compiler/modules/planner/repository"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
)

// Deps are the collaborators the schedule-assist module is built from.
type Deps struct {
	DataSource repository.DataSourceInterface
	Planner    service.Compiler
	// Enqueuer and Mux are nil when no queue is configured.
	Enqueuer  queue.Enqueuer
	Mux       *asynq.ServeMux
	QueueName string
	Workers   int
}

// Init initializes the schedule-assist module, registers routes and, when a task mux
// is given, the queue handler.
func Init(e *echo.Echo, deps Deps, mw *middleware.Middleware) {
	svc := service.NewScheduleAssistService(deps.DataSource, deps.Planner, deps.Enqueuer, deps.QueueName, deps.Workers)
	ctrl := controller.NewScheduleAssistController(svc)
	rtr := router.NewScheduleAssistRouter(ctrl)

	rtr.Setup(e, mw)

	if deps.Mux != nil {
		task.NewScheduleAssistHandler(svc).Register(deps.Mux)
	}
}
