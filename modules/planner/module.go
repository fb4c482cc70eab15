package planner

import (
	"schedule-compiler/core/middleware"
	"schedule-compiler/core/storage"
	"schedule-compiler/modules/planner/controller"
	"schedule-compiler/modules/planner/repository"
	"schedule-compiler/modules/planner/router"
	"schedule-compiler/modules/planner/service"

	"github.com/labstack/echo/v4"
)

// Deps are the collaborators the planner module is built from.
type Deps struct {
	DataSource repository.DataSourceInterface
	// Runs may be nil when no database is configured.
	Runs    repository.RunRepositoryInterface
	Store   storage.ObjectStore
	Solver  service.SolverClient
	Options service.Options
}

// Init initializes the planner module and registers routes. The service is returned
// so other modules can hand their inputs to it.
func Init(e *echo.Echo, deps Deps, mw *middleware.Middleware) service.PlannerServiceInterface {
	svc := service.NewPlannerService(deps.DataSource, deps.Runs, deps.Store, deps.Solver, deps.Options)
	ctrl := controller.NewPlannerController(svc)
	rtr := router.NewPlannerRouter(ctrl)

	rtr.Setup(e, mw)
	return svc
}
