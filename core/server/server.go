package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"schedule-compiler/core/cache"
	"schedule-compiler/core/config"
	"schedule-compiler/core/database"
	"schedule-compiler/core/logger"
	"schedule-compiler/core/middleware"
	"schedule-compiler/core/queue"
	"schedule-compiler/core/scheduler"
	"schedule-compiler/core/storage"
	"schedule-compiler/modules/meetingassist"
	"schedule-compiler/modules/planner"
	"schedule-compiler/modules/planner/repository"
	"schedule-compiler/modules/planner/service"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 15 * time.Second

// Run loads config, wires the modules and serves until SIGINT or SIGTERM.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if err := cfg.Validate(); err != nil {
		logger.Error("Server:Run:InvalidConfig", "error", err)
		return err
	}

	var runs repository.RunRepositoryInterface
	if cfg.Database.Enabled {
		db, err := database.InitDB(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		runs = repository.NewRunRepository(db)
	}

	var dataSource repository.DataSourceInterface = repository.NewHasuraRepository(cfg.DataSource, nil)

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Warn("Server:Run:RedisUnavailable", "addr", cfg.Redis.Addr, "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		if cfg.Cache.Enabled {
			dataSource = repository.NewCachedDataSource(dataSource, cache.NewRedisCache(redisClient), cfg.Cache.TTL)
		}
	}

	store := storage.NewS3Store(storage.NewS3Client(cfg.Storage), cfg.Storage.Bucket)
	solver := service.NewHTTPSolverClient(cfg.Solver, nil)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	mw := middleware.NewMiddleware(cfg.Auth.JWTSecret)
	e.Use(mw.RequestID())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	plannerSvc := planner.Init(e, planner.Deps{
		DataSource: dataSource,
		Runs:       runs,
		Store:      store,
		Solver:     solver,
		Options: service.Options{
			Granularity: cfg.Planner.Granularity,
			Workers:     cfg.Planner.Workers,
			Delay:       cfg.Solver.Delay,
			CallbackURL: cfg.Solver.CallbackURL,
		},
	}, mw)

	assistDeps := meetingassist.Deps{
		DataSource: dataSource,
		Planner:    plannerSvc,
		QueueName:  cfg.Queue.QueueName,
		Workers:    cfg.Planner.Workers,
	}

	var taskServer *asynq.Server
	if redisClient != nil {
		client := queue.NewClient(cfg.Redis)
		defer client.Close()
		assistDeps.Enqueuer = client
		assistDeps.Mux = asynq.NewServeMux()
		taskServer = queue.NewServer(cfg.Redis, cfg.Queue)
	}

	meetingassist.Init(e, assistDeps, mw)

	if taskServer != nil {
		if err := taskServer.Start(assistDeps.Mux); err != nil {
			return fmt.Errorf("start task server: %w", err)
		}
		defer taskServer.Shutdown()
	}

	if cfg.Scheduler.Enabled {
		sched, err := newScheduler(cfg.Scheduler, plannerSvc)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	return serve(e, cfg.Server)
}

func newScheduler(cfg config.SchedulerConfig, svc service.PlannerServiceInterface) (*scheduler.Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler timezone: %w", err)
	}
	retention := time.Duration(cfg.Retention) * 24 * time.Hour

	sched := scheduler.New(loc)
	_, err = sched.Register("prune_runs", cfg.PruneSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := svc.PruneRuns(ctx, retention); err != nil {
			logger.Error("Scheduler:PruneRuns", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return sched, nil
}

func serve(e *echo.Echo, cfg config.ServerConfig) error {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server:Start", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("Server:Start", "error", err)
		return err
	case sig := <-quit:
		logger.Info("Server:Shutdown", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server:Shutdown", "error", err)
		return err
	}
	return nil
}
