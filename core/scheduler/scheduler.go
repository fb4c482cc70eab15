package scheduler

import (
	"fmt"
	"time"

	"schedule-compiler/core/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler runs named periodic jobs on a cron with seconds precision.
type Scheduler struct {
	cron *cron.Cron
}

func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

// Register adds job under spec, e.g. "0 0 3 * * *". Panics inside job are logged and swallowed.
func (s *Scheduler) Register(name, spec string, job func()) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Scheduler:JobPanic", "job", name, "panic", r)
			}
		}()
		started := time.Now()
		job()
		logger.Info("Scheduler:JobDone", "job", name, "elapsed", time.Since(started).String())
	})
	if err != nil {
		return 0, fmt.Errorf("register %s with spec %q: %w", name, spec, err)
	}
	logger.Info("Scheduler:Registered", "job", name, "spec", spec)
	return id, nil
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
