package archive

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// Scheduler runs an Archiver on a cron schedule. Standard five-field
// expressions and descriptors such as @hourly are accepted.
type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	archiver *Archiver
}

func NewScheduler(a *Archiver, spec string) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse archive schedule %q: %w", spec, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		schedule: schedule,
		archiver: a,
	}, nil
}

// Run starts the schedule and blocks until ctx is done, then waits for a
// running export to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Schedule(s.schedule, cron.FuncJob(func() {
		if _, err := s.archiver.RunOnce(ctx); err != nil {
			s.archiver.logger.Error(ctx, "access log archive failed", "error", err)
		}
	}))

	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
}
