// Package scheduler runs the export on a cron schedule.
//
// Each tick is an independent run. A tick that fires while the previous run
// is still going is skipped, so runs never overlap.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// parser accepts standard 5-field specs, an optional leading seconds field,
// and descriptors such as "@hourly" or "@every 30m".
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule validates spec.
func ParseSchedule(spec string) (cron.Schedule, error) {
	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return sched, nil
}

// Scheduler invokes a Job on a cron schedule.
type Scheduler struct {
	spec     string
	schedule cron.Schedule
	job      Job
	logger   *slog.Logger
}

// New creates a Scheduler.
func New(spec string, job Job, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sched, err := ParseSchedule(spec)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		spec:     spec,
		schedule: sched,
		job:      job,
		logger:   logger,
	}, nil
}

// Next returns the first activation time after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Run blocks until ctx is cancelled, running the job on every tick. Job
// errors are logged and do not stop the schedule. On return, any in-flight
// run has finished.
func (s *Scheduler) Run(ctx context.Context) error {
	log := cronLogger{logger: s.logger}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)

	c.Schedule(s.schedule, cron.FuncJob(func() {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		if err := s.job(ctx); err != nil {
			s.logger.Error("scheduled run failed", "error", err, "duration", time.Since(start))
			return
		}
		s.logger.Debug("scheduled run finished", "duration", time.Since(start))
	}))

	c.Start()
	s.logger.Info("scheduler started",
		"schedule", s.spec,
		"next_run", s.Next(time.Now()),
	)

	<-ctx.Done()

	s.logger.Info("stopping scheduler")
	<-c.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

// cronLogger adapts slog to cron.Logger. Routine cron chatter goes to debug.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if msg == "skip" {
		l.logger.Warn("skipping scheduled run, previous run still in progress")
		return
	}
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
