package scheduler

import (
	"context"
	"time"

	"github.com/fortuna/propline/internal/logger"
	"github.com/fortuna/propline/internal/store"
	"go.uber.org/zap"
)

// Task is the work run once per day.
type Task func(ctx context.Context) error

// Daily runs a task every day at a fixed hour in a fixed location.
type Daily struct {
	hour  int
	loc   *time.Location
	task  Task
	now   func() time.Time
	after func(time.Duration) <-chan time.Time
	log   *logger.Logger
}

// NewDaily creates a scheduler that runs task at hour:00 in loc. A nil loc
// means US Eastern, where the NBA game day is defined.
func NewDaily(hour int, loc *time.Location, task Task, log *logger.Logger) *Daily {
	if loc == nil {
		loc = store.Eastern
	}
	return &Daily{
		hour:  hour,
		loc:   loc,
		task:  task,
		now:   time.Now,
		after: time.After,
		log:   log.Named("scheduler"),
	}
}

// NextRun returns the first hour:00 in loc strictly after now.
func NextRun(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, 0, 0, 0, loc)
	}
	return next
}

// Run blocks until ctx is done, running the task once a day. A failed run is
// logged and the next one is scheduled as usual.
func (d *Daily) Run(ctx context.Context) {
	d.log.Info("daily scheduler started", zap.Int("hour", d.hour), zap.String("location", d.loc.String()))

	for {
		next := NextRun(d.now(), d.hour, d.loc)
		wait := next.Sub(d.now())
		d.log.Info("next run scheduled", zap.Time("at", next), zap.Duration("in", wait.Round(time.Second)))

		select {
		case <-ctx.Done():
			d.log.Info("daily scheduler stopped")
			return
		case <-d.after(wait):
			start := d.now()
			if err := d.task(ctx); err != nil {
				d.log.Error("scheduled run failed", err)
				continue
			}
			d.log.Info("scheduled run complete", zap.Duration("took", d.now().Sub(start).Round(time.Millisecond)))
		}
	}
}
