package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"
)

// Sweeper is the periodic reminder job.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

type Scheduler struct {
	s   gocron.Scheduler
	ctx context.Context
}

func NewScheduler(location *time.Location) (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(location),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:   s,
		ctx: context.Background(),
	}, nil
}

// Start registers the reminder sweep on the given cron schedule and starts
// running jobs. A sweep that is still running when the next one is due is skipped.
func (s *Scheduler) Start(ctx context.Context, reminders Sweeper, schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	s.ctx = ctx

	_, err := s.s.NewJob(
		gocron.CronJob(schedule, false),
		gocron.NewTask(s.sweep, reminders),
		gocron.WithName("reminder-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder job: %w", err)
	}

	s.s.Start()
	return nil
}

func (s *Scheduler) sweep(reminders Sweeper) {
	sent, err := reminders.Sweep(s.ctx)
	if err != nil {
		slog.Error("Failed to sweep reminders", "error", err)
		return
	}
	if sent > 0 {
		slog.Info("Sent scrim reminders", "count", sent)
	}
}

// After runs fn once, delay from now.
func (s *Scheduler) After(delay time.Duration, name string, fn func()) error {
	_, err := s.s.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(time.Now().Add(delay))),
		gocron.NewTask(fn),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}
