package internal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// scheduledTask pairs a cron expression with the function to run.
type scheduledTask struct {
	task func(context.Context) error
	spec string
}

// scheduler runs background tasks on cron schedules. It starts with the
// server and stops during graceful shutdown, waiting for running tasks.
type scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

func newScheduler(log *slog.Logger, tasks []scheduledTask) (*scheduler, error) {
	s := &scheduler{
		cron:   cron.New(),
		logger: log,
	}
	for _, t := range tasks {
		spec, task := t.spec, t.task
		_, err := s.cron.AddFunc(spec, func() {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("scheduled task panic",
						slog.String("schedule", spec),
						slog.Any("panic", rec),
					)
				}
			}()
			if err := task(context.Background()); err != nil {
				log.Error("scheduled task failed",
					slog.String("schedule", spec),
					slog.Any("error", err),
				)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("schedule %q: %w", spec, err)
		}
	}
	return s, nil
}

// startFunc returns a startup hook that starts the cron runner.
func (s *scheduler) startFunc() func(context.Context) error {
	return func(context.Context) error {
		s.cron.Start()
		s.logger.Info("scheduler started", slog.Int("tasks", len(s.cron.Entries())))
		return nil
	}
}

// stopFunc returns a shutdown hook that stops scheduling and waits for
// running tasks, bounded by the shutdown context.
func (s *scheduler) stopFunc() func(context.Context) error {
	return func(ctx context.Context) error {
		stopped := s.cron.Stop()
		select {
		case <-stopped.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
