// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mmynk/triplan/internal/feed"
	"github.com/mmynk/triplan/internal/metrics"
)

// ProjectCompleter is the storage operation the sweep needs.
type ProjectCompleter interface {
	CompleteProjectsEndedBefore(ctx context.Context, cutoff time.Time) ([]string, error)
}

// Scheduler marks trips Completed once their end date has passed.
type Scheduler struct {
	cron     *cron.Cron
	store    ProjectCompleter
	events   feed.Publisher
	now      func() time.Time
	schedule string
}

// New creates a scheduler running the sweep on schedule (cron syntax or
// descriptors such as "@hourly"). events may be nil.
func New(store ProjectCompleter, events feed.Publisher, schedule string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		store:    store,
		events:   events,
		now:      time.Now,
		schedule: schedule,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		slog.Info("Running project completion sweep")
		if _, err := s.Sweep(context.Background()); err != nil {
			slog.Error("Project completion sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	slog.Info("Scheduler started", "schedule", s.schedule)
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("Scheduler stopped")
}

// Sweep completes every Planning project whose end date is before today
// (UTC). A trip ending today stays open until tomorrow.
func (s *Scheduler) Sweep(ctx context.Context) ([]string, error) {
	y, m, d := s.now().UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	ids, err := s.store.CompleteProjectsEndedBefore(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to complete ended projects: %w", err)
	}

	metrics.ProjectsCompletedTotal.Add(float64(len(ids)))
	for _, id := range ids {
		if s.events != nil {
			s.events.Publish(feed.Event{
				Resource:  feed.ResourceProjects,
				Action:    feed.ActionUpdated,
				ProjectID: id,
				ID:        id,
			})
		}
	}
	if len(ids) > 0 {
		slog.Info("Projects completed", "count", len(ids))
	}
	return ids, nil
}
