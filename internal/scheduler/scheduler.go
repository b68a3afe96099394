package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/i474232898/worldview-aggregation/internal/logging"
	"github.com/i474232898/worldview-aggregation/internal/worldview"
)

// Scheduler periodically refreshes layer caches so requests are mostly
// served warm.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *worldview.Service
	intervals map[worldview.Layer]time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. Layers without a positive interval are not
// scheduled.
func New(intervals map[worldview.Layer]time.Duration, timeout time.Duration, service *worldview.Service) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		scheduler: s,
		service:   service,
		intervals: intervals,
		timeout:   timeout,
	}
}

// Start schedules one job per layer and starts the underlying scheduler.
// Jobs run once immediately.
func (s *Scheduler) Start() error {
	s.scheduler.SingletonModeAll()

	scheduled := 0
	for _, layer := range worldview.Layers {
		interval := s.intervals[layer]
		if interval <= 0 || !s.service.Enabled(layer) {
			continue
		}
		if _, err := s.scheduler.Every(interval).Do(s.refresh, layer); err != nil {
			return err
		}
		logging.Info().Str("layer", string(layer)).Dur("interval", interval).Msg("scheduler: layer refresh scheduled")
		scheduled++
	}

	if scheduled == 0 {
		logging.Info().Msg("scheduler: no layers configured; nothing to schedule")
		return nil
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) refresh(layer worldview.Layer) {
	runID := uuid.NewString()
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.service.Refresh(ctx, layer); err != nil {
		logging.Warn().Err(err).Str("run_id", runID).Str("layer", string(layer)).Msg("scheduler: refresh failed; keeping last good data")
		return
	}
	logging.Debug().Str("run_id", runID).Str("layer", string(layer)).Dur("took", time.Since(start)).Msg("scheduler: refresh completed")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
