package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/yigit/facilityhub/internal/pkg/logger"
)

// Job is a unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Manager runs jobs on cron schedules with seconds precision.
type Manager struct {
	cron    *cron.Cron
	timeout time.Duration
	log     zerolog.Logger
}

// NewManager creates a manager whose job runs are bounded by timeout.
func NewManager(timeout time.Duration) *Manager {
	return &Manager{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		timeout: timeout,
		log:     logger.Get().With().Str("component", "jobs").Logger(),
	}
}

// Schedule registers job under a six-field cron spec.
func (m *Manager) Schedule(spec string, job Job) error {
	if _, err := m.cron.AddFunc(spec, func() { m.run(job) }); err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name(), err)
	}
	m.log.Info().Str("job", job.Name()).Str("schedule", spec).Msg("Job scheduled")
	return nil
}

// Start starts the scheduler in its own goroutine.
func (m *Manager) Start() {
	m.cron.Start()
	m.log.Info().Int("jobs", len(m.cron.Entries())).Msg("Cron jobs started")
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (m *Manager) Stop(ctx context.Context) {
	m.log.Info().Msg("Stopping cron jobs...")
	select {
	case <-m.cron.Stop().Done():
		m.log.Info().Msg("Cron jobs stopped")
	case <-ctx.Done():
		m.log.Warn().Msg("Timed out waiting for running jobs")
	}
}

func (m *Manager) run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	jobLog := m.log.With().Str("job", job.Name()).Logger()
	ctx = jobLog.WithContext(ctx)

	start := time.Now()
	jobLog.Info().Msg("Starting job")
	if err := job.Run(ctx); err != nil {
		jobLog.Error().Err(err).Dur("duration", time.Since(start)).Msg("Job failed")
		return
	}
	jobLog.Info().Dur("duration", time.Since(start)).Msg("Job completed")
}
