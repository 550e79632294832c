package jobs

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yigit/facilityhub/internal/pkg/logger"
)

// Purger hard-deletes rows soft-deleted before cutoff and reports counts per table.
type Purger interface {
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (map[string]int64, error)
}

// Invalidator drops cached settings.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// PurgeJob removes rows that have been soft-deleted for longer than the retention window.
type PurgeJob struct {
	purger      Purger
	retention   time.Duration
	purged      *prometheus.CounterVec
	invalidator Invalidator
	now         func() time.Time
}

// NewPurgeJob creates the purge job. purged and invalidator may be nil.
func NewPurgeJob(purger Purger, retention time.Duration, purged *prometheus.CounterVec, invalidator Invalidator) *PurgeJob {
	return &PurgeJob{
		purger:      purger,
		retention:   retention,
		purged:      purged,
		invalidator: invalidator,
		now:         time.Now,
	}
}

// Name implements Job.
func (j *PurgeJob) Name() string { return "purge_soft_deleted" }

// Run implements Job.
func (j *PurgeJob) Run(ctx context.Context) error {
	_, err := j.Purge(ctx)
	return err
}

// Purge runs one pass and returns the removed row count per table.
func (j *PurgeJob) Purge(ctx context.Context) (map[string]int64, error) {
	cutoff := j.now().Add(-j.retention)
	counts, err := j.purger.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	var total int64
	for table, n := range counts {
		total += n
		if j.purged != nil && n > 0 {
			j.purged.WithLabelValues(table).Add(float64(n))
		}
	}
	if total > 0 && j.invalidator != nil {
		j.invalidator.Invalidate(ctx)
	}

	logger.FromContext(ctx).Info().
		Time("cutoff", cutoff).
		Int64("rows", total).
		Interface("tables", counts).
		Msg("Purged soft-deleted rows")
	return counts, nil
}
