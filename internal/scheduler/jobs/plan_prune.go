package jobs

import (
	"context"
	"time"

	"github.com/wonny/folio/pkg/logger"
)

// PlanPruner deletes archived plans older than a cutoff
type PlanPruner interface {
	PrunePlans(ctx context.Context, before time.Time) (int64, error)
}

// PlanPruneJob trims the plan archive daily
type PlanPruneJob struct {
	pruner    PlanPruner
	retention time.Duration
	now       func() time.Time
	logger    *logger.Logger
}

// NewPlanPruneJob creates a prune job keeping `retention` of history
func NewPlanPruneJob(pruner PlanPruner, retention time.Duration, log *logger.Logger) *PlanPruneJob {
	if log == nil {
		log = logger.Nop()
	}
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	return &PlanPruneJob{
		pruner:    pruner,
		retention: retention,
		now:       time.Now,
		logger:    log.WithComponent("plan_prune"),
	}
}

// Name returns the job name
func (j *PlanPruneJob) Name() string {
	return "plan_prune"
}

// Schedule returns the cron schedule (daily 03:30)
func (j *PlanPruneJob) Schedule() string {
	return "0 30 3 * * *"
}

// Run executes the archive prune
func (j *PlanPruneJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)
	removed, err := j.pruner.PrunePlans(ctx, cutoff)
	if err != nil {
		return err
	}

	if removed > 0 {
		j.logger.WithFields(map[string]interface{}{
			"removed": removed,
			"cutoff":  cutoff,
		}).Info("Plan archive pruned")
	}
	return nil
}
