package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/portfolio"
	"github.com/wonny/folio/pkg/logger"
)

// SnapshotSource provides engine inputs per portfolio
type SnapshotSource interface {
	ListPortfolios(ctx context.Context) ([]string, error)
	LoadSnapshot(ctx context.Context, portfolioID string) (*contracts.Snapshot, error)
}

// PlanSink receives every freshly computed result
type PlanSink interface {
	SavePlan(ctx context.Context, result *contracts.Result) error
}

// PlanStore caches the latest result
type PlanStore interface {
	Put(ctx context.Context, result *contracts.Result) error
}

// Broadcaster pushes results to live clients
type Broadcaster interface {
	Broadcast(result *contracts.Result)
}

// PlanRefreshJob recomputes every portfolio's plan on a schedule
// ⭐ SSOT: 주기적 플랜 재계산은 이 Job에서만
type PlanRefreshJob struct {
	source   SnapshotSource
	engine   *portfolio.Engine
	archive  PlanSink
	cache    PlanStore
	hub      Broadcaster
	schedule string
	logger   *logger.Logger
}

// NewPlanRefreshJob creates the refresh job; archive, cache and hub may be nil
func NewPlanRefreshJob(
	source SnapshotSource,
	engine *portfolio.Engine,
	archive PlanSink,
	cache PlanStore,
	hub Broadcaster,
	schedule string,
	log *logger.Logger,
) *PlanRefreshJob {
	if log == nil {
		log = logger.Nop()
	}
	if schedule == "" {
		schedule = "0 */15 * * * *"
	}
	return &PlanRefreshJob{
		source:   source,
		engine:   engine,
		archive:  archive,
		cache:    cache,
		hub:      hub,
		schedule: schedule,
		logger:   log.WithComponent("plan_refresh"),
	}
}

// Name returns the job name
func (j *PlanRefreshJob) Name() string {
	return "plan_refresh"
}

// Schedule returns the cron schedule (with seconds)
func (j *PlanRefreshJob) Schedule() string {
	return j.schedule
}

// Run refreshes all portfolios. 한 포트폴리오의 실패는 나머지에 영향 없음
func (j *PlanRefreshJob) Run(ctx context.Context) error {
	ids, err := j.source.ListPortfolios(ctx)
	if err != nil {
		return fmt.Errorf("list portfolios: %w", err)
	}

	var errs []error
	refreshed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := j.RefreshOne(ctx, id); err != nil {
			j.logger.WithFields(map[string]interface{}{
				"portfolio": id,
				"error":     err.Error(),
			}).Error("Portfolio refresh failed")
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		refreshed++
	}

	j.logger.WithFields(map[string]interface{}{
		"portfolios": len(ids),
		"refreshed":  refreshed,
		"failed":     len(errs),
	}).Info("Plan refresh completed")

	return errors.Join(errs...)
}

// RefreshOne loads, validates and recomputes one portfolio
func (j *PlanRefreshJob) RefreshOne(ctx context.Context, portfolioID string) (*contracts.Result, error) {
	snap, err := j.source.LoadSnapshot(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if err := contracts.ValidateSnapshot(snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}

	result := j.engine.Run(snap)

	// 캐시/브로드캐스트 실패는 경고만; 아카이브 실패는 에러
	if j.cache != nil {
		if err := j.cache.Put(ctx, result); err != nil {
			j.logger.WithError(err).WithField("portfolio", portfolioID).Warn("Plan cache write failed")
		}
	}
	if j.archive != nil {
		if err := j.archive.SavePlan(ctx, result); err != nil {
			return result, fmt.Errorf("archive plan: %w", err)
		}
	}
	if j.hub != nil {
		j.hub.Broadcast(result)
	}

	return result, nil
}
