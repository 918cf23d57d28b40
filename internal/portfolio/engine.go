package portfolio

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/gatekeeper"
	"github.com/wonny/folio/internal/policy"
	"github.com/wonny/folio/internal/risk"
	"github.com/wonny/folio/pkg/logger"
)

// Engine runs the enrichment pipeline for one portfolio snapshot:
// GapAnalyzer → ActionClassifier → RiskAggregator → BudgetAllocator.
// 공유 가변 상태가 없으므로 포트폴리오별 병렬 실행 가능
type Engine struct {
	policy     *policy.Config
	policyHash string
	classifier Classifier
	allocator  *Allocator
	aggregator *risk.Aggregator
	gate       *gatekeeper.Gatekeeper
	logger     *logger.Logger
	now        func() time.Time

	newAnalyzer func(baseCurrency string) positionAnalyzer
}

type positionAnalyzer interface {
	Analyze(p contracts.Position, rec contracts.ScoreRecord, totalAUM decimal.Decimal, fx map[string]decimal.Decimal) contracts.EnrichedPosition
}

// NewEngine creates an engine bound to a validated policy
func NewEngine(cfg *policy.Config, log *logger.Logger) (*Engine, error) {
	if err := policy.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	hash, err := policy.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash policy: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("engine")

	e := &Engine{
		policy:     cfg,
		policyHash: hash,
		classifier: NewClassifier(cfg.Signals),
		allocator:  NewAllocator(cfg.Allocation, log),
		aggregator: risk.NewAggregator(cfg.Risk),
		gate:       gatekeeper.New(cfg.Gate, log),
		logger:     log,
		now:        time.Now,
	}
	e.newAnalyzer = func(baseCurrency string) positionAnalyzer {
		return NewAnalyzer(cfg, baseCurrency, log)
	}
	return e, nil
}

// Policy returns the policy the engine runs under
func (e *Engine) Policy() *policy.Config {
	return e.policy
}

// PolicyHash returns the SHA-256 of the active policy
func (e *Engine) PolicyHash() string {
	return e.policyHash
}

// Gatekeeper returns the engine's trading gate
func (e *Engine) Gatekeeper() *gatekeeper.Gatekeeper {
	return e.gate
}

// Run enriches the snapshot using the policy's monthly contribution as budget
func (e *Engine) Run(snap *contracts.Snapshot) *contracts.Result {
	return e.RunWithBudget(snap, decimal.NewFromFloat(e.policy.Allocation.MonthlyContribution))
}

// RunWithBudget enriches the snapshot with an explicit monthly budget
func (e *Engine) RunWithBudget(snap *contracts.Snapshot, monthlyBudget decimal.Decimal) *contracts.Result {
	start := e.now()
	totalAUM := snap.ResolveAUM()
	analyzer := e.newAnalyzer(snap.BaseCurrency)

	// 1~2. 갭 분석 + 액션 판정 (종목 단위 격리)
	enriched := make([]contracts.EnrichedPosition, 0, len(snap.Positions))
	for _, p := range snap.Positions {
		rec := snap.Scores[p.Ticker]
		enriched = append(enriched, e.enrichOne(analyzer, p, rec, totalAUM, snap.FXRates))
	}

	// 3. 리스크 집계
	summary := e.aggregator.Aggregate(enriched)

	// 4. 예산 배분
	var gates map[string]gatekeeper.Decision
	if e.policy.Allocation.ApplyGate {
		gates = make(map[string]gatekeeper.Decision, len(snap.Positions))
		for _, p := range snap.Positions {
			gates[p.Ticker] = e.gate.Evaluate(gatekeeper.SignalsFrom(p, snap.Scores[p.Ticker]))
		}
	}
	plan, allocated := e.allocator.Allocate(enriched, monthlyBudget, totalAUM, gates)

	result := &contracts.Result{
		PortfolioID: snap.PortfolioID,
		TotalAUM:    totalAUM,
		Positions:   allocated,
		Plan:        plan,
		Risk:        summary,
		PolicyHash:  e.policyHash,
		GeneratedAt: start,
	}

	e.logger.WithFields(map[string]interface{}{
		"portfolio":  snap.PortfolioID,
		"positions":  len(allocated),
		"eligible":   plan.Count(),
		"aum":        totalAUM.StringFixed(2),
		"allocated":  plan.TotalContribution().String(),
		"remaining":  plan.RemainingBudget().String(),
		"risk_score": summary.RiskScore,
	}).Info("Allocation plan computed")

	if e.logger.Enabled("debug") {
		for _, a := range plan.Allocations() {
			e.logger.WithFields(map[string]interface{}{
				"ticker":       a.Ticker,
				"priority":     a.Priority,
				"contribution": a.OptimalContribution.String(),
			}).Debug("Plan line")
		}
	}

	return result
}

// enrichOne isolates a single position: a failure degrades that position to
// defaults instead of aborting the batch.
func (e *Engine) enrichOne(
	analyzer positionAnalyzer,
	p contracts.Position,
	rec contracts.ScoreRecord,
	totalAUM decimal.Decimal,
	fx map[string]decimal.Decimal,
) (out contracts.EnrichedPosition) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(map[string]interface{}{
				"ticker": p.Ticker,
				"panic":  fmt.Sprint(r),
			}).Error("Position analysis failed, using defaults")
			out = degraded(p, rec)
		}
	}()

	out = analyzer.Analyze(p, rec, totalAUM, fx)
	out.ActionSignal = e.classifier.Classify(out.Score, out.CurrentWeightPct, out.TargetWeightPct)
	return out
}

func degraded(p contracts.Position, rec contracts.ScoreRecord) contracts.EnrichedPosition {
	return contracts.EnrichedPosition{
		Position:     p,
		Score:        rec.Score,
		ActionSignal: contracts.ActionHold,
		TrendStatus:  contracts.TrendNeutral,
		Degraded:     true,
	}
}
