package portfolio

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/policy"
	"github.com/wonny/folio/pkg/logger"
)

func scenarioSnapshot() *contracts.Snapshot {
	return &contracts.Snapshot{
		PortfolioID:  "family",
		BaseCurrency: "USD",
		TotalAUM:     dec(1_000_000),
		Positions: []contracts.Position{
			{Ticker: "A", Shares: dec(100), AvgCost: dec(150), MarketValue: dec(20_000), Currency: "USD"},
			{Ticker: "B", Shares: dec(100), AvgCost: dec(80), MarketValue: dec(10_000), Currency: "USD"},
			{Ticker: "C", Shares: dec(10), AvgCost: dec(10), MarketValue: dec(5_000), Currency: "USD"},
		},
		Scores: map[string]contracts.ScoreRecord{
			"A": {Ticker: "A", Score: contracts.ScoreOf(9)},
			"B": {Ticker: "B", Score: contracts.ScoreOf(6)},
		},
	}
}

func newEngine(t *testing.T, cfg *policy.Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, logger.Nop())
	require.NoError(t, err)
	e.now = func() time.Time { return time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC) }
	return e
}

func TestEngine_Scenario(t *testing.T) {
	e := newEngine(t, policy.Default())

	result := e.RunWithBudget(scenarioSnapshot(), dec(20_000))

	a, ok := result.GetPosition("A")
	require.True(t, ok)
	assert.Equal(t, contracts.ActionSniper, a.ActionSignal)
	assert.Equal(t, 1, a.AllocationPriority)
	assertDec(t, 130_000, a.GapAmount)
	assertDec(t, 20_000, a.OptimalContribution)

	b, _ := result.GetPosition("B")
	assert.Equal(t, contracts.ActionBuy, b.ActionSignal)
	assertDec(t, 40_000, b.GapAmount)
	assert.Equal(t, 2, b.AllocationPriority)
	assertDec(t, 0, b.OptimalContribution)

	c, _ := result.GetPosition("C")
	assert.Equal(t, contracts.ActionHold, c.ActionSignal)
	assert.Equal(t, 0, c.AllocationPriority)

	assertDec(t, 0, result.Plan.RemainingBudget())
	assert.Equal(t, contracts.RiskSummary{RocketCount: 1, WaitCount: 1, UnanalyzedCount: 1, RiskScore: 50}, result.Risk)
	assert.Equal(t, e.PolicyHash(), result.PolicyHash)
	assert.Equal(t, "family", result.PortfolioID)
}

func TestEngine_RunUsesPolicyBudget(t *testing.T) {
	cfg := policy.Default()
	cfg.Allocation.MonthlyContribution = 50_000
	e := newEngine(t, cfg)

	result := e.Run(scenarioSnapshot())

	assertDec(t, 50_000, result.Plan.MonthlyBudget())
	a, _ := result.GetPosition("A")
	b, _ := result.GetPosition("B")
	assertDec(t, 50_000, a.OptimalContribution)
	assertDec(t, 0, b.OptimalContribution)
}

func TestEngine_ComputesAUMWhenUnset(t *testing.T) {
	snap := scenarioSnapshot()
	snap.TotalAUM = decimal.Zero
	snap.Cash = dec(65_000)

	result := newEngine(t, policy.Default()).RunWithBudget(snap, dec(0))

	assertDec(t, 100_000, result.TotalAUM)
	a, _ := result.GetPosition("A")
	assert.InDelta(t, 20.0, a.CurrentWeightPct, 1e-9)
	assert.True(t, a.IsOverweight)
}

func TestEngine_ApplyGate(t *testing.T) {
	cfg := policy.Default()
	cfg.Allocation.ApplyGate = true
	snap := scenarioSnapshot()
	snap.Scores["A"] = contracts.ScoreRecord{Ticker: "A", Score: contracts.ScoreOf(9), CashRunwayMonths: contracts.IntOf(3)}

	result := newEngine(t, cfg).RunWithBudget(snap, dec(20_000))

	a, _ := result.GetPosition("A")
	b, _ := result.GetPosition("B")
	assert.Equal(t, 1, a.AllocationPriority)
	assertDec(t, 0, a.OptimalContribution)
	assertDec(t, 20_000, b.OptimalContribution)

	line, ok := result.Plan.Get("B")
	require.True(t, ok)
	assert.Equal(t, contracts.ShieldWarning, line.Gate)
}

type panickyAnalyzer struct {
	inner positionAnalyzer
	bad   string
}

func (p panickyAnalyzer) Analyze(pos contracts.Position, rec contracts.ScoreRecord, aum decimal.Decimal, fx map[string]decimal.Decimal) contracts.EnrichedPosition {
	if pos.Ticker == p.bad {
		panic("corrupt record")
	}
	return p.inner.Analyze(pos, rec, aum, fx)
}

func TestEngine_IsolatesFailingPosition(t *testing.T) {
	var buf bytes.Buffer
	e, err := NewEngine(policy.Default(), logger.NewWithWriter(&buf, "error"))
	require.NoError(t, err)

	base := e.newAnalyzer
	e.newAnalyzer = func(ccy string) positionAnalyzer {
		return panickyAnalyzer{inner: base(ccy), bad: "B"}
	}

	result := e.RunWithBudget(scenarioSnapshot(), dec(20_000))
	require.Len(t, result.Positions, 3)

	b, _ := result.GetPosition("B")
	assert.True(t, b.Degraded)
	assert.Equal(t, contracts.ActionHold, b.ActionSignal)
	assert.Equal(t, contracts.TrendNeutral, b.TrendStatus)
	assert.Equal(t, 0, b.AllocationPriority)

	a, _ := result.GetPosition("A")
	assert.False(t, a.Degraded)
	assertDec(t, 20_000, a.OptimalContribution)

	assert.Contains(t, buf.String(), "Position analysis failed")
}

func TestEngine_ResultJSON(t *testing.T) {
	result := newEngine(t, policy.Default()).RunWithBudget(scenarioSnapshot(), dec(20_000))

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded contracts.Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, result.Plan.Count(), decoded.Plan.Count())
	assert.True(t, decoded.Plan.RemainingBudget().Equal(result.Plan.RemainingBudget()))
	assert.Len(t, decoded.Positions, 3)
}

func TestNewEngine_RejectsInvalidPolicy(t *testing.T) {
	cfg := policy.Default()
	cfg.Projection.CeilingMonths = 0

	_, err := NewEngine(cfg, nil)
	assert.Error(t, err)
}

func TestEngine_DebugPlanLines(t *testing.T) {
	var buf bytes.Buffer
	e, err := NewEngine(policy.Default(), logger.NewWithWriter(&buf, "debug"))
	require.NoError(t, err)

	e.RunWithBudget(scenarioSnapshot(), dec(20_000))
	assert.Contains(t, buf.String(), `"message":"Plan line"`)
	assert.Contains(t, buf.String(), `"ticker":"A"`)

	buf.Reset()
	quiet, err := NewEngine(policy.Default(), logger.NewWithWriter(&buf, "info"))
	require.NoError(t, err)
	quiet.RunWithBudget(scenarioSnapshot(), dec(20_000))
	assert.NotContains(t, buf.String(), "Plan line")
}

func TestEngine_FractionalScoreBelowSellLine(t *testing.T) {
	snap := scenarioSnapshot()
	snap.Scores["B"] = contracts.ScoreRecord{Ticker: "B", Score: contracts.ScoreOf(4.6)}

	result := newEngine(t, policy.Default()).RunWithBudget(snap, dec(20_000))

	// 목표 비중은 반올림(5 → 3%), 신호와 배분 자격은 원점수(4.6 < 5)
	b, ok := result.GetPosition("B")
	require.True(t, ok)
	assert.Equal(t, 3.0, b.TargetWeightPct)
	assert.True(t, b.GapAmount.IsPositive())
	assert.Equal(t, contracts.ActionSell, b.ActionSignal)
	assert.Equal(t, 0, b.AllocationPriority)
	assert.True(t, b.OptimalContribution.IsZero())
}
