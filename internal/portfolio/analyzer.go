package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/policy"
	"github.com/wonny/folio/pkg/logger"
)

var hundred = decimal.NewFromInt(100)

// Analyzer computes current/target weight and the currency gap of a position
// ⭐ SSOT: 비중 갭 계산은 여기서만
type Analyzer struct {
	weights      WeightTable
	allocation   policy.Allocation
	signals      policy.Signals
	trend        policy.Trend
	baseCurrency string
	logger       *logger.Logger
}

// NewAnalyzer creates a gap analyzer
func NewAnalyzer(cfg *policy.Config, baseCurrency string, log *logger.Logger) *Analyzer {
	return &Analyzer{
		weights:      NewWeightTable(cfg.Weights),
		allocation:   cfg.Allocation,
		signals:      cfg.Signals,
		trend:        cfg.Trend,
		baseCurrency: baseCurrency,
		logger:       log,
	}
}

// Analyze enriches one position. Missing inputs degrade to conservative defaults
// (NEUTRAL trend, zero weight, zero gap); it never fails.
func (a *Analyzer) Analyze(p contracts.Position, rec contracts.ScoreRecord, totalAUM decimal.Decimal, fx map[string]decimal.Decimal) contracts.EnrichedPosition {
	e := contracts.EnrichedPosition{
		Position:    p,
		Score:       rec.Score,
		TrendStatus: contracts.TrendNeutral,
	}

	// 1. 현재 가치 (기준 통화)
	rate, fallback := contracts.FXRate(fx, p.Currency, a.baseCurrency)
	if fallback {
		e.FXFallback = true
		a.logger.WithFields(map[string]interface{}{
			"ticker":   p.Ticker,
			"currency": p.Currency,
			"base":     a.baseCurrency,
		}).Warn("FX rate missing, assuming 1.0")
	}
	e.CurrentValue = p.LocalValue().Mul(rate)

	// 2. 현재 비중
	if totalAUM.IsPositive() {
		e.CurrentWeightPct = e.CurrentValue.Div(totalAUM).Mul(hundred).InexactFloat64()
	}

	// 3~5. 목표 비중, 목표 가치, 갭
	e.TargetWeightPct = a.weights.TargetWeight(rec.Score)
	e.TargetValue = totalAUM.Mul(decimal.NewFromFloat(e.TargetWeightPct)).Div(hundred)
	e.GapAmount = e.TargetValue.Sub(e.CurrentValue)

	// 6~7. 과대/과소 플래그
	e.IsOverweight = e.CurrentWeightPct > a.allocation.MaxPositionWeightPct
	e.IsUnderweight = e.GapAmount.GreaterThan(decimal.NewFromFloat(a.allocation.MinInvestmentAmount))

	// 8. 추세 밴드
	e.TrendStatus = a.trendStatus(p.CurrentPrice, rec)

	// 9. 점수 악화
	e.IsDeteriorated = rec.Score != nil && *rec.Score < a.signals.DeterioratedBelowScore

	return e
}

// trendStatus places the price inside the support/resistance band.
// 선이 없거나 resistance <= support면 NEUTRAL
func (a *Analyzer) trendStatus(price decimal.NullDecimal, rec contracts.ScoreRecord) contracts.TrendStatus {
	if !price.Valid || !rec.TrendSupport.Valid || !rec.TrendResistance.Valid {
		return contracts.TrendNeutral
	}
	support := rec.TrendSupport.Decimal
	resistance := rec.TrendResistance.Decimal
	if resistance.LessThanOrEqual(support) {
		return contracts.TrendNeutral
	}

	fraction := price.Decimal.Sub(support).Div(resistance.Sub(support)).InexactFloat64()
	switch {
	case fraction <= a.trend.BullishMaxFraction:
		return contracts.TrendBullish
	case fraction >= a.trend.BearishMinFraction:
		return contracts.TrendBearish
	default:
		return contracts.TrendNeutral
	}
}
