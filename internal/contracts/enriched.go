package contracts

import (
	"github.com/shopspring/decimal"
)

// EnrichedPosition is the per-cycle join of Position × ScoreRecord.
// 매 갱신마다 새로 계산되며 저장하지 않음
type EnrichedPosition struct {
	Position
	Score            *float64 `json:"score"`
	TargetWeightPct  float64  `json:"target_weight_pct"`
	CurrentWeightPct float64  `json:"current_weight_pct"`

	CurrentValue decimal.Decimal `json:"current_value"` // 기준 통화
	TargetValue  decimal.Decimal `json:"target_value"`
	GapAmount    decimal.Decimal `json:"gap_amount"` // 양수 = 비중 부족

	ActionSignal        Action          `json:"action_signal"`
	AllocationPriority  int             `json:"allocation_priority"` // 0 = 대상 아님, 1 = 최우선
	OptimalContribution decimal.Decimal `json:"optimal_contribution"`

	IsOverweight   bool        `json:"is_overweight"`
	IsUnderweight  bool        `json:"is_underweight"`
	IsDeteriorated bool        `json:"is_deteriorated"`
	TrendStatus    TrendStatus `json:"trend_status"`

	// FXFallback is set when no rate was found and 1.0 was assumed
	FXFallback bool `json:"fx_fallback,omitempty"`
	// Degraded is set when analysis failed and defaults were substituted
	Degraded bool `json:"degraded,omitempty"`
}

// GapPct returns target − current weight in percentage points
func (e EnrichedPosition) GapPct() float64 {
	return e.TargetWeightPct - e.CurrentWeightPct
}
