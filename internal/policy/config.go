package policy

import (
	"sort"
)

// Config is the conviction-to-capital policy the engine runs under
// ⭐ SSOT: 점수→비중 테이블과 임계값은 여기서만 정의 (엔진 로직에 하드코딩 금지)
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Weights    Weights    `yaml:"weights" json:"weights"`
	Allocation Allocation `yaml:"allocation" json:"allocation"`
	Signals    Signals    `yaml:"signals" json:"signals"`
	Trend      Trend      `yaml:"trend" json:"trend"`
	Risk       Risk       `yaml:"risk" json:"risk"`
	Gate       Gate       `yaml:"gate" json:"gate"`
	Projection Projection `yaml:"projection" json:"projection"`
}

// Meta 메타 정보
type Meta struct {
	PolicyID string `yaml:"policy_id" json:"policy_id"`
	Version  string `yaml:"version" json:"version"`
}

// Weights maps an integer conviction score to a target weight in percent of AUM
type Weights struct {
	Table map[int]float64 `yaml:"table" json:"table"`
}

// Keys returns the table keys in ascending order
func (w Weights) Keys() []int {
	keys := make([]int, 0, len(w.Table))
	for k := range w.Table {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Allocation 월 적립금 배분 규칙
type Allocation struct {
	MaxPositionWeightPct float64 `yaml:"max_position_weight_pct" json:"max_position_weight_pct"`
	MinInvestmentAmount  float64 `yaml:"min_investment_amount" json:"min_investment_amount"` // 기준통화
	MonthlyContribution  float64 `yaml:"monthly_contribution" json:"monthly_contribution"`
	EligibleMinScore     float64 `yaml:"eligible_min_score" json:"eligible_min_score"`
	ApplyGate            bool    `yaml:"apply_gate" json:"apply_gate"` // 게이트 결과를 배분에 반영
}

// Signals BUY/HOLD/SELL/SNIPER 판정 임계값
type Signals struct {
	SellBelowScore         float64 `yaml:"sell_below_score" json:"sell_below_score"`
	SniperMinScore         float64 `yaml:"sniper_min_score" json:"sniper_min_score"`
	SniperGapPct           float64 `yaml:"sniper_gap_pct" json:"sniper_gap_pct"`
	BuyGapPct              float64 `yaml:"buy_gap_pct" json:"buy_gap_pct"`
	DeterioratedBelowScore float64 `yaml:"deteriorated_below_score" json:"deteriorated_below_score"`
}

// Trend 지지/저항 밴드 내 위치 판정
type Trend struct {
	BullishMaxFraction float64 `yaml:"bullish_max_fraction" json:"bullish_max_fraction"`
	BearishMinFraction float64 `yaml:"bearish_min_fraction" json:"bearish_min_fraction"`
}

// Risk 점수 밴드 구간
type Risk struct {
	RocketMinScore float64 `yaml:"rocket_min_score" json:"rocket_min_score"`
	AnchorMinScore float64 `yaml:"anchor_min_score" json:"anchor_min_score"`
}

// Gate 트레이딩 게이트 규칙
type Gate struct {
	ToxicRunwayMonths       int     `yaml:"toxic_runway_months" json:"toxic_runway_months"`
	BearStage               int     `yaml:"bear_stage" json:"bear_stage"`
	WarningBelowScore       float64 `yaml:"warning_below_score" json:"warning_below_score"`
	WarningMaxAllocationPct float64 `yaml:"warning_max_allocation_pct" json:"warning_max_allocation_pct"`
}

// Projection 목표 도달 시뮬레이션
type Projection struct {
	CeilingMonths int `yaml:"ceiling_months" json:"ceiling_months"`
}

// Default returns the reference policy
func Default() *Config {
	return &Config{
		Meta: Meta{
			PolicyID: "conviction_v1",
			Version:  "1.0.0",
		},
		Weights: Weights{
			Table: map[int]float64{
				10: 15,
				9:  15,
				8:  12,
				7:  10,
				6:  5,
				5:  3,
				4:  0,
				3:  0,
				2:  0,
				1:  0,
				0:  0,
			},
		},
		Allocation: Allocation{
			MaxPositionWeightPct: 15,
			MinInvestmentAmount:  1000,
			MonthlyContribution:  20000,
			EligibleMinScore:     5,
			ApplyGate:            false,
		},
		Signals: Signals{
			SellBelowScore:         5,
			SniperMinScore:         8,
			SniperGapPct:           5,
			BuyGapPct:              2,
			DeterioratedBelowScore: 4,
		},
		Trend: Trend{
			BullishMaxFraction: 0.4,
			BearishMinFraction: 0.7,
		},
		Risk: Risk{
			RocketMinScore: 9,
			AnchorMinScore: 7,
		},
		Gate: Gate{
			ToxicRunwayMonths:       6,
			BearStage:               4,
			WarningBelowScore:       7,
			WarningMaxAllocationPct: 3,
		},
		Projection: Projection{
			CeilingMonths: 360,
		},
	}
}
