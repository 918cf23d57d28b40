package policy

import (
	"fmt"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Weights ===
	if len(cfg.Weights.Table) == 0 {
		return ValidationError{"weights.table", "required"}
	}
	for score, weight := range cfg.Weights.Table {
		if score < 0 || score > 10 {
			return ValidationError{fmt.Sprintf("weights.table[%d]", score), "score key must be in [0, 10]"}
		}
		if weight < 0 || weight > 100 {
			return ValidationError{fmt.Sprintf("weights.table[%d]", score), "weight must be in [0, 100]"}
		}
	}

	// === Allocation ===
	a := cfg.Allocation
	if a.MaxPositionWeightPct <= 0 || a.MaxPositionWeightPct > 100 {
		return ValidationError{"allocation.max_position_weight_pct", "must be in (0, 100]"}
	}
	if a.MinInvestmentAmount < 0 {
		return ValidationError{"allocation.min_investment_amount", "must be >= 0"}
	}
	if a.MonthlyContribution < 0 {
		return ValidationError{"allocation.monthly_contribution", "must be >= 0"}
	}

	// === Signals ===
	if cfg.Signals.SniperGapPct < cfg.Signals.BuyGapPct {
		return ValidationError{"signals", "sniper_gap_pct must be >= buy_gap_pct"}
	}

	// === Trend ===
	t := cfg.Trend
	if t.BullishMaxFraction >= t.BearishMinFraction {
		return ValidationError{"trend", "bullish_max_fraction must be < bearish_min_fraction"}
	}

	// === Risk ===
	if cfg.Risk.AnchorMinScore > cfg.Risk.RocketMinScore {
		return ValidationError{"risk", "anchor_min_score must be <= rocket_min_score"}
	}

	// === Gate ===
	g := cfg.Gate
	if g.ToxicRunwayMonths < 0 {
		return ValidationError{"gate.toxic_runway_months", "must be >= 0"}
	}
	if g.BearStage < 1 || g.BearStage > 4 {
		return ValidationError{"gate.bear_stage", "must be in [1, 4]"}
	}
	if g.WarningMaxAllocationPct < 0 || g.WarningMaxAllocationPct > 100 {
		return ValidationError{"gate.warning_max_allocation_pct", "must be in [0, 100]"}
	}

	// === Projection ===
	if cfg.Projection.CeilingMonths <= 0 {
		return ValidationError{"projection.ceiling_months", "must be > 0"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
// 테이블 합계가 100이 아닌 것은 경고 대상 아님 (과소/과다 투자 상태 자체가 의도)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	for _, score := range cfg.Weights.Keys() {
		if w := cfg.Weights.Table[score]; w > cfg.Allocation.MaxPositionWeightPct {
			warnings = append(warnings, Warning{
				Code:    "TABLE_EXCEEDS_CAP",
				Message: fmt.Sprintf("score %d target %.1f%% exceeds max position weight %.1f%%", score, w, cfg.Allocation.MaxPositionWeightPct),
			})
		}
	}

	if cfg.Allocation.MonthlyContribution > 0 && cfg.Allocation.MonthlyContribution < cfg.Allocation.MinInvestmentAmount {
		warnings = append(warnings, Warning{
			Code:    "BUDGET_BELOW_MIN",
			Message: "monthly_contribution < min_investment_amount: 어떤 종목도 배분받지 못함",
		})
	}

	if cfg.Allocation.EligibleMinScore < cfg.Signals.SellBelowScore {
		warnings = append(warnings, Warning{
			Code:    "BUYING_SELL_SIGNALS",
			Message: "eligible_min_score < sell_below_score: SELL 신호 종목에도 배분될 수 있음",
		})
	}

	return warnings
}
