package gatekeeper

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/policy"
	"github.com/wonny/folio/pkg/logger"
)

// =============================================================================
// Gatekeeper - 종목별 매수 안전 게이트
// =============================================================================

// Signals are the raw per-ticker inputs the gate resolves from.
// 모든 필드는 nil/Invalid 허용 (정보 부재 자체는 리스크로 보지 않음)
type Signals struct {
	Ticker           string              `json:"ticker"`
	Score            *float64            `json:"score"`
	CashRunwayMonths *int                `json:"cash_runway_months"`
	Stage            *int                `json:"stage"`
	CurrentPrice     decimal.NullDecimal `json:"current_price"`
	SupportPrice     decimal.NullDecimal `json:"support_price"`
}

// Decision is the gate outcome for one ticker
type Decision struct {
	Ticker     string                `json:"ticker,omitempty"`
	State      contracts.ShieldState `json:"state"`
	BuyAllowed bool                  `json:"buy_allowed"`
	// MaxAllocationPct caps a single contribution as % of AUM; nil = 제한 없음
	MaxAllocationPct *float64 `json:"max_allocation_pct"`
	Reason           string   `json:"reason"`
}

// Gatekeeper resolves ShieldState from signals
// ⭐ SSOT: 매수 차단/제한 규칙은 여기서만
// 상태를 보관하지 않으므로 여러 goroutine에서 동시에 호출해도 안전
type Gatekeeper struct {
	rules  policy.Gate
	logger *logger.Logger
}

// New creates a gatekeeper from policy rules
func New(rules policy.Gate, log *logger.Logger) *Gatekeeper {
	if log == nil {
		log = logger.Nop()
	}
	return &Gatekeeper{
		rules:  rules,
		logger: log.WithComponent("gatekeeper"),
	}
}

// Evaluate resolves the gate state. Rules are checked in fixed priority order and
// the first match wins: LOCKED_TOXIC > LOCKED_BEAR > WARNING > OPEN.
func (g *Gatekeeper) Evaluate(s Signals) Decision {
	d := g.resolve(s)
	d.Ticker = s.Ticker

	if d.State.IsLocked() {
		g.logger.WithFields(map[string]interface{}{
			"ticker": s.Ticker,
			"state":  d.State,
		}).Debug("Buy locked")
	}

	return d
}

func (g *Gatekeeper) resolve(s Signals) Decision {
	// 1. 현금 고갈 위험
	if s.CashRunwayMonths != nil && *s.CashRunwayMonths < g.rules.ToxicRunwayMonths {
		return locked(contracts.ShieldLockedToxic,
			fmt.Sprintf("cash runway %d months < %d", *s.CashRunwayMonths, g.rules.ToxicRunwayMonths))
	}

	// 2. Stage 4 + 지지선 이탈 (가격 직접 비교, 추세 밴드 판정은 사용하지 않음)
	if s.Stage != nil && *s.Stage == g.rules.BearStage &&
		s.CurrentPrice.Valid && s.SupportPrice.Valid &&
		s.CurrentPrice.Decimal.LessThan(s.SupportPrice.Decimal) {
		return locked(contracts.ShieldLockedBear,
			fmt.Sprintf("stage %d and price %s below support %s", *s.Stage,
				s.CurrentPrice.Decimal.String(), s.SupportPrice.Decimal.String()))
	}

	// 3. 낮은 확신
	if s.Score != nil && *s.Score < g.rules.WarningBelowScore {
		maxPct := g.rules.WarningMaxAllocationPct
		return Decision{
			State:            contracts.ShieldWarning,
			BuyAllowed:       true,
			MaxAllocationPct: &maxPct,
			Reason:           fmt.Sprintf("score %.1f < %.1f", *s.Score, g.rules.WarningBelowScore),
		}
	}

	return Decision{
		State:      contracts.ShieldOpen,
		BuyAllowed: true,
		Reason:     "no risk condition matched",
	}
}

func locked(state contracts.ShieldState, reason string) Decision {
	zero := 0.0
	return Decision{
		State:            state,
		BuyAllowed:       false,
		MaxAllocationPct: &zero,
		Reason:           reason,
	}
}

// EvaluateAll evaluates a batch of tickers
func (g *Gatekeeper) EvaluateAll(batch []Signals) map[string]Decision {
	out := make(map[string]Decision, len(batch))
	for _, s := range batch {
		out[s.Ticker] = g.Evaluate(s)
	}
	return out
}

// CapContribution applies the decision's policy effect to a proposed buy amount
func (d Decision) CapContribution(amount, totalAUM decimal.Decimal) decimal.Decimal {
	if !d.BuyAllowed {
		return decimal.Zero
	}
	if d.MaxAllocationPct == nil {
		return amount
	}
	limit := totalAUM.Mul(decimal.NewFromFloat(*d.MaxAllocationPct)).Div(decimal.NewFromInt(100))
	return decimal.Min(amount, limit)
}

// SignalsFrom builds gate signals from a position and its score record
func SignalsFrom(p contracts.Position, rec contracts.ScoreRecord) Signals {
	return Signals{
		Ticker:           p.Ticker,
		Score:            rec.Score,
		CashRunwayMonths: rec.CashRunwayMonths,
		Stage:            rec.Stage,
		CurrentPrice:     p.CurrentPrice,
		SupportPrice:     rec.TrendSupport,
	}
}
