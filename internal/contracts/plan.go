package contracts

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Allocation is one ranked line of an allocation plan
type Allocation struct {
	Ticker              string          `json:"ticker"`
	Priority            int             `json:"priority"`
	OptimalContribution decimal.Decimal `json:"optimal_contribution"`
	Gate                ShieldState     `json:"gate,omitempty"`
}

// AllocationPlan is the ranked, budget-constrained output of one enrichment run.
// ⭐ 불변: 생성 후 수정 불가, 조회는 복사본 반환
type AllocationPlan struct {
	monthlyBudget   decimal.Decimal
	remainingBudget decimal.Decimal
	allocations     []Allocation
}

// NewAllocationPlan freezes the given allocations into a plan
func NewAllocationPlan(monthlyBudget, remainingBudget decimal.Decimal, allocations []Allocation) *AllocationPlan {
	frozen := make([]Allocation, len(allocations))
	copy(frozen, allocations)
	return &AllocationPlan{
		monthlyBudget:   monthlyBudget,
		remainingBudget: remainingBudget,
		allocations:     frozen,
	}
}

// MonthlyBudget returns the budget the plan distributed
func (p *AllocationPlan) MonthlyBudget() decimal.Decimal {
	return p.monthlyBudget
}

// RemainingBudget returns what is left after allocation
func (p *AllocationPlan) RemainingBudget() decimal.Decimal {
	return p.remainingBudget
}

// Allocations returns the ranked lines in priority order
func (p *AllocationPlan) Allocations() []Allocation {
	out := make([]Allocation, len(p.allocations))
	copy(out, p.allocations)
	return out
}

// Get finds the allocation for a ticker
func (p *AllocationPlan) Get(ticker string) (Allocation, bool) {
	for _, a := range p.allocations {
		if a.Ticker == ticker {
			return a, true
		}
	}
	return Allocation{}, false
}

// TotalContribution returns the sum of all optimal contributions
func (p *AllocationPlan) TotalContribution() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.allocations {
		total = total.Add(a.OptimalContribution)
	}
	return total
}

// Count returns the number of eligible positions
func (p *AllocationPlan) Count() int {
	return len(p.allocations)
}

type planJSON struct {
	MonthlyBudget   decimal.Decimal `json:"monthly_budget"`
	RemainingBudget decimal.Decimal `json:"remaining_budget"`
	Allocations     []Allocation    `json:"allocations"`
}

// MarshalJSON exposes the frozen fields
func (p *AllocationPlan) MarshalJSON() ([]byte, error) {
	return json.Marshal(planJSON{
		MonthlyBudget:   p.monthlyBudget,
		RemainingBudget: p.remainingBudget,
		Allocations:     p.allocations,
	})
}

// UnmarshalJSON restores a plan (캐시/아카이브 복원용)
func (p *AllocationPlan) UnmarshalJSON(data []byte) error {
	var raw planJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = *NewAllocationPlan(raw.MonthlyBudget, raw.RemainingBudget, raw.Allocations)
	return nil
}

// RiskSummary buckets positions by conviction band
type RiskSummary struct {
	RocketCount     int `json:"rocket_count"`
	AnchorCount     int `json:"anchor_count"`
	WaitCount       int `json:"wait_count"`
	UnanalyzedCount int `json:"unanalyzed_count"`
	RiskScore       int `json:"risk_score"` // 0~100
}

// Result is everything one enrichment pass produces
// ⭐ 계약: Engine → API/Scheduler/Cache 전달 단위
type Result struct {
	PortfolioID string             `json:"portfolio_id,omitempty"`
	TotalAUM    decimal.Decimal    `json:"total_aum"`
	Positions   []EnrichedPosition `json:"positions"`
	Plan        *AllocationPlan    `json:"plan"`
	Risk        RiskSummary        `json:"risk"`
	PolicyHash  string             `json:"policy_hash"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// GetPosition finds an enriched position by ticker
func (r *Result) GetPosition(ticker string) (*EnrichedPosition, bool) {
	for i := range r.Positions {
		if r.Positions[i].Ticker == ticker {
			return &r.Positions[i], true
		}
	}
	return nil, false
}
