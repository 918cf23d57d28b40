package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/gatekeeper"
	"github.com/wonny/folio/internal/policy"
	"github.com/wonny/folio/pkg/logger"
)

// Allocator distributes the periodic contribution across underweight positions
// ⭐ SSOT: 월 적립금 배분은 여기서만
// 우선순위 순 greedy 배분 (전역 최적화 아님, 확신 순서가 예산 소진보다 우선)
type Allocator struct {
	rules  policy.Allocation
	logger *logger.Logger
}

// NewAllocator creates a budget allocator
func NewAllocator(rules policy.Allocation, log *logger.Logger) *Allocator {
	return &Allocator{
		rules:  rules,
		logger: log,
	}
}

// Eligible reports whether a position may receive budget
func (a *Allocator) Eligible(p contracts.EnrichedPosition) bool {
	return p.Score != nil && *p.Score >= a.rules.EligibleMinScore && p.GapAmount.IsPositive()
}

// Allocate ranks eligible positions and walks them spending the budget.
// gates may be nil; when set, each ticker's decision caps or zeroes its contribution.
// The input slice is not modified; the returned slice carries priority and contribution.
func (a *Allocator) Allocate(
	positions []contracts.EnrichedPosition,
	monthlyBudget decimal.Decimal,
	totalAUM decimal.Decimal,
	gates map[string]gatekeeper.Decision,
) (*contracts.AllocationPlan, []contracts.EnrichedPosition) {
	out := make([]contracts.EnrichedPosition, len(positions))
	copy(out, positions)

	// 1. 대상 필터 (대상 외 종목은 우선순위/배분 0)
	ranked := make([]int, 0, len(out))
	for i := range out {
		out[i].AllocationPriority = 0
		out[i].OptimalContribution = decimal.Zero
		if a.Eligible(out[i]) {
			ranked = append(ranked, i)
		}
	}

	// 2. 정렬: 점수 desc → 갭 desc → 티커 asc
	sort.SliceStable(ranked, func(x, y int) bool {
		px, py := out[ranked[x]], out[ranked[y]]
		if *px.Score != *py.Score {
			return *px.Score > *py.Score
		}
		if !px.GapAmount.Equal(py.GapAmount) {
			return px.GapAmount.GreaterThan(py.GapAmount)
		}
		return px.Ticker < py.Ticker
	})

	// 3. 순서대로 배분
	minInvestment := decimal.NewFromFloat(a.rules.MinInvestmentAmount)
	maxAllowed := totalAUM.Mul(decimal.NewFromFloat(a.rules.MaxPositionWeightPct)).Div(hundred)
	remaining := monthlyBudget
	allocations := make([]contracts.Allocation, 0, len(ranked))

	for rank, idx := range ranked {
		p := &out[idx]
		p.AllocationPriority = rank + 1

		line := contracts.Allocation{
			Ticker:              p.Ticker,
			Priority:            p.AllocationPriority,
			OptimalContribution: decimal.Zero,
		}

		// 예산 소진 후에도 우선순위는 계속 부여 (break 금지)
		if remaining.IsPositive() {
			raw := decimal.Min(p.GapAmount, remaining)

			capRoom := decimal.Max(decimal.Zero, maxAllowed.Sub(p.CurrentValue))
			raw = decimal.Min(raw, capRoom)

			if gate, ok := gates[p.Ticker]; ok {
				line.Gate = gate.State
				raw = gate.CapContribution(raw, totalAUM)
			}

			// 거래 비용 대비 너무 작으면 배분하지 않음
			if raw.LessThan(minInvestment) {
				raw = decimal.Zero
			}

			contribution := raw.Round(0)
			if contribution.GreaterThan(remaining) {
				contribution = remaining.Floor()
			}
			remaining = remaining.Sub(contribution)

			p.OptimalContribution = contribution
			line.OptimalContribution = contribution
		} else if gate, ok := gates[p.Ticker]; ok {
			line.Gate = gate.State
		}

		allocations = append(allocations, line)
	}

	plan := contracts.NewAllocationPlan(monthlyBudget, remaining, allocations)

	a.logger.WithFields(map[string]interface{}{
		"eligible":  len(ranked),
		"budget":    monthlyBudget.String(),
		"allocated": plan.TotalContribution().String(),
		"remaining": remaining.String(),
	}).Debug("Budget allocated")

	return plan, out
}
