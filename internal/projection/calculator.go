package projection

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/wonny/folio/internal/policy"
)

// Calculator forward-simulates portfolio value for goal countdowns
// ⭐ 결정적 시뮬레이션: 난수 없음, 에러 없음
type Calculator struct {
	ceilingMonths int
}

// 연 수익률 허용 범위 (-100%, +1000%]
const (
	minAnnualReturn = -1.0
	maxAnnualReturn = 10.0
)

// ValidAnnualReturn reports whether r is a finite rate in (-1, 10]
func ValidAnnualReturn(r float64) bool {
	return !math.IsNaN(r) && !math.IsInf(r, 0) && r > minAnnualReturn && r <= maxAnnualReturn
}

// Point is the simulated value at the end of a month
type Point struct {
	Month int             `json:"month"`
	Value decimal.Decimal `json:"value"`
}

// NewCalculator creates a calculator with the policy's safety ceiling
func NewCalculator(rules policy.Projection) *Calculator {
	ceiling := rules.CeilingMonths
	if ceiling <= 0 {
		ceiling = policy.Default().Projection.CeilingMonths
	}
	return &Calculator{ceilingMonths: ceiling}
}

// CeilingMonths returns the simulation safety ceiling
func (c *Calculator) CeilingMonths() int {
	return c.ceilingMonths
}

// MonthsToTarget compounds monthly until the target is reached.
// 이미 목표 이상이면 0, 끝내 도달하지 못하면 ceiling 반환.
// 범위 밖 수익률은 도달 불가로 취급
func (c *Calculator) MonthsToTarget(current, target, monthly decimal.Decimal, annualReturn float64) int {
	if !current.LessThan(target) {
		return 0
	}
	if !ValidAnnualReturn(annualReturn) {
		return c.ceilingMonths
	}

	growth := monthlyGrowth(annualReturn)
	value := current
	months := 0
	for value.LessThan(target) && months < c.ceilingMonths {
		value = step(value, growth, monthly)
		months++
	}
	return months
}

// Series returns month-by-month values for charts (month 0 = current).
// 범위 밖 수익률이면 month 0만 반환
func (c *Calculator) Series(current, monthly decimal.Decimal, annualReturn float64, months int) []Point {
	if months > c.ceilingMonths {
		months = c.ceilingMonths
	}
	if months < 0 || !ValidAnnualReturn(annualReturn) {
		months = 0
	}

	growth := monthlyGrowth(annualReturn)
	points := make([]Point, 0, months+1)
	value := current
	points = append(points, Point{Month: 0, Value: value})
	for m := 1; m <= months; m++ {
		value = step(value, growth, monthly)
		points = append(points, Point{Month: m, Value: value})
	}
	return points
}

func monthlyGrowth(annualReturn float64) decimal.Decimal {
	return decimal.NewFromInt(1).Add(decimal.NewFromFloat(annualReturn).Div(decimal.NewFromInt(12)))
}

// step applies one month; 센트 단위 반올림으로 자릿수 폭증 방지
func step(value, growth, monthly decimal.Decimal) decimal.Decimal {
	return value.Mul(growth).Add(monthly).Round(2)
}
