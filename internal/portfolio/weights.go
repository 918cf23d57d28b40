package portfolio

import (
	"math"

	"github.com/wonny/folio/internal/policy"
)

// WeightTable maps a conviction score to its deserved weight (% of AUM)
// ⭐ SSOT: 점수 → 목표 비중 조회는 여기서만
type WeightTable struct {
	table map[int]float64
}

// NewWeightTable copies the policy table so later policy edits cannot leak in
func NewWeightTable(w policy.Weights) WeightTable {
	table := make(map[int]float64, len(w.Table))
	for k, v := range w.Table {
		table[k] = v
	}
	return WeightTable{table: table}
}

// TargetWeight rounds the score to the nearest integer and looks it up.
// nil, 비정상 값, 테이블에 없는 점수는 모두 0
func (t WeightTable) TargetWeight(score *float64) float64 {
	if score == nil || math.IsNaN(*score) || math.IsInf(*score, 0) {
		return 0
	}
	key := math.Round(*score)
	if key < 0 || key > 10 {
		return 0
	}
	return t.table[int(key)]
}
