package portfolio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/policy"
)

func TestTargetWeight_ReferenceTable(t *testing.T) {
	table := NewWeightTable(policy.Default().Weights)

	expected := map[float64]float64{10: 15, 9: 15, 8: 12, 7: 10, 6: 5, 5: 3, 4: 0, 3: 0, 2: 0, 1: 0, 0: 0}
	for score, want := range expected {
		assert.Equal(t, want, table.TargetWeight(contracts.ScoreOf(score)), "score %v", score)
	}
}

func TestTargetWeight_Rounding(t *testing.T) {
	table := NewWeightTable(policy.Default().Weights)

	assert.Equal(t, 12.0, table.TargetWeight(contracts.ScoreOf(7.5)))
	assert.Equal(t, 10.0, table.TargetWeight(contracts.ScoreOf(7.49)))
	assert.Equal(t, 15.0, table.TargetWeight(contracts.ScoreOf(10.4)))
}

func TestTargetWeight_OutsideTableIsZero(t *testing.T) {
	table := NewWeightTable(policy.Default().Weights)

	for _, score := range []float64{-1, -0.6, 10.5, 11, 42, math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.Equal(t, 0.0, table.TargetWeight(contracts.ScoreOf(score)), "score %v", score)
	}
	assert.Equal(t, 0.0, table.TargetWeight(nil))
}

func TestNewWeightTable_CopiesPolicy(t *testing.T) {
	cfg := policy.Default()
	table := NewWeightTable(cfg.Weights)

	cfg.Weights.Table[9] = 99
	assert.Equal(t, 15.0, table.TargetWeight(contracts.ScoreOf(9)))
}
