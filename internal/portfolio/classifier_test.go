package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/policy"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(policy.Default().Signals)
	s := contracts.ScoreOf

	tests := []struct {
		name    string
		score   *float64
		current float64
		target  float64
		want    contracts.Action
	}{
		{"unanalyzed holds", nil, 1, 15, contracts.ActionHold},
		{"low score sells regardless of gap", s(4.9), 0, 15, contracts.ActionSell},
		{"low score sells when overweight", s(2), 30, 0, contracts.ActionSell},
		{"high conviction big gap is sniper", s(9), 2, 15, contracts.ActionSniper},
		{"score 8 gap just above 5 is sniper", s(8), 6.9, 12, contracts.ActionSniper},
		{"score 8 gap exactly 5 is buy", s(8), 7, 12, contracts.ActionBuy},
		{"score 7 big gap is buy not sniper", s(7), 0, 10, contracts.ActionBuy},
		{"gap exactly 2 holds", s(6), 3, 5, contracts.ActionHold},
		{"small gap holds", s(9), 14, 15, contracts.ActionHold},
		{"overweight high score holds", s(9), 20, 15, contracts.ActionHold},
		{"score 5 with gap buys", s(5), 0, 3, contracts.ActionBuy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.score, tt.current, tt.target))
		})
	}
}
