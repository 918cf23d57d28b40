package portfolio

import (
	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/policy"
)

// Classifier derives the action signal of a position
type Classifier struct {
	rules policy.Signals
}

// NewClassifier creates a classifier with the given thresholds
func NewClassifier(rules policy.Signals) Classifier {
	return Classifier{rules: rules}
}

// Classify walks a strict decision tree; the first matching branch wins.
func (c Classifier) Classify(score *float64, currentWeightPct, targetWeightPct float64) contracts.Action {
	if score == nil {
		return contracts.ActionHold
	}
	if *score < c.rules.SellBelowScore {
		return contracts.ActionSell
	}

	gapPct := targetWeightPct - currentWeightPct
	switch {
	case *score >= c.rules.SniperMinScore && gapPct > c.rules.SniperGapPct:
		return contracts.ActionSniper
	case gapPct > c.rules.BuyGapPct:
		return contracts.ActionBuy
	default:
		return contracts.ActionHold
	}
}
