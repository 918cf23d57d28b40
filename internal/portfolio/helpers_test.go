package portfolio

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/wonny/folio/internal/contracts"
)

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func assertDec(t *testing.T, want float64, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), append([]interface{}{"want %v, got %s", want, got.String()}, msgAndArgs...)...)
}

// enriched builds a gap-analyzed position directly (AUM 기준 값 직접 지정)
func enriched(ticker string, score *float64, currentValue, gap float64) contracts.EnrichedPosition {
	return contracts.EnrichedPosition{
		Position:     contracts.Position{Ticker: ticker},
		Score:        score,
		CurrentValue: dec(currentValue),
		GapAmount:    dec(gap),
	}
}
