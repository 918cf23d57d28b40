package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShieldState_IsLocked(t *testing.T) {
	assert.False(t, ShieldOpen.IsLocked())
	assert.False(t, ShieldWarning.IsLocked())
	assert.True(t, ShieldLockedBear.IsLocked())
	assert.True(t, ShieldLockedToxic.IsLocked())
}

func TestPosition_LocalValue(t *testing.T) {
	p := Position{Ticker: "A", Shares: decimal10(), AvgCost: decimalOf(50)}
	assert.True(t, p.LocalValue().Equal(decimalOf(500)), "falls back to cost basis")

	p.MarketValue = decimalOf(800)
	assert.True(t, p.LocalValue().Equal(decimalOf(800)))
}

func TestPosition_Revalue(t *testing.T) {
	p := Position{Ticker: "A", Shares: decimal10(), AvgCost: decimalOf(50), CurrentPrice: Price(60)}
	p.Revalue()

	assert.True(t, p.MarketValue.Equal(decimalOf(600)))
	assert.True(t, p.UnrealizedPL.Equal(decimalOf(100)))
	assert.InDelta(t, 20.0, p.UnrealizedPLPercent, 1e-9)

	noPrice := Position{Ticker: "B", Shares: decimal10(), AvgCost: decimalOf(50), MarketValue: decimalOf(1)}
	noPrice.Revalue()
	assert.True(t, noPrice.MarketValue.Equal(decimalOf(1)))
}

func TestEnrichedPosition_GapPct(t *testing.T) {
	e := EnrichedPosition{TargetWeightPct: 15, CurrentWeightPct: 2}
	assert.InDelta(t, 13.0, e.GapPct(), 1e-9)
}
