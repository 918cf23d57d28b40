package contracts

import (
	"github.com/shopspring/decimal"
)

// Position represents an owned holding as imported or entered by hand
// ⭐ SSOT: 보유 종목 레코드 정의는 여기서만
type Position struct {
	Ticker              string              `json:"ticker"`
	Shares              decimal.Decimal     `json:"shares"`
	AvgCost             decimal.Decimal     `json:"avg_cost"`
	CurrentPrice        decimal.NullDecimal `json:"current_price"`
	Currency            string              `json:"currency"`
	MarketValue         decimal.Decimal     `json:"market_value"`
	UnrealizedPL        decimal.Decimal     `json:"unrealized_pl"`
	UnrealizedPLPercent float64             `json:"unrealized_pl_percent"`
}

// CostBasis returns shares × avg_cost
func (p Position) CostBasis() decimal.Decimal {
	return p.Shares.Mul(p.AvgCost)
}

// LocalValue returns the value in the position's own currency.
// 시가가 없거나 0이면 취득원가로 대체
func (p Position) LocalValue() decimal.Decimal {
	if p.MarketValue.IsPositive() {
		return p.MarketValue
	}
	return p.CostBasis()
}

// ScoreRecord is the externally produced analytical state of a ticker.
// 엔진 입장에서는 읽기 전용
type ScoreRecord struct {
	Ticker           string              `json:"ticker"`
	Score            *float64            `json:"score"` // nil = 미분석
	TrendSupport     decimal.NullDecimal `json:"trend_support_price"`
	TrendResistance  decimal.NullDecimal `json:"trend_resistance_price"`
	CashRunwayMonths *int                `json:"cash_runway_months"`
	Stage            *int                `json:"stage"` // Weinstein 1~4
	Thesis           string              `json:"thesis,omitempty"`
}

// ScoreOf is a convenience constructor for a known score
func ScoreOf(v float64) *float64 {
	return &v
}

// IntOf is a convenience constructor for nullable integer signals
func IntOf(v int) *int {
	return &v
}

// Price wraps a decimal into a valid NullDecimal
func Price(v float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(v))
}

// Revalue fills market value and unrealized P&L from the current price.
// 시가가 없으면 기존 값 유지
func (p *Position) Revalue() {
	if !p.CurrentPrice.Valid {
		return
	}
	cost := p.CostBasis()
	p.MarketValue = p.Shares.Mul(p.CurrentPrice.Decimal)
	p.UnrealizedPL = p.MarketValue.Sub(cost)
	p.UnrealizedPLPercent = 0
	if cost.IsPositive() {
		p.UnrealizedPLPercent = p.UnrealizedPL.Div(cost).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
}
