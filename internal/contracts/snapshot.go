package contracts

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Snapshot bundles every input of one portfolio refresh
// ⭐ 계약: 호출자가 ValidateSnapshot으로 검증한 뒤 엔진에 전달
type Snapshot struct {
	PortfolioID  string                     `json:"portfolio_id,omitempty"`
	BaseCurrency string                     `json:"base_currency"`
	Positions    []Position                 `json:"positions"`
	Scores       map[string]ScoreRecord     `json:"scores"`
	FXRates      map[string]decimal.Decimal `json:"fx_rates"` // 통화 → 기준통화 환율
	Cash         decimal.Decimal            `json:"cash"`
	TotalAUM     decimal.Decimal            `json:"total_aum"` // 0이면 보유 + 현금으로 계산
}

// ValidationError is a boundary rejection of caller-supplied input
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateSnapshot rejects inputs the engine must never see.
// 엔진 내부에서는 재검증하지 않음
func ValidateSnapshot(s *Snapshot) error {
	if s.TotalAUM.IsNegative() {
		return ValidationError{"total_aum", "must be >= 0"}
	}
	if s.Cash.IsNegative() {
		return ValidationError{"cash", "must be >= 0"}
	}

	seen := make(map[string]struct{}, len(s.Positions))
	for i, p := range s.Positions {
		field := fmt.Sprintf("positions[%d]", i)
		if strings.TrimSpace(p.Ticker) == "" {
			return ValidationError{field + ".ticker", "required"}
		}
		if _, dup := seen[p.Ticker]; dup {
			return ValidationError{field + ".ticker", fmt.Sprintf("duplicate ticker %s", p.Ticker)}
		}
		seen[p.Ticker] = struct{}{}

		if !p.Shares.IsPositive() {
			return ValidationError{field + ".shares", "must be > 0"}
		}
		if p.AvgCost.IsNegative() {
			return ValidationError{field + ".avg_cost", "must be >= 0"}
		}
		if p.CurrentPrice.Valid && p.CurrentPrice.Decimal.IsNegative() {
			return ValidationError{field + ".current_price", "must be >= 0"}
		}
	}

	for ticker, rec := range s.Scores {
		if rec.Score != nil && (math.IsNaN(*rec.Score) || math.IsInf(*rec.Score, 0)) {
			return ValidationError{fmt.Sprintf("scores[%s].score", ticker), "must be a finite number"}
		}
		if rec.CashRunwayMonths != nil && *rec.CashRunwayMonths < 0 {
			return ValidationError{fmt.Sprintf("scores[%s].cash_runway_months", ticker), "must be >= 0"}
		}
	}

	for ccy, rate := range s.FXRates {
		if !rate.IsPositive() {
			return ValidationError{fmt.Sprintf("fx_rates[%s]", ccy), "must be > 0"}
		}
	}

	return nil
}

// Normalize uppercases tickers and currencies in place
func (s *Snapshot) Normalize() {
	s.BaseCurrency = strings.ToUpper(strings.TrimSpace(s.BaseCurrency))
	for i := range s.Positions {
		s.Positions[i].Ticker = strings.ToUpper(strings.TrimSpace(s.Positions[i].Ticker))
		s.Positions[i].Currency = strings.ToUpper(strings.TrimSpace(s.Positions[i].Currency))
	}
	if len(s.Scores) > 0 {
		scores := make(map[string]ScoreRecord, len(s.Scores))
		for k, v := range s.Scores {
			key := strings.ToUpper(strings.TrimSpace(k))
			v.Ticker = key
			scores[key] = v
		}
		s.Scores = scores
	}
	if len(s.FXRates) > 0 {
		rates := make(map[string]decimal.Decimal, len(s.FXRates))
		for k, v := range s.FXRates {
			rates[strings.ToUpper(strings.TrimSpace(k))] = v
		}
		s.FXRates = rates
	}
}

// FXRate returns the conversion rate into the base currency.
// 환율이 없으면 1.0 (동일 통화로 간주) + fallback=true
func FXRate(rates map[string]decimal.Decimal, currency, base string) (rate decimal.Decimal, fallback bool) {
	if currency == "" || currency == base {
		return decimal.NewFromInt(1), false
	}
	if r, ok := rates[currency]; ok && r.IsPositive() {
		return r, false
	}
	return decimal.NewFromInt(1), true
}

// TotalAUM returns holdings converted to base currency plus cash
func TotalAUM(positions []Position, rates map[string]decimal.Decimal, base string, cash decimal.Decimal) decimal.Decimal {
	total := cash
	for _, p := range positions {
		rate, _ := FXRate(rates, p.Currency, base)
		total = total.Add(p.LocalValue().Mul(rate))
	}
	return total
}

// ResolveAUM returns the explicit AUM, or the computed one when unset
func (s *Snapshot) ResolveAUM() decimal.Decimal {
	if s.TotalAUM.IsPositive() {
		return s.TotalAUM
	}
	return TotalAUM(s.Positions, s.FXRates, s.BaseCurrency, s.Cash)
}
