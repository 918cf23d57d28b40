package contracts

// Action is the discrete trading signal derived for a position
type Action string

const (
	ActionBuy    Action = "BUY"
	ActionHold   Action = "HOLD"
	ActionSell   Action = "SELL"
	ActionSniper Action = "SNIPER" // 고확신 + 큰 비중 부족
)

// TrendStatus is where the price sits inside its support/resistance band
type TrendStatus string

const (
	TrendBullish TrendStatus = "BULLISH"
	TrendBearish TrendStatus = "BEARISH"
	TrendNeutral TrendStatus = "NEUTRAL"
)

// ShieldState is the outcome of the trading gate for one ticker
// ⭐ 상태 이력 없음: 매 호출마다 신호로부터 새로 계산
type ShieldState string

const (
	ShieldOpen        ShieldState = "OPEN"
	ShieldWarning     ShieldState = "WARNING"
	ShieldLockedBear  ShieldState = "LOCKED_BEAR"
	ShieldLockedToxic ShieldState = "LOCKED_TOXIC"
)

// IsLocked reports whether buying is forbidden in this state
func (s ShieldState) IsLocked() bool {
	return s == ShieldLockedBear || s == ShieldLockedToxic
}
