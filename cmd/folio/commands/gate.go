package commands

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/wonny/folio/internal/gatekeeper"
)

// gateCmd represents the gate command
var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "매수 게이트 판정",
	Long: `한 종목의 신호로 매수 게이트 상태를 판정합니다.

우선순위 (먼저 걸리는 규칙이 이김):
- LOCKED_TOXIC: 현금 런웨이 부족
- LOCKED_BEAR:  Stage 4 + 지지선 이탈
- WARNING:      점수 미달 (소액만 허용)
- OPEN

Example:
  go run ./cmd/folio gate --ticker ACME --runway 3
  go run ./cmd/folio gate --ticker ACME --stage 4 --price 10 --support 12
  go run ./cmd/folio gate --ticker ACME --score 6.5`,
	RunE: runGate,
}

var (
	gateTicker  string
	gateScore   float64
	gateRunway  int
	gateStage   int
	gatePrice   string
	gateSupport string
)

func init() {
	rootCmd.AddCommand(gateCmd)

	gateCmd.Flags().StringVar(&gateTicker, "ticker", "", "ticker symbol")
	gateCmd.Flags().Float64Var(&gateScore, "score", 0, "conviction score 0-10 (omit if unanalyzed)")
	gateCmd.Flags().IntVar(&gateRunway, "runway", 0, "cash runway in months")
	gateCmd.Flags().IntVar(&gateStage, "stage", 0, "Weinstein stage 1-4")
	gateCmd.Flags().StringVar(&gatePrice, "price", "", "current price")
	gateCmd.Flags().StringVar(&gateSupport, "support", "", "support price")
}

func runGate(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(false)
	if err != nil {
		return err
	}

	signals, err := gateSignalsFromFlags(cmd)
	if err != nil {
		return err
	}

	d := rt.engine.Gatekeeper().Evaluate(signals)

	PrintHeader("Trading Gate")
	PrintKeyValue("Ticker", d.Ticker, 10)
	PrintKeyValue("State", string(d.State), 10)
	PrintKeyValue("Buy", fmt.Sprintf("%v", d.BuyAllowed), 10)
	if d.MaxAllocationPct != nil {
		PrintKeyValue("Max alloc", fmt.Sprintf("%.1f%% of AUM", *d.MaxAllocationPct), 10)
	}
	if d.Reason != "" {
		PrintKeyValue("Reason", d.Reason, 10)
	}
	return nil
}

// gateSignalsFromFlags keeps unset flags as "missing" rather than zero
func gateSignalsFromFlags(cmd *cobra.Command) (gatekeeper.Signals, error) {
	flags := cmd.Flags()
	s := gatekeeper.Signals{Ticker: strings.ToUpper(gateTicker)}

	if flags.Changed("score") {
		if math.IsNaN(gateScore) || math.IsInf(gateScore, 0) {
			return s, fmt.Errorf("--score must be a finite number")
		}
		v := gateScore
		s.Score = &v
	}
	if flags.Changed("runway") {
		if gateRunway < 0 {
			return s, fmt.Errorf("--runway must be >= 0")
		}
		v := gateRunway
		s.CashRunwayMonths = &v
	}
	if flags.Changed("stage") {
		v := gateStage
		s.Stage = &v
	}

	var err error
	if s.CurrentPrice, err = parsePriceFlag("price", gatePrice); err != nil {
		return s, err
	}
	if s.SupportPrice, err = parsePriceFlag("support", gateSupport); err != nil {
		return s, err
	}
	return s, nil
}

func parsePriceFlag(name, raw string) (decimal.NullDecimal, error) {
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("--%s: %w", name, err)
	}
	return decimal.NewNullDecimal(d), nil
}
