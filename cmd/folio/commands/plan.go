package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/holdings"
	"github.com/wonny/folio/pkg/database"
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "배분 플랜 계산",
	Long: `스냅샷(보유 종목 + 점수 + 환율)으로 배분 플랜을 계산합니다.

입력:
- --file: 스냅샷 JSON 파일
- --portfolio: DB에 저장된 포트폴리오 (DATABASE_URL 필요)

Example:
  go run ./cmd/folio plan --file snapshot.json
  go run ./cmd/folio plan --file snapshot.json --budget 50000 --json
  go run ./cmd/folio plan --portfolio main`,
	RunE: runPlan,
}

var (
	planFile      string
	planPortfolio string
	planBudget    string
	planJSON      bool
)

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&planFile, "file", "f", "", "snapshot JSON file")
	planCmd.Flags().StringVar(&planPortfolio, "portfolio", "", "stored portfolio id")
	planCmd.Flags().StringVar(&planBudget, "budget", "", "monthly budget override (default: policy monthly_contribution)")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "print the full result as JSON")
}

func runPlan(cmd *cobra.Command, args []string) error {
	if (planFile == "") == (planPortfolio == "") {
		return fmt.Errorf("exactly one of --file or --portfolio is required")
	}

	rt, err := loadRuntime(false)
	if err != nil {
		return err
	}

	var snap *contracts.Snapshot
	if planFile != "" {
		snap, err = readSnapshotFile(planFile)
	} else {
		snap, err = loadStoredSnapshot(cmd.Context(), rt, planPortfolio)
	}
	if err != nil {
		return err
	}

	if snap.BaseCurrency == "" {
		snap.BaseCurrency = rt.cfg.Engine.BaseCurrency
	}
	if err := contracts.ValidateSnapshot(snap); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}

	var result *contracts.Result
	if planBudget != "" {
		budget, err := decimal.NewFromString(planBudget)
		if err != nil || budget.IsNegative() {
			return fmt.Errorf("--budget must be a non-negative number, got %q", planBudget)
		}
		result = rt.engine.RunWithBudget(snap, budget)
	} else {
		result = rt.engine.Run(snap)
	}

	if planJSON {
		return PrintJSON(result)
	}
	printResult(result)
	return nil
}

// readSnapshotFile decodes and normalizes a snapshot JSON file
func readSnapshotFile(path string) (*contracts.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap contracts.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	snap.Normalize()
	return &snap, nil
}

func loadStoredSnapshot(ctx context.Context, rt *runtime, id string) (*contracts.Snapshot, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, rt.cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	return holdings.NewRepository(db.Pool).LoadSnapshot(ctx, id)
}

// printResult renders positions and the allocation plan as tables
func printResult(r *contracts.Result) {
	title := "Allocation Plan"
	if r.PortfolioID != "" {
		title += " - " + r.PortfolioID
	}
	PrintHeader(title)
	PrintKeyValue("Total AUM", r.TotalAUM.StringFixed(2), 14)
	PrintKeyValue("Budget", r.Plan.MonthlyBudget().StringFixed(0), 14)
	PrintKeyValue("Allocated", r.Plan.TotalContribution().StringFixed(0), 14)
	PrintKeyValue("Remaining", r.Plan.RemainingBudget().StringFixed(0), 14)
	PrintKeyValue("Policy", r.PolicyHash[:min(12, len(r.PolicyHash))], 14)
	PrintSeparator()

	widths := []int{8, 6, 8, 8, 12, 7, 5, 12}
	PrintTableHeader([]string{"Ticker", "Score", "Cur%", "Tgt%", "Gap", "Action", "Prio", "Contribute"}, widths)
	for _, p := range r.Positions {
		prio := "-"
		if p.AllocationPriority > 0 {
			prio = fmt.Sprintf("%d", p.AllocationPriority)
		}
		PrintTableRow([]string{
			p.Ticker,
			formatScore(p.Score),
			fmt.Sprintf("%.2f", p.CurrentWeightPct),
			fmt.Sprintf("%.2f", p.TargetWeightPct),
			p.GapAmount.StringFixed(0),
			string(p.ActionSignal),
			prio,
			p.OptimalContribution.StringFixed(0),
		}, widths)
	}

	PrintSeparator()
	PrintKeyValue("Risk score", fmt.Sprintf("%d (rocket %d / anchor %d / wait %d / unanalyzed %d)",
		r.Risk.RiskScore, r.Risk.RocketCount, r.Risk.AnchorCount, r.Risk.WaitCount, r.Risk.UnanalyzedCount), 14)

	var notes []string
	for _, p := range r.Positions {
		if p.FXFallback {
			notes = append(notes, fmt.Sprintf("%s: FX rate for %s missing, assumed 1.0", p.Ticker, p.Currency))
		}
		if p.Degraded {
			notes = append(notes, fmt.Sprintf("%s: analysis failed, defaults used", p.Ticker))
		}
	}
	if len(notes) > 0 {
		PrintWarning("Data issues")
		PrintList(notes)
	}
}
