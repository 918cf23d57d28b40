package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/wonny/folio/internal/projection"
)

// projectCmd represents the project command
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "목표 금액 도달 개월 수 계산",
	Long: `월 복리 + 월 적립으로 목표 금액 도달까지의 개월 수를 계산합니다.

Example:
  go run ./cmd/folio project --target 500000 --monthly 20000 --return 0.15
  go run ./cmd/folio project --current 120000 --target 1000000 --monthly 3000 --return 0.07 --series 12`,
	RunE: runProject,
}

var (
	projectCurrent string
	projectTarget  string
	projectMonthly string
	projectReturn  float64
	projectSeries  int
)

func init() {
	rootCmd.AddCommand(projectCmd)

	projectCmd.Flags().StringVar(&projectCurrent, "current", "0", "current portfolio value")
	projectCmd.Flags().StringVar(&projectTarget, "target", "", "goal value")
	projectCmd.Flags().StringVar(&projectMonthly, "monthly", "0", "monthly contribution")
	projectCmd.Flags().Float64Var(&projectReturn, "return", 0.07, "expected annual return (0.07 = 7%)")
	projectCmd.Flags().IntVar(&projectSeries, "series", 0, "print the first N months")
	_ = projectCmd.MarkFlagRequired("target")
}

func runProject(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(false)
	if err != nil {
		return err
	}

	current, err := decimal.NewFromString(projectCurrent)
	if err != nil || current.IsNegative() {
		return fmt.Errorf("--current must be a non-negative number")
	}
	target, err := decimal.NewFromString(projectTarget)
	if err != nil || !target.IsPositive() {
		return fmt.Errorf("--target must be a positive number")
	}
	monthly, err := decimal.NewFromString(projectMonthly)
	if err != nil || monthly.IsNegative() {
		return fmt.Errorf("--monthly must be a non-negative number")
	}

	if !projection.ValidAnnualReturn(projectReturn) {
		return fmt.Errorf("--return must be a finite rate in (-1, 10]")
	}

	calc := projection.NewCalculator(rt.policy.Projection)
	months := calc.MonthsToTarget(current, target, monthly, projectReturn)

	PrintHeader("Goal Projection")
	PrintKeyValue("Target", target.StringFixed(0), 10)
	PrintKeyValue("Monthly", monthly.StringFixed(0), 10)
	PrintKeyValue("Return", fmt.Sprintf("%.2f%%/yr", projectReturn*100), 10)
	if months >= calc.CeilingMonths() && current.LessThan(target) {
		PrintWarning(fmt.Sprintf("Target not reached within %d months", calc.CeilingMonths()))
	} else {
		PrintKeyValue("Months", fmt.Sprintf("%d (%.1f years)", months, float64(months)/12), 10)
	}

	if projectSeries > 0 {
		PrintSeparator()
		widths := []int{6, 16}
		PrintTableHeader([]string{"Month", "Value"}, widths)
		for _, p := range calc.Series(current, monthly, projectReturn, projectSeries) {
			PrintTableRow([]string{fmt.Sprintf("%d", p.Month), p.Value.StringFixed(2)}, widths)
		}
	}
	return nil
}
