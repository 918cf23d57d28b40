package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/folio/internal/holdings"
	"github.com/wonny/folio/pkg/config"
	"github.com/wonny/folio/pkg/database"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "holdings 스키마 생성",
	Long: `folio 스키마(portfolios, positions, scores, fx_rates, plans)를 생성합니다.
재실행해도 안전합니다 (IF NOT EXISTS).

Example:
  DATABASE_URL=postgres://... go run ./cmd/folio migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx, holdings.Schema...); err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("Schema up to date (%d statements)", len(holdings.Schema)))
	return nil
}
