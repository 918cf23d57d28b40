package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/folio/internal/policy"
	"github.com/wonny/folio/internal/portfolio"
	"github.com/wonny/folio/pkg/config"
	"github.com/wonny/folio/pkg/logger"
)

var (
	// Global flags
	policyFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Folio - 확신도 기반 적립식 배분 엔진",
	Long: `Folio Unified CLI

보유 종목 + 확신 점수 → 목표 비중, 갭, 액션 신호, 월 적립금 배분.
매수 게이트(TOXIC/BEAR/WARNING)와 목표 도달 시뮬레이션 포함.

Usage:
  go run ./cmd/folio [command]

Examples:
  go run ./cmd/folio plan --file snapshot.json
  go run ./cmd/folio gate --ticker ACME --runway 3
  go run ./cmd/folio project --target 500000 --monthly 20000 --return 0.15
  go run ./cmd/folio policy validate --file config/policy/conviction_v1.yaml
  go run ./cmd/folio api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&policyFile, "policy", "", "policy YAML (default: POLICY_FILE or built-in conviction_v1)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs)")
}

// runtime is what every engine command needs
type runtime struct {
	cfg    *config.Config
	log    *logger.Logger
	policy *policy.Config
	engine *portfolio.Engine
}

// loadRuntime loads env config, logger, policy and builds the engine.
// --policy 플래그가 POLICY_FILE보다 우선. 단발성 커맨드는 stdout을 결과 전용으로
// 두기 위해 stderr에 warn 이상만 기록
func loadRuntime(server bool) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if policyFile != "" {
		cfg.Engine.PolicyFile = policyFile
	}

	var log *logger.Logger
	if server {
		log = logger.New(cfg)
	} else {
		level := "warn"
		if verbose {
			level = "debug"
		}
		log = logger.NewWithWriter(os.Stderr, level)
	}

	pol, err := policy.LoadOrDefault(cfg.Engine.PolicyFile)
	if err != nil {
		return nil, err
	}

	engine, err := portfolio.NewEngine(pol, log)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	return &runtime{cfg: cfg, log: log, policy: pol, engine: engine}, nil
}
