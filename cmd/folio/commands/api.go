package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/wonny/folio/internal/api"
	"github.com/wonny/folio/internal/api/handlers"
	"github.com/wonny/folio/internal/holdings"
	"github.com/wonny/folio/internal/projection"
	"github.com/wonny/folio/internal/realtime"
	"github.com/wonny/folio/internal/scheduler"
	"github.com/wonny/folio/internal/scheduler/jobs"
	"github.com/wonny/folio/pkg/database"
	"github.com/wonny/folio/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버 + 플랜 갱신 스케줄러를 시작합니다.

DATABASE_URL이 없으면 저장 포트폴리오 관련 기능 없이 계산 API만 제공합니다.
REDIS_ENABLED=true면 최신 플랜을 Redis에 캐시합니다.

Endpoints:
  GET  /health                     - Health check
  POST /api/plan                   - 스냅샷으로 플랜 계산
  GET  /api/portfolios/{id}/plan   - 저장 포트폴리오 플랜 (캐시)
  POST /api/gate                   - 매수 게이트 판정
  POST /api/projection             - 목표 도달 시뮬레이션
  GET  /api/policy                 - 현재 정책
  GET  /api/jobs                   - 스케줄러 상태
  GET  /ws/plans                   - 플랜 갱신 푸시 (WebSocket)

Example:
  go run ./cmd/folio api
  go run ./cmd/folio api --port 9000`,
	RunE: runAPIServer,
}

var (
	apiPort      string
	apiNoRefresh bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
	apiCmd.Flags().BoolVar(&apiNoRefresh, "no-refresh", false, "시작 시 즉시 갱신 생략")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(true)
	if err != nil {
		return err
	}
	cfg, log := rt.cfg, rt.log

	if apiPort != "" {
		cfg.Port = apiPort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"env":         cfg.Env,
		"policy_hash": rt.engine.PolicyHash(),
	}).Info("Initializing API server")

	// 1. Realtime hub
	hub := realtime.NewHub(log)
	defer hub.Close()

	// 2. Redis plan cache (비활성이면 no-op)
	redisClient, err := redis.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	planCache := holdings.NewPlanCache(redisClient, cfg.Engine.PlanCacheTTL)

	// 3. Scheduler
	sched := scheduler.New(log)

	// 4. Holdings store (선택)
	var (
		refresher handlers.Refresher
		archive   handlers.PlanArchive
		health    api.HealthCheck
		refresh   *jobs.PlanRefreshJob
	)
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		if err := db.Migrate(ctx, holdings.Schema...); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("Connected to database")

		repo := holdings.NewRepository(db.Pool)
		refresh = jobs.NewPlanRefreshJob(repo, rt.engine, repo, planCache, hub, cfg.Engine.RefreshSchedule, log)
		if err := sched.AddJob(refresh); err != nil {
			return err
		}
		if err := sched.AddJob(jobs.NewPlanPruneJob(repo, cfg.Engine.PlanRetention, log)); err != nil {
			return err
		}

		refresher = refresh
		archive = repo
		health = db.Ping
	} else {
		log.Warn("DATABASE_URL not set: stored portfolio endpoints disabled")
	}

	// 5. Router + server
	router := api.NewRouter(api.Handlers{
		Plan:       handlers.NewPlanHandler(rt.engine, refresher, planCache, archive, cfg.Engine.BaseCurrency, log),
		Gate:       handlers.NewGateHandler(rt.engine.Gatekeeper()),
		Projection: handlers.NewProjectionHandler(projection.NewCalculator(rt.policy.Projection)),
		Policy:     handlers.NewPolicyHandler(rt.policy, rt.engine.PolicyHash()),
		Jobs:       handlers.NewJobsHandler(sched),
		Hub:        hub,
		Health:     health,
	}, rate.NewLimiter(rate.Limit(cfg.API.RateLimitRPS), cfg.API.RateBurst), log)

	server := api.New(cfg, log, router)

	sched.Start()
	defer sched.Stop()

	if refresh != nil && !apiNoRefresh {
		if err := sched.RunJob(refresh.Name()); err != nil {
			log.WithError(err).Warn("Initial plan refresh not started")
		}
	}

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}
