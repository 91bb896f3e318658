// Package main - точка входа сервиса аналитики прогресса QuizMentor.
//
// Сервис отвечает за:
// - Статистику ученика (попытки, баллы, серия дней)
// - Достижения, бейджи и месячную цель
// - Рейтинг внутри когорты с трендом относительно прошлого периода
// - Периодические снимки базовой линии для трендов
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Oyasikelly/QuizMentor-sub000/config"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/application/eventhandler"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/application/query"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/leaderboard"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/progress"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/infrastructure/messaging"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/infrastructure/persistence/postgres"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/infrastructure/persistence/redis"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/infrastructure/scheduler"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/infrastructure/scheduler/jobs"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/infrastructure/service"
	httpapi "github.com/Oyasikelly/QuizMentor-sub000/internal/interface/http"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/interface/http/handlers"
	"github.com/Oyasikelly/QuizMentor-sub000/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. КОНФИГУРАЦИЯ И ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	defer func() { _ = log.Sync() }()

	log.Info("starting QuizMentor progress service",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. POSTGRESQL + МИГРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if cfg.Database.AutoMigrate {
		if err := postgres.NewMigrator(dbConn).Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database schema is up to date")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var cache *redis.Cache
	if !cfg.Redis.Disabled {
		cache, err = redis.NewCache(ctx, cfg.Redis)
		if err != nil {
			log.Warn("failed to connect to Redis, falling back to Postgres", logger.Err(err))
			cache = nil
		} else {
			defer func() { _ = cache.Close() }()
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ХРАНИЛИЩА ЗА CIRCUIT BREAKER
	// ─────────────────────────────────────────────────────────────────────────
	breakers := service.NewBreakers(cfg.Resilience, log, registry)

	attempts := service.NewGuardedAttemptSource(
		postgres.NewAttemptRepository(dbConn, cfg.Resilience), breakers.New("attempts"))
	cohorts := service.NewGuardedCohortRepository(
		postgres.NewCohortRepository(dbConn, cfg.Resilience), breakers.New("cohorts"))
	ledger := service.NewGuardedAwardLedger(
		postgres.NewAwardLedgerRepository(dbConn, cfg.Resilience), breakers.New("award_ledger"))

	var baselines leaderboard.BaselineStore = postgres.NewBaselineRepository(dbConn, cfg.Resilience)
	if cache != nil {
		baselines = redis.NewBaselineStore(cache, redis.DefaultBaselineRetention)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.Logger = log
	busCfg.Registerer = registry
	eventBus := messaging.NewInMemoryEventBus(busCfg)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	if err := eventhandler.NewOnAwardEarnedHandler(log, registry).Register(eventBus); err != nil {
		return fmt.Errorf("failed to register award handler: %w", err)
	}
	if err := eventhandler.NewOnBaselineRecordedHandler(log, registry).Register(eventBus); err != nil {
		return fmt.Errorf("failed to register baseline handler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ДОМЕН И ЗАПРОСЫ
	// ─────────────────────────────────────────────────────────────────────────
	basis, err := leaderboard.ParseBasis(cfg.Analytics.RankingBasis)
	if err != nil {
		return fmt.Errorf("invalid ranking basis: %w", err)
	}
	period, err := leaderboard.ParsePeriod(cfg.Analytics.BaselinePeriod)
	if err != nil {
		return fmt.Errorf("invalid baseline period: %w", err)
	}
	streakOpts := progress.StreakOptions{
		Policy:        progress.StreakPolicy(cfg.Analytics.StreakPolicy),
		MonthlyTarget: cfg.Analytics.MonthlyTarget,
	}

	analyzer := progress.NewAnalyzer(progress.DefaultEngine(), streakOpts)
	ranking := leaderboard.NewService(leaderboard.Options{
		Basis: basis,
		Limit: cfg.Analytics.LeaderboardSize,
	})

	statsOpts := []query.GetStatsOption{query.WithStatsFeatures(cfg.Features)}
	if cache != nil && cfg.Analytics.StatsCacheTTL > 0 {
		statsOpts = append(statsOpts, query.WithStatsCache(redis.NewStatsCache(cache, cfg.Analytics.StatsCacheTTL)))
	}

	statsHandler := query.NewGetStatsHandler(attempts, streakOpts, log, statsOpts...)
	achievementsHandler := query.NewGetAchievementsHandler(attempts, analyzer, log,
		query.WithAwardLedger(ledger, eventBus),
		query.WithAchievementsFeatures(cfg.Features),
	)
	rankingHandler := query.NewGetRankingHandler(cohorts, attempts, ranking, log,
		query.WithBaselines(baselines, period),
		query.WithRankingFeatures(cfg.Features),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. HTTP СЕРВЕР
	// ─────────────────────────────────────────────────────────────────────────
	health := handlers.NewCompositeHealthChecker(cfg.App.Version)
	health.AddCheck("postgres", handlers.NewPingCheck(dbConn))
	if cache != nil {
		health.AddOptionalCheck("redis", handlers.NewPingCheck(cache))
	}

	deps := httpapi.Dependencies{
		Stats:         statsHandler,
		Achievements:  achievementsHandler,
		Ranking:       rankingHandler,
		HealthChecker: health,
		Registerer:    registry,
		Logger:        log,
		Version:       cfg.App.Version,
	}
	if cfg.Observability.MetricsEnabled {
		deps.Gatherer = registry
	}
	server := httpapi.NewServer(cfg.HTTP, deps)
	serverErr := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ПЛАНИРОВЩИК
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(scheduler.OptionsFromConfig(cfg.Scheduler, log, registry))

		job := jobs.NewRecordBaselinesJob(cohorts, baselines, eventBus, log, jobs.RecordBaselinesConfig{
			Basis:  basis,
			Period: period,
		})
		if err := sched.Register(job, scheduler.NewIntervalSchedule(cfg.Scheduler.BaselineInterval)); err != nil {
			return fmt.Errorf("failed to register baseline job: %w", err)
		}
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("QuizMentor progress service is running", logger.String("address", cfg.HTTP.Address()))

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("received shutdown signal")
	case err := <-serverErr:
		runErr = err
		log.Error("HTTP server stopped unexpectedly", logger.Err(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(); err != nil && !errors.Is(err, scheduler.ErrSchedulerNotRunning) {
			log.Warn("scheduler stop failed", logger.Err(err))
		}
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown failed", logger.Err(err))
	}

	log.Info("shutdown completed", logger.Duration("timeout", cfg.App.ShutdownTimeout))
	return runErr
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	if cfg.Observability.LogFormat == "text" {
		opts.Format = logger.FormatConsole
	}
	return logger.New(opts).With(
		logger.String("service", cfg.App.Name),
		logger.String("version", cfg.App.Version),
	)
}
