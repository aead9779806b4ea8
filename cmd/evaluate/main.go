// Package main provides the entry point for the forecast evaluation CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/forecast-eval/internal/config"
	"github.com/yourusername/forecast-eval/internal/database"
	"github.com/yourusername/forecast-eval/internal/dataset"
	"github.com/yourusername/forecast-eval/internal/evaluation"
	"github.com/yourusername/forecast-eval/internal/health"
	"github.com/yourusername/forecast-eval/internal/logger"
	"github.com/yourusername/forecast-eval/internal/metrics"
	"github.com/yourusername/forecast-eval/internal/repository"
	"github.com/yourusername/forecast-eval/internal/scheduler"
	"github.com/yourusername/forecast-eval/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const retentionCron = "0 4 * * *"

func main() {
	var (
		configPath    = flag.String("config", "config/config.yaml", "Path to config file")
		sourcePath    = flag.String("source", "", "Override dataset source (CSV path or URL)")
		granularity   = flag.String("granularity", "", "Override grouping granularity")
		metricNames   = flag.String("metrics", "", "Override metric list, comma-separated")
		useCV         = flag.Bool("cv", false, "Score cross-validation folds")
		jsonOutput    = flag.String("json-output", "", "Write display and metric tables to a JSON file")
		csvOutput     = flag.String("csv-output", "", "Write the display table to a CSV file")
		watch         = flag.Bool("watch", false, "Keep running and re-evaluate on the configured schedule")
		retentionDays = flag.Int("retention-days", 0, "Prune persisted reports older than this many days (0 disables)")
	)
	flag.Parse()

	cfg := loadConfigWithSecrets(*configPath)
	applyOverrides(cfg, *sourcePath, *granularity, *metricNames, *useCV)
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)

	opts, err := evaluation.FromConfig(cfg)
	if err != nil {
		appLog.Fatalf("Invalid evaluation options: %v", err)
	}

	ctx := context.Background()
	source, cleanup := buildSource(cfg, appLog)
	defer cleanup()

	db, repos := setupPersistence(ctx, cfg, appLog)
	if db != nil {
		defer db.Close(ctx)
	}

	var reportRepo repository.ReportRepository
	if repos != nil {
		reportRepo = repos.Report
	}

	var cache *service.ReportCache
	if *watch {
		cache = service.NewReportCacheFromConfig(cfg.Cache)
	}

	svc := service.NewEvaluationService(source, opts, reportRepo, cache, appLog)

	appLog.WithFields(logrus.Fields{
		"dataset":     cfg.Dataset.Source,
		"granularity": cfg.Evaluation.Granularity,
		"use_cv":      cfg.Evaluation.UseCV,
		"watch":       *watch,
	}).Info("Starting forecast evaluation")

	if *watch {
		runWatch(ctx, cfg, svc, db, repos, *retentionDays, appLog)
		return
	}
	runOnce(ctx, svc, *jsonOutput, *csvOutput, appLog)
}

func loadConfigWithSecrets(path string) *config.Config {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	return cfg
}

func applyOverrides(cfg *config.Config, source, granularity, metricNames string, useCV bool) {
	if source != "" {
		cfg.Dataset.Source = source
	}
	if granularity != "" {
		cfg.Evaluation.Granularity = granularity
	}
	if metricNames != "" {
		names := strings.Split(metricNames, ",")
		for i := range names {
			names[i] = strings.TrimSpace(names[i])
		}
		cfg.Evaluation.Metrics = names
	}
	if useCV {
		cfg.Evaluation.UseCV = true
		cfg.Evaluation.Granularity = evaluation.GranularityCutoff
	}
}

func buildSource(cfg *config.Config, appLog *logrus.Logger) (dataset.Source, func()) {
	dsLog := log.New(os.Stderr, "", log.LstdFlags)

	var httpClient *dataset.RateLimitedHTTPClient
	if dataset.TypeOf(cfg.Dataset.Source) == dataset.HTTPSourceType {
		httpClient = dataset.NewRateLimitedHTTPClient(dataset.HTTPClientConfigFromDataset(cfg.Dataset), dsLog)
	}

	source, err := dataset.NewSource(cfg.Dataset, httpClient, dsLog)
	if err != nil {
		appLog.Fatalf("Failed to build dataset source: %v", err)
	}

	cleanup := func() {
		if httpClient != nil {
			httpClient.Close()
		}
	}
	return source, cleanup
}

func setupPersistence(ctx context.Context, cfg *config.Config, appLog *logrus.Logger) (*database.DB, *repository.Repositories) {
	if !cfg.Database.Enabled {
		return nil, nil
	}

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.Fatalf("Failed to initialize database: %v", err)
	}
	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.Fatalf("Failed to initialize repositories: %v", err)
	}
	return db, repos
}

func runOnce(ctx context.Context, svc *service.EvaluationService, jsonOutput, csvOutput string, appLog *logrus.Logger) {
	result, err := svc.Run(ctx)
	if err != nil {
		appLog.Fatalf("Evaluation failed: %v", err)
	}

	fmt.Println(evaluation.GenerateConsoleReport(result.Display))

	if csvOutput != "" {
		if err := evaluation.GenerateCSVExport(result.Display, csvOutput); err != nil {
			appLog.Fatalf("Failed to write CSV export: %v", err)
		}
		appLog.WithField("path", csvOutput).Info("CSV export written")
	}
	if jsonOutput != "" {
		if err := evaluation.GenerateJSONExport(result.Display, result.MetricTables, jsonOutput); err != nil {
			appLog.Fatalf("Failed to write JSON export: %v", err)
		}
		appLog.WithField("path", jsonOutput).Info("JSON export written")
	}
}

func runWatch(ctx context.Context, cfg *config.Config, svc *service.EvaluationService, db *database.DB, repos *repository.Repositories, retentionDays int, appLog *logrus.Logger) {
	if !cfg.Scheduler.Enabled {
		appLog.Fatal("Watch mode requires scheduler.enabled in configuration")
	}

	sched := scheduler.NewScheduler(svc, appLog, cfg.Scheduler)
	if err := sched.ScheduleEvaluation(cfg.Scheduler.EvaluationCron, "accuracy-watch"); err != nil {
		appLog.Fatalf("Failed to schedule evaluation: %v", err)
	}
	if retentionDays > 0 {
		if repos == nil {
			appLog.Fatal("Report retention requires the database to be enabled")
		}
		if err := sched.ScheduleRetention(retentionCron, repos.Report, time.Duration(retentionDays)*24*time.Hour); err != nil {
			appLog.Fatalf("Failed to schedule retention: %v", err)
		}
	}

	srvCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	opsSrv := startOpsServer(srvCtx, cfg, db, appLog)

	// Score once at startup so the watch does not idle until the first tick
	if result, err := svc.Run(ctx); err != nil {
		appLog.WithError(err).Error("Initial evaluation failed")
	} else {
		fmt.Println(evaluation.GenerateConsoleReport(result.Display))
	}

	if err := sched.Start(); err != nil {
		appLog.Fatalf("Failed to start scheduler: %v", err)
	}
	opsSrv.SetReady(true)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down")
	opsSrv.SetReady(false)
	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Scheduler stop failed")
	}
	if err := opsSrv.Shutdown(); err != nil {
		appLog.WithError(err).Error("Ops server shutdown failed")
	}
}

func startOpsServer(ctx context.Context, cfg *config.Config, db *database.DB, appLog *logrus.Logger) *health.Server {
	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        strconv.Itoa(cfg.Metrics.Port),
		Logger:      appLog,
	}
	if db != nil {
		healthCfg.DB = db
	}
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		healthCfg.Metrics = metrics.Handler()
		healthCfg.MetricsPath = cfg.Metrics.Path
	}

	srv := health.NewServer(healthCfg)
	if err := srv.Start(ctx); err != nil {
		appLog.Fatalf("Failed to start ops server: %v", err)
	}
	return srv
}
