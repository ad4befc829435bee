package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/devsecops-monitor/monitor/internal/archive"
	"github.com/devsecops-monitor/monitor/internal/argocd"
	"github.com/devsecops-monitor/monitor/internal/chart"
	"github.com/devsecops-monitor/monitor/internal/config"
	"github.com/devsecops-monitor/monitor/internal/db"
	"github.com/devsecops-monitor/monitor/internal/jenkins"
	"github.com/devsecops-monitor/monitor/internal/report"
	"github.com/devsecops-monitor/monitor/internal/server"
	"github.com/devsecops-monitor/monitor/internal/session"
	"github.com/devsecops-monitor/monitor/internal/sonarqube"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	dbPath := flag.String("db", "monitor.db", "SQLite database path")
	configPath := flag.String("config", envOrDefault("MONITOR_CONFIG", "monitor.yaml"), "configuration file path")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	database, err := db.Open(*dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	jenkinsClient := jenkins.New(jenkins.Config{
		BaseURL:  cfg.Jenkins.URL,
		Username: cfg.Jenkins.Username,
		APIToken: cfg.Jenkins.APIToken,
	})
	sonarClient := sonarqube.New(sonarqube.Config{
		BaseURL: cfg.SonarQube.URL,
		Token:   cfg.SonarQube.Token,
	})
	argoClient := argocd.New(argocd.Config{
		BaseURL:  cfg.ArgoCD.URL,
		Username: cfg.ArgoCD.Username,
		Password: cfg.ArgoCD.Password,
		Insecure: cfg.ArgoCD.Insecure,
	})

	var archiveClient *archive.Client
	if cfg.S3.Bucket != "" {
		archiveClient, err = archive.New(ctx, archive.Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		}, logger.With("component", "archive"))
		if err != nil {
			logger.Error("create archive client", "error", err)
			os.Exit(1)
		}
		logger.Info("report archiving enabled", "bucket", cfg.S3.Bucket, "endpoint", cfg.S3.Endpoint)
	}

	generator := report.NewGenerator(jenkinsClient, sonarClient, argoClient, report.Options{
		MetricKeys: cfg.SonarQube.MetricKeys,
		Charts:     chart.Renderer{},
		Notifier:   &server.DBNotifier{DB: database, Logger: logger.With("component", "notifier")},
		Logger:     logger.With("component", "report"),
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runSessionPurgeLoop(ctx, database, cfg.SessionTTL(), logger.With("component", "session-purge"))
	}()

	srv := server.New(database, *addr, server.Options{
		Config:    cfg,
		Sessions:  session.NewManager(database, cfg.SessionTTL()),
		Generator: generator,
		Jenkins:   jenkinsClient,
		SonarQube: sonarClient,
		ArgoCD:    argoClient,
		Archive:   archiveClient,
		Logger:    logger,
	})
	if err := srv.Run(ctx); err != nil {
		logger.Error("server", "error", err)
		os.Exit(1)
	}

	wg.Wait()
	logger.Info("all background tasks stopped")
}

// runSessionPurgeLoop removes sessions past their TTL once an hour so the
// sessions table does not grow with every login.
func runSessionPurgeLoop(ctx context.Context, database *db.DB, ttl time.Duration, logger *slog.Logger) {
	purgeSessionsOnce(ctx, database, ttl, logger)
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("stopping")
			return
		case <-ticker.C:
			purgeSessionsOnce(ctx, database, ttl, logger)
		}
	}
}

func purgeSessionsOnce(ctx context.Context, database *db.DB, ttl time.Duration, logger *slog.Logger) {
	n, err := database.PurgeSessions(ctx, time.Now().Add(-ttl))
	if err != nil {
		logger.Error("purge sessions", "error", err)
		return
	}
	if n > 0 {
		logger.Info("purged expired sessions", "count", n)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
