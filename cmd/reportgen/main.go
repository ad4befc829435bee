// Command reportgen generates a single DevOps report PDF from the command
// line, without running the dashboard server. Useful for cron jobs and CI
// steps that want a report artifact on a schedule.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/devsecops-monitor/monitor/internal/archive"
	"github.com/devsecops-monitor/monitor/internal/argocd"
	"github.com/devsecops-monitor/monitor/internal/chart"
	"github.com/devsecops-monitor/monitor/internal/config"
	"github.com/devsecops-monitor/monitor/internal/jenkins"
	"github.com/devsecops-monitor/monitor/internal/model"
	"github.com/devsecops-monitor/monitor/internal/pdf"
	"github.com/devsecops-monitor/monitor/internal/report"
	"github.com/devsecops-monitor/monitor/internal/sonarqube"
)

func main() {
	configPath := flag.String("config", envOrDefault("MONITOR_CONFIG", "monitor.yaml"), "configuration file path")
	outDir := flag.String("out", ".", "directory to write the PDF into")
	jobName := flag.String("job", "", "Jenkins job name (defaults to jenkins.job from config)")
	projectKey := flag.String("project", "", "SonarQube project key (defaults to sonarqube.project_key from config)")
	upload := flag.Bool("upload", false, "also upload the PDF to the configured S3 bucket")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout for upstream collection")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	job := *jobName
	if job == "" {
		job = cfg.Jenkins.Job
	}
	project := *projectKey
	if project == "" {
		project = cfg.SonarQube.ProjectKey
	}

	generator := report.NewGenerator(
		jenkins.New(jenkins.Config{
			BaseURL:  cfg.Jenkins.URL,
			Username: cfg.Jenkins.Username,
			APIToken: cfg.Jenkins.APIToken,
		}),
		sonarqube.New(sonarqube.Config{
			BaseURL: cfg.SonarQube.URL,
			Token:   cfg.SonarQube.Token,
		}),
		argocd.New(argocd.Config{
			BaseURL:  cfg.ArgoCD.URL,
			Username: cfg.ArgoCD.Username,
			Password: cfg.ArgoCD.Password,
			Insecure: cfg.ArgoCD.Insecure,
		}),
		report.Options{
			MetricKeys: cfg.SonarQube.MetricKeys,
			Charts:     chart.Renderer{},
			Logger:     logger.With("component", "report"),
		},
	)

	rep := generator.Generate(ctx, job, project)
	for _, se := range rep.SourceErrors {
		logger.Warn("source unavailable", "source", se.Source, "reason", se.Reason)
	}
	if rep.Completeness == model.CompletenessEmpty {
		logger.Error("all upstream sources failed, no report written")
		os.Exit(1)
	}

	filename := pdf.Filename(rep.GeneratedAt)
	outPath := filepath.Join(*outDir, filename)
	f, err := os.Create(outPath)
	if err != nil {
		logger.Error("create output file", "error", err)
		os.Exit(1)
	}
	renderer := pdf.Renderer{WorkdayHours: cfg.Report.WorkdayHours}
	if err := renderer.Render(f, rep); err != nil {
		_ = f.Close()
		logger.Error("render PDF", "error", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		logger.Error("close output file", "error", err)
		os.Exit(1)
	}
	logger.Info("report written", "path", outPath, "completeness", rep.Completeness)

	if *upload {
		if cfg.S3.Bucket == "" {
			logger.Error("upload requested but no s3.bucket configured")
			os.Exit(1)
		}
		data, err := os.ReadFile(outPath)
		if err != nil {
			logger.Error("read PDF for upload", "error", err)
			os.Exit(1)
		}
		arc, err := archive.New(ctx, archive.Config{
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
		key, err := arc.Store(ctx, filename, data)
		if err != nil {
			logger.Error("upload PDF", "error", err)
			os.Exit(1)
		}
		logger.Info("report uploaded", "bucket", cfg.S3.Bucket, "key", key)
	}

	fmt.Println(outPath)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
