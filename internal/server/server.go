// Package server exposes the dashboard's HTTP API: login, upstream proxy
// endpoints, notifications, and report generation/download.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/devsecops-monitor/monitor/internal/archive"
	"github.com/devsecops-monitor/monitor/internal/argocd"
	"github.com/devsecops-monitor/monitor/internal/config"
	"github.com/devsecops-monitor/monitor/internal/db"
	"github.com/devsecops-monitor/monitor/internal/jenkins"
	"github.com/devsecops-monitor/monitor/internal/pdf"
	"github.com/devsecops-monitor/monitor/internal/report"
	"github.com/devsecops-monitor/monitor/internal/session"
	"github.com/devsecops-monitor/monitor/internal/sonarqube"
)

type Server struct {
	db        *db.DB
	cfg       *config.Config
	sessions  *session.Manager
	generator *report.Generator
	renderer  pdf.Renderer
	jenkins   *jenkins.Client
	sonarqube *sonarqube.Client
	argocd    *argocd.Client
	archive   *archive.Client
	http      *http.Server
	logger    *slog.Logger
}

// Options collects the collaborators the server needs beyond its database.
type Options struct {
	Config    *config.Config
	Sessions  *session.Manager
	Generator *report.Generator
	Jenkins   *jenkins.Client
	SonarQube *sonarqube.Client
	ArgoCD    *argocd.Client
	Archive   *archive.Client
	Logger    *slog.Logger
}

func New(database *db.DB, addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		db:        database,
		cfg:       opts.Config,
		sessions:  opts.Sessions,
		generator: opts.Generator,
		renderer:  pdf.Renderer{WorkdayHours: opts.Config.Report.WorkdayHours},
		jenkins:   opts.Jenkins,
		sonarqube: opts.SonarQube,
		argocd:    opts.ArgoCD,
		archive:   opts.Archive,
		logger:    logger,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	var handler http.Handler = mux
	handler = loggingMiddleware(logger, handler)
	handler = recoveryMiddleware(logger, handler)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()
	s.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
