// Package report aggregates the three upstream sources into a single
// immutable report. The fetches run concurrently and settle independently:
// a failing source becomes a recorded reason, never an error that aborts
// the run.
package report

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/devsecops-monitor/monitor/internal/argocd"
	"github.com/devsecops-monitor/monitor/internal/chart"
	"github.com/devsecops-monitor/monitor/internal/jenkins"
	"github.com/devsecops-monitor/monitor/internal/model"
	"github.com/devsecops-monitor/monitor/internal/sonarqube"
)

// BuildSource fetches the raw build history for a job.
type BuildSource interface {
	FetchBuilds(ctx context.Context, jobName string) ([]byte, error)
}

// QualitySource fetches the raw measures for a project.
type QualitySource interface {
	FetchMeasures(ctx context.Context, projectKey string, metricKeys []string) ([]byte, error)
}

// DeploymentSource fetches the raw application list.
type DeploymentSource interface {
	FetchApplications(ctx context.Context) ([]byte, error)
}

// Notifier receives report lifecycle events. Events are advisory; failures
// to deliver them never affect the report itself.
type Notifier interface {
	ReportStarted(ctx context.Context)
	ReportFinished(ctx context.Context, completeness model.Completeness, errors []model.SourceError)
}

type noopNotifier struct{}

func (noopNotifier) ReportStarted(context.Context) {}
func (noopNotifier) ReportFinished(context.Context, model.Completeness, []model.SourceError) {}

// Options tunes a Generator beyond its three sources.
type Options struct {
	MetricKeys []string
	Charts     chart.Snapshotter
	Notifier   Notifier
	Logger     *slog.Logger
}

// Generator runs the aggregation pipeline.
type Generator struct {
	builds      BuildSource
	quality     QualitySource
	deployments DeploymentSource
	metricKeys  []string
	charts      chart.Snapshotter
	notifier    Notifier
	logger      *slog.Logger
}

// NewGenerator creates a Generator. Charts and Notifier are optional.
func NewGenerator(b BuildSource, q QualitySource, d DeploymentSource, opts Options) *Generator {
	g := &Generator{
		builds:      b,
		quality:     q,
		deployments: d,
		metricKeys:  opts.MetricKeys,
		charts:      opts.Charts,
		notifier:    opts.Notifier,
		logger:      opts.Logger,
	}
	if g.notifier == nil {
		g.notifier = noopNotifier{}
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Generate fetches all three sources concurrently, waits for every fetch to
// settle, and returns the merged report. It never returns an error: each
// source failure is captured in SourceErrors and reflected in Completeness.
func (g *Generator) Generate(ctx context.Context, jobName, projectKey string) *model.Report {
	g.notifier.ReportStarted(ctx)

	var (
		wg         sync.WaitGroup
		buildsOut  model.Outcome[*model.BuildData]
		qualityOut model.Outcome[*model.QualityData]
		appsOut    model.Outcome[[]model.Application]
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		body, err := g.builds.FetchBuilds(ctx, jobName)
		buildsOut = jenkins.Normalize(jobName, body, err)
	}()
	go func() {
		defer wg.Done()
		body, err := g.quality.FetchMeasures(ctx, projectKey, g.metricKeys)
		qualityOut = sonarqube.Normalize(projectKey, body, err)
	}()
	go func() {
		defer wg.Done()
		body, err := g.deployments.FetchApplications(ctx)
		appsOut = argocd.Normalize(body, err)
	}()
	wg.Wait()

	rep := &model.Report{GeneratedAt: time.Now()}

	succeeded := 0
	if buildsOut.OK() {
		rep.Builds = buildsOut.Value()
		succeeded++
	} else {
		rep.SourceErrors = append(rep.SourceErrors, model.SourceError{
			Source: model.SourceBuildSystem, Reason: buildsOut.Reason(),
		})
	}
	if qualityOut.OK() {
		rep.Quality = qualityOut.Value()
		succeeded++
	} else {
		rep.SourceErrors = append(rep.SourceErrors, model.SourceError{
			Source: model.SourceCodeQuality, Reason: qualityOut.Reason(),
		})
	}
	if appsOut.OK() {
		rep.Applications = appsOut.Value()
		succeeded++
	} else {
		rep.SourceErrors = append(rep.SourceErrors, model.SourceError{
			Source: model.SourceDeploymentController, Reason: appsOut.Reason(),
		})
	}

	switch succeeded {
	case 3:
		rep.Completeness = model.CompletenessFull
	case 0:
		rep.Completeness = model.CompletenessEmpty
	default:
		rep.Completeness = model.CompletenessPartial
	}

	g.attachCharts(rep)

	for _, se := range rep.SourceErrors {
		g.logger.Warn("source fetch failed", "source", se.Source, "reason", se.Reason)
	}
	g.logger.Info("report generated", "completeness", rep.Completeness,
		"failed_sources", len(rep.SourceErrors))

	g.notifier.ReportFinished(ctx, rep.Completeness, rep.SourceErrors)
	return rep
}

// attachCharts renders the chart images from whatever data settled. A chart
// that cannot be drawn leaves its page absent rather than failing the run.
func (g *Generator) attachCharts(rep *model.Report) {
	if g.charts == nil {
		return
	}
	if rep.Builds != nil {
		png, err := g.charts.BuildStatus(rep.Builds.Builds)
		if err != nil {
			g.logger.Warn("build status chart", "error", err)
		} else {
			rep.BuildChartPNG = png
		}
	}
	if len(rep.Applications) > 0 {
		png, err := g.charts.ApplicationHealth(rep.Applications)
		if err != nil {
			g.logger.Warn("application health chart", "error", err)
		} else {
			rep.HealthChartPNG = png
		}
	}
}
