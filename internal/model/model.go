// Package model defines the canonical in-memory types shared by the upstream
// clients, the aggregation pipeline, and the document renderer.
package model

import "time"

// Build is a single build from the build server's job history.
// EndTimeMs is nil while the build is still running.
type Build struct {
	Number      int    `json:"number"`
	Result      string `json:"result"`
	Building    bool   `json:"building"`
	StartTimeMs *int64 `json:"start_time_ms"`
	DurationMs  *int64 `json:"duration_ms"`
	EndTimeMs   *int64 `json:"end_time_ms"`
	URL         string `json:"url"`
}

// BuildData is the normalized build-server payload for one job,
// builds sorted descending by number.
type BuildData struct {
	JobName string  `json:"job_name"`
	Builds  []Build `json:"builds"`
}

// QualityData holds the code-quality metrics for one project as a flat
// key/value map. Values are kept as raw strings; formatting and parsing
// happen at render time so one bad value never poisons the set.
type QualityData struct {
	ProjectKey string            `json:"projectKey"`
	Metrics    map[string]string `json:"metrics"`
}

// DeploymentRevision is one entry of an application's deployment history.
type DeploymentRevision struct {
	ID         int64      `json:"id"`
	Revision   string     `json:"revision"`
	DeployedAt *time.Time `json:"deployed_at"`
}

// Application is a normalized deployment-controller application.
// History is sorted descending by ID.
type Application struct {
	Name                 string               `json:"name"`
	UID                  string               `json:"uid"`
	Project              string               `json:"project"`
	SyncStatus           string               `json:"sync_status"`
	HealthStatus         string               `json:"health_status"`
	SourceRepoURL        string               `json:"source_repo_url"`
	SourceTargetRevision string               `json:"source_target_revision"`
	SourceRevision       string               `json:"source_revision"`
	SourcePath           string               `json:"source_path"`
	DestinationServer    string               `json:"destination_server"`
	DestinationNamespace string               `json:"destination_namespace"`
	LastSyncPhase        string               `json:"last_sync_phase"`
	LastSyncMessage      string               `json:"last_sync_message"`
	ReconciledAt         *time.Time           `json:"reconciled_at"`
	History              []DeploymentRevision `json:"history"`
}

// Completeness classifies a report by how many upstream fetches succeeded.
type Completeness string

const (
	CompletenessFull    Completeness = "full"
	CompletenessPartial Completeness = "partial"
	CompletenessEmpty   Completeness = "empty"
)

// Source names the three upstream systems in their fixed reporting order.
type Source string

const (
	SourceBuildSystem          Source = "jenkins"
	SourceCodeQuality          Source = "sonarqube"
	SourceDeploymentController Source = "argocd"
)

// SourceError records why a single upstream fetch failed.
type SourceError struct {
	Source Source `json:"source"`
	Reason string `json:"reason"`
}

// Report is the aggregate produced by one generation run. It is built once
// after all three fetches settle and never mutated afterwards.
type Report struct {
	Builds         *BuildData    `json:"builds"`
	Quality        *QualityData  `json:"quality"`
	Applications   []Application `json:"applications"`
	BuildChartPNG  []byte        `json:"-"`
	HealthChartPNG []byte        `json:"-"`
	Completeness   Completeness  `json:"completeness"`
	SourceErrors   []SourceError `json:"source_errors"`
	GeneratedAt    time.Time     `json:"generated_at"`
}
