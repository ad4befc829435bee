package server

import (
	"fmt"
	"net/http"

	"github.com/devsecops-monitor/monitor/internal/argocd"
	"github.com/devsecops-monitor/monitor/internal/jenkins"
	"github.com/devsecops-monitor/monitor/internal/sonarqube"
)

// The upstream endpoints proxy the three external systems for the dashboard
// UI. Fetch failures map to 502 so the UI can distinguish "upstream down"
// from its own backend being down.

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.jenkins.ListJobs(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Errorf("failed to fetch jobs: %w", err))
		return
	}
	if jobs == nil {
		jobs = []jenkins.Job{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (s *Server) handleJobDetails(w http.ResponseWriter, r *http.Request) {
	jobName := r.PathValue("name")
	body, err := s.jenkins.FetchBuilds(r.Context(), jobName)
	outcome := jenkins.Normalize(jobName, body, err)
	if !outcome.OK() {
		writeError(w, http.StatusBadGateway,
			fmt.Errorf("failed to fetch job details for %s: %s", jobName, outcome.Reason()))
		return
	}
	writeJSON(w, http.StatusOK, outcome.Value())
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.sonarqube.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Errorf("failed to fetch projects: %w", err))
		return
	}
	if projects == nil {
		projects = []sonarqube.Project{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (s *Server) handleProjectDetails(w http.ResponseWriter, r *http.Request) {
	projectKey := r.PathValue("key")
	body, err := s.sonarqube.FetchMeasures(r.Context(), projectKey, s.cfg.SonarQube.MetricKeys)
	outcome := sonarqube.Normalize(projectKey, body, err)
	if !outcome.OK() {
		writeError(w, http.StatusBadGateway,
			fmt.Errorf("failed to fetch project details for %s: %s", projectKey, outcome.Reason()))
		return
	}
	writeJSON(w, http.StatusOK, outcome.Value())
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	body, err := s.argocd.FetchApplications(r.Context())
	outcome := argocd.Normalize(body, err)
	if !outcome.OK() {
		writeError(w, http.StatusBadGateway,
			fmt.Errorf("failed to fetch applications: %s", outcome.Reason()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": outcome.Value()})
}
