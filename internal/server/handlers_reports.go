package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/devsecops-monitor/monitor/internal/db"
	"github.com/devsecops-monitor/monitor/internal/model"
	"github.com/devsecops-monitor/monitor/internal/pdf"
)

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JobName    string `json:"job_name"`
		ProjectKey string `json:"project_key"`
	}
	// Body is optional; the configured defaults cover the common case.
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.JobName == "" {
		req.JobName = s.cfg.Jenkins.Job
	}
	if req.ProjectKey == "" {
		req.ProjectKey = s.cfg.SonarQube.ProjectKey
	}

	rep := s.generator.Generate(r.Context(), req.JobName, req.ProjectKey)

	if rep.Completeness == model.CompletenessEmpty {
		// Nothing usable was fetched; a document full of placeholders helps
		// nobody, so generation is blocked until a retry succeeds.
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":         "all upstream sources failed",
			"completeness":  rep.Completeness,
			"source_errors": rep.SourceErrors,
		})
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, rep); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("render report: %w", err))
		return
	}

	run := &db.ReportRun{
		JobName:      req.JobName,
		ProjectKey:   req.ProjectKey,
		Completeness: rep.Completeness,
		SourceErrors: rep.SourceErrors,
		Filename:     pdf.Filename(rep.GeneratedAt),
		PDF:          buf.Bytes(),
		CreatedAt:    rep.GeneratedAt,
	}
	id, err := s.db.CreateReportRun(r.Context(), run)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("store report: %w", err))
		return
	}

	if s.archive != nil {
		if _, err := s.archive.Store(r.Context(), run.Filename, run.PDF); err != nil {
			s.logger.Warn("archive report", "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":            id,
		"completeness":  rep.Completeness,
		"source_errors": rep.SourceErrors,
		"filename":      run.Filename,
		"download_url":  fmt.Sprintf("/api/v1/reports/%d/download", id),
	})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.db.ListReportRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []db.ReportRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid report id"))
		return
	}

	run, err := s.db.GetReportRun(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if run == nil || len(run.PDF) == 0 {
		writeError(w, http.StatusNotFound, fmt.Errorf("report %d not found", id))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", run.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(run.PDF)))
	_, _ = w.Write(run.PDF)
}
