package server

import "net/http"

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health & Auth
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/logout", s.requireSession(s.handleLogout))

	// Upstream proxy endpoints for the dashboard UI
	mux.HandleFunc("GET /api/v1/jenkins/jobs", s.requireSession(s.handleListJobs))
	mux.HandleFunc("GET /api/v1/jenkins/jobs/{name}/details", s.requireSession(s.handleJobDetails))
	mux.HandleFunc("GET /api/v1/sonarqube/projects", s.requireSession(s.handleListProjects))
	mux.HandleFunc("GET /api/v1/sonarqube/projects/{key}/details", s.requireSession(s.handleProjectDetails))
	mux.HandleFunc("GET /api/v1/argocd/applications", s.requireSession(s.handleListApplications))

	// Notifications
	mux.HandleFunc("GET /api/v1/notifications", s.requireSession(s.handleListNotifications))
	mux.HandleFunc("POST /api/v1/notifications/{id}/seen", s.requireSession(s.handleMarkNotificationSeen))

	// Reports
	mux.HandleFunc("POST /api/v1/reports", s.requireSession(s.handleGenerateReport))
	mux.HandleFunc("GET /api/v1/reports", s.requireSession(s.handleListReports))
	mux.HandleFunc("GET /api/v1/reports/{id}/download", s.requireSession(s.handleDownloadReport))
}
