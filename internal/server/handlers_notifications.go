package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/devsecops-monitor/monitor/internal/db"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	notifications, err := s.db.ListNotifications(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if notifications == nil {
		notifications = []db.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (s *Server) handleMarkNotificationSeen(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid notification id"))
		return
	}
	if err := s.db.MarkNotificationSeen(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "seen"})
}
