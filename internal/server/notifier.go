package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/devsecops-monitor/monitor/internal/db"
	"github.com/devsecops-monitor/monitor/internal/model"
)

// DBNotifier persists report lifecycle events as dashboard notifications.
// Delivery is best-effort: a storage error is logged and swallowed so it
// can never affect the report run itself.
type DBNotifier struct {
	DB     *db.DB
	Logger *slog.Logger
}

func (n *DBNotifier) ReportStarted(ctx context.Context) {
	n.create(ctx, "info", "Generating Report",
		"Fetching data from the build, code-quality, and deployment systems...")
}

func (n *DBNotifier) ReportFinished(ctx context.Context, completeness model.Completeness, errors []model.SourceError) {
	switch completeness {
	case model.CompletenessFull:
		n.create(ctx, "success", "Report Ready", "All sources fetched successfully.")
	case model.CompletenessPartial:
		n.create(ctx, "warning", "Partial Report Data", joinReasons(errors))
	default:
		n.create(ctx, "error", "Report Failed", joinReasons(errors))
	}
}

func (n *DBNotifier) create(ctx context.Context, level, title, message string) {
	if _, err := n.DB.CreateNotification(ctx, level, title, message); err != nil {
		n.Logger.Warn("create notification", "title", title, "error", err)
	}
}

func joinReasons(errors []model.SourceError) string {
	parts := make([]string, 0, len(errors))
	for _, se := range errors {
		parts = append(parts, fmt.Sprintf("%s: %s", se.Source, se.Reason))
	}
	return "Failed to fetch some data: " + strings.Join(parts, "; ")
}
