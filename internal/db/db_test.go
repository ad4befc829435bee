package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/devsecops-monitor/monitor/internal/model"
	"github.com/devsecops-monitor/monitor/internal/session"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	sess := &session.Session{Token: "tok-1", Username: "alice", CreatedAt: created}
	if err := database.PutSession(ctx, sess); err != nil {
		t.Fatalf("PutSession() error: %v", err)
	}

	got, err := database.GetSession(ctx, "tok-1")
	if err != nil {
		t.Fatalf("GetSession() error: %v", err)
	}
	if got == nil {
		t.Fatal("GetSession() = nil, want session")
	}
	if got.Username != "alice" {
		t.Errorf("Username = %q, want %q", got.Username, "alice")
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}

	if err := database.DeleteSession(ctx, "tok-1"); err != nil {
		t.Fatalf("DeleteSession() error: %v", err)
	}
	if got, _ := database.GetSession(ctx, "tok-1"); got != nil {
		t.Error("GetSession() after delete should be nil")
	}
}

func TestGetSessionUnknown(t *testing.T) {
	database := openTestDB(t)
	got, err := database.GetSession(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetSession() error: %v", err)
	}
	if got != nil {
		t.Errorf("GetSession() = %+v, want nil", got)
	}
}

func TestPurgeSessions(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	old := &session.Session{Token: "old", Username: "a", CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	fresh := &session.Session{Token: "fresh", Username: "b", CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}
	_ = database.PutSession(ctx, old)
	_ = database.PutSession(ctx, fresh)

	n, err := database.PurgeSessions(ctx, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("PurgeSessions() error: %v", err)
	}
	if n != 1 {
		t.Errorf("PurgeSessions() = %d, want 1", n)
	}
	if got, _ := database.GetSession(ctx, "old"); got != nil {
		t.Error("old session survived purge")
	}
	if got, _ := database.GetSession(ctx, "fresh"); got == nil {
		t.Error("fresh session was purged")
	}
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	first, err := database.CreateNotification(ctx, "info", "Generating Report", "")
	if err != nil {
		t.Fatalf("CreateNotification() error: %v", err)
	}
	second, err := database.CreateNotification(ctx, "error", "Report Failed", "all sources down")
	if err != nil {
		t.Fatalf("CreateNotification() error: %v", err)
	}

	list, err := database.ListNotifications(ctx, 0)
	if err != nil {
		t.Fatalf("ListNotifications() error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
	// Newest first.
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("list order = %d,%d, want %d,%d", list[0].ID, list[1].ID, second.ID, first.ID)
	}
	if list[0].Seen {
		t.Error("new notification already marked seen")
	}

	if err := database.MarkNotificationSeen(ctx, second.ID); err != nil {
		t.Fatalf("MarkNotificationSeen() error: %v", err)
	}
	list, _ = database.ListNotifications(ctx, 0)
	if !list[0].Seen {
		t.Error("notification not marked seen")
	}
}

func TestReportRuns(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	run := &ReportRun{
		JobName:      "deploy-pipeline",
		ProjectKey:   "shop-service",
		Completeness: model.CompletenessPartial,
		SourceErrors: []model.SourceError{{Source: model.SourceCodeQuality, Reason: "HTTP 503"}},
		Filename:     "devops_report_2026-08-29_14-03-12.pdf",
		PDF:          []byte("%PDF-1.4 fake"),
		CreatedAt:    time.Date(2026, 8, 29, 14, 3, 12, 0, time.UTC),
	}
	id, err := database.CreateReportRun(ctx, run)
	if err != nil {
		t.Fatalf("CreateReportRun() error: %v", err)
	}

	list, err := database.ListReportRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListReportRuns() error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	if list[0].PDF != nil {
		t.Error("ListReportRuns() should not load document bytes")
	}
	if list[0].Completeness != model.CompletenessPartial {
		t.Errorf("Completeness = %q, want partial", list[0].Completeness)
	}
	if len(list[0].SourceErrors) != 1 || list[0].SourceErrors[0].Reason != "HTTP 503" {
		t.Errorf("SourceErrors = %+v, want the stored reason", list[0].SourceErrors)
	}

	got, err := database.GetReportRun(ctx, id)
	if err != nil {
		t.Fatalf("GetReportRun() error: %v", err)
	}
	if got == nil {
		t.Fatal("GetReportRun() = nil, want run")
	}
	if string(got.PDF) != "%PDF-1.4 fake" {
		t.Errorf("PDF = %q, want stored bytes", got.PDF)
	}

	if missing, _ := database.GetReportRun(ctx, id+100); missing != nil {
		t.Errorf("GetReportRun(unknown) = %+v, want nil", missing)
	}
}
