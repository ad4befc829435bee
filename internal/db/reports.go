package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/devsecops-monitor/monitor/internal/model"
)

// ReportRun is the stored record of one report generation, with the rendered
// document kept alongside so it can be re-downloaded later.
type ReportRun struct {
	ID           int64               `json:"id"`
	JobName      string              `json:"job_name"`
	ProjectKey   string              `json:"project_key"`
	Completeness model.Completeness  `json:"completeness"`
	SourceErrors []model.SourceError `json:"source_errors"`
	Filename     string              `json:"filename"`
	PDF          []byte              `json:"-"`
	CreatedAt    time.Time           `json:"created_at"`
}

func (d *DB) CreateReportRun(ctx context.Context, run *ReportRun) (int64, error) {
	sourceErrors, err := json.Marshal(run.SourceErrors)
	if err != nil {
		return 0, err
	}
	res, err := d.ExecContext(ctx, `
		INSERT INTO report_runs (job_name, project_key, completeness, source_errors, filename, pdf, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.JobName, run.ProjectKey, string(run.Completeness), string(sourceErrors),
		run.Filename, run.PDF, run.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListReportRuns returns run metadata newest-first, without document bytes.
func (d *DB) ListReportRuns(ctx context.Context, limit int) ([]ReportRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.QueryContext(ctx, `
		SELECT id, job_name, project_key, completeness, source_errors, filename, created_at
		FROM report_runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReportRun
	for rows.Next() {
		run, err := scanReportRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

// GetReportRun returns one run including its document bytes, or nil when
// the id is unknown.
func (d *DB) GetReportRun(ctx context.Context, id int64) (*ReportRun, error) {
	row := d.QueryRowContext(ctx, `
		SELECT id, job_name, project_key, completeness, source_errors, filename, created_at, pdf
		FROM report_runs WHERE id = ?`, id)

	var pdf []byte
	run, err := scanReportRun(func(dest ...any) error {
		return row.Scan(append(dest, &pdf)...)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.PDF = pdf
	return run, nil
}

func scanReportRun(scan func(...any) error) (*ReportRun, error) {
	var run ReportRun
	var completeness, sourceErrors, createdAt string
	if err := scan(&run.ID, &run.JobName, &run.ProjectKey, &completeness,
		&sourceErrors, &run.Filename, &createdAt); err != nil {
		return nil, err
	}
	run.Completeness = model.Completeness(completeness)
	run.CreatedAt = parseTime(createdAt)
	if err := json.Unmarshal([]byte(sourceErrors), &run.SourceErrors); err != nil {
		run.SourceErrors = nil
	}
	return &run, nil
}
