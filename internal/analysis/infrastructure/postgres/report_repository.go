package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	analysis "carbonsite-engine/internal/analysis/domain"
	screening "carbonsite-engine/internal/screening/domain"
)

// ReportRepository persists analysis reports. The header row carries the
// run parameters; per-site results are stored as one JSON payload per row
// so the full result round-trips without a column per metric.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository constructs a repository.
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Save inserts a report and its site results in one transaction.
func (r *ReportRepository) Save(ctx context.Context, report *analysis.Report) error {
	if r == nil || r.db == nil {
		return errors.New("report repo: nil db")
	}
	if report == nil {
		return errors.New("report repo: nil report")
	}
	if report.ID == "" {
		return analysis.ErrEmptyReportID
	}

	weights, err := json.Marshal(report.Weights)
	if err != nil {
		return err
	}
	recommendations, err := json.Marshal(report.Recommendations)
	if err != nil {
		return err
	}
	failures, err := json.Marshal(report.Failures)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO analysis_reports (
	id, project_type, target_capacity_tpy, weights, recommendations, failures, generated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		report.ID, report.ProjectType, report.TargetCapacityTPY,
		weights, recommendations, failures, report.GeneratedAt,
	)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, site := range report.Sites {
		payload, err := json.Marshal(site)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO analysis_report_sites (
	report_id, ranking, site_id, payload
) VALUES ($1,$2,$3,$4)`,
			report.ID, site.Ranking, site.Site.SiteID, payload)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Get fetches a report with its site results.
func (r *ReportRepository) Get(ctx context.Context, id string) (*analysis.Report, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("report repo: nil db")
	}
	if id == "" {
		return nil, analysis.ErrEmptyReportID
	}

	var (
		report          analysis.Report
		weights         []byte
		recommendations []byte
		failures        []byte
	)
	err := r.db.QueryRowContext(ctx, `
SELECT id, project_type, target_capacity_tpy, weights, recommendations, failures, generated_at
FROM analysis_reports
WHERE id = $1
LIMIT 1`, id).Scan(
		&report.ID, &report.ProjectType, &report.TargetCapacityTPY,
		&weights, &recommendations, &failures, &report.GeneratedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", analysis.ErrReportNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(weights, &report.Weights); err != nil {
		return nil, fmt.Errorf("report repo: weights: %w", err)
	}
	if len(recommendations) > 0 {
		if err := json.Unmarshal(recommendations, &report.Recommendations); err != nil {
			return nil, fmt.Errorf("report repo: recommendations: %w", err)
		}
	}
	if len(failures) > 0 {
		if err := json.Unmarshal(failures, &report.Failures); err != nil {
			return nil, fmt.Errorf("report repo: failures: %w", err)
		}
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT payload
FROM analysis_report_sites
WHERE report_id = $1
ORDER BY ranking ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var site analysis.SiteResult
		if err := json.Unmarshal(payload, &site); err != nil {
			return nil, fmt.Errorf("report repo: site payload: %w", err)
		}
		report.Sites = append(report.Sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &report, nil
}

// ListHeaders returns report headers without site payloads, newest first.
func (r *ReportRepository) ListHeaders(ctx context.Context, limit int) ([]analysis.Report, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("report repo: nil db")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, project_type, target_capacity_tpy, weights, generated_at
FROM analysis_reports
ORDER BY generated_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []analysis.Report
	for rows.Next() {
		var (
			report  analysis.Report
			weights []byte
		)
		if err := rows.Scan(&report.ID, &report.ProjectType, &report.TargetCapacityTPY, &weights, &report.GeneratedAt); err != nil {
			return nil, err
		}
		var w screening.Weights
		if err := json.Unmarshal(weights, &w); err != nil {
			return nil, fmt.Errorf("report repo: weights: %w", err)
		}
		report.Weights = w
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}
