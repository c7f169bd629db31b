// Package postgres mirrors the MySQL report repository for deployments
// that run on PostgreSQL (the NBTC side does).
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	_ "github.com/lib/pq"

	domain "github.com/streamdab/eti-monitor/internal/domain/compliance"
)

type ReportRepository struct{ db *sql.DB }

func NewReportRepository(db *sql.DB) *ReportRepository { return &ReportRepository{db: db} }

// Save insert/update one analysis report.
func (r *ReportRepository) Save(ctx context.Context, rep *domain.ETIAnalysisReport) error {
	const q = `
INSERT INTO eti_reports
(id, station_id, filename, analysis_time, overall_score,
 frames_analyzed, violations_found, critical_count,
 thai_level, duration_ms, memory_bytes, artifact_url, summary, payload)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (id) DO UPDATE SET
 overall_score = EXCLUDED.overall_score,
 violations_found = EXCLUDED.violations_found,
 critical_count = EXCLUDED.critical_count,
 artifact_url = EXCLUDED.artifact_url,
 summary = EXCLUDED.summary,
 payload = EXCLUDED.payload;`

	station := rep.StationID
	if strings.TrimSpace(station) == "" {
		station = "-"
	}
	analysisTime := rep.AnalysisTime
	if analysisTime.IsZero() {
		analysisTime = time.Now()
	}
	payload, err := json.Marshal(rep)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, q,
		rep.ID, station, rep.Filename, analysisTime, rep.OverallComplianceScore,
		rep.TotalFramesAnalyzed, rep.TotalViolationsFound, len(rep.CriticalIssues),
		string(rep.ThaiComplianceLevel), rep.AnalysisDuration.Milliseconds(),
		rep.MemoryUsageBytes, rep.ArtifactURL, rep.ExecutiveSummary, payload,
	)
	return err
}

// Get by ID + station
func (r *ReportRepository) Get(ctx context.Context, station string, id domain.ReportID) (*domain.ETIAnalysisReport, error) {
	const q = `SELECT payload FROM eti_reports WHERE station_id=$1 AND id=$2 LIMIT 1;`
	var payload []byte
	if err := r.db.QueryRowContext(ctx, q, station, id).Scan(&payload); err != nil {
		return nil, err
	}
	var rep domain.ETIAnalysisReport
	if err := json.Unmarshal(payload, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// Latest reports per station
func (r *ReportRepository) Latest(ctx context.Context, station string, limit int) ([]*domain.ETIAnalysisReport, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT payload FROM eti_reports
WHERE station_id=$1 ORDER BY analysis_time DESC LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, station, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ETIAnalysisReport
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var rep domain.ETIAnalysisReport
		if err := json.Unmarshal(payload, &rep); err != nil {
			return nil, err
		}
		out = append(out, &rep)
	}
	return out, rows.Err()
}

// Summary aggregates report outcomes since N days
func (r *ReportRepository) Summary(ctx context.Context, station string, sinceDays int) (int, int, float64, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	cut := time.Now().AddDate(0, 0, -sinceDays)

	const q = `
SELECT COUNT(*) AS total_reports,
       COALESCE(SUM(critical_count),0) AS critical,
       COALESCE(AVG(overall_score),0)  AS avg_score
FROM eti_reports
WHERE station_id=$1 AND analysis_time >= $2;`
	var total, critical int
	var avg float64
	if err := r.db.QueryRowContext(ctx, q, station, cut).Scan(&total, &critical, &avg); err != nil {
		return 0, 0, 0, err
	}
	return total, critical, avg, nil
}
