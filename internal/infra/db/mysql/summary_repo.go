package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/streamdab/eti-monitor/internal/domain/advisor"
)

type SummaryRepository struct {
	db *sql.DB
}

func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Save stores one AI summary for auditing.
func (r *SummaryRepository) Save(ctx context.Context, s *domain.Summary) error {
	const q = `
INSERT INTO advisor_summaries
(id, station_id, report_id, file_url, result, created_at)
VALUES (?,?,?,?,?,?);
`
	created := s.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		s.ID, stringOrDash(s.StationID), s.ReportID, s.FileURL, s.Result, created,
	)
	return err
}

// LatestByReport returns the newest summary for one report.
func (r *SummaryRepository) LatestByReport(ctx context.Context, station string, reportID string) (*domain.Summary, error) {
	const q = `
SELECT id, station_id, report_id, file_url, result, created_at
FROM advisor_summaries
WHERE station_id=? AND report_id=?
ORDER BY created_at DESC LIMIT 1;
`
	var s domain.Summary
	if err := r.db.QueryRowContext(ctx, q, station, reportID).Scan(
		&s.ID, &s.StationID, &s.ReportID, &s.FileURL, &s.Result, &s.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// Paginate with offset + limit (classic pagination)
func (r *SummaryRepository) Paginate(ctx context.Context, station string, page, pageSize int) ([]*domain.Summary, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, station_id, report_id, file_url, result, created_at
FROM advisor_summaries
WHERE station_id=?
ORDER BY created_at DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, station, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Summary
	for rows.Next() {
		var s domain.Summary
		if err := rows.Scan(&s.ID, &s.StationID, &s.ReportID, &s.FileURL, &s.Result, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
