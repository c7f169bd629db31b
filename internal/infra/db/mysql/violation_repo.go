package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/streamdab/eti-monitor/internal/domain/compliance"
)

type ViolationRepository struct {
	db *sql.DB
}

func NewViolationRepository(db *sql.DB) *ViolationRepository {
	return &ViolationRepository{db: db}
}

// Save appends one violation incident row.
func (r *ViolationRepository) Save(ctx context.Context, station string, v domain.ComplianceResult) error {
	const q = `
INSERT INTO eti_violations
(station_id, standard, check_name, severity, score, details, recommendation, occurred_at)
VALUES (?,?,?,?,?,?,?,?);
`
	occurred := v.Timestamp
	if occurred.IsZero() {
		occurred = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		stringOrDash(station), string(v.Standard), v.CheckName, string(v.Severity),
		v.Score, v.Details, v.Recommendation, occurred,
	)
	return err
}

// Recent returns the newest incidents since a cutoff, newest first.
func (r *ViolationRepository) Recent(ctx context.Context, station string, since time.Time, limit int) ([]domain.ComplianceResult, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT standard, check_name, severity, score, details, recommendation, occurred_at
FROM eti_violations
WHERE station_id=? AND occurred_at >= ?
ORDER BY occurred_at DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, station, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ComplianceResult
	for rows.Next() {
		var v domain.ComplianceResult
		var std, sev string
		if err := rows.Scan(&std, &v.CheckName, &sev, &v.Score, &v.Details, &v.Recommendation, &v.Timestamp); err != nil {
			return nil, err
		}
		v.Standard = domain.Standard(std)
		v.Severity = domain.Severity(sev)
		v.Description = v.Standard.Name()
		out = append(out, v)
	}
	return out, rows.Err()
}
