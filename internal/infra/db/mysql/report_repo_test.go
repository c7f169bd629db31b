package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/streamdab/eti-monitor/internal/domain/compliance"
)

func sampleReport() *domain.ETIAnalysisReport {
	return &domain.ETIAnalysisReport{
		ID:                     "11111111-2222-3333-4444-555555555555",
		StationID:              "bkk-radio",
		Filename:               "capture.eti",
		AnalysisTime:           time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		OverallComplianceScore: 87.5,
		TotalFramesAnalyzed:    240,
		TotalViolationsFound:   2,
		ThaiComplianceLevel:    "warning",
		ExecutiveSummary:       "Analyzed capture.eti",
	}
}

func TestReportRepositorySave(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rep := sampleReport()
	mock.ExpectExec("INSERT INTO eti_reports").
		WithArgs(
			rep.ID, rep.StationID, rep.Filename, rep.AnalysisTime, rep.OverallComplianceScore,
			rep.TotalFramesAnalyzed, rep.TotalViolationsFound, 0,
			string(rep.ThaiComplianceLevel), int64(0),
			rep.MemoryUsageBytes, rep.ArtifactURL, rep.ExecutiveSummary, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewReportRepository(db)
	require.NoError(t, repo.Save(context.Background(), rep))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositorySaveEmptyStation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rep := sampleReport()
	rep.StationID = ""
	mock.ExpectExec("INSERT INTO eti_reports").
		WithArgs(
			rep.ID, "-", rep.Filename, rep.AnalysisTime, rep.OverallComplianceScore,
			rep.TotalFramesAnalyzed, rep.TotalViolationsFound, 0,
			string(rep.ThaiComplianceLevel), int64(0),
			rep.MemoryUsageBytes, rep.ArtifactURL, rep.ExecutiveSummary, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewReportRepository(db)
	require.NoError(t, repo.Save(context.Background(), rep))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rep := sampleReport()
	payload, err := json.Marshal(rep)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT payload FROM eti_reports").
		WithArgs("bkk-radio", string(rep.ID)).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

	repo := NewReportRepository(db)
	got, err := repo.Get(context.Background(), "bkk-radio", rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.ID, got.ID)
	assert.Equal(t, rep.OverallComplianceScore, got.OverallComplianceScore)
	assert.Equal(t, rep.Filename, got.Filename)
}

func TestReportRepositoryGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT payload FROM eti_reports").
		WithArgs("bkk-radio", "missing").
		WillReturnError(sql.ErrNoRows)

	repo := NewReportRepository(db)
	_, err = repo.Get(context.Background(), "bkk-radio", "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestReportRepositoryLatest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r1, r2 := sampleReport(), sampleReport()
	r2.ID = "99999999-8888-7777-6666-555555555555"
	p1, _ := json.Marshal(r1)
	p2, _ := json.Marshal(r2)

	mock.ExpectQuery("SELECT payload FROM eti_reports").
		WithArgs("bkk-radio", 2).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(p1).AddRow(p2))

	repo := NewReportRepository(db)
	got, err := repo.Latest(context.Background(), "bkk-radio", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, r1.ID, got[0].ID)
	assert.Equal(t, r2.ID, got[1].ID)
}

func TestReportRepositoryLatestDefaultLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT payload FROM eti_reports").
		WithArgs("bkk-radio", 20).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	repo := NewReportRepository(db)
	got, err := repo.Latest(context.Background(), "bkk-radio", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositorySummary(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("bkk-radio", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"total_reports", "critical", "avg_score"}).
			AddRow(12, 3, 81.25))

	repo := NewReportRepository(db)
	total, critical, avg, err := repo.Summary(context.Background(), "bkk-radio", 7)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.Equal(t, 3, critical)
	assert.Equal(t, 81.25, avg)
}
