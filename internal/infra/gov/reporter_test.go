package gov

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamdab/eti-monitor/internal/domain/compliance"
	"github.com/streamdab/eti-monitor/internal/domain/thai"
)

type fakeTransport struct {
	paths    []string
	payloads []any
	err      error
}

func (f *fakeTransport) PostJSON(_ context.Context, path string, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.paths = append(f.paths, path)
	f.payloads = append(f.payloads, payload)
	return nil
}

func TestSubmitDailyReport(t *testing.T) {
	tr := &fakeTransport{}
	r := NewReporter("bkk-radio", tr)

	reports := []*compliance.ETIAnalysisReport{
		{OverallComplianceScore: 90, TotalViolationsFound: 1},
		{OverallComplianceScore: 70, TotalViolationsFound: 3, CriticalIssues: []string{"x"}},
	}
	require.NoError(t, r.SubmitDailyReport(context.Background(), reports))
	require.Len(t, tr.paths, 1)
	assert.Equal(t, "/nbtc/daily", tr.paths[0])

	payload := tr.payloads[0].(map[string]any)
	assert.Equal(t, "daily_compliance", payload["report_type"])
	assert.Equal(t, "bkk-radio", payload["station_id"])
	assert.Equal(t, 2, payload["analyses"])
	assert.Equal(t, 80.0, payload["average_score"])
	assert.Equal(t, 4, payload["violations"])
	assert.Equal(t, 1, payload["critical"])
	assert.True(t, strings.HasPrefix(payload["report_id"].(string), "NBTC-"))
}

func TestSubmitDailyReportTransportError(t *testing.T) {
	tr := &fakeTransport{err: errors.New("boom")}
	r := NewReporter("bkk-radio", tr)

	err := r.SubmitDailyReport(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily report submission")
}

func TestSubmitViolationIncident(t *testing.T) {
	tr := &fakeTransport{}
	r := NewReporter("bkk-radio", tr)

	v := compliance.NewResult(compliance.StandardEN300401, "frame_sync", false, 10, "bad sync")
	require.NoError(t, r.SubmitViolationIncident(context.Background(), v))
	require.Len(t, tr.paths, 1)
	assert.Equal(t, "/nbtc/incident", tr.paths[0])

	payload := tr.payloads[0].(map[string]any)
	assert.Equal(t, "violation_incident", payload["report_type"])
	assert.Equal(t, "EN_300_401", payload["standard"])
	assert.Equal(t, "frame_sync", payload["check"])
	assert.Equal(t, "critical", payload["severity"])
}

func TestSubmitThaiComplianceSummary(t *testing.T) {
	tr := &fakeTransport{}
	r := NewReporter("bkk-radio", tr)

	m := &thai.ThaiMetadata{OverallCompliance: 96}
	require.NoError(t, r.SubmitThaiComplianceSummary(context.Background(), m))
	require.Len(t, tr.paths, 1)
	assert.Equal(t, "/nbtc/thai", tr.paths[0])

	payload := tr.payloads[0].(map[string]any)
	assert.Equal(t, "thai_compliance", payload["report_type"])
	assert.Equal(t, "compliant", payload["compliance_level"])
	assert.Equal(t, 96.0, payload["overall_compliance"])
}

func TestDailyReportIDsAreUnique(t *testing.T) {
	r := NewReporter("bkk-radio", &fakeTransport{})
	a := r.FormatDailyReport(nil)["report_id"].(string)
	b := r.FormatDailyReport(nil)["report_id"].(string)
	assert.NotEqual(t, a, b)
}
