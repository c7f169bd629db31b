package httpserver

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appadvisor "github.com/streamdab/eti-monitor/internal/application/advisor"
	"github.com/streamdab/eti-monitor/internal/application/analysis"
	appthai "github.com/streamdab/eti-monitor/internal/application/thai"
	"github.com/streamdab/eti-monitor/internal/application/pipeline"
	domadvisor "github.com/streamdab/eti-monitor/internal/domain/advisor"
	"github.com/streamdab/eti-monitor/internal/domain/compliance"
)

type memReports struct {
	byID map[compliance.ReportID]*compliance.ETIAnalysisReport
}

func newMemReports() *memReports {
	return &memReports{byID: make(map[compliance.ReportID]*compliance.ETIAnalysisReport)}
}

func (m *memReports) Save(_ context.Context, rep *compliance.ETIAnalysisReport) error {
	m.byID[rep.ID] = rep
	return nil
}

func (m *memReports) Get(_ context.Context, _ string, id compliance.ReportID) (*compliance.ETIAnalysisReport, error) {
	rep, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rep, nil
}

func (m *memReports) Latest(_ context.Context, _ string, limit int) ([]*compliance.ETIAnalysisReport, error) {
	var out []*compliance.ETIAnalysisReport
	for _, rep := range m.byID {
		if len(out) >= limit {
			break
		}
		out = append(out, rep)
	}
	return out, nil
}

func (m *memReports) Summary(_ context.Context, _ string, _ int) (int, int, float64, error) {
	return len(m.byID), 0, 85, nil
}

type memSummaries struct {
	saved []*domadvisor.Summary
}

func (m *memSummaries) Save(_ context.Context, s *domadvisor.Summary) error {
	m.saved = append(m.saved, s)
	return nil
}

func (m *memSummaries) LatestByReport(_ context.Context, _ string, _ string) (*domadvisor.Summary, error) {
	if len(m.saved) == 0 {
		return nil, sql.ErrNoRows
	}
	return m.saved[len(m.saved)-1], nil
}

func (m *memSummaries) Paginate(_ context.Context, _ string, _, _ int) ([]*domadvisor.Summary, error) {
	return m.saved, nil
}

type stubAdvisorClient struct{}

func (stubAdvisorClient) Summarize(_ context.Context, _ string) (string, error) {
	return `{"verdict":"acceptable"}`, nil
}

func newTestRouter(t *testing.T) (http.Handler, *memReports, *pipeline.Pipeline) {
	t.Helper()
	analyzer := analysis.NewAnalyzer()
	analyzer.SetThaiEngine(appthai.NewDefaultEngine())

	pipe, err := pipeline.New(pipeline.DefaultConfig())
	require.NoError(t, err)

	reports := newMemReports()
	advisorSvc := appadvisor.NewService(stubAdvisorClient{}, &memSummaries{})
	return NewRouter(analyzer, pipe, reports, advisorSvc, nil), reports, pipe
}

// etiFrame builds a minimal well-formed ETI(NI) frame.
func etiFrame() []byte {
	frame := make([]byte, 6144)
	frame[0] = 0xFF
	frame[1], frame[2], frame[3] = 0x07, 0x3A, 0xB6
	frame[5] = 0x01
	frame[6], frame[7] = 0x06, 0x00
	for i := 8; i < 8+96*3; i++ {
		frame[i] = 0xFF
	}
	return frame
}

func TestHandleAnalyze(t *testing.T) {
	h, _, pipe := newTestRouter(t)

	req := httptest.NewRequest("POST", "/v1/bkk-radio/analyze", bytes.NewReader(etiFrame()))
	req.Header.Set("X-Filename", "morning-show.eti")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var rep compliance.ETIAnalysisReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.Equal(t, "bkk-radio", rep.StationID)
	assert.Equal(t, "morning-show.eti", rep.Filename)
	assert.Equal(t, 1, rep.TotalFramesAnalyzed)
	assert.NotEmpty(t, rep.StandardResults)

	// the report is queued for the pipeline worker
	assert.Equal(t, 1, pipe.Stats().PendingReports)
}

func TestHandleAnalyzeRejectsEmptyBody(t *testing.T) {
	h, _, _ := newTestRouter(t)

	req := httptest.NewRequest("POST", "/v1/bkk-radio/analyze", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAnalyzeRejectsBadFilename(t *testing.T) {
	h, _, _ := newTestRouter(t)

	req := httptest.NewRequest("POST", "/v1/bkk-radio/analyze", bytes.NewReader(etiFrame()))
	req.Header.Set("X-Filename", "../../escape.eti")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleValidateText(t *testing.T) {
	h, _, _ := newTestRouter(t)

	body, _ := json.Marshal(map[string]string{"text": "สวัสดี DAB"})
	req := httptest.NewRequest("POST", "/v1/bkk-radio/text", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var results []compliance.ComplianceResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.True(t, results[0].Passed)
	assert.Equal(t, compliance.StandardTS101756, results[0].Standard)
}

func TestHandleAnalyzeDLS(t *testing.T) {
	h, _, _ := newTestRouter(t)

	body, _ := json.Marshal(map[string]string{"text": "สวัสดี hello"})
	req := httptest.NewRequest("POST", "/v1/bkk-radio/dls", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Analysis struct {
			Bilingual      bool     `json:"bilingual"`
			ExceedsLimit   bool     `json:"exceeds_limit"`
			Segments       []string `json:"segments"`
			EnglishPortion string   `json:"english_portion"`
		} `json:"analysis"`
		DateGuidelines []string `json:"date_guidelines"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Analysis.Bilingual)
	assert.Equal(t, " hello", resp.Analysis.EnglishPortion)
	assert.False(t, resp.Analysis.ExceedsLimit)
	assert.Len(t, resp.Analysis.Segments, 1)
	assert.NotEmpty(t, resp.DateGuidelines)
}

func TestHandleGetReport(t *testing.T) {
	h, reports, _ := newTestRouter(t)

	rep := &compliance.ETIAnalysisReport{ID: "11111111-2222-3333-4444-555555555555", StationID: "bkk-radio"}
	require.NoError(t, reports.Save(context.Background(), rep))

	req := httptest.NewRequest("GET", "/v1/bkk-radio/reports/11111111-2222-3333-4444-555555555555", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/v1/bkk-radio/reports/99999999-2222-3333-4444-555555555555", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleStats(t *testing.T) {
	h, _, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/v1/bkk-radio/stats", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var st pipeline.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, 0, st.ReportsSent)
}

func TestStreamingConfigRoundTrip(t *testing.T) {
	h, _, pipe := newTestRouter(t)

	cfg := pipe.GetConfig()
	cfg.ReportingIntervalSeconds = 60
	body, _ := json.Marshal(cfg)
	req := httptest.NewRequest("PUT", "/v1/bkk-radio/streaming/config", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 60, pipe.GetConfig().ReportingIntervalSeconds)

	// invalid update is rejected and the active config kept
	cfg.ReportingIntervalSeconds = 0
	body, _ = json.Marshal(cfg)
	req = httptest.NewRequest("PUT", "/v1/bkk-radio/streaming/config", bytes.NewReader(body))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 60, pipe.GetConfig().ReportingIntervalSeconds)
}

func TestHandleAISummarize(t *testing.T) {
	h, reports, _ := newTestRouter(t)

	rep := &compliance.ETIAnalysisReport{
		ID:          "11111111-2222-3333-4444-555555555555",
		StationID:   "bkk-radio",
		ArtifactURL: "https://minio.local/reports/r.json",
	}
	require.NoError(t, reports.Save(context.Background(), rep))

	body, _ := json.Marshal(map[string]string{"report_id": string(rep.ID)})
	req := httptest.NewRequest("POST", "/v1/bkk-radio/ai/summarize", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var sum domadvisor.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sum))
	assert.Equal(t, "bkk-radio", sum.StationID)
	assert.Equal(t, `{"verdict":"acceptable"}`, sum.Result)
}

func TestHealthEndpoint(t *testing.T) {
	h, _, _ := newTestRouter(t)
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
