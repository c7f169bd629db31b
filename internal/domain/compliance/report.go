package compliance

import (
	"fmt"
	"time"

	"github.com/streamdab/eti-monitor/internal/domain/thai"
)

// ReportID identifier type
type ReportID string

// ETIAnalysisReport is the full outcome of analyzing one ETI file or
// frame. Built incrementally by the analyzer, immutable afterwards;
// ownership passes to the pipeline queue on submission.
type ETIAnalysisReport struct {
	ID           ReportID  `json:"id"`
	StationID    string    `json:"station_id"`
	Filename     string    `json:"filename"`
	AnalysisTime time.Time `json:"analysis_time"`

	OverallComplianceScore float64 `json:"overall_compliance_score"`
	TotalFramesAnalyzed    int     `json:"total_frames_analyzed"`
	TotalViolationsFound   int     `json:"total_violations_found"`

	StandardResults map[Standard][]ComplianceResult `json:"standard_results"`

	ThaiAnalysis        *thai.ThaiMetadata   `json:"thai_analysis,omitempty"`
	ThaiComplianceLevel thai.ComplianceLevel `json:"thai_compliance_level,omitempty"`

	AnalysisDuration time.Duration `json:"analysis_duration_ns"`
	MemoryUsageBytes uint64        `json:"memory_usage_bytes"`

	CriticalIssues   []string `json:"critical_issues,omitempty"`
	Recommendations  []string `json:"recommendations,omitempty"`
	ExecutiveSummary string   `json:"executive_summary"`

	ArtifactURL string `json:"artifact_url,omitempty"`
}

// AllResults flattens the per-standard results in standard order.
func (r *ETIAnalysisReport) AllResults() []ComplianceResult {
	var out []ComplianceResult
	for _, std := range AllStandards() {
		out = append(out, r.StandardResults[std]...)
	}
	return out
}

// PassRate returns the fraction of checks that passed, in [0,1].
func (r *ETIAnalysisReport) PassRate() float64 {
	results := r.AllResults()
	if len(results) == 0 {
		return 0
	}
	passed := 0
	for _, res := range results {
		if res.Passed {
			passed++
		}
	}
	return float64(passed) / float64(len(results))
}

// Summarize fills in the executive summary from the report's own numbers.
func (r *ETIAnalysisReport) Summarize() {
	total := len(r.AllResults())
	r.ExecutiveSummary = fmt.Sprintf(
		"Analyzed %s: %d checks across %d standards, %.1f%% pass rate, overall compliance %.1f/100, %d critical issue(s).",
		r.Filename, total, len(r.StandardResults), r.PassRate()*100, r.OverallComplianceScore, len(r.CriticalIssues),
	)
}
