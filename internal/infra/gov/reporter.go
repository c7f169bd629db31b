// Package gov formats and submits compliance reports to the NBTC
// regulator API. Formatting is owned here; transport and auth ride the
// shared HTTP client. The regulator's wire contract is external: this
// package only guarantees the payload shape.
package gov

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/streamdab/eti-monitor/internal/domain/compliance"
	"github.com/streamdab/eti-monitor/internal/domain/thai"
)

// Transport is the slice of the HTTP client the reporter needs.
type Transport interface {
	PostJSON(ctx context.Context, path string, payload any) error
}

// Reporter submits daily aggregates, violation incidents, and Thai
// compliance summaries to the regulator.
type Reporter struct {
	station   string
	transport Transport
}

// NewReporter builds a reporter for one licensed station.
func NewReporter(station string, transport Transport) *Reporter {
	return &Reporter{station: station, transport: transport}
}

func (r *Reporter) reportID() string {
	return fmt.Sprintf("NBTC-%s-%s", time.Now().UTC().Format("20060102"), uuid.New().String()[:8])
}

// SubmitDailyReport formats and submits the daily aggregate.
func (r *Reporter) SubmitDailyReport(ctx context.Context, reports []*compliance.ETIAnalysisReport) error {
	payload := r.FormatDailyReport(reports)
	if err := r.transport.PostJSON(ctx, "/nbtc/daily", payload); err != nil {
		return fmt.Errorf("daily report submission: %w", err)
	}
	log.WithField("reports", len(reports)).Info("daily NBTC report submitted")
	return nil
}

// SubmitViolationIncident submits one violation incident.
func (r *Reporter) SubmitViolationIncident(ctx context.Context, v compliance.ComplianceResult) error {
	if err := r.transport.PostJSON(ctx, "/nbtc/incident", r.FormatIncident(v)); err != nil {
		return fmt.Errorf("incident submission: %w", err)
	}
	return nil
}

// SubmitThaiComplianceSummary submits a Thai-language compliance summary.
func (r *Reporter) SubmitThaiComplianceSummary(ctx context.Context, m *thai.ThaiMetadata) error {
	if err := r.transport.PostJSON(ctx, "/nbtc/thai", r.FormatThaiSummary(m)); err != nil {
		return fmt.Errorf("thai summary submission: %w", err)
	}
	return nil
}

// FormatDailyReport builds the daily aggregate payload.
func (r *Reporter) FormatDailyReport(reports []*compliance.ETIAnalysisReport) map[string]any {
	var scoreSum float64
	violations := 0
	critical := 0
	for _, rep := range reports {
		scoreSum += rep.OverallComplianceScore
		violations += rep.TotalViolationsFound
		critical += len(rep.CriticalIssues)
	}
	avg := 0.0
	if len(reports) > 0 {
		avg = scoreSum / float64(len(reports))
	}
	return map[string]any{
		"report_id":     r.reportID(),
		"report_type":   "daily_compliance",
		"station_id":    r.station,
		"report_date":   time.Now().UTC().Format("2006-01-02"),
		"analyses":      len(reports),
		"average_score": avg,
		"violations":    violations,
		"critical":      critical,
	}
}

// FormatIncident builds the violation incident payload.
func (r *Reporter) FormatIncident(v compliance.ComplianceResult) map[string]any {
	return map[string]any{
		"report_id":      r.reportID(),
		"report_type":    "violation_incident",
		"station_id":     r.station,
		"standard":       string(v.Standard),
		"check":          v.CheckName,
		"severity":       string(v.Severity),
		"score":          v.Score,
		"details":        v.Details,
		"recommendation": v.Recommendation,
		"occurred_at":    v.Timestamp,
	}
}

// FormatThaiSummary builds the Thai compliance summary payload.
func (r *Reporter) FormatThaiSummary(m *thai.ThaiMetadata) map[string]any {
	return map[string]any{
		"report_id":          r.reportID(),
		"report_type":        "thai_compliance",
		"station_id":         r.station,
		"overall_compliance": m.OverallCompliance,
		"compliance_level":   string(thai.LevelForScore(m.OverallCompliance)),
		"cultural_category":  m.Cultural.CulturalCategory,
		"english_fallback":   m.HasEnglishFallback,
		"analyzed_at":        m.Timestamp,
	}
}
