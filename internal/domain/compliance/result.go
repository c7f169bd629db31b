package compliance

import "time"

// MetadataKV keeps result metadata in insertion order, which the output
// serializers rely on (maps would shuffle CSV columns between runs).
type MetadataKV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ComplianceResult is one finding from one standard-specific check.
// Value object, immutable once created.
type ComplianceResult struct {
	Standard       Standard     `json:"standard"`
	CheckName      string       `json:"check_name"`
	Description    string       `json:"description"`
	Severity       Severity     `json:"severity"`
	Passed         bool         `json:"passed"`
	Score          float64      `json:"score"`
	Details        string       `json:"details"`
	Recommendation string       `json:"recommendation"`
	Timestamp      time.Time    `json:"timestamp"`
	Metadata       []MetadataKV `json:"metadata,omitempty"`
}

// NewResult builds a finding with the severity derived from the score.
// Scores are clamped to [0,100] at this boundary so downstream consumers
// never see an out-of-range value.
func NewResult(std Standard, checkName string, passed bool, score float64, details string) ComplianceResult {
	score = ClampScore(score)
	return ComplianceResult{
		Standard:    std,
		CheckName:   checkName,
		Description: std.Name(),
		Severity:    SeverityForScore(score),
		Passed:      passed,
		Score:       score,
		Details:     details,
		Timestamp:   time.Now().UTC(),
	}
}

// WithRecommendation returns a copy carrying the suggested fix.
func (r ComplianceResult) WithRecommendation(rec string) ComplianceResult {
	r.Recommendation = rec
	return r
}

// WithMeta returns a copy with one metadata pair appended.
func (r ComplianceResult) WithMeta(key, value string) ComplianceResult {
	meta := make([]MetadataKV, len(r.Metadata), len(r.Metadata)+1)
	copy(meta, r.Metadata)
	r.Metadata = append(meta, MetadataKV{Key: key, Value: value})
	return r
}

// ClampScore bounds a score to [0,100].
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
