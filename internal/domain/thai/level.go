package thai

// ComplianceLevel enum
type ComplianceLevel string

const (
	LevelCompliant    ComplianceLevel = "compliant"     // >= 95
	LevelWarning      ComplianceLevel = "warning"       // [85,95)
	LevelNonCompliant ComplianceLevel = "non_compliant" // [70,85)
	LevelCritical     ComplianceLevel = "critical"      // < 70
)

// LevelForScore maps an overall compliance score to its level.
func LevelForScore(score float64) ComplianceLevel {
	switch {
	case score >= 95:
		return LevelCompliant
	case score >= 85:
		return LevelWarning
	case score >= 70:
		return LevelNonCompliant
	default:
		return LevelCritical
	}
}
