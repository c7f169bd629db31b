package compliance

// Standard enum: the ETSI documents tracked by the analyzer
type Standard string

const (
	StandardEN302077  Standard = "EN_302_077"   // RF equipment
	StandardEN300401  Standard = "EN_300_401"   // Core DAB
	StandardTS102563  Standard = "TS_102_563"   // DAB+ audio coding
	StandardTS101756  Standard = "TS_101_756"   // Character sets (Thai profile)
	StandardTR1014963 Standard = "TR_101_496_3" // Broadcast network implementation
	StandardTS101499  Standard = "TS_101_499"   // SlideShow user application
	StandardTS102818  Standard = "TS_102_818"   // Service programme information
	StandardTS103551  Standard = "TS_103_551"   // TPEG services
	StandardTS103176  Standard = "TS_103_176"   // Service information features
)

// AllStandards in validation order.
func AllStandards() []Standard {
	return []Standard{
		StandardEN302077,
		StandardEN300401,
		StandardTS102563,
		StandardTS101756,
		StandardTR1014963,
		StandardTS101499,
		StandardTS102818,
		StandardTS103551,
		StandardTS103176,
	}
}

var standardNames = map[Standard]string{
	StandardEN302077:  "ETSI EN 302 077 (RF Equipment)",
	StandardEN300401:  "ETSI EN 300 401 (Core DAB)",
	StandardTS102563:  "ETSI TS 102 563 (DAB+ Audio Coding)",
	StandardTS101756:  "ETSI TS 101 756 (Character Sets)",
	StandardTR1014963: "ETSI TR 101 496-3 (Network Implementation)",
	StandardTS101499:  "ETSI TS 101 499 (SlideShow)",
	StandardTS102818:  "ETSI TS 102 818 (Service Programme Information)",
	StandardTS103551:  "ETSI TS 103 551 (TPEG Services)",
	StandardTS103176:  "ETSI TS 103 176 (Service Information Features)",
}

// Name returns the human readable document title.
func (s Standard) Name() string {
	if n, ok := standardNames[s]; ok {
		return n
	}
	return string(s)
}

// Severity enum for compliance findings
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// SeverityForScore maps a 0-100 score to the fixed severity ladder.
// The ladder is independent of the structural pass/fail determination.
func SeverityForScore(score float64) Severity {
	switch {
	case score >= 90:
		return SeverityInfo
	case score >= 70:
		return SeverityWarning
	case score >= 40:
		return SeverityError
	default:
		return SeverityCritical
	}
}
