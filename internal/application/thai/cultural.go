package thai

import (
	"strings"

	domain "github.com/streamdab/eti-monitor/internal/domain/thai"
)

// Cultural content categories
const (
	CategoryRoyal       = "royal"
	CategoryBuddhist    = "buddhist"
	CategoryTraditional = "traditional"
	CategoryGeneral     = "general"
	CategoryFlagged     = "flagged"
)

// KeywordSets is the classification data the classifier runs over.
// Keyword lists are configuration, not code; they are loaded once at
// construction and can be replaced per deployment.
type KeywordSets struct {
	Buddhist         []string `yaml:"buddhist"`
	Royal            []string `yaml:"royal"`
	Traditional      []string `yaml:"traditional"`
	Inappropriate    []string `yaml:"inappropriate"`
	FormalIndicators []string `yaml:"formal_indicators"`
}

// DefaultKeywordSets returns the broadcast-screening keyword lists used
// when no per-deployment configuration overrides them.
func DefaultKeywordSets() KeywordSets {
	return KeywordSets{
		Buddhist: []string{
			"พระ", "วัด", "ธรรมะ", "ศาสนา", "บุญ", "สวดมนต์", "พุทธ", "สงฆ์", "เจดีย์", "นิพพาน",
		},
		Royal: []string{
			"พระบาทสมเด็จ", "พระมหากษัตริย์", "ราชวงศ์", "ทรงพระเจริญ", "ในหลวง", "พระราชินี", "พระบรม", "เสด็จพระราชดำเนิน",
		},
		Traditional: []string{
			"สงกรานต์", "ลอยกระทง", "ประเพณี", "วัฒนธรรม", "มวยไทย", "รำไทย", "ผ้าไหม", "ตรุษไทย",
		},
		Inappropriate: []string{
			"โง่", "บ้า", "เลว", "ชั่ว", "แช่ง",
		},
		FormalIndicators: []string{
			"ครับ", "ค่ะ", "ท่าน", "พระองค์", "ทรง", "เสด็จ", "ขอพระราชทาน",
		},
	}
}

const (
	inappropriatePenalty   = 25.0
	formalBonus            = 10.0
	missingRegisterPenalty = 15.0
)

// Classifier detects Buddhist, royal, and traditional content and scores
// cultural appropriateness. Pure function over (text, keyword sets);
// safe for concurrent use.
type Classifier struct {
	sets KeywordSets
}

// NewClassifier builds a classifier over the given keyword sets.
func NewClassifier(sets KeywordSets) *Classifier {
	return &Classifier{sets: sets}
}

// Analyze tests text against the four keyword sets and the formal
// register indicators. Category precedence is fixed:
// flagged > royal > buddhist > traditional > general.
func (c *Classifier) Analyze(text string) domain.CulturalAnalysis {
	buddhist := matchKeywords(text, c.sets.Buddhist)
	royal := matchKeywords(text, c.sets.Royal)
	traditional := matchKeywords(text, c.sets.Traditional)
	inappropriate := matchKeywords(text, c.sets.Inappropriate)
	formal := len(matchKeywords(text, c.sets.FormalIndicators)) > 0

	a := domain.CulturalAnalysis{
		HasBuddhistContent:    len(buddhist) > 0,
		HasRoyalContent:       len(royal) > 0,
		HasTraditionalContent: len(traditional) > 0,
		AppropriateLanguage:   len(inappropriate) == 0,
	}
	a.DetectedKeywords = append(a.DetectedKeywords, royal...)
	a.DetectedKeywords = append(a.DetectedKeywords, buddhist...)
	a.DetectedKeywords = append(a.DetectedKeywords, traditional...)
	a.DetectedKeywords = append(a.DetectedKeywords, inappropriate...)

	switch {
	case len(inappropriate) > 0:
		a.CulturalCategory = CategoryFlagged
	case a.HasRoyalContent:
		a.CulturalCategory = CategoryRoyal
	case a.HasBuddhistContent:
		a.CulturalCategory = CategoryBuddhist
	case a.HasTraditionalContent:
		a.CulturalCategory = CategoryTraditional
	default:
		a.CulturalCategory = CategoryGeneral
	}

	score := 100.0 - inappropriatePenalty*float64(len(inappropriate))
	if a.HasRoyalContent || a.HasBuddhistContent {
		// royal and Buddhist content mandates the formal register
		if formal {
			score += formalBonus
		} else {
			score -= missingRegisterPenalty
		}
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	a.CulturalCompliance = score
	return a
}

func matchKeywords(text string, keywords []string) []string {
	var hits []string
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}
