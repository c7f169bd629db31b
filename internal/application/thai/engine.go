package thai

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	domain "github.com/streamdab/eti-monitor/internal/domain/thai"
)

// Field weights for the overall label compliance score. Title carries
// the most weight because it is what listeners actually see scrolling.
const (
	titleWeight = 0.4
	otherWeight = 0.2
)

// Engine orchestrates the codec, the cultural classifier, and the
// calendar into per-field label validation and DLS analysis. Running
// statistics are owned by the instance, not the process: multiple
// engines coexist with independent counters.
type Engine struct {
	codec      *Codec
	classifier *Classifier
	calendar   *Calendar

	mu            sync.Mutex
	totalAnalyzed int
	totalScore    float64
	issueFreq     map[string]int
}

// NewEngine wires an engine from its three collaborators.
func NewEngine(codec *Codec, classifier *Classifier, calendar *Calendar) *Engine {
	return &Engine{
		codec:      codec,
		classifier: classifier,
		calendar:   calendar,
		issueFreq:  make(map[string]int),
	}
}

// NewDefaultEngine builds an engine over the default profile table,
// keyword sets, and observance calendar.
func NewDefaultEngine() *Engine {
	return NewEngine(NewCodec(), NewClassifier(DefaultKeywordSets()), NewCalendar())
}

// Codec exposes the character codec for callers that need raw text
// validation (the TS 101 756 check uses it directly).
func (e *Engine) Codec() *Codec { return e.codec }

// AnalyzeLabels validates the four programme text fields and produces
// the aggregated Thai metadata. Cultural tone is evaluated once over the
// concatenation of all fields, not per field.
func (e *Engine) AnalyzeLabels(fields domain.LabelFields) *domain.ThaiMetadata {
	m := &domain.ThaiMetadata{
		TitleThai:  fields.Title,
		ArtistThai: fields.Artist,
		AlbumThai:  fields.Album,
		GenreThai:  fields.Genre,
		Timestamp:  time.Now().UTC(),
	}

	var issues []string
	m.TitleValidation = e.codec.Validate(fields.Title)
	m.ArtistValidation = e.codec.Validate(fields.Artist)
	m.AlbumValidation = e.codec.Validate(fields.Album)
	m.GenreValidation = e.codec.Validate(fields.Genre)

	var convIssues []string
	m.TitleDAB, convIssues = e.codec.ToDABProfile(fields.Title)
	issues = append(issues, convIssues...)
	m.ArtistDAB, convIssues = e.codec.ToDABProfile(fields.Artist)
	issues = append(issues, convIssues...)
	m.AlbumDAB, convIssues = e.codec.ToDABProfile(fields.Album)
	issues = append(issues, convIssues...)
	m.GenreDAB, convIssues = e.codec.ToDABProfile(fields.Genre)
	issues = append(issues, convIssues...)

	issues = append(issues, m.TitleValidation.Issues...)
	issues = append(issues, m.ArtistValidation.Issues...)
	issues = append(issues, m.AlbumValidation.Issues...)
	issues = append(issues, m.GenreValidation.Issues...)

	all := strings.Join([]string{fields.Title, fields.Artist, fields.Album, fields.Genre}, " ")
	m.Cultural = e.classifier.Analyze(all)
	m.HasEnglishFallback = e.codec.DetectMixedScripts(all)

	fieldMean := titleWeight*m.TitleValidation.ComplianceScore +
		otherWeight*m.ArtistValidation.ComplianceScore +
		otherWeight*m.AlbumValidation.ComplianceScore +
		otherWeight*m.GenreValidation.ComplianceScore
	m.OverallCompliance = clamp01to100(fieldMean * (m.Cultural.CulturalCompliance / 100))

	e.record(m.OverallCompliance, issues)
	return m
}

// AnalyzeDLS analyzes one Dynamic Label Segment string, splitting
// bilingual content and enforcing the 128-character DLS limit.
func (e *Engine) AnalyzeDLS(text string) *domain.DLSThaiAnalysis {
	a := &domain.DLSThaiAnalysis{
		OriginalText:  text,
		SegmentLength: utf8.RuneCountInString(text),
	}
	a.ThaiPortion, a.EnglishPortion = e.codec.SeparateThaiEnglish(text)
	a.Bilingual = e.codec.DetectMixedScripts(text)
	a.Validation = e.codec.Validate(text)
	a.Cultural = e.classifier.Analyze(text)

	if a.SegmentLength > domain.DLSMaxLength {
		a.ExceedsLimit = true
		a.Segments = SplitDLS(text, domain.DLSMaxLength)
	} else {
		a.Segments = []string{text}
	}

	score := clamp01to100(a.Validation.ComplianceScore * (a.Cultural.CulturalCompliance / 100))
	e.record(score, a.Validation.Issues)
	return a
}

// ComplianceLevel maps metadata to its level band.
func (e *Engine) ComplianceLevel(m *domain.ThaiMetadata) domain.ComplianceLevel {
	return domain.LevelForScore(m.OverallCompliance)
}

// ShouldUseSpecialValidation reports whether the date calls for the
// stricter holy-day/festival guidelines.
func (e *Engine) ShouldUseSpecialValidation(date time.Time) bool {
	return e.calendar.RequiresSpecialHandling(date)
}

// DateGuidelines returns the content guidelines for the date.
func (e *Engine) DateGuidelines(date time.Time) []string {
	return e.calendar.ContentGuidelines(date)
}

// Calendar exposes the observance calendar.
func (e *Engine) Calendar() *Calendar { return e.calendar }

// TotalAnalyzed returns the number of analyses this engine has run.
func (e *Engine) TotalAnalyzed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalAnalyzed
}

// RunningAverage returns the mean overall compliance across all analyses.
func (e *Engine) RunningAverage() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.totalAnalyzed == 0 {
		return 0
	}
	return e.totalScore / float64(e.totalAnalyzed)
}

// IssueFrequency returns a copy of the issue histogram.
func (e *Engine) IssueFrequency() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]int, len(e.issueFreq))
	for k, v := range e.issueFreq {
		out[k] = v
	}
	return out
}

// ResetStatistics clears the running counters. Statistics otherwise
// accumulate for the lifetime of the engine.
func (e *Engine) ResetStatistics() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.totalAnalyzed = 0
	e.totalScore = 0
	e.issueFreq = make(map[string]int)
}

func (e *Engine) record(score float64, issues []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.totalAnalyzed++
	e.totalScore += score
	for _, is := range issues {
		e.issueFreq[is]++
	}
}

// SplitDLS greedily splits text into segments of at most limit runes,
// breaking on whitespace where possible and hard-splitting otherwise.
// Splitting an already conforming string returns it unchanged.
func SplitDLS(text string, limit int) []string {
	var segments []string
	runes := []rune(text)
	for len(runes) > 0 {
		if len(runes) <= limit {
			segments = append(segments, string(runes))
			break
		}
		cut := -1
		for i := limit; i >= 0 && i < len(runes); i-- {
			if runes[i] == ' ' {
				cut = i
				break
			}
		}
		if cut <= 0 {
			// no whitespace boundary in range: hard split
			segments = append(segments, string(runes[:limit]))
			runes = runes[limit:]
			continue
		}
		segments = append(segments, strings.TrimRight(string(runes[:cut]), " "))
		runes = runes[cut+1:]
		for len(runes) > 0 && runes[0] == ' ' {
			runes = runes[1:]
		}
	}
	return segments
}

func clamp01to100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
