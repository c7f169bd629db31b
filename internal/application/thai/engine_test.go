package thai

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/streamdab/eti-monitor/internal/domain/thai"
)

func TestAnalyzeLabelsCleanThai(t *testing.T) {
	e := NewDefaultEngine()

	m := e.AnalyzeLabels(domain.LabelFields{
		Title:  "เพลงรักเมืองไทย",
		Artist: "วงดนตรีไทย",
		Album:  "รวมเพลงฮิต",
		Genre:  "ลูกทุ่ง",
	})

	assert.Equal(t, 100.0, m.TitleValidation.ComplianceScore)
	assert.Equal(t, 100.0, m.OverallCompliance)
	assert.Equal(t, domain.LevelCompliant, e.ComplianceLevel(m))
	assert.False(t, m.HasEnglishFallback)
	assert.NotEmpty(t, m.TitleDAB)
}

func TestAnalyzeLabelsWeighting(t *testing.T) {
	e := NewDefaultEngine()

	// title is fully out of profile, the rest is clean: the weighted mean
	// is 0.4*0 + 0.2*100*3 = 60
	m := e.AnalyzeLabels(domain.LabelFields{
		Title:  "😀😀",
		Artist: "วงดนตรี",
		Album:  "อัลบั้ม",
		Genre:  "ป๊อป",
	})

	assert.Equal(t, 0.0, m.TitleValidation.ComplianceScore)
	assert.InDelta(t, 60.0, m.OverallCompliance, 0.001)
}

func TestAnalyzeLabelsCulturalFactor(t *testing.T) {
	e := NewDefaultEngine()

	// clean characters but flagged language: 100 * (75/100)
	m := e.AnalyzeLabels(domain.LabelFields{
		Title: "เพลงโง่",
	})
	assert.Equal(t, 100.0, m.TitleValidation.ComplianceScore)
	assert.InDelta(t, 75.0, m.OverallCompliance, 0.001)
	assert.Equal(t, CategoryFlagged, m.Cultural.CulturalCategory)
}

func TestAnalyzeLabelsMixedScriptFallback(t *testing.T) {
	e := NewDefaultEngine()
	m := e.AnalyzeLabels(domain.LabelFields{Title: "เพลง Rock"})
	assert.True(t, m.HasEnglishFallback)
}

func TestAnalyzeDLS(t *testing.T) {
	e := NewDefaultEngine()

	a := e.AnalyzeDLS("กำลังฟัง: เพลงไทย by Artist")
	assert.True(t, a.Bilingual)
	assert.False(t, a.ExceedsLimit)
	require.Len(t, a.Segments, 1)
	assert.Equal(t, a.OriginalText, a.Segments[0])
	assert.NotEmpty(t, a.ThaiPortion)
	assert.NotEmpty(t, a.EnglishPortion)
}

func TestAnalyzeDLSExceedsLimit(t *testing.T) {
	e := NewDefaultEngine()

	long := strings.Repeat("a", 200)
	a := e.AnalyzeDLS(long)
	assert.True(t, a.ExceedsLimit)
	assert.Equal(t, 200, a.SegmentLength)
	require.Len(t, a.Segments, 2)
	assert.Equal(t, 128, len(a.Segments[0]))
	assert.Equal(t, 72, len(a.Segments[1]))
}

func TestSplitDLS(t *testing.T) {
	t.Run("conforming text returned unchanged", func(t *testing.T) {
		segs := SplitDLS("short text", domain.DLSMaxLength)
		require.Len(t, segs, 1)
		assert.Equal(t, "short text", segs[0])
	})

	t.Run("prefers whitespace boundary", func(t *testing.T) {
		// 130 runes with a space at index 100
		text := strings.Repeat("a", 100) + " " + strings.Repeat("b", 29)
		segs := SplitDLS(text, domain.DLSMaxLength)
		require.Len(t, segs, 2)
		assert.Equal(t, strings.Repeat("a", 100), segs[0])
		assert.Equal(t, strings.Repeat("b", 29), segs[1])
	})

	t.Run("hard split without whitespace", func(t *testing.T) {
		text := strings.Repeat("x", 300)
		segs := SplitDLS(text, domain.DLSMaxLength)
		require.Len(t, segs, 3)
		assert.Len(t, segs[0], 128)
		assert.Len(t, segs[1], 128)
		assert.Len(t, segs[2], 44)
	})

	t.Run("every segment respects the limit", func(t *testing.T) {
		text := strings.Repeat("คำ ", 120)
		for _, seg := range SplitDLS(text, domain.DLSMaxLength) {
			assert.LessOrEqual(t, len([]rune(seg)), domain.DLSMaxLength)
		}
	})

	t.Run("idempotent on its own output", func(t *testing.T) {
		text := strings.Repeat("a", 100) + " " + strings.Repeat("b", 50) + " " + strings.Repeat("c", 60)
		first := SplitDLS(text, domain.DLSMaxLength)
		for _, seg := range first {
			again := SplitDLS(seg, domain.DLSMaxLength)
			require.Len(t, again, 1)
			assert.Equal(t, seg, again[0])
		}
	})
}

func TestEngineStatistics(t *testing.T) {
	e := NewDefaultEngine()
	assert.Equal(t, 0, e.TotalAnalyzed())
	assert.Equal(t, 0.0, e.RunningAverage())

	e.AnalyzeLabels(domain.LabelFields{Title: "เพลงไทย"}) // 100
	// title scores 0, the three empty fields score 100 each: overall 60
	e.AnalyzeLabels(domain.LabelFields{Title: "😀😀"})
	assert.Equal(t, 2, e.TotalAnalyzed())
	assert.InDelta(t, 80.0, e.RunningAverage(), 0.001)

	freq := e.IssueFrequency()
	assert.NotEmpty(t, freq)

	// the returned histogram is a copy
	for k := range freq {
		freq[k] = 9999
	}
	fresh := e.IssueFrequency()
	for _, v := range fresh {
		assert.NotEqual(t, 9999, v)
	}

	e.ResetStatistics()
	assert.Equal(t, 0, e.TotalAnalyzed())
	assert.Equal(t, 0.0, e.RunningAverage())
	assert.Empty(t, e.IssueFrequency())
}

func TestSpecialValidationDates(t *testing.T) {
	e := NewDefaultEngine()

	holy := time.Date(2025, time.February, 12, 8, 0, 0, 0, time.UTC)
	assert.True(t, e.ShouldUseSpecialValidation(holy))
	assert.Len(t, e.DateGuidelines(holy), 3)

	ordinary := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)
	assert.False(t, e.ShouldUseSpecialValidation(ordinary))
	assert.Len(t, e.DateGuidelines(ordinary), 1)
}
