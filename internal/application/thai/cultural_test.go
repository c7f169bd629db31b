package thai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifierCategories(t *testing.T) {
	c := NewClassifier(DefaultKeywordSets())

	tests := []struct {
		name     string
		text     string
		category string
	}{
		{"general", "ข่าวจราจรเช้านี้", CategoryGeneral},
		{"buddhist", "สวดมนต์ที่วัดครับ", CategoryBuddhist},
		{"royal", "ทรงพระเจริญ", CategoryRoyal},
		{"traditional", "เทศกาลสงกรานต์ปีนี้", CategoryTraditional},
		{"flagged beats royal", "ในหลวง โง่", CategoryFlagged},
		{"royal beats buddhist", "ในหลวงเสด็จไปวัด", CategoryRoyal},
		{"buddhist beats traditional", "ทำบุญวันสงกรานต์", CategoryBuddhist},
		{"empty", "", CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := c.Analyze(tt.text)
			assert.Equal(t, tt.category, a.CulturalCategory)
		})
	}
}

func TestClassifierScoring(t *testing.T) {
	c := NewClassifier(DefaultKeywordSets())

	t.Run("neutral text scores full", func(t *testing.T) {
		a := c.Analyze("ข่าวจราจรเช้านี้")
		assert.Equal(t, 100.0, a.CulturalCompliance)
		assert.True(t, a.AppropriateLanguage)
	})

	t.Run("each inappropriate hit costs 25", func(t *testing.T) {
		a := c.Analyze("โง่")
		assert.Equal(t, 75.0, a.CulturalCompliance)
		assert.False(t, a.AppropriateLanguage)

		a = c.Analyze("โง่ บ้า เลว")
		assert.Equal(t, 25.0, a.CulturalCompliance)
	})

	t.Run("score floors at zero", func(t *testing.T) {
		a := c.Analyze("โง่ บ้า เลว ชั่ว แช่ง")
		assert.Equal(t, 0.0, a.CulturalCompliance)
	})

	t.Run("royal content without formal register is penalized", func(t *testing.T) {
		a := c.Analyze("ข่าวราชวงศ์วันนี้")
		assert.True(t, a.HasRoyalContent)
		assert.Equal(t, 85.0, a.CulturalCompliance)
	})

	t.Run("royal content with formal register earns bonus capped at 100", func(t *testing.T) {
		a := c.Analyze("ทรงพระเจริญ")
		assert.True(t, a.HasRoyalContent)
		// "ทรง" is itself a formal indicator
		assert.Equal(t, 100.0, a.CulturalCompliance)
	})

	t.Run("buddhist content also requires register", func(t *testing.T) {
		a := c.Analyze("ไปวัดทำบุญ")
		assert.True(t, a.HasBuddhistContent)
		assert.Equal(t, 85.0, a.CulturalCompliance)

		a = c.Analyze("ไปวัดทำบุญครับ")
		assert.Equal(t, 100.0, a.CulturalCompliance)
	})
}

func TestClassifierDetectedKeywords(t *testing.T) {
	c := NewClassifier(DefaultKeywordSets())

	a := c.Analyze("ในหลวงเสด็จไปวัด")
	assert.Contains(t, a.DetectedKeywords, "ในหลวง")
	assert.Contains(t, a.DetectedKeywords, "วัด")

	a = c.Analyze("ข่าวทั่วไป")
	assert.Empty(t, a.DetectedKeywords)
}
