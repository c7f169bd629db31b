package thai

import (
	"fmt"
	"time"
)

// Date classifications used for content guidelines.
const (
	dayOrdinary = "ordinary"
	dayHoly     = "holy_day"
	dayFestival = "major_festival"
)

// Calendar provides Buddhist-Era date conversion and observance lookups.
// Lunar-calculated holy days are approximated with a fixed annual table
// taken from the Royal Thai Government Gazette published observance
// dates; the table is regenerated each year and can be replaced at
// construction. All state is read-only after construction.
type Calendar struct {
	holyDays   map[string]string // "2006-01-02" -> observance name
	festivals  map[string]string
	guidelines map[string][]string
}

// NewCalendar builds a calendar over the default observance tables
// (currently covering 2024-2026).
func NewCalendar() *Calendar {
	return NewCalendarWithTables(defaultHolyDays(), defaultFestivals())
}

// NewCalendarWithTables builds a calendar over custom observance tables.
func NewCalendarWithTables(holyDays, festivals map[string]string) *Calendar {
	return &Calendar{
		holyDays:  holyDays,
		festivals: festivals,
		guidelines: map[string][]string{
			dayOrdinary: {
				"Standard broadcast content guidelines apply",
			},
			dayHoly: {
				"Buddhist holy day: avoid entertainment content during morning observance hours",
				"Religious programming should use formal register",
				"Alcohol-related content is prohibited",
			},
			dayFestival: {
				"Major festival: cultural programming is encouraged",
				"Royal and religious references require formal register",
			},
		},
	}
}

func defaultHolyDays() map[string]string {
	return map[string]string{
		// 2024
		"2024-02-24": "Makha Bucha",
		"2024-05-22": "Visakha Bucha",
		"2024-07-20": "Asalha Bucha",
		"2024-07-21": "Khao Phansa",
		"2024-10-17": "Ok Phansa",
		// 2025
		"2025-02-12": "Makha Bucha",
		"2025-05-11": "Visakha Bucha",
		"2025-07-10": "Asalha Bucha",
		"2025-07-11": "Khao Phansa",
		"2025-10-07": "Ok Phansa",
		// 2026
		"2026-03-03": "Makha Bucha",
		"2026-05-31": "Visakha Bucha",
		"2026-07-29": "Asalha Bucha",
		"2026-07-30": "Khao Phansa",
		"2026-10-26": "Ok Phansa",
	}
}

func defaultFestivals() map[string]string {
	f := map[string]string{
		"2024-11-15": "Loy Krathong",
		"2025-11-05": "Loy Krathong",
		"2026-11-24": "Loy Krathong",
	}
	for _, y := range []int{2024, 2025, 2026} {
		for d := 13; d <= 15; d++ {
			f[fmt.Sprintf("%d-04-%02d", y, d)] = "Songkran"
		}
	}
	return f
}

var thaiMonths = [...]string{
	"มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน",
	"กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม",
}

// BuddhistYear converts a Gregorian year to the Buddhist Era.
func (c *Calendar) BuddhistYear(gregorianYear int) int {
	return gregorianYear + 543
}

// FormatBuddhistDate renders a date in Thai with the BE year.
func (c *Calendar) FormatBuddhistDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), thaiMonths[t.Month()-1], c.BuddhistYear(t.Year()))
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// IsHolyDay reports whether the date is a Buddhist holy day.
func (c *Calendar) IsHolyDay(t time.Time) bool {
	_, ok := c.holyDays[dateKey(t)]
	return ok
}

// IsMajorFestival reports whether the date is a major Thai festival.
func (c *Calendar) IsMajorFestival(t time.Time) bool {
	_, ok := c.festivals[dateKey(t)]
	return ok
}

// FestivalName returns the observance name for the date, if any.
func (c *Calendar) FestivalName(t time.Time) string {
	if n, ok := c.holyDays[dateKey(t)]; ok {
		return n
	}
	if n, ok := c.festivals[dateKey(t)]; ok {
		return n
	}
	return ""
}

// ContentGuidelines returns the guideline strings attached to the date's
// classification.
func (c *Calendar) ContentGuidelines(t time.Time) []string {
	switch {
	case c.IsHolyDay(t):
		return c.guidelines[dayHoly]
	case c.IsMajorFestival(t):
		return c.guidelines[dayFestival]
	default:
		return c.guidelines[dayOrdinary]
	}
}

// RequiresSpecialHandling is true for holy days and major festivals only.
func (c *Calendar) RequiresSpecialHandling(t time.Time) bool {
	return c.IsHolyDay(t) || c.IsMajorFestival(t)
}
