package thai

import (
	"fmt"
	"unicode/utf8"

	domain "github.com/streamdab/eti-monitor/internal/domain/thai"
)

// SubstitutionMarker replaces codepoints that have no DAB profile 0x0E
// mapping. Conversion never drops characters: output length tracks input
// codepoint count so DLS length accounting stays correct.
const SubstitutionMarker = byte('?')

// ProfileTable maps Unicode codepoints to their single-byte DAB profile
// 0x0E code. The table is data, not logic: deployments can swap it when
// the regulator revises the profile.
type ProfileTable map[rune]byte

// DefaultProfileTable returns the TIS-620 layout mandated by ETSI
// TS 101 756 for profile 0x0E: printable ASCII maps to itself, the Thai
// block U+0E01..U+0E3A and U+0E3F..U+0E5B maps to 0xA1..0xFB.
func DefaultProfileTable() ProfileTable {
	t := make(ProfileTable, 224)
	for r := rune(0x20); r <= 0x7E; r++ {
		t[r] = byte(r)
	}
	for r := rune(0x0E01); r <= 0x0E3A; r++ {
		t[r] = byte(0xA1 + (r - 0x0E01))
	}
	for r := rune(0x0E3F); r <= 0x0E5B; r++ {
		t[r] = byte(0xDF + (r - 0x0E3F))
	}
	return t
}

// Codec converts between full Unicode Thai text and the constrained DAB
// character-set profile. Safe for concurrent use: all state is read-only
// after construction.
type Codec struct {
	profile ProfileTable
	reverse map[byte]rune
}

// NewCodec builds a codec over the default profile table.
func NewCodec() *Codec {
	return NewCodecWithTable(DefaultProfileTable())
}

// NewCodecWithTable builds a codec over a custom profile table.
func NewCodecWithTable(table ProfileTable) *Codec {
	rev := make(map[byte]rune, len(table))
	for r, b := range table {
		rev[b] = r
	}
	return &Codec{profile: table, reverse: rev}
}

// Validate decodes text as a sequence of Unicode codepoints and checks
// each against the profile. Malformed UTF-8 sequences count as failed
// codepoints. Empty input is trivially compliant.
func (c *Codec) Validate(text string) domain.CharacterValidation {
	v := domain.CharacterValidation{
		ValidEncoding:       true,
		DABProfileCompliant: true,
		Renderable:          true,
	}
	if text == "" {
		v.ComplianceScore = 100
		return v
	}

	total, mapped := 0, 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		total++
		if r == utf8.RuneError && size == 1 {
			v.ValidEncoding = false
			v.DABProfileCompliant = false
			v.Renderable = false
			v.InvalidChars++
			v.Issues = append(v.Issues, fmt.Sprintf("malformed UTF-8 sequence at byte %d", i))
			i += size
			continue
		}
		if _, ok := c.profile[r]; ok {
			mapped++
		} else {
			v.DABProfileCompliant = false
			v.Renderable = false
			v.InvalidChars++
			v.Issues = append(v.Issues, fmt.Sprintf("codepoint U+%04X not in DAB profile 0x0E", r))
		}
		i += size
	}

	v.ComplianceScore = 100 * float64(mapped) / float64(total)
	return v
}

// ToDABProfile maps each codepoint to its profile byte. Codepoints
// outside the table become the substitution marker and are reported as
// lossy-conversion issues.
func (c *Codec) ToDABProfile(text string) (string, []string) {
	out := make([]byte, 0, utf8.RuneCountInString(text))
	var issues []string
	for i, r := range text {
		if b, ok := c.profile[r]; ok {
			out = append(out, b)
			continue
		}
		out = append(out, SubstitutionMarker)
		issues = append(issues, fmt.Sprintf("lossy conversion: U+%04X at rune %d replaced", r, i))
	}
	return string(out), issues
}

// FromDABProfile reverses the profile mapping. Unknown bytes decode to
// the Unicode replacement character.
func (c *Codec) FromDABProfile(encoded string) string {
	out := make([]rune, 0, len(encoded))
	for i := 0; i < len(encoded); i++ {
		if r, ok := c.reverse[encoded[i]]; ok {
			out = append(out, r)
		} else {
			out = append(out, utf8.RuneError)
		}
	}
	return string(out)
}

func isThaiRune(r rune) bool {
	return r >= 0x0E00 && r <= 0x0E7F
}

func isLatinRune(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// SeparateThaiEnglish partitions text by script per codepoint, preserving
// original ordering within each partition. Neutral characters (spaces,
// digits, punctuation) follow the script of the nearest script character,
// looking forward first, so "สวัสดี hello" splits cleanly.
func (c *Codec) SeparateThaiEnglish(text string) (string, string) {
	var thaiPart, engPart []rune
	var pending []rune
	// last script that consumed runes: 0 none, 1 thai, 2 latin
	last := 0

	flush := func(script int) {
		switch script {
		case 1:
			thaiPart = append(thaiPart, pending...)
		case 2:
			engPart = append(engPart, pending...)
		}
		pending = pending[:0]
	}

	for _, r := range text {
		switch {
		case isThaiRune(r):
			flush(1)
			thaiPart = append(thaiPart, r)
			last = 1
		case isLatinRune(r):
			flush(2)
			engPart = append(engPart, r)
			last = 2
		default:
			pending = append(pending, r)
		}
	}
	if last == 0 {
		// no script characters at all: everything is the English side
		flush(2)
	} else {
		flush(last)
	}
	return string(thaiPart), string(engPart)
}

// DetectThaiScript reports whether text contains any Thai codepoint.
func (c *Codec) DetectThaiScript(text string) bool {
	for _, r := range text {
		if isThaiRune(r) {
			return true
		}
	}
	return false
}

// DetectMixedScripts reports whether text contains both Thai and Latin
// script characters.
func (c *Codec) DetectMixedScripts(text string) bool {
	hasThai, hasLatin := false, false
	for _, r := range text {
		if isThaiRune(r) {
			hasThai = true
		} else if isLatinRune(r) {
			hasLatin = true
		}
		if hasThai && hasLatin {
			return true
		}
	}
	return false
}
