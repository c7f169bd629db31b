package thai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfileTable(t *testing.T) {
	table := DefaultProfileTable()

	// ASCII identity
	assert.Equal(t, byte('A'), table['A'])
	assert.Equal(t, byte(' '), table[' '])
	assert.Equal(t, byte('~'), table['~'])

	// Thai block offsets
	assert.Equal(t, byte(0xA1), table[0x0E01]) // ko kai
	assert.Equal(t, byte(0xDA), table[0x0E3A])
	assert.Equal(t, byte(0xDF), table[0x0E3F]) // baht sign
	assert.Equal(t, byte(0xFB), table[0x0E5B])

	// gap between the two Thai ranges is unmapped
	_, ok := table[0x0E3B]
	assert.False(t, ok)
	// control characters are unmapped
	_, ok = table[0x0009]
	assert.False(t, ok)
}

func TestCodecValidate(t *testing.T) {
	c := NewCodec()

	tests := []struct {
		name      string
		text      string
		compliant bool
		invalid   int
		score     float64
	}{
		{"empty", "", true, 0, 100},
		{"ascii", "Hello World", true, 0, 100},
		{"pure thai", "สวัสดี", true, 0, 100},
		{"mixed thai english", "เพลง Rock", true, 0, 100},
		{"emoji not in profile", "Hi😀", false, 1, 100 * 2.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := c.Validate(tt.text)
			assert.Equal(t, tt.compliant, v.DABProfileCompliant)
			assert.Equal(t, tt.invalid, v.InvalidChars)
			assert.InDelta(t, tt.score, v.ComplianceScore, 0.001)
		})
	}
}

func TestCodecValidateMalformedUTF8(t *testing.T) {
	c := NewCodec()
	v := c.Validate("ab\xff")
	assert.False(t, v.ValidEncoding)
	assert.False(t, v.DABProfileCompliant)
	assert.Equal(t, 1, v.InvalidChars)
	require.Len(t, v.Issues, 1)
	assert.Contains(t, v.Issues[0], "malformed UTF-8")
}

func TestCodecRoundTrip(t *testing.T) {
	c := NewCodec()

	// every codepoint in the profile must survive a round trip
	for r := range DefaultProfileTable() {
		in := string(r)
		enc, issues := c.ToDABProfile(in)
		require.Empty(t, issues)
		assert.Equal(t, in, c.FromDABProfile(enc), "codepoint U+%04X", r)
	}

	// longer mixed string
	in := "สวัสดี DAB+ 99.5"
	enc, issues := c.ToDABProfile(in)
	require.Empty(t, issues)
	assert.Equal(t, in, c.FromDABProfile(enc))
}

func TestCodecToDABProfileLossy(t *testing.T) {
	c := NewCodec()
	enc, issues := c.ToDABProfile("A😀B")
	assert.Equal(t, "A?B", enc)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "lossy conversion")
}

func TestCodecFromDABProfileUnknownByte(t *testing.T) {
	c := NewCodec()
	out := c.FromDABProfile(string([]byte{0x41, 0x01}))
	runes := []rune(out)
	require.Len(t, runes, 2)
	assert.Equal(t, 'A', runes[0])
	assert.Equal(t, '�', runes[1])
}

func TestSeparateThaiEnglish(t *testing.T) {
	c := NewCodec()

	tests := []struct {
		name    string
		text    string
		thai    string
		english string
	}{
		{"thai then english", "สวัสดี hello", "สวัสดี", " hello"},
		{"english then thai", "hello สวัสดี", " สวัสดี", "hello"},
		{"pure thai", "สวัสดี", "สวัสดี", ""},
		{"pure english", "hello", "", "hello"},
		{"neutral only", "123 !!", "", "123 !!"},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, en := c.SeparateThaiEnglish(tt.text)
			assert.Equal(t, tt.thai, th)
			assert.Equal(t, tt.english, en)
		})
	}
}

func TestDetectScripts(t *testing.T) {
	c := NewCodec()

	assert.True(t, c.DetectThaiScript("สวัสดี"))
	assert.False(t, c.DetectThaiScript("hello"))
	assert.False(t, c.DetectThaiScript(""))

	assert.True(t, c.DetectMixedScripts("เพลง Rock"))
	assert.False(t, c.DetectMixedScripts("เพลงไทย"))
	assert.False(t, c.DetectMixedScripts("Rock"))
	assert.False(t, c.DetectMixedScripts("123"))
}
