package thai

import "time"

// CharacterValidation is the outcome of checking one text field against
// the ETSI TS 101 756 Thai profile (0x0E).
type CharacterValidation struct {
	ValidEncoding       bool     `json:"valid_encoding"`
	DABProfileCompliant bool     `json:"dab_profile_compliant"`
	Renderable          bool     `json:"renderable"`
	InvalidChars        int      `json:"invalid_chars"`
	Issues              []string `json:"issues,omitempty"`
	ComplianceScore     float64  `json:"compliance_score"`
}

// CulturalAnalysis is the outcome of keyword classification over a text.
type CulturalAnalysis struct {
	HasBuddhistContent    bool     `json:"has_buddhist_content"`
	HasRoyalContent       bool     `json:"has_royal_content"`
	HasTraditionalContent bool     `json:"has_traditional_content"`
	AppropriateLanguage   bool     `json:"appropriate_language"`
	CulturalCategory      string   `json:"cultural_category"`
	DetectedKeywords      []string `json:"detected_keywords,omitempty"`
	CulturalCompliance    float64  `json:"cultural_compliance"`
}

// LabelFields carries the four programme text fields handed to the engine.
type LabelFields struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Genre  string `json:"genre"`
}

// ThaiMetadata aggregates per-field validation for one set of programme
// labels. OverallCompliance is always derived from the embedded field
// scores and the cultural score, never set independently.
type ThaiMetadata struct {
	TitleThai  string `json:"title_thai"`
	TitleDAB   string `json:"title_dab"`
	ArtistThai string `json:"artist_thai"`
	ArtistDAB  string `json:"artist_dab"`
	AlbumThai  string `json:"album_thai"`
	AlbumDAB   string `json:"album_dab"`
	GenreThai  string `json:"genre_thai"`
	GenreDAB   string `json:"genre_dab"`

	TitleValidation  CharacterValidation `json:"title_validation"`
	ArtistValidation CharacterValidation `json:"artist_validation"`
	AlbumValidation  CharacterValidation `json:"album_validation"`
	GenreValidation  CharacterValidation `json:"genre_validation"`

	Cultural CulturalAnalysis `json:"cultural_analysis"`

	HasEnglishFallback bool      `json:"has_english_fallback"`
	OverallCompliance  float64   `json:"overall_compliance"`
	Timestamp          time.Time `json:"timestamp"`
}

// DLSThaiAnalysis is the transient result of analyzing one Dynamic Label
// Segment string.
type DLSThaiAnalysis struct {
	OriginalText   string              `json:"original_text"`
	ThaiPortion    string              `json:"thai_portion"`
	EnglishPortion string              `json:"english_portion"`
	Bilingual      bool                `json:"bilingual"`
	Validation     CharacterValidation `json:"validation"`
	Cultural       CulturalAnalysis    `json:"cultural"`
	SegmentLength  int                 `json:"segment_length"`
	ExceedsLimit   bool                `json:"exceeds_limit"`
	Segments       []string            `json:"segments,omitempty"`
}

// DLSMaxLength is the DAB Dynamic Label Segment character limit.
const DLSMaxLength = 128
