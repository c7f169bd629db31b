package analysis

import (
	"encoding/binary"
	"fmt"
	"runtime"

	"github.com/google/uuid"

	"github.com/streamdab/eti-monitor/internal/domain/compliance"
	domainthai "github.com/streamdab/eti-monitor/internal/domain/thai"

	"github.com/streamdab/eti-monitor/internal/application"
	appthai "github.com/streamdab/eti-monitor/internal/application/thai"
)

// validator is a pure check over an opaque byte buffer for one standard.
// Standards dispatch through an explicit enum-to-handler map rather than
// open-ended subtyping.
type validator func(a *Analyzer, data []byte) []compliance.ComplianceResult

// Analyzer validates raw frame/FIG byte buffers against each ETSI
// standard. Configuration (strictness, enabled standards, Thai engine)
// is fixed before analysis starts; during analysis the struct is
// read-only, so concurrent callers are safe.
type Analyzer struct {
	strictness  float64
	thaiEnabled bool
	thai        *appthai.Engine
	clock       application.Clock
	enabled     map[compliance.Standard]bool
	validators  map[compliance.Standard]validator
}

// NewAnalyzer builds an analyzer with all standards enabled and default
// strictness 0.5.
func NewAnalyzer() *Analyzer {
	a := &Analyzer{
		strictness: 0.5,
		clock:      application.SystemClock{},
		enabled:    make(map[compliance.Standard]bool),
	}
	for _, std := range compliance.AllStandards() {
		a.enabled[std] = true
	}
	a.validators = map[compliance.Standard]validator{
		compliance.StandardEN302077:  (*Analyzer).validateEN302077,
		compliance.StandardEN300401:  (*Analyzer).validateEN300401,
		compliance.StandardTS102563:  (*Analyzer).validateTS102563,
		compliance.StandardTS101756:  (*Analyzer).validateTS101756,
		compliance.StandardTR1014963: (*Analyzer).validateTR1014963,
		compliance.StandardTS101499:  (*Analyzer).validateTS101499,
		compliance.StandardTS102818:  (*Analyzer).validateTS102818,
		compliance.StandardTS103551:  (*Analyzer).validateTS103551,
		compliance.StandardTS103176:  (*Analyzer).validateTS103176,
	}
	return a
}

// SetStrictness sets the single tunable knob for every check. Values
// outside [0,1] are rejected and the previous setting stays active.
func (a *Analyzer) SetStrictness(s float64) error {
	if s < 0 || s > 1 {
		return fmt.Errorf("strictness must be in [0,1], got %v", s)
	}
	a.strictness = s
	return nil
}

// Strictness returns the active strictness.
func (a *Analyzer) Strictness() float64 { return a.strictness }

// SetThaiEngine attaches the Thai compliance engine and enables Thai
// analysis.
func (a *Analyzer) SetThaiEngine(e *appthai.Engine) {
	a.thai = e
	a.thaiEnabled = e != nil
}

// EnableThaiValidation toggles Thai analysis without replacing the engine.
func (a *Analyzer) EnableThaiValidation(enable bool) {
	a.thaiEnabled = enable && a.thai != nil
}

// SetClock overrides the time source used for report timestamps.
func (a *Analyzer) SetClock(c application.Clock) {
	if c != nil {
		a.clock = c
	}
}

// EnableStandard toggles one standard's validator.
func (a *Analyzer) EnableStandard(std compliance.Standard, enable bool) {
	a.enabled[std] = enable
}

// passCutoff is the score a check must reach to pass; it rises linearly
// with strictness from 50 (lenient) to 90 (strict).
func (a *Analyzer) passCutoff() float64 {
	return 50 + 40*a.strictness
}

func (a *Analyzer) result(std compliance.Standard, check string, structuralOK bool, score float64, details string) compliance.ComplianceResult {
	passed := structuralOK && score >= a.passCutoff()
	return compliance.NewResult(std, check, passed, score, details)
}

// Validate runs one standard's validator over a buffer.
func (a *Analyzer) Validate(std compliance.Standard, data []byte) []compliance.ComplianceResult {
	v, ok := a.validators[std]
	if !ok {
		return nil
	}
	return v(a, data)
}

// ValidateText runs the character-set standard over a text field.
func (a *Analyzer) ValidateText(text string) []compliance.ComplianceResult {
	return a.validateText(text)
}

// AnalyzeDLS runs the Thai engine over one Dynamic Label Segment
// string. Returns nil when Thai analysis is disabled.
func (a *Analyzer) AnalyzeDLS(text string) *domainthai.DLSThaiAnalysis {
	if !a.thaiEnabled || a.thai == nil {
		return nil
	}
	return a.thai.AnalyzeDLS(text)
}

// DateGuidelines reports whether today is a special-validation date and
// the Thai content guidelines in force.
func (a *Analyzer) DateGuidelines() (bool, []string) {
	if a.thai == nil {
		return false, nil
	}
	now := a.clock.Now()
	return a.thai.ShouldUseSpecialValidation(now), a.thai.DateGuidelines(now)
}

// AnalyzeCompleteETI runs every enabled validator plus Thai analysis and
// composes the full report. Safe to call concurrently.
func (a *Analyzer) AnalyzeCompleteETI(filename string, data []byte) *compliance.ETIAnalysisReport {
	start := a.clock.Now()
	rep := &compliance.ETIAnalysisReport{
		ID:                  compliance.ReportID(uuid.New().String()),
		Filename:            filename,
		AnalysisTime:        start.UTC(),
		StandardResults:     make(map[compliance.Standard][]compliance.ComplianceResult),
		TotalFramesAnalyzed: len(data) / etiFrameSize,
	}
	if rep.TotalFramesAnalyzed == 0 && len(data) > 0 {
		rep.TotalFramesAnalyzed = 1
	}

	for _, std := range compliance.AllStandards() {
		if !a.enabled[std] {
			continue
		}
		rep.StandardResults[std] = a.validators[std](a, data)
	}

	if a.thaiEnabled && a.thai != nil {
		labels := extractServiceLabels(figRegion(data))
		fields := domainthai.LabelFields{}
		if len(labels) > 0 {
			fields.Title = labels[0].text
		}
		if len(labels) > 1 {
			fields.Artist = labels[1].text
		}
		if len(labels) > 2 {
			fields.Album = labels[2].text
		}
		if len(labels) > 3 {
			fields.Genre = labels[3].text
		}
		rep.ThaiAnalysis = a.thai.AnalyzeLabels(fields)
		rep.ThaiComplianceLevel = a.thai.ComplianceLevel(rep.ThaiAnalysis)
	}

	var sum float64
	var count int
	for _, results := range rep.StandardResults {
		for _, r := range results {
			sum += r.Score
			count++
			if !r.Passed {
				rep.TotalViolationsFound++
			}
			if r.Severity == compliance.SeverityCritical {
				rep.CriticalIssues = append(rep.CriticalIssues,
					fmt.Sprintf("[%s] %s: %s", r.Standard, r.CheckName, r.Details))
			}
			if r.Recommendation != "" && !r.Passed {
				rep.Recommendations = append(rep.Recommendations, r.Recommendation)
			}
		}
	}
	if count > 0 {
		rep.OverallComplianceScore = compliance.ClampScore(sum / float64(count))
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	rep.MemoryUsageBytes = mem.Alloc
	rep.AnalysisDuration = a.clock.Now().Sub(start)
	rep.Summarize()
	return rep
}

// figRegion returns the FIC portion of an ETI frame when the buffer is
// frame-shaped, otherwise the whole buffer (callers may hand us a bare
// FIG payload).
func figRegion(data []byte) []byte {
	if len(data) >= etiFrameSize {
		// after SYNC(4) + FC(4) + STC area; the upstream decoder hands
		// us frames with the FIC at a fixed offset
		return data[8:min(len(data), 8+96*3)]
	}
	return data
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ---- per-standard validators ----

// validateEN302077: RF equipment conformance can only be judged
// indirectly from transport padding and the error field the modulator
// stamped on the frame.
func (a *Analyzer) validateEN302077(data []byte) []compliance.ComplianceResult {
	fs, err := parseFrameHeader(data)
	if err != nil {
		return []compliance.ComplianceResult{
			a.result(compliance.StandardEN302077, "rf_transport_integrity", false, 0, err.Error()).
				WithRecommendation("Verify the ETI capture is complete before analysis"),
		}
	}
	score := 100.0
	details := "error field clean"
	if fs.errField != etiErrNone {
		score = 30
		details = fmt.Sprintf("error field 0x%02X indicates upstream transport errors", fs.errField)
	}
	return []compliance.ComplianceResult{
		a.result(compliance.StandardEN302077, "rf_transport_integrity", fs.errField == etiErrNone, score, details).
			WithMeta("err_field", fmt.Sprintf("0x%02X", fs.errField)),
	}
}

// validateEN300401: core frame structure. Sync word, declared length,
// stream count bounds.
func (a *Analyzer) validateEN300401(data []byte) []compliance.ComplianceResult {
	var out []compliance.ComplianceResult
	fs, err := parseFrameHeader(data)
	if err != nil {
		return append(out,
			a.result(compliance.StandardEN300401, "frame_structure", false, 0, err.Error()).
				WithRecommendation("Frame is truncated; re-capture the ETI stream"))
	}

	syncScore := 100.0
	syncDetails := fmt.Sprintf("FSYNC 0x%06X valid", fs.fsync)
	if !fs.syncValid() {
		syncScore = 10
		syncDetails = fmt.Sprintf("FSYNC 0x%06X matches neither phase", fs.fsync)
	}
	out = append(out, a.result(compliance.StandardEN300401, "frame_sync", fs.syncValid(), syncScore, syncDetails).
		WithRecommendation("Check modulator framing and capture alignment"))

	lenScore := 100.0
	lenOK := true
	lenDetails := fmt.Sprintf("declared length %d bytes within %d-byte frame", fs.frameLength, len(data))
	if fs.frameLength > len(data) {
		lenScore, lenOK = 15, false
		lenDetails = fmt.Sprintf("declared length %d exceeds buffer %d", fs.frameLength, len(data))
	} else if len(data) != etiFrameSize {
		lenScore = 70
		lenDetails = fmt.Sprintf("buffer is %d bytes, expected %d for ETI(NI)", len(data), etiFrameSize)
	}
	out = append(out, a.result(compliance.StandardEN300401, "frame_length", lenOK, lenScore, lenDetails).
		WithRecommendation("Align the frame length field with the transported payload"))

	nstOK := fs.streamCount <= maxStreams
	nstScore := 100.0
	nstDetails := fmt.Sprintf("%d subchannel streams declared", fs.streamCount)
	if !nstOK {
		nstScore = 20
		nstDetails = fmt.Sprintf("stream count %d exceeds the %d allowed", fs.streamCount, maxStreams)
	}
	out = append(out, a.result(compliance.StandardEN300401, "stream_count", nstOK, nstScore, nstDetails))
	return out
}

// validateTS102563: DAB+ audio coding heuristics over the payload region.
func (a *Analyzer) validateTS102563(data []byte) []compliance.ComplianceResult {
	payload := data
	streams := 1
	if len(data) >= etiFrameSize {
		payload = data[8+96*3:]
		if fs, err := parseFrameHeader(data); err == nil && fs.streamCount > 0 {
			streams = fs.streamCount
		}
	}
	density := payloadDensity(payload)
	score := 100 * density
	if density >= 0.35 {
		score = 100
	}
	details := fmt.Sprintf("audio payload density %.2f", density)
	res := a.result(compliance.StandardTS102563, "audio_payload_profile", density > 0.05, score, details).
		WithRecommendation("Confirm the audio subchannel carries an AAC superframe at a profiled bitrate")

	// per-stream bitrate estimate: payload bits per 24ms ETI frame,
	// split evenly across the declared subchannels
	kbps := (len(payload) * 8) / 24 / streams
	if kbps > 0 {
		nearest, exact := nearestAllowedBitrate(kbps)
		brScore := 100.0
		brDetails := fmt.Sprintf("estimated %d kbit/s matches profile", kbps)
		if !exact {
			brScore = 65
			brDetails = fmt.Sprintf("estimated %d kbit/s is off-profile (nearest %d)", kbps, nearest)
		}
		return []compliance.ComplianceResult{res,
			a.result(compliance.StandardTS102563, "audio_bitrate_profile", exact, brScore, brDetails).
				WithMeta("estimated_kbps", fmt.Sprintf("%d", kbps)),
		}
	}
	return []compliance.ComplianceResult{res}
}

// validateTS101756: character sets. Runs the Thai codec over every
// extracted service label; when Thai analysis is disabled only the
// charset flag is checked.
func (a *Analyzer) validateTS101756(data []byte) []compliance.ComplianceResult {
	labels := extractServiceLabels(figRegion(data))
	if len(labels) == 0 {
		return []compliance.ComplianceResult{
			a.result(compliance.StandardTS101756, "charset_labels", true, 100,
				"no service labels present in buffer"),
		}
	}
	var out []compliance.ComplianceResult
	for i, lbl := range labels {
		check := fmt.Sprintf("charset_label_%d", i)
		if lbl.charset != 0x0E && a.thaiContent(lbl.text) {
			out = append(out, a.result(compliance.StandardTS101756, check, false, 35,
				fmt.Sprintf("label %q carries Thai text but charset flag is 0x%02X", lbl.text, lbl.charset)).
				WithRecommendation("Signal charset 0x0E for Thai service labels"))
			continue
		}
		out = append(out, a.validateLabelText(check, lbl.text)...)
	}
	return out
}

func (a *Analyzer) thaiContent(text string) bool {
	if a.thai == nil {
		return false
	}
	return a.thai.Codec().DetectThaiScript(text)
}

func (a *Analyzer) validateLabelText(check, text string) []compliance.ComplianceResult {
	return a.validateTextNamed(check, text)
}

func (a *Analyzer) validateText(text string) []compliance.ComplianceResult {
	return a.validateTextNamed("charset_text", text)
}

func (a *Analyzer) validateTextNamed(check, text string) []compliance.ComplianceResult {
	if a.thai == nil {
		return []compliance.ComplianceResult{
			a.result(compliance.StandardTS101756, check, true, 100,
				"thai analysis disabled; charset membership not evaluated"),
		}
	}
	v := a.thai.Codec().Validate(text)
	details := fmt.Sprintf("%d of %d characters profile-compliant", countRunes(text)-v.InvalidChars, countRunes(text))
	if text == "" {
		details = "empty label"
	}
	return []compliance.ComplianceResult{
		a.result(compliance.StandardTS101756, check, v.DABProfileCompliant, v.ComplianceScore, details).
			WithRecommendation("Replace out-of-profile characters before transmission"),
	}
}

// validateTR1014963: service organization. FIG structure and subchannel
// layout consistency.
func (a *Analyzer) validateTR1014963(data []byte) []compliance.ComplianceResult {
	figs, truncated := walkFIGs(figRegion(data))
	var out []compliance.ComplianceResult
	if truncated {
		out = append(out, a.result(compliance.StandardTR1014963, "fig_structure", false, 10,
			"FIG declared length exceeds buffer bounds").
			WithRecommendation("Truncated FIG indicates multiplexer framing fault"))
	} else {
		out = append(out, a.result(compliance.StandardTR1014963, "fig_structure", true, 100,
			fmt.Sprintf("%d FIGs parsed cleanly", len(figs))))
	}

	typeOK := true
	for _, f := range figs {
		if f.typ > 7 {
			typeOK = false
		}
	}
	score := 100.0
	details := "all FIG types within range"
	if !typeOK {
		score, details = 40, "FIG type outside the defined range"
	}
	out = append(out, a.result(compliance.StandardTR1014963, "fig_types", typeOK, score, details))
	return out
}

// validateTS101499: MOT SlideShow structural plausibility.
func (a *Analyzer) validateTS101499(data []byte) []compliance.ComplianceResult {
	if len(data) < 7 {
		return []compliance.ComplianceResult{
			a.result(compliance.StandardTS101499, "mot_header", false, 0,
				fmt.Sprintf("buffer too short for a MOT header core: %d bytes", len(data))),
		}
	}
	bodySize := int(binary.BigEndian.Uint32(data[0:4]) >> 4)
	headerSize := int(binary.BigEndian.Uint16(data[3:5])>>3) & 0x1FFF
	ok := headerSize >= 7 && bodySize >= 0 && headerSize <= len(data)
	score := 100.0
	details := fmt.Sprintf("header %d bytes, body %d bytes", headerSize, bodySize)
	if !ok {
		score = 45
		details = fmt.Sprintf("implausible MOT header core (header %d, body %d, buffer %d)", headerSize, bodySize, len(data))
	}
	return []compliance.ComplianceResult{
		a.result(compliance.StandardTS101499, "mot_header", ok, score, details).
			WithRecommendation("Check the MOT encoder's header core fields"),
	}
}

// validateTS102818: SPI presence check. Binary SPI top-level tag or XML
// prolog at the start of the payload.
func (a *Analyzer) validateTS102818(data []byte) []compliance.ComplianceResult {
	ok := false
	details := "no SPI document detected"
	if len(data) >= 2 {
		if data[0] == 0x02 || data[0] == 0x03 { // binary SPI top-level tags
			ok = true
			details = "binary SPI top-level tag present"
		} else if len(data) >= 5 && string(data[:5]) == "<?xml" {
			ok = true
			details = "XML SPI document present"
		}
	}
	score := 100.0
	if !ok {
		score = 60 // absence is common on bare audio ensembles
	}
	return []compliance.ComplianceResult{
		a.result(compliance.StandardTS102818, "spi_presence", ok, score, details),
	}
}

// validateTS103551: TPEG transport framing plausibility.
func (a *Analyzer) validateTS103551(data []byte) []compliance.ComplianceResult {
	ok := len(data) >= 2 && data[0] == 0xFF && data[1] == 0x0F // TPEG sync hint
	score := 100.0
	details := "TPEG transport sync present"
	if !ok {
		score = 60
		details = "no TPEG transport framing detected"
	}
	return []compliance.ComplianceResult{
		a.result(compliance.StandardTS103551, "tpeg_framing", ok, score, details),
	}
}

// validateTS103176: service information features. Label presence and
// uniqueness.
func (a *Analyzer) validateTS103176(data []byte) []compliance.ComplianceResult {
	labels := extractServiceLabels(figRegion(data))
	var out []compliance.ComplianceResult

	presOK := len(labels) > 0
	presScore := 100.0
	presDetails := fmt.Sprintf("%d service labels present", len(labels))
	if !presOK {
		presScore = 55
		presDetails = "no service labels present"
	}
	out = append(out, a.result(compliance.StandardTS103176, "service_label_presence", presOK, presScore, presDetails).
		WithRecommendation("Every service must carry a label"))

	seen := make(map[string]bool, len(labels))
	unique := true
	for _, l := range labels {
		if l.text == "" {
			continue
		}
		if seen[l.text] {
			unique = false
		}
		seen[l.text] = true
	}
	uScore := 100.0
	uDetails := "service labels unique"
	if !unique {
		uScore = 50
		uDetails = "duplicate service labels in ensemble"
	}
	out = append(out, a.result(compliance.StandardTS103176, "service_label_uniqueness", unique, uScore, uDetails))
	return out
}

func countRunes(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
