package analysis

import (
	"encoding/binary"
	"fmt"
)

// ETI(NI) framing constants per the upstream decoder contract. The
// analyzer only checks structural consistency; it does not decode the
// multiplex.
const (
	etiFrameSize = 6144
	etiSyncA     = 0x073AB6 // FSYNC, alternating per frame
	etiSyncB     = 0xF8C549
	etiErrNone   = 0xFF
	maxStreams   = 64
)

// frameStructure holds the fields pulled out of an ETI frame header.
type frameStructure struct {
	errField    byte
	fsync       uint32
	streamCount int
	frameLength int
}

// parseFrameHeader reads the SYNC and FC fields. A short buffer is a
// structural failure, reported by the caller as a finding rather than an
// error.
func parseFrameHeader(data []byte) (frameStructure, error) {
	if len(data) < 8 {
		return frameStructure{}, fmt.Errorf("frame truncated: %d bytes", len(data))
	}
	fs := frameStructure{
		errField: data[0],
		fsync:    uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3]),
	}
	// FC: FCT(8) | FICF(1) NST(7) | FP(3) MID(2) FL(11)
	fs.streamCount = int(data[5] & 0x7F)
	fl := binary.BigEndian.Uint16(data[6:8]) & 0x07FF
	fs.frameLength = int(fl) * 4 // FL counts 32-bit words
	return fs, nil
}

func (fs frameStructure) syncValid() bool {
	return fs.fsync == etiSyncA || fs.fsync == etiSyncB
}

// fig is one Fast Information Group pulled from a FIB payload.
type fig struct {
	typ    int
	length int
	data   []byte
}

// walkFIGs iterates FIG headers in a buffer. Each header is one byte:
// type in the top 3 bits, payload length in the low 5. A declared length
// that runs past the buffer stops the walk and is reported via truncated.
func walkFIGs(data []byte) (figs []fig, truncated bool) {
	i := 0
	for i < len(data) {
		header := data[i]
		if header == 0xFF {
			// end marker / padding
			break
		}
		typ := int(header >> 5)
		length := int(header & 0x1F)
		if i+1+length > len(data) {
			return figs, true
		}
		figs = append(figs, fig{typ: typ, length: length, data: data[i+1 : i+1+length]})
		i += 1 + length
	}
	return figs, false
}

// serviceLabel is a FIG type 1 label with its charset flag.
type serviceLabel struct {
	charset byte
	text    string
}

// extractServiceLabels pulls FIG 1 service labels out of a buffer.
// Labels are fixed 16-byte fields; short payloads are skipped (they are
// already reported as structural findings by the FIG checks).
func extractServiceLabels(data []byte) []serviceLabel {
	figs, _ := walkFIGs(data)
	var labels []serviceLabel
	for _, f := range figs {
		if f.typ != 1 || f.length < 19 {
			continue
		}
		charset := f.data[0] >> 4
		// skip extension/SId bytes, label field is the 16 bytes before
		// the trailing character flag
		raw := f.data[f.length-18 : f.length-2]
		labels = append(labels, serviceLabel{charset: charset, text: trimLabel(raw)})
	}
	return labels
}

func trimLabel(raw []byte) string {
	end := len(raw)
	for end > 0 && (raw[end-1] == ' ' || raw[end-1] == 0x00) {
		end--
	}
	return string(raw[:end])
}

// payloadDensity returns the fraction of non-zero, non-padding bytes.
// Used by the audio-profile heuristic: a healthy DAB+ audio subchannel
// sits well above the density of an idle or stuffed one.
func payloadDensity(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	used := 0
	for _, b := range data {
		if b != 0x00 && b != 0x55 && b != 0xFF {
			used++
		}
	}
	return float64(used) / float64(len(data))
}

// allowedAudioBitrates per the DAB+ subchannel profiles, in kbit/s.
var allowedAudioBitrates = []int{8, 16, 24, 32, 48, 64, 80, 96, 112, 128, 160, 192}

func nearestAllowedBitrate(kbps int) (int, bool) {
	for _, b := range allowedAudioBitrates {
		if kbps == b {
			return b, true
		}
	}
	best := allowedAudioBitrates[0]
	for _, b := range allowedAudioBitrates {
		if abs(kbps-b) < abs(kbps-best) {
			best = b
		}
	}
	return best, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
