package music

import (
	"strconv"
	"strings"
)

const (
	DefaultComposer = "Unknown"
	DefaultVoice    = "default"
	DefaultBPM      = 100.0
)

// Header holds the resolved tune header. Meter and NoteLength are whole-note
// fractions; BPM counts NoteLength beats per minute.
type Header struct {
	Index      int
	Title      string
	Composer   string
	Key        string
	Meter      float64
	NoteLength float64
	BPM        float64
	Voices     []string
}

func (h Header) clone() Header {
	h.Voices = append([]string(nil), h.Voices...)
	return h
}

func (h Header) String() string {
	var b strings.Builder
	b.WriteString("X:" + strconv.Itoa(h.Index))
	b.WriteString("T:" + h.Title)
	b.WriteString("C:" + h.Composer)
	b.WriteString("V:" + formatList(h.Voices))
	b.WriteString("M:" + formatBeats(h.Meter))
	b.WriteString("L:" + formatBeats(h.NoteLength))
	b.WriteString("Q:" + formatBeats(h.BPM))
	b.WriteString("K:" + h.Key)
	return b.String()
}
