package karaoke

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cbegin/abckaraoke/internal/music"
)

type TimelineKind string

const (
	TimelineNote  TimelineKind = "note"
	TimelineLyric TimelineKind = "lyric"
)

// TimelineEntry is one scheduled note or lyric line.
type TimelineEntry struct {
	Voice      string
	Kind       TimelineKind
	Beat       float64 // whole notes from the start
	Seconds    float64
	Length     float64 // whole notes; zero for lyrics
	Pitch      music.Pitch
	Instrument music.Instrument
	Text       string
}

func (e TimelineEntry) String() string {
	switch e.Kind {
	case TimelineNote:
		return fmt.Sprintf("%8.3fs %-8s note  %-4s %s x%g", e.Seconds, e.Voice, e.Pitch, e.Instrument, e.Length)
	default:
		return fmt.Sprintf("%8.3fs %-8s lyric %s", e.Seconds, e.Voice, e.Text)
	}
}

// timelineRecorder is a music.Scheduler that keeps everything it is given.
type timelineRecorder struct {
	voice   string
	entries []TimelineEntry
	events  []pendingLyric
}

type pendingLyric struct {
	beat float64
	fn   func(float64)
}

func (r *timelineRecorder) AddNote(instrument music.Instrument, pitch music.Pitch, startBeat, numBeats float64) {
	r.entries = append(r.entries, TimelineEntry{
		Voice:      r.voice,
		Kind:       TimelineNote,
		Beat:       startBeat,
		Length:     numBeats,
		Pitch:      pitch,
		Instrument: instrument,
	})
}

func (r *timelineRecorder) AddEvent(beat float64, fn func(float64)) {
	r.events = append(r.events, pendingLyric{beat: beat, fn: fn})
}

// RenderTimeline schedules every voice of piece without a clock and returns
// its notes and lyric lines in beat order. Voices that share a beat keep
// playback order.
func RenderTimeline(piece *music.Piece) ([]TimelineEntry, error) {
	header := piece.Header()
	secondsPerWhole := 0.0
	if header.BPM > 0 && header.NoteLength > 0 {
		secondsPerWhole = 60 / (header.BPM * header.NoteLength)
	}
	var all []TimelineEntry
	for _, voice := range piece.CompiledVoices() {
		rec := &timelineRecorder{voice: voice}
		var sink bytes.Buffer
		if err := piece.Play(context.Background(), rec, 0, &sink, voice); err != nil {
			return nil, fmt.Errorf("voice %s: %w", voice, err)
		}
		sort.SliceStable(rec.events, func(i, j int) bool { return rec.events[i].beat < rec.events[j].beat })
		for _, ev := range rec.events {
			sink.Reset()
			ev.fn(ev.beat)
			text := strings.TrimSuffix(sink.String(), "\n")
			if text == "" {
				continue
			}
			rec.entries = append(rec.entries, TimelineEntry{
				Voice: voice,
				Kind:  TimelineLyric,
				Beat:  ev.beat,
				Text:  text,
			})
		}
		all = append(all, rec.entries...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Beat < all[j].Beat })
	for i := range all {
		all[i].Seconds = all[i].Beat * secondsPerWhole
	}
	return all, nil
}
