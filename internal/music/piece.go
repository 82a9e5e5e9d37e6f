package music

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// UnknownVoiceError is returned when a Piece is asked to play a voice it
// does not contain.
type UnknownVoiceError struct {
	Voice string
}

func (e *UnknownVoiceError) Error() string {
	return fmt.Sprintf("unknown voice %q", e.Voice)
}

// Piece is a compiled tune: one music tree per voice plus the header.
type Piece struct {
	header Header
	voices map[string]Music
	order  []string
}

// NewPiece builds a Piece. Voices are ordered as declared in the header,
// followed by any undeclared voices in name order.
func NewPiece(header Header, voiceMusic map[string]Music) *Piece {
	p := &Piece{header: header.clone(), voices: make(map[string]Music, len(voiceMusic))}
	for name, m := range voiceMusic {
		p.voices[name] = m
	}
	seen := make(map[string]bool)
	for _, name := range header.Voices {
		if _, ok := p.voices[name]; ok && !seen[name] {
			p.order = append(p.order, name)
			seen[name] = true
		}
	}
	var extra []string
	for name := range p.voices {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	p.order = append(p.order, extra...)
	return p
}

func (p *Piece) Header() Header {
	return p.header.clone()
}

// Voices returns the voice names declared by the header.
func (p *Piece) Voices() []string {
	return append([]string(nil), p.header.Voices...)
}

// CompiledVoices returns the voices that have music, in playback order.
func (p *Piece) CompiledVoices() []string {
	return append([]string(nil), p.order...)
}

// Voice returns the music tree for one voice.
func (p *Piece) Voice(name string) (Music, bool) {
	m, ok := p.voices[name]
	return m, ok
}

// Duration is the length of the longest voice.
func (p *Piece) Duration() float64 {
	var d float64
	for _, m := range p.voices {
		d = max(d, m.Duration())
	}
	return d
}

// Play schedules voice at atBeat, or every voice when voice is empty.
func (p *Piece) Play(ctx context.Context, s Scheduler, atBeat float64, lyrics io.Writer, voice string) error {
	if voice != "" {
		m, ok := p.voices[voice]
		if !ok {
			return &UnknownVoiceError{Voice: voice}
		}
		return m.Play(ctx, s, atBeat, lyrics, voice)
	}
	for _, name := range p.order {
		if err := p.voices[name].Play(ctx, s, atBeat, lyrics, voice); err != nil {
			return err
		}
	}
	return nil
}

// Transpose returns a new Piece with every voice moved by semitones.
func (p *Piece) Transpose(semitones int) *Piece {
	moved := make(map[string]Music, len(p.voices))
	for name, m := range p.voices {
		moved[name] = m.Transpose(semitones)
	}
	return NewPiece(p.header, moved)
}

// WithInstrument returns a new Piece whose notes all sound on inst.
func (p *Piece) WithInstrument(inst Instrument) *Piece {
	moved := make(map[string]Music, len(p.voices))
	for name, m := range p.voices {
		moved[name] = m.WithInstrument(inst)
	}
	return NewPiece(p.header, moved)
}

// LyricsFor returns the lyric text of one voice, or of every voice when
// voice is empty.
func (p *Piece) LyricsFor(voice string) string {
	if voice != "" {
		return p.voices[voice].LyricsFor(voice)
	}
	var b strings.Builder
	for _, name := range p.order {
		b.WriteString(p.voices[name].LyricsFor(name))
	}
	return b.String()
}

func (p *Piece) String() string {
	h := p.header
	var b strings.Builder
	b.WriteString("X:" + strconv.Itoa(h.Index))
	b.WriteString("T:" + h.Title)
	b.WriteString("C:" + h.Composer)
	b.WriteString("M:" + formatBeats(h.Meter))
	b.WriteString("L:" + formatBeats(h.NoteLength))
	b.WriteString("V:" + formatList(h.Voices))
	b.WriteString("K:" + h.Key + "\n")
	for _, name := range p.order {
		b.WriteString(name + ": " + p.voices[name].String() + "\n")
	}
	return b.String()
}
