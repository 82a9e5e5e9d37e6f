package music

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Music value.
type Kind int

const (
	KindRest Kind = iota
	KindNote
	KindChord
	KindTuplet
	KindConcat
	KindLyric
	KindComponent
)

func (k Kind) String() string {
	switch k {
	case KindRest:
		return "rest"
	case KindNote:
		return "note"
	case KindChord:
		return "chord"
	case KindTuplet:
		return "tuplet"
	case KindConcat:
		return "concat"
	case KindLyric:
		return "lyric"
	case KindComponent:
		return "component"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

var (
	ErrNegativeDuration = errors.New("duration must be non-negative")
	ErrInvalidChord     = errors.New("chord needs at least one element and may not contain rests or tuplets")
	ErrInvalidTuplet    = errors.New("tuplet needs 2 to 4 notes or chords")
	ErrInvalidLyric     = errors.New("lyric text must be non-empty")
	ErrEmptyComponent   = errors.New("component needs at least one part")
)

// Scheduler receives the absolute-time output of Play.
type Scheduler interface {
	AddNote(instrument Instrument, pitch Pitch, startBeat, numBeats float64)
	AddEvent(beat float64, fn func(beat float64))
}

// Music is an immutable node of the performance tree. The zero value is a
// zero-length rest.
type Music struct {
	kind       Kind
	duration   float64
	pitch      Pitch
	instrument Instrument
	text       string
	parts      []Music
}

// tupletScale maps tuplet size to the multiple of its first element's length.
var tupletScale = map[int]float64{2: 3, 3: 2, 4: 3}

func Note(duration float64, pitch Pitch, instrument Instrument) (Music, error) {
	if duration < 0 {
		return Music{}, ErrNegativeDuration
	}
	return Music{kind: KindNote, duration: duration, pitch: pitch, instrument: instrument}, nil
}

func Rest(duration float64) (Music, error) {
	if duration < 0 {
		return Music{}, ErrNegativeDuration
	}
	return Music{kind: KindRest, duration: duration}, nil
}

// Chord plays every element at the same start beat. Its length is the
// length of the first element.
func Chord(elems []Music) (Music, error) {
	if len(elems) == 0 {
		return Music{}, ErrInvalidChord
	}
	for _, e := range elems {
		if e.kind == KindRest || e.kind == KindTuplet {
			return Music{}, ErrInvalidChord
		}
	}
	parts := append([]Music(nil), elems...)
	return Music{kind: KindChord, duration: parts[0].duration, parts: parts}, nil
}

// Tuplet squeezes 2, 3 or 4 notes into 3, 2 or 3 times the first note's length.
func Tuplet(elems []Music) (Music, error) {
	scale, ok := tupletScale[len(elems)]
	if !ok {
		return Music{}, ErrInvalidTuplet
	}
	for _, e := range elems {
		if e.kind != KindNote && e.kind != KindChord {
			return Music{}, ErrInvalidTuplet
		}
	}
	parts := append([]Music(nil), elems...)
	return Music{kind: KindTuplet, duration: parts[0].duration * scale, parts: parts}, nil
}

// Concat plays second immediately after first.
func Concat(first, second Music) Music {
	return Music{kind: KindConcat, duration: first.duration + second.duration, parts: []Music{first, second}}
}

func Lyric(text string, duration float64) (Music, error) {
	if text == "" {
		return Music{}, ErrInvalidLyric
	}
	if duration < 0 {
		return Music{}, ErrNegativeDuration
	}
	return Music{kind: KindLyric, duration: duration, text: text}, nil
}

// Component superimposes its parts. The reported length is that of the
// first part.
func Component(parts []Music) (Music, error) {
	if len(parts) == 0 {
		return Music{}, ErrEmptyComponent
	}
	cp := append([]Music(nil), parts...)
	return Music{kind: KindComponent, duration: cp[0].duration, parts: cp}, nil
}

func (m Music) Kind() Kind             { return m.kind }
func (m Music) Duration() float64      { return m.duration }
func (m Music) Pitch() Pitch           { return m.pitch }
func (m Music) Instrument() Instrument { return m.instrument }
func (m Music) Text() string           { return m.text }

// Parts returns a copy of the child nodes.
func (m Music) Parts() []Music {
	return append([]Music(nil), m.parts...)
}

// HasLyrics reports whether a component carries a lyric track next to its music.
func (m Music) HasLyrics() bool {
	return m.kind == KindComponent && len(m.parts) > 1
}

// Play schedules every note and lyric event of m starting at atBeat. Lyric
// events are only scheduled when voice is non-empty. Play returns early
// with ctx.Err() once ctx is done; anything already scheduled stays.
func (m Music) Play(ctx context.Context, s Scheduler, atBeat float64, lyrics io.Writer, voice string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch m.kind {
	case KindRest:
	case KindNote:
		s.AddNote(m.instrument, m.pitch, atBeat, m.duration)
	case KindChord, KindComponent:
		for _, p := range m.parts {
			if err := p.Play(ctx, s, atBeat, lyrics, voice); err != nil {
				return err
			}
		}
	case KindTuplet:
		step := m.duration / float64(len(m.parts))
		for i, p := range m.parts {
			if err := p.Play(ctx, s, atBeat+float64(i)*step, lyrics, voice); err != nil {
				return err
			}
		}
	case KindConcat:
		if err := m.parts[0].Play(ctx, s, atBeat, lyrics, voice); err != nil {
			return err
		}
		return m.parts[1].Play(ctx, s, atBeat+m.parts[0].duration, lyrics, voice)
	case KindLyric:
		if voice == "" || lyrics == nil {
			return nil
		}
		text := m.text
		s.AddEvent(atBeat, func(float64) {
			if strings.TrimSpace(text) != "" {
				_, _ = io.WriteString(lyrics, text+"\n")
			}
		})
	default:
		panic("music: unknown kind " + m.kind.String())
	}
	return nil
}

// Transpose returns a copy of m with every pitch moved by semitones.
func (m Music) Transpose(semitones int) Music {
	switch m.kind {
	case KindRest, KindLyric:
		return m
	case KindNote:
		m.pitch = m.pitch.Transpose(semitones)
		return m
	case KindChord, KindTuplet, KindConcat, KindComponent:
		parts := make([]Music, len(m.parts))
		for i, p := range m.parts {
			parts[i] = p.Transpose(semitones)
		}
		m.parts = parts
		return m
	default:
		panic("music: unknown kind " + m.kind.String())
	}
}

// WithInstrument returns a copy of m with every note played on inst.
func (m Music) WithInstrument(inst Instrument) Music {
	switch m.kind {
	case KindRest, KindLyric:
		return m
	case KindNote:
		m.instrument = inst
		return m
	case KindChord, KindTuplet, KindConcat, KindComponent:
		parts := make([]Music, len(m.parts))
		for i, p := range m.parts {
			parts[i] = p.WithInstrument(inst)
		}
		m.parts = parts
		return m
	default:
		panic("music: unknown kind " + m.kind.String())
	}
}

// Voices lists voice names carried by m. Only a Piece names voices, so
// every tree node reports the union of its children, which is empty.
func (m Music) Voices() []string {
	switch m.kind {
	case KindRest, KindNote, KindLyric:
		return nil
	case KindChord, KindTuplet, KindConcat, KindComponent:
		var names []string
		for _, p := range m.parts {
			names = append(names, p.Voices()...)
		}
		return names
	default:
		panic("music: unknown kind " + m.kind.String())
	}
}

// LyricsFor returns the concatenated lyric text beneath m.
func (m Music) LyricsFor(voice string) string {
	switch m.kind {
	case KindRest, KindNote:
		return ""
	case KindLyric:
		return m.text
	case KindChord, KindTuplet, KindConcat, KindComponent:
		var b strings.Builder
		for _, p := range m.parts {
			b.WriteString(p.LyricsFor(voice))
		}
		return b.String()
	default:
		panic("music: unknown kind " + m.kind.String())
	}
}

// Equal reports structural equality.
func (m Music) Equal(o Music) bool {
	if m.kind != o.kind || m.duration != o.duration || m.pitch != o.pitch ||
		m.instrument != o.instrument || m.text != o.text || len(m.parts) != len(o.parts) {
		return false
	}
	for i := range m.parts {
		if !m.parts[i].Equal(o.parts[i]) {
			return false
		}
	}
	return true
}

func (m Music) String() string {
	var b strings.Builder
	m.writeTo(&b)
	return b.String()
}

func (m Music) writeTo(b *strings.Builder) {
	switch m.kind {
	case KindRest:
		b.WriteString("z")
		b.WriteString(formatBeats(m.duration))
	case KindNote:
		b.WriteString(m.pitch.String())
		b.WriteString(formatBeats(m.duration))
	case KindLyric:
		b.WriteString(m.text)
		b.WriteString(formatBeats(m.duration))
	case KindChord:
		b.WriteByte('[')
		for _, p := range m.parts {
			p.writeTo(b)
		}
		b.WriteByte(']')
	case KindTuplet:
		b.WriteByte('(')
		b.WriteString(strconv.Itoa(len(m.parts)))
		for _, p := range m.parts {
			p.writeTo(b)
		}
		b.WriteString(formatBeats(m.duration))
	case KindConcat:
		m.parts[0].writeTo(b)
		m.parts[1].writeTo(b)
	case KindComponent:
		b.WriteByte('{')
		for _, p := range m.parts {
			p.writeTo(b)
		}
		b.WriteByte('}')
	default:
		panic("music: unknown kind " + m.kind.String())
	}
}
