package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cbegin/abckaraoke/internal/abc"
	"github.com/cbegin/abckaraoke/internal/music"
)

// compileState is the per-voice state of one compile pass.
type compileState struct {
	header music.Header
	keys   *keySignature
}

var zeroRest, _ = music.Rest(0)

// compileNode compiles one body element. Structural nodes that make no
// sound compile to a zero-length rest so element indices stay aligned.
func compileNode(n *abc.Node, st *compileState) (music.Music, error) {
	switch n.Kind {
	case abc.KindNoteElement:
		if len(n.Children) != 1 {
			return music.Music{}, fmt.Errorf("note element at line %d: expected one child, got %d", n.Line, len(n.Children))
		}
		return compileNode(n.Children[0], st)
	case abc.KindNote:
		return compileNote(n, st)
	case abc.KindChord:
		notes := make([]music.Music, 0, len(n.Children))
		for _, c := range n.Children {
			m, err := compileNode(c, st)
			if err != nil {
				return music.Music{}, err
			}
			notes = append(notes, m)
		}
		chord, err := music.Chord(notes)
		if err != nil {
			return music.Music{}, fmt.Errorf("chord %q at line %d: %w", n.Text, n.Line, err)
		}
		return chord, nil
	case abc.KindRestElement:
		factor, err := lengthFactor(lengthText(n))
		if err != nil {
			return music.Music{}, err
		}
		return music.Rest(factor * st.header.NoteLength)
	case abc.KindTupletElement:
		return compileTuplet(n, st)
	case abc.KindBarline:
		st.keys.reset()
		return zeroRest, nil
	case abc.KindMeasure, abc.KindLine:
		acc := zeroRest
		for _, c := range n.Children {
			if c.Kind == abc.KindLyric {
				continue
			}
			m, err := compileNode(c, st)
			if err != nil {
				return music.Music{}, err
			}
			acc = music.Concat(acc, m)
		}
		return acc, nil
	default:
		return zeroRest, nil
	}
}

func compileTuplet(n *abc.Node, st *compileState) (music.Music, error) {
	if len(n.Children) == 0 || n.Children[0].Kind != abc.KindTupletSpec {
		return music.Music{}, &MalformedTupletError{Spec: n.Text}
	}
	spec := n.Children[0].Text
	size, err := strconv.Atoi(strings.TrimPrefix(spec, "("))
	elems := n.Children[1:]
	if err != nil || size != len(elems) {
		return music.Music{}, &MalformedTupletError{Spec: spec, Count: len(elems)}
	}
	parts := make([]music.Music, 0, size)
	for _, c := range elems {
		m, err := compileNode(c, st)
		if err != nil {
			return music.Music{}, err
		}
		parts = append(parts, m)
	}
	tup, err := music.Tuplet(parts)
	if errors.Is(err, music.ErrInvalidTuplet) {
		return music.Music{}, &MalformedTupletError{Spec: spec, Count: len(parts)}
	}
	return tup, err
}

func compileNote(n *abc.Node, st *compileState) (music.Music, error) {
	pitchNode := n.Child(abc.KindPitch)
	if pitchNode == nil {
		return music.Music{}, fmt.Errorf("note %q at line %d: missing pitch", n.Text, n.Line)
	}
	var accidental, base, octave string
	for _, c := range pitchNode.Children {
		switch c.Kind {
		case abc.KindAccidental:
			accidental = c.Text
		case abc.KindBaseNote:
			base = c.Text
		case abc.KindOctave:
			octave = c.Text
		}
	}
	if len(base) != 1 {
		return music.Music{}, fmt.Errorf("note %q at line %d: missing note letter", n.Text, n.Line)
	}
	letter := base[0]
	pitch, err := music.NewPitch(upperLetter(letter))
	if err != nil {
		return music.Music{}, err
	}
	semis := 0
	if letter >= 'a' && letter <= 'z' {
		semis += 12
	}
	if accidental != "" {
		semis += st.keys.applyAccidental(letter, accidental)
	} else {
		semis += st.keys.offset(letter)
	}
	semis += 12 * (strings.Count(octave, "'") - strings.Count(octave, ","))

	factor, err := lengthFactor(lengthText(n))
	if err != nil {
		return music.Music{}, err
	}
	return music.Note(factor*st.header.NoteLength, pitch.Transpose(semis), music.Piano)
}

func lengthText(n *abc.Node) string {
	if l := n.Child(abc.KindNoteLength); l != nil {
		return l.Text
	}
	return ""
}

// lengthFactor reads a note length suffix as a multiple of the default
// note length: "" is 1, "N" is N, "/" is 1/2 and "N/M" is N/M with N
// defaulting to 1 and M to 2.
func lengthFactor(s string) (float64, error) {
	if s == "" {
		return 1, nil
	}
	num, den, hasSlash := strings.Cut(s, "/")
	n, d := 1, 1
	var err error
	if num != "" {
		if n, err = strconv.Atoi(num); err != nil {
			return 0, &MalformedLengthFractionError{Text: s, Err: err}
		}
	}
	if hasSlash {
		d = 2
		if den != "" {
			if d, err = strconv.Atoi(den); err != nil {
				return 0, &MalformedLengthFractionError{Text: s, Err: err}
			}
		}
	}
	if d == 0 {
		return 0, &MalformedLengthFractionError{Text: s, Err: errZeroDenominator}
	}
	return float64(n) / float64(d), nil
}
