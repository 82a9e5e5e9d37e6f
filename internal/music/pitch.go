package music

import (
	"fmt"
	"strings"
)

// Pitch is a semitone offset from middle C.
type Pitch int

const MiddleC Pitch = 0

var letterOffsets = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

var pitchNames = [12]string{"C", "^C", "D", "^D", "E", "F", "^F", "G", "^G", "A", "^A", "B"}

// NewPitch returns the natural pitch for an uppercase letter A-G in the
// octave starting at middle C.
func NewPitch(letter byte) (Pitch, error) {
	off, ok := letterOffsets[upper(letter)]
	if !ok {
		return 0, fmt.Errorf("invalid pitch letter %q", letter)
	}
	return Pitch(off), nil
}

// Transpose returns the pitch moved by semitones.
func (p Pitch) Transpose(semitones int) Pitch {
	return p + Pitch(semitones)
}

// MIDINote maps the pitch onto the MIDI key space (middle C = 60).
func (p Pitch) MIDINote() int {
	return 60 + int(p)
}

func (p Pitch) String() string {
	v := int(p)
	var suffix strings.Builder
	for v < 0 {
		suffix.WriteByte(',')
		v += 12
	}
	for v >= 12 {
		suffix.WriteByte('\'')
		v -= 12
	}
	return pitchNames[v] + suffix.String()
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
