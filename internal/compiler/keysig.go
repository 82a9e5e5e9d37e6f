package compiler

import "strings"

const (
	sharpOrder = "FCGDAEB"
	flatOrder  = "BEADGCF"
)

// keyAccidentals gives the number of sharps (positive) or flats (negative)
// for each supported key. B major carries the same five sharps as G#m.
var keyAccidentals = map[string]int{
	"C": 0, "Am": 0,
	"G": 1, "Em": 1,
	"D": 2, "Bm": 2,
	"A": 3, "F#m": 3,
	"E": 4, "C#m": 4,
	"B": 5, "G#m": 5,
	"F#": 6, "D#m": 6,
	"C#": 7, "A#m": 7,
	"F": -1, "Dm": -1,
	"Bb": -2, "Gm": -2,
	"Eb": -3, "Cm": -3,
	"Ab": -4, "Fm": -4,
	"Db": -5, "Bbm": -5,
	"Gb": -6, "Ebm": -6,
	"Cb": -7, "Abm": -7,
}

// keySignature keeps the base accidentals of a key next to the working copy
// that in-line accidentals modify until the next barline.
type keySignature struct {
	base    [7]int
	working [7]int
}

func slot(letter byte) int {
	return int(upperLetter(letter) - 'A')
}

func resolveKey(key string) (*keySignature, error) {
	count, ok := keyAccidentals[strings.TrimSpace(key)]
	if !ok {
		return nil, &UnsupportedKeySignatureError{Key: key}
	}
	k := &keySignature{}
	order, step := sharpOrder, 1
	if count < 0 {
		order, step, count = flatOrder, -1, -count
	}
	for i := 0; i < count; i++ {
		k.base[slot(order[i])] += step
	}
	k.reset()
	return k, nil
}

func (k *keySignature) reset() {
	k.working = k.base
}

func (k *keySignature) offset(letter byte) int {
	return k.working[slot(letter)]
}

// applyAccidental updates the working table for letter and returns the new
// offset. Sharps and flats are relative; a natural sets the offset to 0.
func (k *keySignature) applyAccidental(letter byte, marker string) int {
	i := slot(letter)
	switch marker {
	case "^^":
		k.working[i] += 2
	case "^":
		k.working[i]++
	case "=":
		k.working[i] = 0
	case "_":
		k.working[i]--
	case "__":
		k.working[i] -= 2
	}
	return k.working[i]
}

func upperLetter(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
