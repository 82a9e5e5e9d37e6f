package compiler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/cbegin/abckaraoke/internal/abc"
	"github.com/cbegin/abckaraoke/internal/music"
)

var errZeroDenominator = errors.New("zero denominator")

// collectHeader maps each field letter to its trimmed value. Repeated V:
// fields are joined with newlines; other repeats keep the last value.
func collectHeader(header *abc.Node) map[byte]string {
	fields := make(map[byte]string)
	if header == nil {
		return fields
	}
	for _, n := range header.Children {
		if n.Kind == abc.KindComment || len(n.Text) < 2 {
			continue
		}
		code := n.Text[0]
		value := strings.TrimSpace(n.Text[2:])
		if prev, ok := fields[code]; ok && code == 'V' {
			value = prev + "\n" + value
		}
		fields[code] = value
	}
	return fields
}

// ResolveHeader turns raw header fields into a Header.
func ResolveHeader(fields map[byte]string) (music.Header, error) {
	for _, code := range []byte{'X', 'T', 'K'} {
		if _, ok := fields[code]; !ok {
			return music.Header{}, &MissingHeaderFieldError{Field: code}
		}
	}
	index, err := strconv.Atoi(fields['X'])
	if err != nil {
		return music.Header{}, &MalformedLengthFractionError{Field: 'X', Text: fields['X'], Err: err}
	}
	h := music.Header{
		Index:    index,
		Title:    fields['T'],
		Composer: music.DefaultComposer,
		Key:      fields['K'],
		Meter:    1,
		BPM:      music.DefaultBPM,
		Voices:   []string{music.DefaultVoice},
	}
	if h.Title == "" {
		return music.Header{}, &MissingHeaderFieldError{Field: 'T'}
	}
	if h.Key == "" {
		return music.Header{}, &MissingHeaderFieldError{Field: 'K'}
	}
	if c, ok := fields['C']; ok && c != "" {
		h.Composer = c
	}
	if v, ok := fields['V']; ok {
		var voices []string
		for _, name := range strings.Split(v, "\n") {
			if name = strings.TrimSpace(name); name != "" {
				voices = append(voices, name)
			}
		}
		if len(voices) > 0 {
			h.Voices = voices
		}
	}
	if m, ok := fields['M']; ok {
		if m == "C" || m == "C|" {
			h.Meter = 1
		} else if h.Meter, err = parseFraction('M', m); err != nil {
			return music.Header{}, err
		}
	}
	if l, ok := fields['L']; ok {
		if h.NoteLength, err = parseFraction('L', l); err != nil {
			return music.Header{}, err
		}
	} else if h.Meter < 0.75 {
		h.NoteLength = 1.0 / 16
	} else {
		h.NoteLength = 1.0 / 8
	}
	if q, ok := fields['Q']; ok {
		if h.BPM, err = parseTempo(q, h.NoteLength); err != nil {
			return music.Header{}, err
		}
	}
	return h, nil
}

// parseFraction reads a strict "N/M".
func parseFraction(field byte, s string) (float64, error) {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return 0, &MalformedLengthFractionError{Field: field, Text: s, Err: errors.New("expected N/M")}
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return 0, &MalformedLengthFractionError{Field: field, Text: s, Err: err}
	}
	d, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil {
		return 0, &MalformedLengthFractionError{Field: field, Text: s, Err: err}
	}
	if d == 0 {
		return 0, &MalformedLengthFractionError{Field: field, Text: s, Err: errZeroDenominator}
	}
	return float64(n) / float64(d), nil
}

// parseTempo reads "N/M=B" as B beats of length N/M per minute, expressed
// in units of the default note length. A bare "B" is taken as is.
func parseTempo(s string, noteLength float64) (float64, error) {
	frac, bpm, ok := strings.Cut(s, "=")
	if !ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, &MalformedLengthFractionError{Field: 'Q', Text: s, Err: err}
		}
		return float64(n), nil
	}
	unit, err := parseFraction('Q', frac)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(bpm))
	if err != nil {
		return 0, &MalformedLengthFractionError{Field: 'Q', Text: s, Err: err}
	}
	return unit / noteLength * float64(n), nil
}
