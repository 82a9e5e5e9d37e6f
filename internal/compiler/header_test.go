package compiler

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cbegin/abckaraoke/internal/abc"
)

func TestResolveHeaderDefaults(t *testing.T) {
	h, err := ResolveHeader(map[byte]string{'X': "3", 'T': "Song", 'K': "G"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if h.Index != 3 || h.Title != "Song" || h.Key != "G" {
		t.Fatalf("unexpected header %+v", h)
	}
	if h.Composer != "Unknown" || h.Meter != 1 || h.NoteLength != 0.125 || h.BPM != 100 {
		t.Fatalf("unexpected defaults %+v", h)
	}
	if diff := cmp.Diff([]string{"default"}, h.Voices); diff != "" {
		t.Fatalf("voices mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveHeaderFields(t *testing.T) {
	cases := []struct {
		name   string
		fields map[byte]string
		meter  float64
		length float64
		bpm    float64
	}{
		{"common time", map[byte]string{'M': "C"}, 1, 0.125, 100},
		{"cut time", map[byte]string{'M': "C|"}, 1, 0.125, 100},
		{"short meter", map[byte]string{'M': "3/8"}, 0.375, 0.0625, 100},
		{"explicit length", map[byte]string{'M': "3/4", 'L': "1/4"}, 0.75, 0.25, 100},
		{"tempo fraction", map[byte]string{'L': "1/8", 'Q': "1/4=100"}, 1, 0.125, 200},
		{"tempo spaced", map[byte]string{'L': "1/4", 'Q': "1/4 = 90"}, 1, 0.25, 90},
		{"bare tempo", map[byte]string{'Q': "120"}, 1, 0.125, 120},
	}
	for _, c := range cases {
		fields := map[byte]string{'X': "1", 'T': "t", 'K': "C"}
		for k, v := range c.fields {
			fields[k] = v
		}
		h, err := ResolveHeader(fields)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if h.Meter != c.meter || h.NoteLength != c.length || h.BPM != c.bpm {
			t.Fatalf("%s: expected M=%v L=%v Q=%v, got M=%v L=%v Q=%v", c.name, c.meter, c.length, c.bpm, h.Meter, h.NoteLength, h.BPM)
		}
	}
}

func TestResolveHeaderMissingFields(t *testing.T) {
	for _, code := range []byte{'X', 'T', 'K'} {
		fields := map[byte]string{'X': "1", 'T': "t", 'K': "C"}
		delete(fields, code)
		_, err := ResolveHeader(fields)
		var missing *MissingHeaderFieldError
		if !errors.As(err, &missing) || missing.Field != code {
			t.Fatalf("expected missing %c, got %v", code, err)
		}
	}
}

func TestResolveHeaderMalformed(t *testing.T) {
	for _, f := range []map[byte]string{
		{'M': "4/x"},
		{'M': "4"},
		{'L': "1/0"},
		{'Q': "1/4=fast"},
		{'X': "one"},
	} {
		fields := map[byte]string{'X': "1", 'T': "t", 'K': "C"}
		for k, v := range f {
			fields[k] = v
		}
		_, err := ResolveHeader(fields)
		var bad *MalformedLengthFractionError
		if !errors.As(err, &bad) {
			t.Fatalf("%v: expected MalformedLengthFractionError, got %v", f, err)
		}
	}
}

func TestCollectHeaderJoinsVoices(t *testing.T) {
	tree, err := abc.Parse("X:1\nT:t\nV:soprano\n% comment\nV: alto \nK:C\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	fields := collectHeader(tree.Child(abc.KindHeader))
	if fields['V'] != "soprano\nalto" {
		t.Fatalf("unexpected voices %q", fields['V'])
	}
	h, err := ResolveHeader(fields)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff([]string{"soprano", "alto"}, h.Voices); diff != "" {
		t.Fatalf("voices mismatch (-want +got):\n%s", diff)
	}
}
