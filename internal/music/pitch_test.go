package music

import "testing"

func TestPitchString(t *testing.T) {
	cases := []struct {
		p    Pitch
		want string
	}{
		{0, "C"},
		{1, "^C"},
		{11, "B"},
		{12, "C'"},
		{26, "D''"},
		{-1, "B,"},
		{-12, "C,"},
		{-13, "B,,"},
	}
	for _, c := range cases {
		if got := c.p.String(); got != c.want {
			t.Fatalf("pitch %d: expected %q, got %q", int(c.p), c.want, got)
		}
	}
}

func TestNewPitch(t *testing.T) {
	for letter, want := range map[byte]Pitch{'C': 0, 'd': 2, 'A': 9, 'B': 11} {
		p, err := NewPitch(letter)
		if err != nil {
			t.Fatalf("%c: %v", letter, err)
		}
		if p != want {
			t.Fatalf("%c: expected %d, got %d", letter, want, p)
		}
	}
	if _, err := NewPitch('H'); err == nil {
		t.Fatalf("expected error for H")
	}
	if MiddleC.MIDINote() != 60 {
		t.Fatalf("expected middle C to be MIDI 60")
	}
}

func TestFormatBeats(t *testing.T) {
	cases := map[float64]string{
		0:        "0.0",
		1:        "1.0",
		0.25:     "0.25",
		0.1875:   "0.1875",
		150:      "150.0",
		1e-4:     "1.0E-4",
		1.5e-5:   "1.5E-5",
		12345678: "1.2345678E7",
	}
	for f, want := range cases {
		if got := formatBeats(f); got != want {
			t.Fatalf("%v: expected %q, got %q", f, want, got)
		}
	}
}
