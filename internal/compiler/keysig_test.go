package compiler

import (
	"errors"
	"testing"
)

func accidentals(k *keySignature) map[byte]int {
	out := make(map[byte]int)
	for i, v := range k.working {
		if v != 0 {
			out[byte('A'+i)] = v
		}
	}
	return out
}

func TestResolveKeyTables(t *testing.T) {
	cases := map[string]map[byte]int{
		"C":   {},
		"Am":  {},
		"G":   {'F': 1},
		"Em":  {'F': 1},
		"F":   {'B': -1},
		"D":   {'F': 1, 'C': 1},
		"Bb":  {'B': -1, 'E': -1},
		"B":   {'F': 1, 'C': 1, 'G': 1, 'D': 1, 'A': 1},
		"G#m": {'F': 1, 'C': 1, 'G': 1, 'D': 1, 'A': 1},
		"C#":  {'A': 1, 'B': 1, 'C': 1, 'D': 1, 'E': 1, 'F': 1, 'G': 1},
		"Cb":  {'A': -1, 'B': -1, 'C': -1, 'D': -1, 'E': -1, 'F': -1, 'G': -1},
	}
	for key, want := range cases {
		k, err := resolveKey(key)
		if err != nil {
			t.Fatalf("%s: %v", key, err)
		}
		got := accidentals(k)
		if len(got) != len(want) {
			t.Fatalf("%s: expected %v, got %v", key, want, got)
		}
		for letter, v := range want {
			if got[letter] != v {
				t.Fatalf("%s: expected %c=%d, got %d", key, letter, v, got[letter])
			}
		}
	}
	if len(keyAccidentals) != 30 {
		t.Fatalf("expected 30 keys, got %d", len(keyAccidentals))
	}
}

func TestResolveKeyUnsupported(t *testing.T) {
	for _, key := range []string{"H", "Gmix", "c", ""} {
		_, err := resolveKey(key)
		var unsupported *UnsupportedKeySignatureError
		if !errors.As(err, &unsupported) {
			t.Fatalf("%q: expected UnsupportedKeySignatureError, got %v", key, err)
		}
	}
}

func TestApplyAccidental(t *testing.T) {
	k, _ := resolveKey("G")
	if got := k.applyAccidental('f', "^"); got != 2 {
		t.Fatalf("sharp on F in G should stack to 2, got %d", got)
	}
	if got := k.offset('F'); got != 2 {
		t.Fatalf("working table should keep 2, got %d", got)
	}
	if got := k.applyAccidental('F', "="); got != 0 {
		t.Fatalf("natural should force 0, got %d", got)
	}
	if got := k.applyAccidental('B', "__"); got != -2 {
		t.Fatalf("double flat should give -2, got %d", got)
	}
	k.reset()
	if k.offset('F') != 1 || k.offset('B') != 0 {
		t.Fatalf("reset should restore the base table, got %v", accidentals(k))
	}
}
