package lyricterm

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestSplitMarked(t *testing.T) {
	before, marked, after, ok := SplitMarked("la  <mark>di</mark>  da")
	if !ok || before != "la  " || marked != "di" || after != "  da" {
		t.Fatalf("unexpected split %q %q %q %v", before, marked, after, ok)
	}
	if _, _, _, ok := SplitMarked("plain"); ok {
		t.Fatalf("expected no mark in plain text")
	}
	if _, _, _, ok := SplitMarked("<mark>open"); ok {
		t.Fatalf("expected unterminated mark to be rejected")
	}
}

func TestWriterBuffersPartialLines(t *testing.T) {
	var out bytes.Buffer
	plain := lipgloss.NewStyle()
	w := NewWithStyles(&out, plain, plain)
	if _, err := w.Write([]byte(" <mark>hi</mark> ")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected nothing before newline, got %q", out.String())
	}
	if _, err := w.Write([]byte("there\nsecond\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := out.String(); got != " hi there\nsecond\n" {
		t.Fatalf("unexpected output %q", got)
	}
}
