package abc

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func kinds(nodes []*Node) []Kind {
	out := make([]Kind, len(nodes))
	for i, n := range nodes {
		out[i] = n.Kind
	}
	return out
}

func texts(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Text
	}
	return out
}

func mustParse(t *testing.T, src string) *Node {
	t.Helper()
	tree, err := Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return tree
}

func TestParseHeaderFields(t *testing.T) {
	tree := mustParse(t, "X:1\nT:Piece No.1\n% a comment\nM:4/4\nL:1/4\nQ:1/4=140\nR:reel\nK:G\nC D|\n")
	header := tree.Child(KindHeader)
	want := []Kind{KindFieldNumber, KindFieldTitle, KindComment, KindFieldMeter, KindFieldLength, KindFieldTempo, KindFieldOther, KindFieldKey}
	if diff := cmp.Diff(want, kinds(header.Children)); diff != "" {
		t.Fatalf("header kinds mismatch (-want +got):\n%s", diff)
	}
	if header.Children[1].Text != "T:Piece No.1" {
		t.Fatalf("unexpected title text %q", header.Children[1].Text)
	}
	body := tree.Child(KindBody)
	if len(body.Children) != 1 || body.Children[0].Kind != KindLine {
		t.Fatalf("expected one body line, got %v", kinds(body.Children))
	}
}

func TestParseMusicLineElements(t *testing.T) {
	tree := mustParse(t, "X:1\nT:t\nK:C\n|: ^C,2 z/ [CEG] (3abc :| [1 d4 |] % done\n")
	line := tree.Child(KindBody).Children[0]
	want := []Kind{
		KindStartRepeat, KindNoteElement, KindRestElement, KindNoteElement,
		KindTupletElement, KindFinishRepeat, KindFirstRepeat, KindNoteElement,
		KindBarline, KindEndOfLine,
	}
	if diff := cmp.Diff(want, kinds(line.Children)); diff != "" {
		t.Fatalf("element kinds mismatch (-want +got):\n%s", diff)
	}
	note := line.Children[1].Child(KindNote)
	pitch := note.Child(KindPitch)
	if diff := cmp.Diff([]string{"^", "C", ","}, texts(pitch.Children)); diff != "" {
		t.Fatalf("pitch parts mismatch (-want +got):\n%s", diff)
	}
	if got := note.Child(KindNoteLength).Text; got != "2" {
		t.Fatalf("expected length 2, got %q", got)
	}
	if got := line.Children[2].Child(KindNoteLength).Text; got != "/" {
		t.Fatalf("expected rest length /, got %q", got)
	}
	chord := line.Children[3].Child(KindChord)
	if len(chord.Children) != 3 {
		t.Fatalf("expected 3 chord notes, got %d", len(chord.Children))
	}
	tup := line.Children[4]
	if tup.Children[0].Text != "(3" || len(tup.Children) != 4 {
		t.Fatalf("unexpected tuplet %q with %d children", tup.Children[0].Text, len(tup.Children))
	}
	if line.Children[8].Children[0].Kind != KindMajorBarline {
		t.Fatalf("expected |] to be a major barline")
	}
	if got := line.Children[9].Text; got != "% done\n" {
		t.Fatalf("unexpected end of line %q", got)
	}
}

func TestParseRepeatVariants(t *testing.T) {
	tree := mustParse(t, "X:1\nT:t\nK:C\nA:|B::c:|:d|1e:|2f||\n")
	line := tree.Child(KindBody).Children[0]
	want := []Kind{
		KindNoteElement, KindFinishRepeat,
		KindNoteElement, KindFinishRepeat, KindStartRepeat,
		KindNoteElement, KindFinishRepeat, KindStartRepeat,
		KindNoteElement, KindBarline, KindFirstRepeat,
		KindNoteElement, KindFinishRepeat, KindSecondRepeat,
		KindNoteElement, KindBarline, KindEndOfLine,
	}
	if diff := cmp.Diff(want, kinds(line.Children)); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestParseVoicesAndLyrics(t *testing.T) {
	tree := mustParse(t, "X:1\nT:t\nV:1\nV:2\nK:C\nV:1\nC D E F|\nw: hel-lo wor_ld *\nV:2\nz4|\n")
	body := tree.Child(KindBody)
	if diff := cmp.Diff([]Kind{KindLine, KindLine, KindLine, KindLine}, kinds(body.Children)); diff != "" {
		t.Fatalf("body kinds mismatch (-want +got):\n%s", diff)
	}
	if body.Children[0].Children[0].Kind != KindFieldVoice || body.Children[0].Children[0].Text != "V:1" {
		t.Fatalf("expected voice line, got %v", body.Children[0].Children[0])
	}
	lyric := body.Children[1].Child(KindLyric)
	if lyric == nil {
		t.Fatalf("expected lyric attached to music line")
	}
	want := []string{" ", "hel", "-", "lo", " ", "wor", "_", "ld", " ", "*", "\n"}
	if diff := cmp.Diff(want, texts(lyric.Children)); diff != "" {
		t.Fatalf("lyric tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLyricSpecialTokens(t *testing.T) {
	lyric := parseLyric(`a~b c\-d |e`, 1, 3)
	want := []string{"a", "~", "b", " ", "c", `\-`, "d", " ", "|", "e", "\n"}
	if diff := cmp.Diff(want, texts(lyric.Children)); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"bad tuplet", "X:1\nT:t\nK:C\n(5abcde|\n"},
		{"short tuplet", "X:1\nT:t\nK:C\n(3ab\n"},
		{"rest in chord", "X:1\nT:t\nK:C\n[Cz]|\n"},
		{"unterminated chord", "X:1\nT:t\nK:C\n[CE\n"},
		{"stray lyric", "X:1\nT:t\nK:C\nw: la\n"},
		{"unknown symbol", "X:1\nT:t\nK:C\nC#D\n"},
	}
	for _, c := range cases {
		_, err := Parse(c.src)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("%s: expected ParseError, got %v", c.name, err)
		}
	}
}

func TestParseLeavesHeaderOrderToCompiler(t *testing.T) {
	tree := mustParse(t, "T:t\nK:C\nC|\n")
	header := tree.Child(KindHeader)
	if len(header.Children) != 2 || header.Children[0].Kind != KindFieldTitle {
		t.Fatalf("unexpected header %v", texts(header.Children))
	}
	if len(tree.Child(KindBody).Children) == 0 {
		t.Fatalf("expected body after K:")
	}
}

func TestDump(t *testing.T) {
	tree := mustParse(t, "X:1\nT:t\nK:C\nz\n")
	want := "abc\n" +
		"  header\n" +
		"    field_number \"X:1\"\n" +
		"    field_title \"T:t\"\n" +
		"    field_key \"K:C\"\n" +
		"  body\n" +
		"    line\n" +
		"      rest_element\n" +
		"        note_length \"\"\n" +
		"      end_of_line \"\\n\"\n"
	if got := tree.Dump(); got != want {
		t.Fatalf("unexpected dump:\n%s", got)
	}
}
