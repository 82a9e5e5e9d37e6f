package abc

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the grammar production a Node was built from.
type Kind int

const (
	KindABC Kind = iota + 1
	KindHeader
	KindBody
	KindComment

	KindFieldNumber
	KindFieldTitle
	KindFieldComposer
	KindFieldLength
	KindFieldMeter
	KindFieldTempo
	KindFieldVoice
	KindFieldKey
	KindFieldOther

	KindLine
	KindMeasure // grouping container; Parse itself emits flat lines
	KindNoteElement
	KindNote
	KindPitch
	KindAccidental
	KindBaseNote
	KindOctave
	KindNoteLength
	KindRestElement
	KindChord
	KindTupletElement
	KindTupletSpec
	KindBarline
	KindMajorBarline
	KindNormalBarline
	KindStartRepeat
	KindFinishRepeat
	KindFirstRepeat
	KindSecondRepeat
	KindEndOfLine

	KindLyric
	KindLyricalElement
	KindNewline
)

var kindNames = map[Kind]string{
	KindABC:            "abc",
	KindHeader:         "header",
	KindBody:           "body",
	KindComment:        "comment",
	KindFieldNumber:    "field_number",
	KindFieldTitle:     "field_title",
	KindFieldComposer:  "field_composer",
	KindFieldLength:    "field_length",
	KindFieldMeter:     "field_meter",
	KindFieldTempo:     "field_tempo",
	KindFieldVoice:     "field_voice",
	KindFieldKey:       "field_key",
	KindFieldOther:     "field_other",
	KindLine:           "line",
	KindMeasure:        "measure",
	KindNoteElement:    "note_element",
	KindNote:           "note",
	KindPitch:          "pitch",
	KindAccidental:     "accidental",
	KindBaseNote:       "basenote",
	KindOctave:         "octave",
	KindNoteLength:     "note_length",
	KindRestElement:    "rest_element",
	KindChord:          "chord",
	KindTupletElement:  "tuplet_element",
	KindTupletSpec:     "tuplet_spec",
	KindBarline:        "barline",
	KindMajorBarline:   "major_barline",
	KindNormalBarline:  "normal_barline",
	KindStartRepeat:    "start_repeat",
	KindFinishRepeat:   "finish_repeat",
	KindFirstRepeat:    "first_repeat",
	KindSecondRepeat:   "second_repeat",
	KindEndOfLine:      "end_of_line",
	KindLyric:          "lyric",
	KindLyricalElement: "lyrical_element",
	KindNewline:        "newline",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Node is one parse-tree node. Text is the matched source text.
type Node struct {
	Kind     Kind
	Text     string
	Line     int
	Col      int
	Children []*Node
}

// Child returns the first direct child of the given kind.
func (n *Node) Child(kind Kind) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// Dump renders the tree one node per line, indented by depth.
func (n *Node) Dump() string {
	var b strings.Builder
	n.dump(&b, 0)
	return b.String()
}

func (n *Node) dump(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.Kind.String())
	if len(n.Children) == 0 {
		b.WriteString(" " + strconv.Quote(n.Text))
	}
	b.WriteByte('\n')
	for _, c := range n.Children {
		c.dump(b, depth+1)
	}
}

// ParseError reports where the input stopped matching the grammar.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("abc: line %d col %d: %s", e.Line, e.Col, e.Msg)
}
