package abc

import (
	"fmt"
	"strings"
)

var fieldKinds = map[byte]Kind{
	'X': KindFieldNumber,
	'T': KindFieldTitle,
	'C': KindFieldComposer,
	'L': KindFieldLength,
	'M': KindFieldMeter,
	'Q': KindFieldTempo,
	'V': KindFieldVoice,
	'K': KindFieldKey,
}

type Parser struct{}

func NewParser() *Parser { return &Parser{} }

// Parse is shorthand for NewParser().Parse(src).
func Parse(src string) (*Node, error) {
	return NewParser().Parse(src)
}

// Parse reads a single tune. The header runs from the first line through
// the K: field; everything after it is body.
func (p *Parser) Parse(src string) (*Node, error) {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	header := &Node{Kind: KindHeader, Line: 1, Col: 1}
	body := &Node{Kind: KindBody}
	i := 0
	for ; i < len(lines); i++ {
		text := strings.TrimRight(lines[i], " \t\r")
		trimmed := strings.TrimLeft(text, " \t")
		if trimmed == "" {
			continue
		}
		if trimmed[0] == '%' {
			header.Children = append(header.Children, &Node{Kind: KindComment, Text: trimmed, Line: i + 1, Col: 1})
			continue
		}
		if !isFieldLine(trimmed) {
			break
		}
		field := fieldNode(trimmed, i+1)
		header.Children = append(header.Children, field)
		if field.Kind == KindFieldKey {
			i++
			break
		}
	}
	body.Line = i + 1
	body.Col = 1

	var lastMusic *Node
	for ; i < len(lines); i++ {
		lineNo := i + 1
		text := strings.TrimRight(lines[i], " \t\r")
		trimmed := strings.TrimLeft(text, " \t")
		switch {
		case trimmed == "":
			continue
		case trimmed[0] == '%':
			body.Children = append(body.Children, &Node{Kind: KindComment, Text: trimmed, Line: lineNo, Col: 1})
		case strings.HasPrefix(trimmed, "w:"):
			if lastMusic == nil || lastMusic.Child(KindLyric) != nil {
				return nil, &ParseError{Line: lineNo, Col: 1, Msg: "lyric line does not follow a music line"}
			}
			lastMusic.Children = append(lastMusic.Children, parseLyric(trimmed[2:], lineNo, 3))
		case isFieldLine(trimmed):
			field := fieldNode(trimmed, lineNo)
			if field.Kind == KindFieldVoice {
				body.Children = append(body.Children, &Node{Kind: KindLine, Text: trimmed, Line: lineNo, Col: 1, Children: []*Node{field}})
			} else {
				field.Kind = KindFieldOther
				body.Children = append(body.Children, field)
			}
			lastMusic = nil
		default:
			line, err := parseMusicLine(text, lineNo)
			if err != nil {
				return nil, err
			}
			body.Children = append(body.Children, line)
			lastMusic = line
		}
	}
	return &Node{Kind: KindABC, Text: src, Line: 1, Col: 1, Children: []*Node{header, body}}, nil
}

// isFieldLine matches "<letter>:" while leaving music such as "A:|" alone.
func isFieldLine(s string) bool {
	if len(s) < 2 || s[1] != ':' || !isLetter(s[0]) {
		return false
	}
	if len(s) > 2 && (s[2] == '|' || s[2] == ':') {
		return false
	}
	return true
}

func fieldNode(text string, line int) *Node {
	kind, ok := fieldKinds[text[0]]
	if !ok {
		kind = KindFieldOther
	}
	return &Node{Kind: kind, Text: strings.TrimSpace(text), Line: line, Col: 1}
}

type lineScanner struct {
	src  string
	pos  int
	line int
}

func (s *lineScanner) errorf(at int, format string, args ...any) error {
	return &ParseError{Line: s.line, Col: at + 1, Msg: fmt.Sprintf(format, args...)}
}

func (s *lineScanner) peek(off int) byte {
	if s.pos+off < len(s.src) {
		return s.src[s.pos+off]
	}
	return 0
}

func (s *lineScanner) node(kind Kind, from int, children ...*Node) *Node {
	return &Node{Kind: kind, Text: s.src[from:s.pos], Line: s.line, Col: from + 1, Children: children}
}

func (s *lineScanner) skipSpace() {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

func parseMusicLine(text string, lineNo int) (*Node, error) {
	s := &lineScanner{src: text, line: lineNo}
	line := &Node{Kind: KindLine, Text: text, Line: lineNo, Col: 1}
	for {
		s.skipSpace()
		if s.pos >= len(s.src) {
			line.Children = append(line.Children, &Node{Kind: KindEndOfLine, Text: "\n", Line: lineNo, Col: s.pos + 1})
			return line, nil
		}
		if s.src[s.pos] == '%' {
			line.Children = append(line.Children, &Node{Kind: KindEndOfLine, Text: s.src[s.pos:] + "\n", Line: lineNo, Col: s.pos + 1})
			return line, nil
		}
		elems, err := s.element()
		if err != nil {
			return nil, err
		}
		line.Children = append(line.Children, elems...)
	}
}

func (s *lineScanner) element() ([]*Node, error) {
	start := s.pos
	ch := s.src[s.pos]
	switch {
	case ch == '|':
		return s.barline()
	case ch == ':':
		switch s.peek(1) {
		case ':':
			s.pos++
			finish := s.node(KindFinishRepeat, start)
			s.pos++
			return []*Node{finish, s.node(KindStartRepeat, start+1)}, nil
		case '|':
		default:
			return nil, s.errorf(start, "unexpected ':'")
		}
		s.pos += 2
		finish := s.node(KindFinishRepeat, start)
		switch s.peek(0) {
		case ':':
			s.pos++
			return []*Node{finish, s.node(KindStartRepeat, s.pos-1)}, nil
		case ']', '|':
			s.pos++
			finish.Text = s.src[start:s.pos]
		case '1', '2':
			return []*Node{finish, s.ending(s.pos)}, nil
		}
		return []*Node{finish}, nil
	case ch == '[':
		switch next := s.peek(1); {
		case next == '|':
			s.pos += 2
			return []*Node{s.node(KindBarline, start, s.node(KindMajorBarline, start))}, nil
		case next == '1' || next == '2':
			s.pos++
			return []*Node{s.ending(start)}, nil
		}
		chord, err := s.chord()
		if err != nil {
			return nil, err
		}
		return []*Node{s.node(KindNoteElement, start, chord)}, nil
	case ch == '(':
		tup, err := s.tuplet()
		if err != nil {
			return nil, err
		}
		return []*Node{tup}, nil
	case ch == 'z' || ch == 'Z':
		s.pos++
		length := s.noteLength()
		return []*Node{s.node(KindRestElement, start, length)}, nil
	case isNoteStart(ch):
		note, err := s.note()
		if err != nil {
			return nil, err
		}
		return []*Node{s.node(KindNoteElement, start, note)}, nil
	}
	return nil, s.errorf(start, "unexpected %q", ch)
}

func (s *lineScanner) barline() ([]*Node, error) {
	start := s.pos
	s.pos++
	switch s.peek(0) {
	case ':':
		s.pos++
		return []*Node{s.node(KindStartRepeat, start)}, nil
	case '|', ']':
		s.pos++
		return []*Node{s.node(KindBarline, start, s.node(KindMajorBarline, start))}, nil
	case '1', '2':
		bar := s.node(KindBarline, start, s.node(KindNormalBarline, start))
		return []*Node{bar, s.ending(s.pos)}, nil
	}
	return []*Node{s.node(KindBarline, start, s.node(KindNormalBarline, start))}, nil
}

// ending consumes the digit of an alternate-ending marker whose prefix
// started at from.
func (s *lineScanner) ending(from int) *Node {
	kind := KindFirstRepeat
	if s.src[s.pos] == '2' {
		kind = KindSecondRepeat
	}
	s.pos++
	return s.node(kind, from)
}

func (s *lineScanner) chord() (*Node, error) {
	start := s.pos
	s.pos++
	var notes []*Node
	for {
		s.skipSpace()
		if s.pos >= len(s.src) {
			return nil, s.errorf(start, "unterminated chord")
		}
		if s.src[s.pos] == ']' {
			s.pos++
			break
		}
		if !isNoteStart(s.src[s.pos]) {
			return nil, s.errorf(s.pos, "chord may only contain notes, got %q", s.src[s.pos])
		}
		note, err := s.note()
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if len(notes) == 0 {
		return nil, s.errorf(start, "empty chord")
	}
	return s.node(KindChord, start, notes...), nil
}

func (s *lineScanner) tuplet() (*Node, error) {
	start := s.pos
	s.pos++
	n := int(s.peek(0) - '0')
	if n < 2 || n > 4 {
		return nil, s.errorf(start, "tuplet size must be 2, 3 or 4")
	}
	s.pos++
	children := []*Node{s.node(KindTupletSpec, start)}
	for range n {
		s.skipSpace()
		if s.pos >= len(s.src) {
			return nil, s.errorf(start, "tuplet needs %d notes", n)
		}
		from := s.pos
		var (
			inner *Node
			err   error
		)
		switch ch := s.src[s.pos]; {
		case ch == '[' && s.peek(1) != '|' && s.peek(1) != '1' && s.peek(1) != '2':
			inner, err = s.chord()
		case isNoteStart(ch):
			inner, err = s.note()
		default:
			return nil, s.errorf(from, "tuplet needs %d notes", n)
		}
		if err != nil {
			return nil, err
		}
		children = append(children, s.node(KindNoteElement, from, inner))
	}
	return s.node(KindTupletElement, start, children...), nil
}

func (s *lineScanner) note() (*Node, error) {
	start := s.pos
	var pitchParts []*Node
	if acc := s.accidental(); acc != nil {
		pitchParts = append(pitchParts, acc)
	}
	if s.pos >= len(s.src) || !isBaseNote(s.src[s.pos]) {
		return nil, s.errorf(s.pos, "expected a note letter")
	}
	s.pos++
	pitchParts = append(pitchParts, s.node(KindBaseNote, s.pos-1))
	from := s.pos
	for s.pos < len(s.src) && (s.src[s.pos] == '\'' || s.src[s.pos] == ',') {
		s.pos++
	}
	if s.pos > from {
		pitchParts = append(pitchParts, s.node(KindOctave, from))
	}
	pitch := s.node(KindPitch, start, pitchParts...)
	length := s.noteLength()
	return s.node(KindNote, start, pitch, length), nil
}

func (s *lineScanner) accidental() *Node {
	start := s.pos
	switch s.peek(0) {
	case '^', '_':
		s.pos++
		if s.peek(0) == s.src[start] {
			s.pos++
		}
	case '=':
		s.pos++
	default:
		return nil
	}
	return s.node(KindAccidental, start)
}

func (s *lineScanner) noteLength() *Node {
	start := s.pos
	for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
		s.pos++
	}
	if s.peek(0) == '/' {
		s.pos++
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.pos++
		}
	}
	return s.node(KindNoteLength, start)
}

// parseLyric tokenizes the text of a w: line. col is the column of text[0].
func parseLyric(text string, lineNo, col int) *Node {
	lyric := &Node{Kind: KindLyric, Text: text, Line: lineNo, Col: col}
	tok := func(t string, at int) {
		lyric.Children = append(lyric.Children, &Node{Kind: KindLyricalElement, Text: t, Line: lineNo, Col: col + at})
	}
	i := 0
	for i < len(text) {
		ch := text[i]
		switch {
		case isSpace(ch):
			j := i
			for j < len(text) && isSpace(text[j]) {
				j++
			}
			tok(" ", i)
			i = j
		case ch == '%':
			i = len(text)
		case ch == '\\' && i+1 < len(text) && text[i+1] == '-':
			tok(`\-`, i)
			i += 2
		case isLyricMark(ch):
			tok(string(ch), i)
			i++
		default:
			j := i
			for j < len(text) && !isSpace(text[j]) && !isLyricMark(text[j]) && text[j] != '%' &&
				!(text[j] == '\\' && j+1 < len(text) && text[j+1] == '-') {
				j++
			}
			tok(text[i:j], i)
			i = j
		}
	}
	lyric.Children = append(lyric.Children, &Node{Kind: KindNewline, Text: "\n", Line: lineNo, Col: col + len(text)})
	return lyric
}

func isLyricMark(c byte) bool {
	switch c {
	case '-', '_', '*', '~', '|':
		return true
	}
	return false
}

func isNoteStart(c byte) bool {
	return isBaseNote(c) || c == '^' || c == '_' || c == '='
}

func isBaseNote(c byte) bool {
	return (c >= 'A' && c <= 'G') || (c >= 'a' && c <= 'g')
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool { return c == ' ' || c == '\t' }
