// Package lyricterm prints karaoke lyric lines to a terminal, highlighting
// the syllable being sung.
package lyricterm

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	DefaultMarkStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	DefaultLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Writer is an io.Writer lyric sink. Each complete line written to it is
// re-rendered with the <mark> span styled.
type Writer struct {
	mu      sync.Mutex
	out     io.Writer
	mark    lipgloss.Style
	line    lipgloss.Style
	pending []byte
}

func New(out io.Writer) *Writer {
	return NewWithStyles(out, DefaultMarkStyle, DefaultLineStyle)
}

func NewWithStyles(out io.Writer, mark, line lipgloss.Style) *Writer {
	return &Writer{out: out, mark: mark, line: line}
}

func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, p...)
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		text := string(w.pending[:i])
		w.pending = w.pending[i+1:]
		if _, err := io.WriteString(w.out, w.render(text)+"\n"); err != nil {
			return len(p), err
		}
	}
	return len(p), nil
}

func (w *Writer) render(text string) string {
	before, marked, after, ok := SplitMarked(text)
	if !ok {
		return w.line.Render(text)
	}
	return w.line.Render(before) + w.mark.Render(marked) + w.line.Render(after)
}

// SplitMarked splits a lyric line around its <mark>...</mark> span.
func SplitMarked(text string) (before, marked, after string, ok bool) {
	before, rest, found := strings.Cut(text, "<mark>")
	if !found {
		return text, "", "", false
	}
	marked, after, found = strings.Cut(rest, "</mark>")
	if !found {
		return text, "", "", false
	}
	return before, marked, after, true
}
