package main

import (
	"bytes"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/cbegin/abckaraoke/internal/lyricterm"
)

const lyricHistory = 6

// lyricFeed is the lyric sink handed to the player. The sequencer writes
// to it from its own goroutine; Update drains lines on the UI goroutine.
type lyricFeed struct {
	mu      sync.Mutex
	pending []byte
	lines   chan string
}

func newLyricFeed() *lyricFeed {
	return &lyricFeed{lines: make(chan string, 64)}
}

func (f *lyricFeed) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, p...)
	for {
		i := bytes.IndexByte(f.pending, '\n')
		if i < 0 {
			return len(p), nil
		}
		line := string(f.pending[:i])
		f.pending = f.pending[i+1:]
		select {
		case f.lines <- line:
		default:
		}
	}
}

func (g *game) pollLyrics() {
	for {
		select {
		case line := <-g.feed.lines:
			if g.current != "" {
				g.history = append(g.history, g.current)
				if len(g.history) > lyricHistory {
					g.history = g.history[len(g.history)-lyricHistory:]
				}
			}
			g.current = line
		default:
			return
		}
	}
}

func (g *game) clearLyrics() {
	for {
		select {
		case <-g.feed.lines:
		default:
			g.history = nil
			g.current = ""
			return
		}
	}
}

func (g *game) drawLyrics(screen *ebiten.Image, rect image.Rectangle) {
	maxChars := max(8, (rect.Dx()-16)/charW)
	x := rect.Min.X + 8
	y := rect.Min.Y + 8
	if g.piece != nil {
		h := g.piece.Header()
		g.drawText(screen, shortenEnd(h.Title+" / "+h.Composer, maxChars), x, y)
	}
	y += lineH * 2

	for _, line := range g.history {
		before, marked, after, _ := lyricterm.SplitMarked(line)
		g.drawTextScaled(screen, shortenEnd(before+marked+after, maxChars), x, y, dimTextScale)
		y += lineH
	}
	if g.current == "" {
		if g.piece != nil && g.voice != "" && g.piece.LyricsFor(g.voice) == "" {
			g.drawText(screen, "This voice has no lyrics", x, y)
		}
		return
	}
	before, marked, after, ok := lyricterm.SplitMarked(g.current)
	if !ok {
		g.drawText(screen, shortenEnd(g.current, maxChars), x, y)
		return
	}
	before, marked, after = fitAroundMark(before, marked, after, maxChars)
	g.drawText(screen, before, x, y)
	mx := x + len([]rune(before))*charW
	markRect := image.Rect(mx-2, y-2, mx+len([]rune(marked))*charW+2, y+lineH)
	fillRect(screen, markRect, markColor)
	g.drawText(screen, marked, mx, y)
	g.drawText(screen, after, markRect.Max.X+2, y)
}

// fitAroundMark trims the context on both sides so the marked syllable stays
// visible in maxChars columns.
func fitAroundMark(before, marked, after string, maxChars int) (string, string, string) {
	b, m, a := []rune(before), []rune(marked), []rune(after)
	for len(b)+len(m)+len(a) > maxChars && len(b) > 0 {
		b = b[1:]
	}
	if room := maxChars - len(b) - len(m); room < len(a) {
		a = a[:max(0, room)]
	}
	return string(b), string(m), string(a)
}
