package compiler

import "github.com/cbegin/abckaraoke/internal/music"

const (
	slotBlank  = " "
	slotExtend = "_"
	slotBreak  = "\n"
)

// slotElement is what the aligner needs to know about one body element.
type slotElement struct {
	duration float64
	sung     bool
}

// alignLyrics assigns one lyric slot to every element. Zero-length
// elements such as barlines get a blank before the next token is placed.
func alignLyrics(tokens []string, elems []slotElement) []string {
	n := len(elems)
	slots := make([]string, 0, n)
	push := func(s string) {
		if len(slots) < n {
			slots = append(slots, s)
		}
	}
	for i := 0; i < len(tokens); i++ {
		if len(slots) == n {
			return slots
		}
		if elems[len(slots)].duration == 0 {
			push(slotBlank)
		}
		switch tok := tokens[i]; tok {
		case " ":
		case "-":
			if i == len(tokens)-1 {
				push(slotBlank)
			}
		case "_":
			push(slotExtend)
		case "*":
			push(slotBlank)
		case "~":
			next := skipBlanks(tokens, i+1)
			if next < len(tokens) && isWord(tokens[next]) {
				i = next
				if target := glueTarget(slots); target >= 0 {
					slots[target] += " " + tokens[i]
				} else {
					push(tokens[i])
				}
			}
		case `\-`:
			next := skipBlanks(tokens, i+1)
			if next < len(tokens) && isWord(tokens[next]) {
				i = next
				if target := glueTarget(slots); target >= 0 {
					slots[target] += "-" + tokens[i]
				} else {
					push(tokens[i])
				}
			}
		case "|":
			for len(slots) > 0 && len(slots) < n && elems[len(slots)-1].sung {
				push(slotBlank)
			}
		case "\n":
			push(slotBreak)
		default:
			push(tok)
		}
	}
	for len(slots) < n {
		slots = append(slots, slotBlank)
	}
	return slots
}

// glueTarget is the most recent slot holding a syllable, or -1 when the
// current line has none yet.
func glueTarget(slots []string) int {
	for i := len(slots) - 1; i >= 0; i-- {
		switch slots[i] {
		case slotBreak:
			return -1
		case slotBlank, slotExtend:
		default:
			return i
		}
	}
	return -1
}

func skipBlanks(tokens []string, i int) int {
	for i < len(tokens) && tokens[i] == " " {
		i++
	}
	return i
}

func isWord(tok string) bool {
	switch tok {
	case " ", "-", "_", "*", "~", `\-`, "|", "\n":
		return false
	}
	return true
}

// renderLyrics builds the lyric track for aligned slots. Each sung
// syllable shows its whole line with the syllable wrapped in <mark> and
// lasts for its own element plus any extension slots that follow it. The
// final slot always belongs to the trailing end-of-line element and is
// not rendered.
func renderLyrics(slots []string, durations []float64) ([]music.Music, error) {
	var out []music.Music
	for m := 0; m < len(slots)-1; m++ {
		dur := durations[m]
		for k := m + 1; k < len(slots) && slots[k] == slotExtend; k++ {
			dur += durations[k]
		}
		var (
			l   music.Music
			err error
		)
		switch syl := slots[m]; syl {
		case slotBlank:
			l, err = music.Lyric(" ", dur)
		case slotExtend, slotBreak:
			l, err = music.Lyric(" ", 0)
		default:
			l, err = music.Lyric(lineContextLeft(slots, m)+" <mark>"+syl+"</mark> "+lineContextRight(slots, m), dur)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func lineContextLeft(slots []string, m int) string {
	left := ""
	for l := m - 1; l >= 0 && slots[l] != slotBreak; l-- {
		left = displaySlot(slots[l]) + " " + left
	}
	return left
}

func lineContextRight(slots []string, m int) string {
	right := ""
	for r := m + 1; r < len(slots) && slots[r] != slotBreak; r++ {
		right += " " + displaySlot(slots[r])
	}
	return right
}

func displaySlot(s string) string {
	if s == slotExtend {
		return " "
	}
	return s
}
