package compiler

import "github.com/cbegin/abckaraoke/internal/abc"

// repeatMark classifies an element for repeat expansion.
type repeatMark int

const (
	markNone repeatMark = iota
	markBarline
	markMajorBarline
	markStartRepeat
	markFinishRepeat
	markFirstEnding
	markSecondEnding
)

func markOf(n *abc.Node) repeatMark {
	switch n.Kind {
	case abc.KindBarline:
		if n.Child(abc.KindMajorBarline) != nil {
			return markMajorBarline
		}
		return markBarline
	case abc.KindStartRepeat:
		return markStartRepeat
	case abc.KindFinishRepeat:
		return markFinishRepeat
	case abc.KindFirstRepeat:
		return markFirstEnding
	case abc.KindSecondRepeat:
		return markSecondEnding
	default:
		return markNone
	}
}

// expandRepeats returns element indices in performance order. A finish
// repeat replays the elements after the section opener once; with a first
// ending open, the replay stops where the first ending begins so the second
// pass skips it. The voice start opens the first section.
func expandRepeats(marks []repeatMark) []int {
	out := make([]int, 0, len(marks))
	sectionStart := 0
	firstEnding := -1
	completed := false
	for i, m := range marks {
		out = append(out, i)
		switch m {
		case markStartRepeat:
			sectionStart = i
			completed = false
		case markFinishRepeat:
			completed = true
			if firstEnding < 0 {
				for j := sectionStart + 1; j < i; j++ {
					out = append(out, j)
				}
			} else {
				for j := sectionStart; j < firstEnding; j++ {
					out = append(out, j)
				}
				firstEnding = -1
			}
		case markFirstEnding:
			firstEnding = i
		case markMajorBarline:
			if completed {
				sectionStart = i
			}
		}
	}
	return out
}
