package compiler

import (
	"strings"

	"github.com/cbegin/abckaraoke/internal/abc"
	"github.com/cbegin/abckaraoke/internal/music"
)

// voiceBody is the flat element list and lyric token stream of one voice.
type voiceBody struct {
	name     string
	elements []*abc.Node
	lyrics   []string
}

// groupByVoice splits body lines by V: declarations. Lines before the first
// declaration belong to the default voice.
func groupByVoice(body *abc.Node) []*voiceBody {
	var order []*voiceBody
	byName := make(map[string]*voiceBody)
	current := music.DefaultVoice
	if body == nil {
		return nil
	}
	for _, line := range body.Children {
		if line.Kind != abc.KindLine || len(line.Children) == 0 {
			continue
		}
		if first := line.Children[0]; first.Kind == abc.KindFieldVoice {
			current = strings.TrimSpace(first.Text[2:])
			continue
		}
		v, ok := byName[current]
		if !ok {
			v = &voiceBody{name: current}
			byName[current] = v
			order = append(order, v)
		}
		for _, c := range line.Children {
			switch c.Kind {
			case abc.KindLyric:
				for _, tok := range c.Children {
					v.lyrics = append(v.lyrics, tok.Text)
				}
			case abc.KindMeasure:
				v.elements = append(v.elements, c.Children...)
			default:
				v.elements = append(v.elements, c)
			}
		}
	}
	return order
}

// assembleVoice compiles one voice into Component([notes]) or, when the
// voice has lyrics, Component([lyrics, notes]).
func assembleVoice(v *voiceBody, header music.Header) (music.Music, error) {
	keys, err := resolveKey(header.Key)
	if err != nil {
		return music.Music{}, err
	}
	st := &compileState{header: header, keys: keys}
	compiled := make([]music.Music, len(v.elements))
	marks := make([]repeatMark, len(v.elements))
	for i, n := range v.elements {
		if compiled[i], err = compileNode(n, st); err != nil {
			return music.Music{}, err
		}
		marks[i] = markOf(n)
	}
	order := expandRepeats(marks)

	notes := zeroRest
	for _, idx := range order {
		if m := compiled[idx]; m.Duration() > 0 {
			notes = music.Concat(notes, m)
		}
	}
	if len(v.lyrics) == 0 {
		return music.Component([]music.Music{notes})
	}

	elems := make([]slotElement, len(v.elements))
	for i, n := range v.elements {
		elems[i] = slotElement{
			duration: compiled[i].Duration(),
			sung:     n.Kind == abc.KindNoteElement || n.Kind == abc.KindTupletElement,
		}
	}
	aligned := alignLyrics(v.lyrics, elems)
	slots := make([]string, len(order))
	durations := make([]float64, len(order))
	for i, idx := range order {
		slots[i] = aligned[idx]
		durations[i] = compiled[idx].Duration()
	}
	track, err := renderLyrics(slots, durations)
	if err != nil {
		return music.Music{}, err
	}
	lyrics := zeroRest
	for _, l := range track {
		lyrics = music.Concat(lyrics, l)
	}
	return music.Component([]music.Music{lyrics, notes})
}
