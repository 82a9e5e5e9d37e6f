package music

import "strconv"

// Instrument is a General MIDI program number.
type Instrument int

const (
	Piano          Instrument = 0
	BrightPiano    Instrument = 1
	Harpsichord    Instrument = 6
	MusicBox       Instrument = 10
	Marimba        Instrument = 12
	ChurchOrgan    Instrument = 19
	NylonGuitar    Instrument = 24
	AcousticBass   Instrument = 32
	Violin         Instrument = 40
	StringEnsemble Instrument = 48
	ChoirAahs      Instrument = 52
	Trumpet        Instrument = 56
	Flute          Instrument = 73
)

var instrumentNames = map[Instrument]string{
	Piano:          "piano",
	BrightPiano:    "bright_piano",
	Harpsichord:    "harpsichord",
	MusicBox:       "music_box",
	Marimba:        "marimba",
	ChurchOrgan:    "church_organ",
	NylonGuitar:    "nylon_guitar",
	AcousticBass:   "acoustic_bass",
	Violin:         "violin",
	StringEnsemble: "strings",
	ChoirAahs:      "choir",
	Trumpet:        "trumpet",
	Flute:          "flute",
}

// Program returns the MIDI program number clamped to 0..127.
func (i Instrument) Program() int {
	if i < 0 {
		return 0
	}
	if i > 127 {
		return 127
	}
	return int(i)
}

func (i Instrument) String() string {
	if name, ok := instrumentNames[i]; ok {
		return name
	}
	return "program_" + strconv.Itoa(int(i))
}

// ParseInstrument resolves a name from String() or a bare program number.
func ParseInstrument(s string) (Instrument, bool) {
	for inst, name := range instrumentNames {
		if name == s {
			return inst, true
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 127 {
		return 0, false
	}
	return Instrument(n), true
}
