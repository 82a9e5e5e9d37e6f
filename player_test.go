package karaoke

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cbegin/abckaraoke/internal/music"
)

type countingOutput struct {
	mu       sync.Mutex
	ons      []int
	programs []int
	offs     int
}

func (o *countingOutput) NoteOn(note, velocity, program int) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ons = append(o.ons, note)
	o.programs = append(o.programs, program)
	return len(o.ons) - 1
}

func (o *countingOutput) NoteOff(int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.offs++
}

func (o *countingOutput) counts() (int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.ons), o.offs
}

func TestNewPlayerValidatesOptions(t *testing.T) {
	if _, err := NewPlayer(WithTicksPerBeat(0)); err == nil {
		t.Fatalf("expected error for zero ticks per beat")
	}
	if _, err := NewPlayer(WithVelocity(200)); err == nil {
		t.Fatalf("expected error for velocity out of range")
	}
	if _, err := NewPlayer(WithTempo(-1)); err == nil {
		t.Fatalf("expected error for negative tempo")
	}
}

func TestPlayerPlaysToCompletion(t *testing.T) {
	out := &countingOutput{}
	pl, err := NewPlayer(WithOutput(out), WithTicksPerBeat(8), WithTranspose(12))
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	events := pl.Watch()
	var lyrics bytes.Buffer
	if err := pl.PlayABC("X:1\nT:t\nL:1/4\nQ:1/4=3000\nK:C\nC D |\nw: la di\n", "default", &lyrics); err != nil {
		t.Fatalf("play: %v", err)
	}
	waitOrFail(t, pl)
	if pl.Playing() {
		t.Fatalf("expected playback to be over")
	}

	ons, offs := out.counts()
	if ons != 2 || offs != 2 {
		t.Fatalf("expected 2 note-ons and 2 note-offs, got %d/%d", ons, offs)
	}
	if out.ons[0] != 72 || out.ons[1] != 74 {
		t.Fatalf("transpose not applied: %v", out.ons)
	}
	if n := strings.Count(lyrics.String(), "\n"); n != 2 {
		t.Fatalf("expected 2 lyric lines, got %q", lyrics.String())
	}
	if !sawEvent(events, EventPlaybackEnded) {
		t.Fatalf("expected playback-ended event")
	}
}

func TestPlayerInstrumentOverride(t *testing.T) {
	out := &countingOutput{}
	pl, err := NewPlayer(WithOutput(out), WithTicksPerBeat(8), WithInstrument(music.Flute))
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	if err := pl.PlayABC("X:1\nT:t\nL:1/4\nQ:1/4=3000\nK:C\nC [EG] |\n", "", nil); err != nil {
		t.Fatalf("play: %v", err)
	}
	waitOrFail(t, pl)
	out.mu.Lock()
	defer out.mu.Unlock()
	if len(out.programs) != 3 {
		t.Fatalf("expected 3 notes, got %v", out.programs)
	}
	for _, p := range out.programs {
		if p != music.Flute.Program() {
			t.Fatalf("expected program %d, got %v", music.Flute.Program(), out.programs)
		}
	}
}

func TestPlayerStopReleasesNotes(t *testing.T) {
	out := &countingOutput{}
	pl, err := NewPlayer(WithOutput(out), WithTempo(30))
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	events := pl.Watch()
	if err := pl.PlayABC("X:1\nT:t\nL:1/4\nK:C\nC8 |\n", "", nil); err != nil {
		t.Fatalf("play: %v", err)
	}
	if !pl.Playing() {
		t.Fatalf("expected playback in progress")
	}
	time.Sleep(20 * time.Millisecond)
	if err := pl.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	waitOrFail(t, pl)
	ons, offs := out.counts()
	if ons != offs {
		t.Fatalf("stop left notes sounding: %d on, %d off", ons, offs)
	}
	if !sawEvent(events, EventCancelled) {
		t.Fatalf("expected cancelled event")
	}
	if err := pl.Stop(); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}

func TestPlayerUnknownVoice(t *testing.T) {
	pl, err := NewPlayer()
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	if err := pl.PlayABC("X:1\nT:t\nK:C\nC |\n", "tenor", nil); err == nil {
		t.Fatalf("expected unknown voice error")
	}
	pl.Wait()
}

func waitOrFail(t *testing.T, pl *Player) {
	t.Helper()
	finished := make(chan struct{})
	go func() {
		pl.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatalf("playback did not finish")
	}
}

func sawEvent(ch <-chan PlaybackEvent, kind EventKind) bool {
	for {
		select {
		case ev := <-ch:
			if ev.Kind == kind {
				return true
			}
		default:
			return false
		}
	}
}

func TestPlayerSoundsEveryVoice(t *testing.T) {
	out := &countingOutput{}
	pl, err := NewPlayer(WithOutput(out), WithTempo(6000))
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	var lyrics bytes.Buffer
	src := "X:1\nT:t\nL:1/4\nV:1\nV:2\nK:C\nV:1\nC D |\nw: la di\nV:2\nE F |\nw: do re\n"
	if err := pl.PlayABC(src, "2", &lyrics); err != nil {
		t.Fatalf("play: %v", err)
	}
	waitOrFail(t, pl)
	if ons, _ := out.counts(); ons != 4 {
		t.Fatalf("expected notes from both voices, got %d", ons)
	}
	if strings.Contains(lyrics.String(), "la") || !strings.Contains(lyrics.String(), "<mark>do</mark>") {
		t.Fatalf("expected only voice 2 lyrics, got %q", lyrics.String())
	}
}
