package sequencer

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/cbegin/abckaraoke/internal/music"
)

// NoteOutput sounds notes. NoteOn returns an id that is later passed to NoteOff.
type NoteOutput interface {
	NoteOn(note int, velocity int, program int) int
	NoteOff(id int)
}

type discardOutput struct{}

func (discardOutput) NoteOn(note, velocity, program int) int { return note }
func (discardOutput) NoteOff(int)                            {}

// Discard accepts every note and makes no sound.
var Discard NoteOutput = discardOutput{}

// EventKind identifies sequencer lifecycle events.
type EventKind int

const (
	EventNoteOn EventKind = iota
	EventCallback
	EventPlaybackEnded
	EventCancelled
)

type Options struct {
	TicksPerBeat int     // clock resolution, default 64
	Velocity     int     // note-on velocity, default 100
	Transpose    int     // semitones added to every note
	BeatUnit     float64 // length of one tempo beat in AddNote units, default 1
	OnEvent      func(EventKind)
	Logger       *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.TicksPerBeat <= 0 {
		o.TicksPerBeat = 64
	}
	if o.Velocity <= 0 || o.Velocity > 127 {
		o.Velocity = 100
	}
	if o.BeatUnit <= 0 {
		o.BeatUnit = 1
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Sequencer collects notes and callbacks against a beat clock and plays
// them back in order. It implements music.Scheduler. A Sequencer is driven
// by a single goroutine; callbacks run on that goroutine and may schedule
// more work.
type Sequencer struct {
	output       NoteOutput
	bpm          float64
	ticksPerBeat int
	beatUnit     float64
	velocity     int
	transpose    int
	onEvent      func(EventKind)
	log          *slog.Logger

	notes    []scheduledNote
	events   []scheduledEvent
	noteOffs []noteOff
	noteIdx  int
	eventIdx int
	dirty    bool
	tickInt  int

	playbackEndedFired bool
	done               chan struct{}
}

type scheduledNote struct {
	tick    int
	endTick int
	note    int
	program int
}

type scheduledEvent struct {
	tick int
	beat float64
	fn   func(float64)
}

type noteOff struct {
	tick  int
	voice int
	fired bool
}

var _ music.Scheduler = (*Sequencer)(nil)

func New(output NoteOutput, bpm float64, opts Options) *Sequencer {
	opts = opts.withDefaults()
	if output == nil {
		output = Discard
	}
	return &Sequencer{
		output:       output,
		bpm:          bpm,
		ticksPerBeat: opts.TicksPerBeat,
		beatUnit:     opts.BeatUnit,
		velocity:     opts.Velocity,
		transpose:    opts.Transpose,
		onEvent:      opts.OnEvent,
		log:          opts.Logger,
		done:         make(chan struct{}),
	}
}

func (s *Sequencer) beatToTick(beat float64) int {
	return int(math.Round(beat / s.beatUnit * float64(s.ticksPerBeat)))
}

// AddNote schedules a note starting at startBeat and lasting numBeats.
func (s *Sequencer) AddNote(instrument music.Instrument, pitch music.Pitch, startBeat, numBeats float64) {
	start := s.beatToTick(startBeat)
	s.notes = append(s.notes, scheduledNote{
		tick:    start,
		endTick: max(start, s.beatToTick(startBeat+numBeats)),
		note:    pitch.MIDINote() + s.transpose,
		program: instrument.Program(),
	})
	s.dirty = true
}

// AddEvent schedules fn to run when the clock reaches beat.
func (s *Sequencer) AddEvent(beat float64, fn func(beat float64)) {
	s.events = append(s.events, scheduledEvent{tick: s.beatToTick(beat), beat: beat, fn: fn})
	s.dirty = true
}

// Tick returns the next tick to be dispatched.
func (s *Sequencer) Tick() int { return s.tickInt }

// TickDuration is the wall-clock length of one tick at the sequencer tempo.
func (s *Sequencer) TickDuration() time.Duration {
	if s.bpm <= 0 {
		return 0
	}
	return time.Duration(float64(time.Minute) / (s.bpm * float64(s.ticksPerBeat)))
}

// Done is closed once every scheduled note has ended and every callback has run.
func (s *Sequencer) Done() <-chan struct{} { return s.done }

func (s *Sequencer) Ended() bool { return s.playbackEndedFired }

// Advance dispatches the next n ticks without waiting.
func (s *Sequencer) Advance(n int) {
	for i := 0; i < n && !s.playbackEndedFired; i++ {
		s.dispatchTick(s.tickInt)
		s.tickInt++
	}
}

// Drain runs everything still pending as fast as possible, skipping idle ticks.
func (s *Sequencer) Drain() {
	for !s.playbackEndedFired {
		s.sortPending()
		if next, ok := s.nextDueTick(); ok && next > s.tickInt {
			s.tickInt = next
		}
		s.dispatchTick(s.tickInt)
		s.tickInt++
	}
}

// Play runs the clock in real time until playback ends or ctx is done.
// On cancellation every sounding note is released and ctx.Err() is
// returned; work already dispatched is not undone.
func (s *Sequencer) Play(ctx context.Context) error {
	interval := s.TickDuration()
	if interval <= 0 {
		return errors.New("sequencer: tempo must be positive")
	}
	s.log.Debug("sequencer playing", "bpm", s.bpm, "ticks_per_beat", s.ticksPerBeat, "notes", len(s.notes), "events", len(s.events))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	start := time.Now()
	origin := s.tickInt
	s.Advance(1)
	for !s.playbackEndedFired {
		select {
		case <-ctx.Done():
			s.silence()
			s.emit(EventCancelled)
			return ctx.Err()
		case now := <-ticker.C:
			target := origin + int(now.Sub(start)/interval)
			if target >= s.tickInt {
				s.Advance(target - s.tickInt + 1)
			}
		}
	}
	return nil
}

func (s *Sequencer) emit(kind EventKind) {
	if s.onEvent != nil {
		s.onEvent(kind)
	}
}

func (s *Sequencer) sortPending() {
	if !s.dirty {
		return
	}
	pendingNotes := s.notes[s.noteIdx:]
	sort.SliceStable(pendingNotes, func(i, j int) bool { return pendingNotes[i].tick < pendingNotes[j].tick })
	pendingEvents := s.events[s.eventIdx:]
	sort.SliceStable(pendingEvents, func(i, j int) bool { return pendingEvents[i].tick < pendingEvents[j].tick })
	s.dirty = false
}

func (s *Sequencer) nextDueTick() (int, bool) {
	next, ok := 0, false
	consider := func(t int) {
		if !ok || t < next {
			next, ok = t, true
		}
	}
	if s.noteIdx < len(s.notes) {
		consider(s.notes[s.noteIdx].tick)
	}
	if s.eventIdx < len(s.events) {
		consider(s.events[s.eventIdx].tick)
	}
	for _, off := range s.noteOffs {
		if !off.fired {
			consider(off.tick)
		}
	}
	return next, ok
}

func (s *Sequencer) dispatchTick(tick int) {
	s.sortPending()
	s.fireNoteOffs(tick)
	for s.noteIdx < len(s.notes) && s.notes[s.noteIdx].tick <= tick {
		n := s.notes[s.noteIdx]
		s.noteIdx++
		voice := s.output.NoteOn(n.note, s.velocity, n.program)
		s.noteOffs = append(s.noteOffs, noteOff{tick: n.endTick, voice: voice})
		s.emit(EventNoteOn)
	}
	for s.eventIdx < len(s.events) && s.events[s.eventIdx].tick <= tick {
		ev := s.events[s.eventIdx]
		s.eventIdx++
		ev.fn(ev.beat)
		s.emit(EventCallback)
		s.sortPending()
	}
	s.fireNoteOffs(tick)
	s.compactNoteOffs()
	if len(s.noteOffs) == 0 && s.scoreExhausted() && !s.playbackEndedFired {
		s.playbackEndedFired = true
		s.log.Debug("sequencer finished", "tick", tick)
		s.emit(EventPlaybackEnded)
		close(s.done)
	}
}

func (s *Sequencer) fireNoteOffs(tick int) {
	for i := range s.noteOffs {
		if !s.noteOffs[i].fired && s.noteOffs[i].tick <= tick {
			s.output.NoteOff(s.noteOffs[i].voice)
			s.noteOffs[i].fired = true
		}
	}
}

func (s *Sequencer) silence() {
	for i := range s.noteOffs {
		if !s.noteOffs[i].fired {
			s.output.NoteOff(s.noteOffs[i].voice)
			s.noteOffs[i].fired = true
		}
	}
	s.compactNoteOffs()
}

func (s *Sequencer) scoreExhausted() bool {
	return s.noteIdx >= len(s.notes) && s.eventIdx >= len(s.events)
}

func (s *Sequencer) compactNoteOffs() {
	if len(s.noteOffs) == 0 {
		return
	}
	j := 0
	for i := range s.noteOffs {
		if !s.noteOffs[i].fired {
			s.noteOffs[j] = s.noteOffs[i]
			j++
		}
	}
	s.noteOffs = s.noteOffs[:j]
}
