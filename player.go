// Package karaoke compiles ABC tunes and plays them with synchronized lyrics.
package karaoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/cbegin/abckaraoke/internal/compiler"
	"github.com/cbegin/abckaraoke/internal/music"
	"github.com/cbegin/abckaraoke/internal/sequencer"
)

type EventKind = sequencer.EventKind

const (
	EventNoteOn        = sequencer.EventNoteOn
	EventLyric         = sequencer.EventCallback
	EventPlaybackEnded = sequencer.EventPlaybackEnded
	EventCancelled     = sequencer.EventCancelled
)

// PlaybackEvent carries sequencer events from Watch().
type PlaybackEvent struct {
	Kind EventKind
}

type PlayerOption func(*playerConfig)

type playerConfig struct {
	output       sequencer.NoteOutput
	ticksPerBeat int
	velocity     int
	transpose    int
	tempo        float64
	instrument   *music.Instrument
	logger       *slog.Logger
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{
		output:       sequencer.Discard,
		ticksPerBeat: 64,
		velocity:     100,
		logger:       slog.Default(),
	}
}

// WithOutput sends notes to out instead of discarding them.
func WithOutput(out sequencer.NoteOutput) PlayerOption {
	return func(cfg *playerConfig) {
		if out != nil {
			cfg.output = out
		}
	}
}

func WithTicksPerBeat(ticks int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.ticksPerBeat = ticks
	}
}

// WithTranspose shifts every note by semitones.
func WithTranspose(semitones int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.transpose = semitones
	}
}

func WithVelocity(velocity int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.velocity = velocity
	}
}

// WithTempo overrides the tune's Q: field. Zero keeps the tune tempo.
func WithTempo(bpm float64) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.tempo = bpm
	}
}

// WithInstrument plays every note on inst instead of the tune's instruments.
func WithInstrument(inst music.Instrument) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.instrument = &inst
	}
}

func WithLogger(l *slog.Logger) PlayerOption {
	return func(cfg *playerConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// Player plays one piece at a time in real time on a background goroutine.
type Player struct {
	mu        sync.Mutex
	cfg       playerConfig
	cancel    context.CancelFunc
	done      chan struct{}
	eventCh   chan PlaybackEvent
	eventChMu sync.Mutex
}

func NewPlayer(opts ...PlayerOption) (*Player, error) {
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.ticksPerBeat <= 0 {
		return nil, errors.New("ticks per beat must be positive")
	}
	if cfg.velocity < 1 || cfg.velocity > 127 {
		return nil, fmt.Errorf("velocity %d out of range 1..127", cfg.velocity)
	}
	if cfg.tempo < 0 {
		return nil, errors.New("tempo must not be negative")
	}
	return &Player{cfg: cfg}, nil
}

// Compile parses and compiles ABC source text.
func Compile(src string) (*music.Piece, error) {
	return compiler.CompileString(src)
}

// CompileFile reads and compiles an .abc file.
func CompileFile(path string) (*music.Piece, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	piece, err := compiler.CompileString(string(data))
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", path, err)
	}
	return piece, nil
}

func (p *Player) PlayABC(src, voice string, lyrics io.Writer) error {
	piece, err := Compile(src)
	if err != nil {
		return err
	}
	return p.Play(piece, voice, lyrics)
}

// Play replaces any current playback with piece. Every voice sounds; the
// lyrics of voice are written to lyrics as they are sung. An empty voice
// plays without lyrics. Play returns once the piece is scheduled.
func (p *Player) Play(piece *music.Piece, voice string, lyrics io.Writer) error {
	if voice != "" {
		if _, ok := piece.Voice(voice); !ok {
			return &music.UnknownVoiceError{Voice: voice}
		}
	}
	p.Stop()
	if p.cfg.instrument != nil {
		piece = piece.WithInstrument(*p.cfg.instrument)
	}

	header := piece.Header()
	bpm := header.BPM
	if p.cfg.tempo > 0 {
		bpm = p.cfg.tempo
	}
	seq := sequencer.New(p.cfg.output, bpm, sequencer.Options{
		TicksPerBeat: p.cfg.ticksPerBeat,
		Velocity:     p.cfg.velocity,
		Transpose:    p.cfg.transpose,
		BeatUnit:     header.NoteLength,
		OnEvent: func(kind sequencer.EventKind) {
			p.sendEvent(PlaybackEvent{Kind: kind})
		},
		Logger: p.cfg.logger,
	})
	ctx, cancel := context.WithCancel(context.Background())
	for _, v := range piece.CompiledVoices() {
		var sink io.Writer
		if v == voice {
			sink = lyrics
		}
		if err := piece.Play(ctx, seq, 0, sink, v); err != nil {
			cancel()
			return fmt.Errorf("schedule voice %s: %w", v, err)
		}
	}

	done := make(chan struct{})
	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	p.cfg.logger.Info("playing", "title", header.Title, "voice", voice, "bpm", bpm, "beats", piece.Duration())
	go func() {
		defer close(done)
		defer cancel()
		if err := seq.Play(ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.cfg.logger.Warn("playback failed", "err", err)
		}
	}()
	return nil
}

func (p *Player) sendEvent(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Channel full; drop event
		}
	}
}

// Stop cancels the current playback and waits for sounding notes to be
// released. It is a no-op when nothing is playing.
func (p *Player) Stop() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// Wait blocks until the current playback ends or is stopped. It returns
// immediately if nothing was played.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Playing reports whether a playback is in progress.
func (p *Player) Playing() bool {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Watch returns a channel that receives playback events. The channel is
// buffered (cap 8) and events that do not fit are dropped, so receive in a
// goroutine. Only the most recent Watch() channel receives events; call
// Watch before Play.
func (p *Player) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 8)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}
