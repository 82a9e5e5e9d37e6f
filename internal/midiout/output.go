// Package midiout sends sequencer notes to a MIDI output port.
package midiout

import (
	"fmt"
	"log/slog"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

type Option func(*Output)

// WithChannel selects the MIDI channel (0-15).
func WithChannel(ch uint8) Option {
	return func(o *Output) {
		o.channel = ch & 0x0f
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Output) {
		if l != nil {
			o.log = l
		}
	}
}

// Output implements sequencer.NoteOutput over a MIDI message sender.
type Output struct {
	mu      sync.Mutex
	send    func(midi.Message) error
	port    drivers.Out
	channel uint8
	program int
	nextID  int
	active  map[int]uint8
	log     *slog.Logger
}

// New wraps an arbitrary sender, such as the one returned by midi.SendTo.
func New(send func(midi.Message) error, opts ...Option) *Output {
	o := &Output{
		send:    send,
		program: -1,
		active:  make(map[int]uint8),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open connects to the first output port whose name contains portName, or
// the first port when portName is empty. A driver must be registered by
// the caller, e.g. by importing gitlab.com/gomidi/midi/v2/drivers/rtmididrv.
func Open(portName string, opts ...Option) (*Output, error) {
	var (
		port drivers.Out
		err  error
	)
	if portName == "" {
		port, err = midi.OutPort(0)
	} else {
		port, err = midi.FindOutPort(portName)
	}
	if err != nil {
		return nil, fmt.Errorf("midi out port %q: %w", portName, err)
	}
	send, err := midi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open midi out port %q: %w", port.String(), err)
	}
	o := New(send, opts...)
	o.port = port
	o.log.Debug("midi output opened", "port", port.String())
	return o, nil
}

// Ports lists the names of the available output ports.
func Ports() []string {
	var names []string
	for _, p := range midi.GetOutPorts() {
		names = append(names, p.String())
	}
	return names
}

func (o *Output) NoteOn(note int, velocity int, program int) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if program != o.program {
		o.write(midi.ProgramChange(o.channel, clamp7(program)))
		o.program = program
	}
	key := clamp7(note)
	o.write(midi.NoteOn(o.channel, key, clamp7(velocity)))
	id := o.nextID
	o.nextID++
	o.active[id] = key
	return id
}

func (o *Output) NoteOff(id int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	key, ok := o.active[id]
	if !ok {
		return
	}
	delete(o.active, id)
	o.write(midi.NoteOff(o.channel, key))
}

// AllNotesOff releases every note that is still sounding.
func (o *Output) AllNotesOff() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for id, key := range o.active {
		o.write(midi.NoteOff(o.channel, key))
		delete(o.active, id)
	}
}

// Close releases sounding notes and closes the port opened by Open.
func (o *Output) Close() error {
	o.AllNotesOff()
	if o.port == nil {
		return nil
	}
	return o.port.Close()
}

func (o *Output) write(msg midi.Message) {
	if err := o.send(msg); err != nil {
		o.log.Warn("midi send failed", "msg", msg.String(), "err", err)
	}
}

func clamp7(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}
