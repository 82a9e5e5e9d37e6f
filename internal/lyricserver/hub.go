package lyricserver

import (
	"bytes"
	"io"
	"sync"

	"github.com/google/uuid"
)

// Hub fans lyric lines out to every subscriber of a voice. Publishing never
// blocks: a subscriber whose buffer is full misses the line.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[string]chan string
	buffer int
	closed bool
	done   chan struct{}
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subs:   make(map[string]map[string]chan string),
		buffer: buffer,
		done:   make(chan struct{}),
	}
}

// Subscribe registers a listener for voice. The returned channel is closed
// by cancel or when the hub closes.
func (h *Hub) Subscribe(voice string) (id string, lines <-chan string, cancel func()) {
	id = uuid.NewString()
	ch := make(chan string, h.buffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return id, ch, func() {}
	}
	if h.subs[voice] == nil {
		h.subs[voice] = make(map[string]chan string)
	}
	h.subs[voice][id] = ch
	return id, ch, func() { h.unsubscribe(voice, id) }
}

func (h *Hub) unsubscribe(voice, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.subs[voice][id]
	if !ok {
		return
	}
	delete(h.subs[voice], id)
	close(ch)
}

// Subscribers returns how many listeners voice has.
func (h *Hub) Subscribers(voice string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[voice])
}

// Publish delivers line to the current subscribers of voice and returns the
// number of subscribers that received it.
func (h *Hub) Publish(voice, line string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for _, ch := range h.subs[voice] {
		select {
		case ch <- line:
			sent++
		default:
		}
	}
	return sent
}

// Close ends every subscription. Later subscribers get a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for voice, subs := range h.subs {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
		delete(h.subs, voice)
	}
	close(h.done)
}

// Done is closed by Close.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Writer returns a lyric sink for voice. Each newline-terminated line
// written to it is published as one message.
func (h *Hub) Writer(voice string) io.Writer {
	return &voiceWriter{hub: h, voice: voice}
}

type voiceWriter struct {
	mu      sync.Mutex
	hub     *Hub
	voice   string
	pending []byte
}

func (w *voiceWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, p...)
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			return len(p), nil
		}
		line := string(w.pending[:i])
		w.pending = w.pending[i+1:]
		w.hub.Publish(w.voice, line)
	}
}
