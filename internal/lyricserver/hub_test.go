package lyricserver

import (
	"io"
	"testing"
)

func TestHubPublishReachesVoiceSubscribers(t *testing.T) {
	h := NewHub(4)
	_, soprano, cancel := h.Subscribe("soprano")
	defer cancel()
	_, alto, cancelAlto := h.Subscribe("alto")
	defer cancelAlto()

	if n := h.Publish("soprano", "la"); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	if got := <-soprano; got != "la" {
		t.Fatalf("expected la, got %q", got)
	}
	select {
	case line := <-alto:
		t.Fatalf("alto should not receive %q", line)
	default:
	}
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	h := NewHub(1)
	_, lines, cancel := h.Subscribe("v")
	defer cancel()
	if n := h.Publish("v", "one"); n != 1 {
		t.Fatalf("first publish should deliver, got %d", n)
	}
	if n := h.Publish("v", "two"); n != 0 {
		t.Fatalf("second publish should be dropped, got %d", n)
	}
	if got := <-lines; got != "one" {
		t.Fatalf("expected one, got %q", got)
	}
}

func TestHubCloseEndsSubscriptions(t *testing.T) {
	h := NewHub(0)
	_, lines, cancel := h.Subscribe("v")
	h.Close()
	cancel()
	if _, ok := <-lines; ok {
		t.Fatalf("expected closed channel")
	}
	select {
	case <-h.Done():
	default:
		t.Fatalf("Done should be closed")
	}
	h.Close()

	_, late, _ := h.Subscribe("v")
	if _, ok := <-late; ok {
		t.Fatalf("subscribing after close should yield a closed channel")
	}
	if h.Subscribers("v") != 0 {
		t.Fatalf("expected no subscribers after close")
	}
}

func TestHubCancelRemovesSubscriber(t *testing.T) {
	h := NewHub(2)
	_, _, cancel := h.Subscribe("v")
	if h.Subscribers("v") != 1 {
		t.Fatalf("expected one subscriber")
	}
	cancel()
	cancel()
	if h.Subscribers("v") != 0 {
		t.Fatalf("expected subscriber to be removed")
	}
}

func TestWriterSplitsLines(t *testing.T) {
	h := NewHub(8)
	_, lines, cancel := h.Subscribe("v")
	defer cancel()
	w := h.Writer("v")
	if _, err := io.WriteString(w, "first\nsec"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := io.WriteString(w, "ond\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, want := range []string{"first", "second"} {
		if got := <-lines; got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
	select {
	case extra := <-lines:
		t.Fatalf("unexpected line %q", extra)
	default:
	}
}
