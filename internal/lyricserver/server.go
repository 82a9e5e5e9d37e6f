// Package lyricserver streams karaoke lyrics to browsers while a piece plays.
//
// Each voice is served two ways:
//
//	GET /{voice}/     chunked HTML, one "line<br>" per lyric event
//	GET /ws/{voice}   websocket, one text message per lyric event
package lyricserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cbegin/abckaraoke/internal/music"
)

// primingBytes is written before the first lyric so browsers start
// rendering the stream immediately.
const primingBytes = 2048

const noLyricsNotice = "This song has no lyrics"

type Options struct {
	Buffer int // per-client line buffer, default 16
	Logger *slog.Logger
}

type Server struct {
	piece    *music.Piece
	hub      *Hub
	log      *slog.Logger
	mux      *http.ServeMux
	upgrader websocket.Upgrader
}

func New(piece *music.Piece, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		piece: piece,
		hub:   NewHub(opts.Buffer),
		log:   log,
		mux:   http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.mux.HandleFunc("GET /ws/{voice}", s.handleWS)
	s.mux.HandleFunc("GET /{voice}/{$}", s.handleStream)
	return s
}

func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Paths returns the stream path of every voice, in playback order.
func (s *Server) Paths() []string {
	var paths []string
	for _, v := range s.piece.CompiledVoices() {
		paths = append(paths, "/"+v+"/")
	}
	return paths
}

// Perform schedules every voice of the piece on sched with its hub writer
// as the lyric sink. Once the clock passes the end of the piece the hub is
// closed, which ends every open stream.
func (s *Server) Perform(ctx context.Context, sched music.Scheduler) error {
	for _, voice := range s.piece.CompiledVoices() {
		if err := s.piece.Play(ctx, sched, 0, s.hub.Writer(voice), voice); err != nil {
			return fmt.Errorf("schedule voice %s: %w", voice, err)
		}
	}
	sched.AddEvent(s.piece.Duration(), func(float64) { s.hub.Close() })
	return nil
}

// Serve answers requests on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) knownVoice(voice string) bool {
	return slices.Contains(s.piece.CompiledVoices(), voice)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	voice := r.PathValue("voice")
	if !s.knownVoice(voice) {
		http.NotFound(w, r)
		return
	}
	id, lines, cancel := s.hub.Subscribe(voice)
	defer cancel()
	log := s.log.With("client", id, "voice", voice, "remote", r.RemoteAddr)
	log.Info("lyric stream opened")
	defer log.Info("lyric stream closed")

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, strings.Repeat(" ", primingBytes)); err != nil {
		return
	}
	if s.piece.LyricsFor(voice) == "" {
		_, _ = io.WriteString(w, noLyricsNotice+"<br>\n")
	}
	if err := rc.Flush(); err != nil {
		log.Debug("flush failed", "err", err)
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if _, err := io.WriteString(w, line+"<br>\n"); err != nil {
				log.Debug("write failed", "err", err)
				return
			}
			_ = rc.Flush()
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	voice := r.PathValue("voice")
	if !s.knownVoice(voice) {
		http.NotFound(w, r)
		return
	}
	id, lines, cancel := s.hub.Subscribe(voice)
	defer cancel()
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "voice", voice, "err", err)
		return
	}
	defer conn.Close()
	log := s.log.With("client", id, "voice", voice, "remote", r.RemoteAddr)
	log.Info("lyric socket opened")
	defer log.Info("lyric socket closed")

	// Reads only detect the peer going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if s.piece.LyricsFor(voice) == "" {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(noLyricsNotice)); err != nil {
			return
		}
	}
	for {
		select {
		case <-gone:
			return
		case line, ok := <-lines:
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "end of song")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				log.Debug("write failed", "err", err)
				return
			}
		}
	}
}
