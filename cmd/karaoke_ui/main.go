package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/cbegin/abckaraoke"
	"github.com/cbegin/abckaraoke/internal/config"
	"github.com/cbegin/abckaraoke/internal/midiout"
	"github.com/cbegin/abckaraoke/internal/music"
	"github.com/cbegin/abckaraoke/internal/sequencer"
)

const (
	windowW    = 1100
	windowH    = 720
	minWindowW = 980
	minWindowH = 680

	transposeMin = -12
	transposeMax = 12
)

type game struct {
	cfg    config.Config
	output sequencer.NoteOutput
	player *karaoke.Player
	events <-chan karaoke.PlaybackEvent
	feed   *lyricFeed

	piece     *music.Piece
	voice     string
	transpose int
	dragging  bool

	history []string
	current string
	playing bool

	status    string
	statusErr bool

	cwd       string
	nav       []navEntry
	navScroll int

	loadedPath       string
	frameTick        int
	lastNavPath      string
	lastNavClickTick int

	textCache map[string]*ebiten.Image
	viewW     int
	viewH     int
}

func newGame(cfg config.Config, output sequencer.NoteOutput, initialPath string) (*game, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	g := &game{
		cfg:       cfg,
		output:    output,
		feed:      newLyricFeed(),
		transpose: cfg.Transpose,
		status:    "Ready",
		cwd:       cwd,
		textCache: make(map[string]*ebiten.Image, 1024),
		viewW:     windowW,
		viewH:     windowH,
	}
	if err := g.rebuildPlayer(); err != nil {
		return nil, err
	}
	if initialPath != "" {
		if err := g.loadFile(initialPath); err != nil {
			g.setError(err.Error())
		}
	}
	if err := g.refreshNav(); err != nil {
		g.setError(err.Error())
	}
	return g, nil
}

func (g *game) Update() error {
	g.frameTick++
	g.pollEvents()
	g.pollLyrics()
	g.handleMouse()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	l := g.layoutRects()

	g.drawSunkenPanel(screen, l.nav)
	g.drawSunkenPanel(screen, l.lyrics)
	g.drawButton(screen, l.play, g.playButtonLabel())
	g.drawButton(screen, l.voice, g.voiceLabel())
	g.drawTransposeSlider(screen, l.transpose)
	g.drawSunkenPanel(screen, l.status)

	g.drawNavigator(screen, l.nav)
	g.drawLyrics(screen, l.lyrics)
	g.drawStatus(screen, l.status)
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	g.viewW = max(outsideW, minWindowW)
	g.viewH = max(outsideH, minWindowH)
	return g.viewW, g.viewH
}

func (g *game) Close() { _ = g.player.Stop() }

func (g *game) pollEvents() {
	for {
		select {
		case ev := <-g.events:
			if ev.Kind == karaoke.EventPlaybackEnded && !g.statusErr {
				g.status = "Playback ended"
			}
		default:
			// Events can be dropped when the channel is full.
			if g.playing && !g.player.Playing() {
				g.playing = false
			}
			return
		}
	}
}

func (g *game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	l := g.layoutRects()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		switch {
		case pointInRect(mx, my, l.play):
			g.togglePlayback()
			return
		case pointInRect(mx, my, l.voice):
			g.cycleVoice()
			return
		case pointInRect(mx, my, l.transpose):
			g.dragging = true
			g.updateTransposeFromMouse(mx, l.transpose)
			return
		case pointInRect(mx, my, l.nav):
			g.clickNavigator(my, l.nav)
			return
		}
	}
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if g.dragging {
			g.dragging = false
			g.transposeReleased()
		}
	}
	if g.dragging {
		g.updateTransposeFromMouse(mx, l.transpose)
	}

	_, wy := ebiten.Wheel()
	if wy != 0 && pointInRect(mx, my, l.nav) {
		g.navScroll = max(0, g.navScroll-int(wy*2))
	}
}

type uiLayout struct {
	nav, lyrics            image.Rectangle
	play, voice, transpose image.Rectangle
	status                 image.Rectangle
}

func (g *game) layoutRects() uiLayout {
	w := max(g.viewW, minWindowW)
	h := max(g.viewH, minWindowH)

	pad := 20
	rowH := 44
	statusH := 40

	statusTop := h - pad - statusH
	controlsTop := statusTop - 8 - rowH
	contentBottom := controlsTop - 12

	navRect := image.Rect(pad, pad, pad+280, contentBottom)
	lyricsRect := image.Rect(navRect.Max.X+12, pad, w-pad, contentBottom)

	playRect := image.Rect(pad, controlsTop, pad+130, controlsTop+rowH)
	voiceRect := image.Rect(pad+142, controlsTop, pad+400, controlsTop+rowH)
	transposeRect := image.Rect(pad+412, controlsTop, min(pad+760, w-pad), controlsTop+rowH)
	statusRect := image.Rect(pad, statusTop, w-pad, statusTop+statusH)

	return uiLayout{
		nav: navRect, lyrics: lyricsRect,
		play: playRect, voice: voiceRect, transpose: transposeRect,
		status: statusRect,
	}
}

func (g *game) drawStatus(screen *ebiten.Image, rect image.Rectangle) {
	msg := "Status: " + g.status
	if g.statusErr {
		msg = "Status: ERROR - " + g.status
	}
	maxChars := max(8, (rect.Dx()-16)/charW)
	g.drawText(screen, shortenEnd(msg, maxChars), rect.Min.X+8, rect.Min.Y+6)
}

func (g *game) drawTransposeSlider(screen *ebiten.Image, rect image.Rectangle) {
	g.drawPanel(screen, rect)
	g.drawText(screen, fmt.Sprintf("Key %+d", g.transpose), rect.Min.X+8, rect.Min.Y+8)

	trackX := rect.Min.X + 110
	trackW := rect.Dx() - 126
	trackY := rect.Min.Y + rect.Dy()/2 - 4
	if trackW < 20 {
		return
	}
	fillRect(screen, image.Rect(trackX, trackY, trackX+trackW, trackY+8), bevelDarker)
	centerX := trackX + trackW/2
	fillRect(screen, image.Rect(centerX-1, trackY-2, centerX+1, trackY+10), borderColor)

	frac := float64(g.transpose-transposeMin) / float64(transposeMax-transposeMin)
	fillW := int(frac * float64(trackW))
	if fillW > 2 {
		fillRect(screen, image.Rect(trackX+1, trackY+1, trackX+fillW, trackY+7), sliderFillColor)
	}
	knobX := min(max(trackX+fillW-5, trackX-5), trackX+trackW-5)
	knob := image.Rect(knobX, trackY-4, knobX+10, trackY+12)
	fillRect(screen, knob, panelColor)
	drawBorder(screen, knob)
}

func (g *game) updateTransposeFromMouse(mx int, rect image.Rectangle) {
	trackX := rect.Min.X + 110
	trackW := rect.Dx() - 126
	if trackW <= 0 {
		return
	}
	frac := clamp(float64(mx-trackX)/float64(trackW), 0, 1)
	g.transpose = int(math.Round(frac*float64(transposeMax-transposeMin))) + transposeMin
	g.setStatus(fmt.Sprintf("Transpose: %+d semitones", g.transpose))
}

// transposeReleased applies the slider value once the drag ends.
func (g *game) transposeReleased() {
	wasPlaying := g.playing
	if err := g.rebuildPlayer(); err != nil {
		g.setError(err.Error())
		return
	}
	if wasPlaying {
		g.restartPlayback()
	}
}

func (g *game) rebuildPlayer() error {
	if g.player != nil {
		_ = g.player.Stop()
	}
	opts := []karaoke.PlayerOption{
		karaoke.WithOutput(g.output),
		karaoke.WithTicksPerBeat(g.cfg.TicksPerBeat),
		karaoke.WithVelocity(g.cfg.Velocity),
		karaoke.WithTempo(g.cfg.BPMOverride),
		karaoke.WithTranspose(g.transpose),
	}
	if inst, ok := g.cfg.InstrumentOverride(); ok {
		opts = append(opts, karaoke.WithInstrument(inst))
	}
	pl, err := karaoke.NewPlayer(opts...)
	if err != nil {
		return err
	}
	g.player = pl
	g.events = pl.Watch()
	g.playing = false
	return nil
}

func (g *game) loadFile(path string) error {
	piece, err := karaoke.CompileFile(path)
	if err != nil {
		return err
	}
	_ = g.player.Stop()
	g.playing = false
	g.clearLyrics()
	g.piece = piece
	g.voice = ""
	for _, v := range piece.CompiledVoices() {
		if piece.LyricsFor(v) != "" {
			g.voice = v
			break
		}
	}
	g.loadedPath = path
	g.cwd = filepath.Dir(path)
	return g.refreshNav()
}

func (g *game) cycleVoice() {
	if g.piece == nil {
		return
	}
	voices := g.piece.CompiledVoices()
	next := 0
	for i, v := range voices {
		if v == g.voice {
			next = (i + 1) % len(voices)
		}
	}
	g.voice = voices[next]
	g.setStatus("Following voice " + g.voice)
	if g.playing {
		g.restartPlayback()
	}
}

func (g *game) voiceLabel() string {
	if g.voice == "" {
		return "Voice: -"
	}
	return "Voice: " + shortenEnd(g.voice, 10)
}

func (g *game) togglePlayback() {
	if g.playing {
		_ = g.player.Stop()
		g.playing = false
		g.setStatus("Stopped")
		return
	}
	g.restartPlayback()
}

func (g *game) restartPlayback() {
	if g.piece == nil {
		g.setError("No tune loaded")
		return
	}
	g.clearLyrics()
	if err := g.player.Play(g.piece, g.voice, g.feed); err != nil {
		g.playing = false
		g.setError(err.Error())
		return
	}
	g.playing = true
	g.setStatus("Playing " + g.piece.Header().Title)
}

func (g *game) playButtonLabel() string {
	if g.playing {
		return "Stop"
	}
	return "Play"
}

func (g *game) setError(msg string) {
	g.status = msg
	g.statusErr = true
}

func (g *game) setStatus(msg string) {
	g.status = msg
	g.statusErr = false
}

func openOutput(port string, dryRun bool) (sequencer.NoteOutput, func()) {
	if dryRun {
		return sequencer.Discard, func() {}
	}
	out, err := midiout.Open(port)
	if err != nil {
		log.Printf("no MIDI output, playing silently: %v", err)
		return sequencer.Discard, func() {}
	}
	return out, func() { _ = out.Close() }
}

func main() {
	var (
		port   = flag.String("port", "", "MIDI output port (substring match)")
		dryRun = flag.Bool("dry-run", false, "do not open a MIDI port")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if *port != "" {
		cfg.MIDIPort = *port
	}

	var initialPath string
	if flag.NArg() > 0 {
		p, err := filepath.Abs(flag.Arg(0))
		if err != nil {
			log.Fatalf("resolve %q: %v", flag.Arg(0), err)
		}
		initialPath = p
	}

	output, release := openOutput(cfg.MIDIPort, *dryRun)
	defer release()

	g, err := newGame(cfg, output, initialPath)
	if err != nil {
		log.Fatal(err)
	}
	defer g.Close()

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(minWindowW, minWindowH, -1, -1)
	ebiten.SetWindowTitle("abc karaoke")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
