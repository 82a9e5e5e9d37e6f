package commands

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/cbegin/abckaraoke/internal/lyricserver"
	"github.com/cbegin/abckaraoke/internal/sequencer"
)

var (
	serveABC    string
	serveListen string
	serveNow    bool
	serveOut    outputFlags
)

var serveCmd = &cobra.Command{
	Use:   "serve [file.abc|-]",
	Short: "Stream lyrics to browsers while the tune plays",
	Long: `Serve the lyrics of every voice over HTTP and play the tune once.

Each voice is available as a streaming page at /VOICE/ and as a websocket
at /ws/VOICE. Playback starts when Enter is pressed, or at once with --now.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		piece, err := loadPiece(argOrEmpty(args), serveABC)
		if err != nil {
			return err
		}
		cfg, err := serveOut.resolve(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("listen") {
			cfg.ListenAddr = serveListen
		}
		if inst, ok := cfg.InstrumentOverride(); ok {
			piece = piece.WithInstrument(inst)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		srv := lyricserver.New(piece, lyricserver.Options{Logger: logger})
		ln, err := net.Listen("tcp", cfg.ListenAddr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
		}
		serveCtx, stopServe := context.WithCancel(ctx)
		defer stopServe()
		serveErr := make(chan error, 1)
		go func() {
			serveErr <- srv.Serve(serveCtx, ln)
		}()

		out := cmd.OutOrStdout()
		for _, path := range srv.Paths() {
			fmt.Fprintf(out, "lyrics: http://%s%s\n", ln.Addr(), path)
		}

		if !serveNow {
			fmt.Fprintln(out, "Press Enter to start playback")
			if !waitForEnter(ctx, cmd) {
				stopServe()
				return <-serveErr
			}
		}

		notes, release, err := serveOut.open(cfg)
		if err != nil {
			stopServe()
			<-serveErr
			return err
		}
		defer release()

		header := piece.Header()
		bpm := header.BPM
		if cfg.BPMOverride > 0 {
			bpm = cfg.BPMOverride
		}
		seq := sequencer.New(notes, bpm, sequencer.Options{
			TicksPerBeat: cfg.TicksPerBeat,
			Velocity:     cfg.Velocity,
			Transpose:    cfg.Transpose,
			BeatUnit:     header.NoteLength,
			Logger:       logger,
		})
		if err := srv.Perform(ctx, seq); err != nil {
			stopServe()
			<-serveErr
			return err
		}
		logger.Info("performance started", "title", header.Title, "bpm", bpm)
		playErr := seq.Play(ctx)
		stopServe()
		if err := <-serveErr; err != nil {
			return err
		}
		if playErr != nil && ctx.Err() == nil {
			return playErr
		}
		return nil
	},
}

func waitForEnter(ctx context.Context, cmd *cobra.Command) bool {
	line := make(chan struct{})
	go func() {
		_, _ = bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		close(line)
	}()
	select {
	case <-line:
		return true
	case <-ctx.Done():
		return false
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveABC, "abc", "", "inline ABC source")
	serveCmd.Flags().StringVar(&serveListen, "listen", ":8080", "HTTP listen address")
	serveCmd.Flags().BoolVar(&serveNow, "now", false, "start playback without waiting for Enter")
	serveOut.register(serveCmd)
	rootCmd.AddCommand(serveCmd)
}
