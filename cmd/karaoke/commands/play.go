package commands

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/cbegin/abckaraoke"
	"github.com/cbegin/abckaraoke/internal/lyricterm"
)

var (
	playABC   string
	playVoice string
	playPlain bool
	playOut   outputFlags
)

var playCmd = &cobra.Command{
	Use:   "play [file.abc|-]",
	Short: "Play a tune with lyrics in the terminal",
	Long: `Play every voice of a tune on a MIDI port and print the lyrics of one
voice as they are sung, with the current syllable highlighted.

When --voice is omitted the first voice with lyrics is followed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		piece, err := loadPiece(argOrEmpty(args), playABC)
		if err != nil {
			return err
		}
		cfg, err := playOut.resolve(cmd)
		if err != nil {
			return err
		}
		voice := playVoice
		if voice == "" {
			for _, v := range piece.CompiledVoices() {
				if piece.LyricsFor(v) != "" {
					voice = v
					break
				}
			}
		}

		out, release, err := playOut.open(cfg)
		if err != nil {
			return err
		}
		defer release()

		pl, err := karaoke.NewPlayer(playerOptions(cfg, out)...)
		if err != nil {
			return err
		}

		var lyrics io.Writer = lyricterm.New(cmd.OutOrStdout())
		if playPlain {
			lyrics = cmd.OutOrStdout()
		}
		header := piece.Header()
		fmt.Fprintf(cmd.OutOrStdout(), "%s by %s\n", header.Title, header.Composer)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		if err := pl.Play(piece, voice, lyrics); err != nil {
			return err
		}
		go func() {
			<-ctx.Done()
			pl.Stop()
		}()
		pl.Wait()
		if ctx.Err() != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "stopped")
		}
		return nil
	},
}

func init() {
	playCmd.Flags().StringVar(&playABC, "abc", "", "inline ABC source")
	playCmd.Flags().StringVar(&playVoice, "voice", "", "voice whose lyrics are shown")
	playCmd.Flags().BoolVar(&playPlain, "plain", false, "print lyric lines without styling")
	playOut.register(playCmd)
	rootCmd.AddCommand(playCmd)
}
