package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cbegin/abckaraoke"
)

var (
	dumpABC      string
	dumpHeader   bool
	dumpLyrics   string
	dumpTimeline bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump [file.abc|-]",
	Short: "Print a compiled tune",
	Long: `Print the compiled form of a tune.

By default the whole piece is printed, one line per voice. Use --header
for the resolved header only, --lyrics VOICE for the lyric text of one
voice, or --timeline for every note and lyric line in playback order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		piece, err := loadPiece(argOrEmpty(args), dumpABC)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch {
		case dumpHeader:
			fmt.Fprintln(out, piece.Header().String())
		case dumpLyrics != "":
			if _, ok := piece.Voice(dumpLyrics); !ok {
				return fmt.Errorf("unknown voice %q", dumpLyrics)
			}
			fmt.Fprintln(out, piece.LyricsFor(dumpLyrics))
		case dumpTimeline:
			entries, err := karaoke.RenderTimeline(piece)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintln(out, e.String())
			}
		default:
			fmt.Fprint(out, piece.String())
			if IsVerbose() {
				fmt.Fprintf(out, "duration: %g\n", piece.Duration())
			}
		}
		return nil
	},
}

func init() {
	dumpCmd.Flags().StringVar(&dumpABC, "abc", "", "inline ABC source")
	dumpCmd.Flags().BoolVar(&dumpHeader, "header", false, "print the resolved header only")
	dumpCmd.Flags().StringVar(&dumpLyrics, "lyrics", "", "print the lyric text of one voice")
	dumpCmd.Flags().BoolVar(&dumpTimeline, "timeline", false, "print notes and lyrics in playback order")
	rootCmd.AddCommand(dumpCmd)
}
