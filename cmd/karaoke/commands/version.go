package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/cbegin/abckaraoke/internal/config"
)

// Version is overridden at link time with -ldflags "-X ...commands.Version=v1.2.3".
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "karaoke %s\n", Version)
		if IsVerbose() {
			fmt.Fprintf(out, "  go:     %s\n", runtime.Version())
			path := configPath
			if path == "" {
				var err error
				if path, err = config.DefaultPath(); err != nil {
					path = fmt.Sprintf("(unavailable: %v)", err)
				}
			}
			fmt.Fprintf(out, "  config: %s\n", path)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
