package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cbegin/abckaraoke/internal/config"
)

var (
	// Global flags
	verbose    bool
	configPath string

	globalConfig *config.Config
	logger       = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "karaoke",
	Short: "Play ABC tunes with synchronized lyrics",
	Long: `karaoke - compile ABC notation and sing along.

Settings are read from config.yaml in the OS config directory:
  macOS:   ~/Library/Application Support/abckaraoke/
  Linux:   ~/.config/abckaraoke/
  Windows: %AppData%/abckaraoke/

Examples:
  # Show what a tune compiles to
  karaoke dump song.abc

  # Play the alto part on the first MIDI port
  karaoke play song.abc --voice alto

  # Stream every voice's lyrics to browsers on :8080
  karaoke serve song.abc --listen :8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initLogger(verbose)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is the OS config directory)")
}

// initLogger installs a text handler on stderr as the default slog logger.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// GetConfig loads the configuration on first use.
func GetConfig() (*config.Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("config not available: %w", err)
	}
	globalConfig = &cfg
	return globalConfig, nil
}

func IsVerbose() bool {
	return verbose
}
