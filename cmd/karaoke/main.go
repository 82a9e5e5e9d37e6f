// Package main is the entry point for the karaoke CLI.
//
// Usage:
//
//	karaoke [flags] <command> [args]
//
// Commands:
//
//	dump     - Print a compiled tune, its lyrics or its timeline
//	play     - Play a tune on a MIDI port with lyrics in the terminal
//	serve    - Stream lyrics to browsers while the tune plays
//	ports    - List MIDI output ports
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/cbegin/abckaraoke/cmd/karaoke/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
