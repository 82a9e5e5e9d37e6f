package commands

import (
	"github.com/spf13/cobra"

	"github.com/cbegin/abckaraoke"
	"github.com/cbegin/abckaraoke/internal/config"
	"github.com/cbegin/abckaraoke/internal/midiout"
	"github.com/cbegin/abckaraoke/internal/sequencer"
)

// outputFlags are shared by the commands that make sound. Flags that are
// set win over config.yaml.
type outputFlags struct {
	port       string
	transpose  int
	velocity   int
	ticks      int
	tempo      float64
	instrument string
	dryRun     bool
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.port, "port", "p", "", "MIDI output port (substring match, default first port)")
	cmd.Flags().IntVar(&f.transpose, "transpose", 0, "semitones added to every note")
	cmd.Flags().IntVar(&f.velocity, "velocity", 100, "note-on velocity (1-127)")
	cmd.Flags().IntVar(&f.ticks, "ticks", 64, "sequencer ticks per beat")
	cmd.Flags().Float64Var(&f.tempo, "tempo", 0, "beats per minute, overriding the tune's Q: field")
	cmd.Flags().StringVar(&f.instrument, "instrument", "", "play every note on this General MIDI instrument (name or program number)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "do not open a MIDI port")
}

func (f *outputFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	loaded, err := GetConfig()
	if err != nil {
		return config.Config{}, err
	}
	cfg := *loaded
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.MIDIPort = f.port
	}
	if flags.Changed("transpose") {
		cfg.Transpose = f.transpose
	}
	if flags.Changed("velocity") {
		cfg.Velocity = f.velocity
	}
	if flags.Changed("ticks") {
		cfg.TicksPerBeat = f.ticks
	}
	if flags.Changed("tempo") {
		cfg.BPMOverride = f.tempo
	}
	if flags.Changed("instrument") {
		cfg.Instrument = f.instrument
	}
	return cfg, cfg.Validate()
}

// open returns the note output and a function that releases it.
func (f *outputFlags) open(cfg config.Config) (sequencer.NoteOutput, func(), error) {
	if f.dryRun {
		logger.Info("dry run, notes are discarded")
		return sequencer.Discard, func() {}, nil
	}
	out, err := midiout.Open(cfg.MIDIPort, midiout.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return out, func() {
		if err := out.Close(); err != nil {
			logger.Warn("close midi port", "err", err)
		}
	}, nil
}

// playerOptions maps resolved settings onto a Player.
func playerOptions(cfg config.Config, out sequencer.NoteOutput) []karaoke.PlayerOption {
	opts := []karaoke.PlayerOption{
		karaoke.WithOutput(out),
		karaoke.WithTicksPerBeat(cfg.TicksPerBeat),
		karaoke.WithVelocity(cfg.Velocity),
		karaoke.WithTranspose(cfg.Transpose),
		karaoke.WithTempo(cfg.BPMOverride),
		karaoke.WithLogger(logger),
	}
	if inst, ok := cfg.InstrumentOverride(); ok {
		opts = append(opts, karaoke.WithInstrument(inst))
	}
	return opts
}
