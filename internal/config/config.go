// Package config loads karaoke player settings.
//
// Settings live in a single YAML file under os.UserConfigDir():
//
//	~/Library/Application Support/abckaraoke/config.yaml   (macOS)
//	~/.config/abckaraoke/config.yaml                       (Linux)
//	%AppData%/abckaraoke/config.yaml                       (Windows)
//
// A missing file yields Default().
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/cbegin/abckaraoke/internal/music"
)

const (
	appDir   = "abckaraoke"
	fileName = "config.yaml"
)

type Config struct {
	MIDIPort     string  `yaml:"midi_port"`
	TicksPerBeat int     `yaml:"ticks_per_beat"`
	Velocity     int     `yaml:"velocity"`
	Transpose    int     `yaml:"transpose"`
	ListenAddr   string  `yaml:"listen_addr"`
	BPMOverride  float64 `yaml:"bpm_override"`
	// Instrument is a General MIDI name such as "choir" or a program
	// number. Empty keeps the tune's own instruments.
	Instrument string `yaml:"instrument"`
}

func Default() Config {
	return Config{
		TicksPerBeat: 64,
		Velocity:     100,
		ListenAddr:   ":8080",
	}
}

// DefaultPath returns the config file location under os.UserConfigDir().
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads the default config file.
func Load() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(path)
}

// LoadFrom reads path over Default(). Fields left out of the file keep
// their defaults.
func LoadFrom(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	if c.TicksPerBeat <= 0 {
		return fmt.Errorf("ticks_per_beat must be positive, got %d", c.TicksPerBeat)
	}
	if c.Velocity < 1 || c.Velocity > 127 {
		return fmt.Errorf("velocity must be in 1..127, got %d", c.Velocity)
	}
	if c.BPMOverride < 0 {
		return fmt.Errorf("bpm_override must not be negative, got %v", c.BPMOverride)
	}
	if c.Instrument != "" {
		if _, ok := music.ParseInstrument(c.Instrument); !ok {
			return fmt.Errorf("unknown instrument %q", c.Instrument)
		}
	}
	return nil
}

// InstrumentOverride reports the instrument every note should use, if set.
func (c Config) InstrumentOverride() (music.Instrument, bool) {
	if c.Instrument == "" {
		return 0, false
	}
	return music.ParseInstrument(c.Instrument)
}
