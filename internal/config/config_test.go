package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cbegin/abckaraoke/internal/music"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadOverridesSomeFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("midi_port: FluidSynth\ntranspose: -2\nbpm_override: 90\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MIDIPort != "FluidSynth" || cfg.Transpose != -2 || cfg.BPMOverride != 90 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.TicksPerBeat != 64 || cfg.Velocity != 100 || cfg.ListenAddr != ":8080" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("velocity: 300\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatalf("expected validation error")
	}
	if err := os.WriteFile(path, []byte("ticks_per_beat: [1, 2\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := Default()
	want.MIDIPort = "IAC Driver"
	want.Transpose = 3
	if err := Save(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestInstrumentSetting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("instrument: choir\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	inst, ok := cfg.InstrumentOverride()
	if !ok || inst != music.ChoirAahs {
		t.Fatalf("expected choir override, got %v %v", inst, ok)
	}
	if _, ok := Default().InstrumentOverride(); ok {
		t.Fatalf("default config should keep tune instruments")
	}

	if err := os.WriteFile(path, []byte("instrument: kazoo\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatalf("expected unknown instrument to be rejected")
	}
}
