package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

const song = "X:1\nT:Little Song\nC:Anon\nL:1/4\nQ:1/4=6000\nK:C\nC D |\nw: la di\n"

func runCmd(t *testing.T, args ...string) (stdout string, err error) {
	t.Helper()
	globalConfig = nil
	resetFlags(rootCmd.PersistentFlags())
	for _, sub := range rootCmd.Commands() {
		resetFlags(sub.Flags())
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	args = append([]string{"--config", filepath.Join(t.TempDir(), "config.yaml")}, args...)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), err
}

// resetFlags undoes the previous Execute so tests do not share flag values.
func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func TestDumpPiece(t *testing.T) {
	stdout, err := runCmd(t, "dump", "--abc", song)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.HasPrefix(stdout, "X:1T:Little SongC:Anon") {
		t.Fatalf("unexpected output %q", stdout)
	}
	if !strings.Contains(stdout, "default: ") {
		t.Fatalf("expected voice line, got %q", stdout)
	}
}

func TestDumpFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.abc")
	if err := os.WriteFile(path, []byte(song), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	stdout, err := runCmd(t, "dump", "--header", path)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.Contains(stdout, "Q:6000.0") {
		t.Fatalf("expected tempo in header, got %q", stdout)
	}
}

func TestDumpLyricsAndTimeline(t *testing.T) {
	stdout, err := runCmd(t, "dump", "--abc", song, "--timeline")
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if strings.Count(stdout, " note ") != 2 || strings.Count(stdout, " lyric ") != 2 {
		t.Fatalf("unexpected timeline %q", stdout)
	}

	if _, err := runCmd(t, "dump", "--abc", song, "--lyrics", "tenor"); err == nil {
		t.Fatalf("expected unknown voice error")
	}
}

func TestDumpReportsCompileErrors(t *testing.T) {
	if _, err := runCmd(t, "dump", "--abc", "T:no index\nK:C\nC\n"); err == nil {
		t.Fatalf("expected error for missing X:")
	}
	if _, err := runCmd(t, "dump"); err == nil {
		t.Fatalf("expected error without input")
	}
}

func TestPlayDryRun(t *testing.T) {
	stdout, err := runCmd(t, "play", "--abc", song, "--dry-run", "--plain")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.HasPrefix(stdout, "Little Song by Anon\n") {
		t.Fatalf("unexpected banner in %q", stdout)
	}
	if !strings.Contains(stdout, "<mark>la</mark>") || !strings.Contains(stdout, "<mark>di</mark>") {
		t.Fatalf("expected both syllables, got %q", stdout)
	}
}

func TestPlayRejectsBadVelocity(t *testing.T) {
	if _, err := runCmd(t, "play", "--abc", song, "--dry-run", "--velocity", "0"); err == nil {
		t.Fatalf("expected velocity error")
	}
}

func TestPlayInstrumentFlag(t *testing.T) {
	if _, err := runCmd(t, "play", "--abc", song, "--dry-run", "--plain", "--instrument", "choir"); err != nil {
		t.Fatalf("play: %v", err)
	}
	_, err := runCmd(t, "play", "--abc", song, "--dry-run", "--instrument", "kazoo")
	if err == nil || !strings.Contains(err.Error(), "kazoo") {
		t.Fatalf("expected unknown instrument error, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	stdout, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(stdout, "karaoke") {
		t.Fatalf("expected 'karaoke', got: %s", stdout)
	}
}
