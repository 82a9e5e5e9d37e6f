package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cbegin/abckaraoke"
	"github.com/cbegin/abckaraoke/internal/music"
)

// loadPiece compiles the tune named by path, inline source when abc is set,
// or standard input when path is "-".
func loadPiece(path, abc string) (*music.Piece, error) {
	if strings.TrimSpace(abc) != "" {
		return karaoke.Compile(abc)
	}
	switch path {
	case "":
		return nil, fmt.Errorf("no tune given: pass a file, \"-\" for stdin, or --abc")
	case "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return karaoke.Compile(string(data))
	default:
		return karaoke.CompileFile(path)
	}
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
