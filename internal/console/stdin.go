package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ReadPipedStdin returns the contents of f when it is not a terminal, with
// one trailing newline removed. An interactive f yields "".
func ReadPipedStdin(f *os.File) (string, error) {
	if f == nil || term.IsTerminal(int(f.Fd())) {
		return "", nil
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(text, "\r"), nil
}
