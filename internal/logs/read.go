package logs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"harnessutil/internal/services"
)

const maxLineBytes = 1024 * 1024

// ReadLastLines returns the last n lines of path, oldest first, with empty and
// whitespace-only lines removed. Blank lines still occupy a window slot while
// the file is read, so fewer than n lines may come back.
//
// LF and CRLF both end a line. Files starting with a UTF-8 or UTF-16 byte
// order mark are decoded to UTF-8; anything else is read as-is.
func ReadLastLines(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, services.Wrap(services.ErrValidation, "logs", "read last lines", fmt.Sprintf("line count must be positive, got %d", n), nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "logs", "open", path, err)
	}
	defer file.Close()

	window, err := fillWindow(file, n)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "logs", "read", path, err)
	}
	return nonBlank(window.Lines()), nil
}

func fillWindow(r io.Reader, n int) (*Window, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(transform.Nop))
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	window := NewWindow(n)
	for scanner.Scan() {
		window.Push(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return window, nil
}

func nonBlank(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
