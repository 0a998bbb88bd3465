package testsupport

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// WriteLines writes count lines of the form "<prefix> <n>" (n starting at 1)
// to path, creating parent directories.
func WriteLines(t testing.TB, path string, count int, prefix string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := 1; i <= count; i++ {
		if _, err := w.WriteString(prefix + " " + strconv.Itoa(i) + "\n"); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush %s: %v", path, err)
	}
}
