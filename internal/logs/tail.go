package logs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"harnessutil/internal/services"
)

// TailOptions controls a Tail call. A negative Offset reads the last Limit
// lines; otherwise lines written after Offset are returned.
type TailOptions struct {
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
}

// TailResult holds non-blank lines and the byte offset to resume from.
type TailResult struct {
	Lines  []string
	Offset int64
}

// Tail reads lines from path according to opts. A missing file yields an
// empty result at offset 0 so callers can poll a log that has not been
// created yet.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	result := TailResult{Offset: opts.Offset}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Offset = 0
			return result, nil
		}
		return result, services.Wrap(services.ErrIO, "logs", "stat", path, err)
	}
	if info.IsDir() {
		return result, services.Wrap(services.ErrIO, "logs", "tail", fmt.Sprintf("%q is a directory", path), nil)
	}

	if opts.Wait < 0 {
		opts.Wait = 0
	}

	if opts.Offset < 0 {
		lines, offset, err := readLastLinesAt(path, opts.Limit)
		if err != nil {
			return result, err
		}
		result.Lines = lines
		result.Offset = offset
		if opts.Follow && opts.Wait > 0 && len(lines) == 0 {
			return waitForLines(ctx, path, offset, opts.Wait)
		}
		return result, nil
	}

	lines, offset, err := readForward(path, opts.Offset)
	if err != nil {
		return result, err
	}
	result.Lines = lines
	result.Offset = offset
	if opts.Follow && opts.Wait > 0 && len(lines) == 0 {
		return waitForLines(ctx, path, offset, opts.Wait)
	}
	return result, nil
}

// readLastLinesAt returns the last limit non-blank complete lines and the
// offset just past them. A trailing line without a newline is left for the
// next forward read. A non-positive limit skips straight to that offset.
func readLastLinesAt(path string, limit int) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, services.Wrap(services.ErrIO, "logs", "open", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, 0, services.Wrap(services.ErrIO, "logs", "stat", path, err)
	}
	enc, err := sniffEncoding(file)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrIO, "logs", "read", path, err)
	}
	end, err := lastLineEnd(file, info.Size(), enc)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrIO, "logs", "read", path, err)
	}

	var lines []string
	if limit > 0 {
		window, err := fillWindow(io.NewSectionReader(file, 0, end), limit)
		if err != nil {
			return nil, 0, services.Wrap(services.ErrIO, "logs", "read", path, err)
		}
		lines = nonBlank(window.Lines())
	}
	return lines, end, nil
}

// readForward reads complete lines after offset, decoding them the same way
// as readLastLinesAt. A trailing line without a newline is left for the next
// call. An offset past the end of the file means it was truncated, so reading
// restarts at the beginning.
func readForward(path string, offset int64) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, services.Wrap(services.ErrIO, "logs", "open", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, 0, services.Wrap(services.ErrIO, "logs", "stat", path, err)
	}
	if offset > info.Size() {
		offset = 0
	}
	enc, err := sniffEncoding(file)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrIO, "logs", "read", path, err)
	}
	offset = enc.align(offset)
	if offset >= info.Size() {
		return nil, offset, nil
	}

	data, err := io.ReadAll(io.NewSectionReader(file, offset, info.Size()-offset))
	if err != nil {
		return nil, 0, services.Wrap(services.ErrIO, "logs", "read", path, err)
	}

	var lines []string
	pos := 0
	for {
		idx := enc.indexNewline(data[pos:])
		if idx < 0 {
			break
		}
		line, err := enc.decode(data[pos : pos+idx])
		if err != nil {
			return nil, 0, services.Wrap(services.ErrIO, "logs", "decode", path, err)
		}
		lines = append(lines, strings.TrimRight(line, "\r"))
		pos += idx + len(enc.newline)
	}
	return nonBlank(lines), offset + int64(pos), nil
}

// waitForLines blocks until path gains new non-blank lines, wait elapses, or
// ctx ends. Change notifications come from a watcher on the parent directory
// so the file may be created or replaced while waiting.
func waitForLines(ctx context.Context, path string, offset int64, wait time.Duration) (TailResult, error) {
	result := TailResult{Offset: offset}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return result, services.Wrap(services.ErrIO, "logs", "watch", path, err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return result, services.Wrap(services.ErrIO, "logs", "watch", path, err)
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	target := filepath.Clean(path)
	for {
		lines, newOffset, err := readForward(path, result.Offset)
		if err != nil {
			return result, err
		}
		result.Offset = newOffset
		if len(lines) > 0 {
			result.Lines = lines
			return result, nil
		}

	waitEvent:
		for {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-timer.C:
				return result, nil
			case ev, ok := <-watcher.Events:
				if !ok {
					return result, services.Wrap(services.ErrIO, "logs", "watch", "watcher closed", nil)
				}
				if filepath.Clean(ev.Name) == target && ev.Has(fsnotify.Write|fsnotify.Create) {
					break waitEvent
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return result, services.Wrap(services.ErrIO, "logs", "watch", "watcher closed", nil)
				}
				if err != nil {
					return result, services.Wrap(services.ErrIO, "logs", "watch", path, err)
				}
			}
		}
	}
}
