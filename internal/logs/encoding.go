package logs

import (
	"bytes"
	"errors"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// textEncoding describes how lines are laid out in a file, as sniffed from
// its byte order mark.
type textEncoding struct {
	bomLen  int64
	unit    int
	newline []byte
	enc     encoding.Encoding
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

func sniffEncoding(r io.ReaderAt) (textEncoding, error) {
	head := make([]byte, 3)
	n, err := r.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return textEncoding{}, err
	}
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, bomUTF8):
		return textEncoding{bomLen: 3, unit: 1, newline: []byte{'\n'}}, nil
	case bytes.HasPrefix(head, bomUTF16LE):
		return textEncoding{bomLen: 2, unit: 2, newline: []byte{'\n', 0}, enc: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)}, nil
	case bytes.HasPrefix(head, bomUTF16BE):
		return textEncoding{bomLen: 2, unit: 2, newline: []byte{0, '\n'}, enc: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)}, nil
	}
	return textEncoding{unit: 1, newline: []byte{'\n'}}, nil
}

// align moves offset back onto a code unit boundary past the byte order mark.
func (e textEncoding) align(offset int64) int64 {
	if offset < e.bomLen {
		return e.bomLen
	}
	return offset - (offset-e.bomLen)%int64(e.unit)
}

// indexNewline returns the index of the first encoded newline in data, which
// must start on a code unit boundary, or -1.
func (e textEncoding) indexNewline(data []byte) int {
	if e.unit == 1 {
		return bytes.IndexByte(data, '\n')
	}
	for i := 0; i+len(e.newline) <= len(data); i += e.unit {
		if bytes.Equal(data[i:i+len(e.newline)], e.newline) {
			return i
		}
	}
	return -1
}

func (e textEncoding) decode(raw []byte) (string, error) {
	if e.enc == nil {
		return string(raw), nil
	}
	out, err := e.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// lastLineEnd returns the offset just past the last complete line in the
// first size bytes of r. Without any newline it returns the start of text.
func lastLineEnd(r io.ReaderAt, size int64, e textEncoding) (int64, error) {
	const chunk = 64 * 1024
	nl := int64(len(e.newline))

	end := size
	for end-e.bomLen >= nl {
		start := e.align(max(end-chunk, e.bomLen))
		buf := make([]byte, end-start)
		if _, err := r.ReadAt(buf, start); err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}
		last := int64(-1)
		for pos := int64(0); pos+nl <= int64(len(buf)); {
			idx := e.indexNewline(buf[pos:])
			if idx < 0 {
				break
			}
			last = pos + int64(idx)
			pos = last + int64(e.unit)
		}
		if last >= 0 {
			return start + last + nl, nil
		}
		end = start
	}
	return e.bomLen, nil
}
