package gridsource

// readers.go holds the io.Reader wrappers applied to uploads before parsing:
//
//   - limitReader: fails with ErrFileTooLarge past a byte budget
//   - skipBOM: drops a leading UTF-8 byte order mark
//   - utf8Sanitizer: replaces invalid UTF-8 bytes with '?'
//
// Order for CSV input: limit, then BOM, then sanitize.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// limitReader counts bytes and fails once more than max have been read.
type limitReader struct {
	r    io.Reader
	max  int64
	read int64
}

func newLimitReader(r io.Reader, max int64) *limitReader {
	return &limitReader{r: r, max: max}
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.read > l.max {
		return 0, ErrFileTooLarge
	}
	// Allow one byte past the budget so an input of exactly max bytes passes.
	if room := l.max + 1 - l.read; int64(len(p)) > room {
		p = p[:room]
	}
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.read > l.max {
		return n, ErrFileTooLarge
	}
	return n, err
}

// BytesRead returns the number of bytes consumed so far.
func (l *limitReader) BytesRead() int64 {
	return l.read
}

// skipBOM returns a reader over r without a leading UTF-8 BOM.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// utf8Sanitizer rewrites invalid UTF-8 while streaming. Bytes that may begin
// a rune split across reads are held back until the next fill.
type utf8Sanitizer struct {
	r       io.Reader
	buf     []byte
	out     []byte // sanitized bytes not yet returned
	pending []byte
	err     error
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{
		r:       r,
		buf:     make([]byte, 32*1024),
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		s.fill()
	}
	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

func (s *utf8Sanitizer) fill() {
	off := copy(s.buf, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(s.buf[off:])
	s.err = err
	s.out = s.buf[:s.clean(s.buf[:off+n], err != nil)]
}

// clean sanitizes buf in place and returns the length of the output. When
// final is false an incomplete trailing rune moves to s.pending.
func (s *utf8Sanitizer) clean(buf []byte, final bool) int {
	w := 0
	for i := 0; i < len(buf); {
		c := buf[i]
		if c < utf8.RuneSelf {
			buf[w] = c
			w++
			i++
			continue
		}

		r, size := utf8.DecodeRune(buf[i:])
		if r == utf8.RuneError && size == 1 {
			if !final && !utf8.FullRune(buf[i:]) {
				s.pending = append(s.pending, buf[i:]...)
				return w
			}
			buf[w] = '?'
			w++
			i++
			continue
		}

		copy(buf[w:], buf[i:i+size])
		w += size
		i += size
	}
	return w
}
