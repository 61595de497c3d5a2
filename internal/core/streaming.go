package core

// streaming.go provides the reader chain that every upload passes through
// before it reaches the CSV parser:
//
//   - sizeLimitReader: fails with ErrFileTooLarge past the configured cap
//   - bomSkippingReader: removes a UTF-8 BOM (0xEF 0xBB 0xBF) from Windows files
//   - utf8Sanitizer: replaces invalid UTF-8 bytes with '?'
//
// NewIngestReader applies them in order after decompression.

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrFileTooLarge is returned once an upload exceeds the size cap.
// The cap applies to decompressed bytes.
var ErrFileTooLarge = errors.New("file too large")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NewIngestReader wraps r so the parser sees at most maxBytes of BOM-free,
// valid UTF-8 text. A non-positive maxBytes disables the cap.
func NewIngestReader(r io.Reader, maxBytes int64) io.Reader {
	if maxBytes > 0 {
		r = &sizeLimitReader{r: r, remaining: maxBytes, max: maxBytes}
	}
	return newUTF8Sanitizer(newBOMSkippingReader(r))
}

// sizeLimitReader is io.LimitReader that reports overflow instead of EOF.
type sizeLimitReader struct {
	r         io.Reader
	remaining int64
	max       int64
}

func (l *sizeLimitReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, l.max)
	}
	// Allow one byte past the cap so overflow is detectable.
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n + int(l.remaining), fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, l.max)
	}
	return n, err
}

// bomSkippingReader drops a leading UTF-8 BOM.
type bomSkippingReader struct {
	r       io.Reader
	checked bool
	pending []byte
}

func newBOMSkippingReader(r io.Reader) *bomSkippingReader {
	return &bomSkippingReader{r: r}
}

func (b *bomSkippingReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true

		var head [3]byte
		n, err := io.ReadFull(b.r, head[:])
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return 0, err
		}
		if n < 3 || !bytes.Equal(head[:], utf8BOM) {
			b.pending = append(b.pending, head[:n]...)
		}
		if n < 3 && len(b.pending) == 0 {
			return 0, io.EOF
		}
	}

	if len(b.pending) > 0 {
		n := copy(p, b.pending)
		b.pending = b.pending[n:]
		return n, nil
	}
	return b.r.Read(p)
}

// utf8Sanitizer replaces invalid UTF-8 bytes with '?' on the fly. A multi-byte
// sequence split across reads is carried over to the next call.
type utf8Sanitizer struct {
	r       io.Reader
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(p) < utf8.UTFMax {
		return 0, io.ErrShortBuffer
	}

	offset := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	if isASCII(p[:n]) {
		return n, err
	}
	return s.sanitize(p[:n], err != nil), err
}

// sanitize rewrites data in place and returns the number of bytes to emit.
// Unless atEnd, an incomplete trailing sequence is kept for the next read.
func (s *utf8Sanitizer) sanitize(data []byte, atEnd bool) int {
	write := 0
	for read := 0; read < len(data); {
		if !atEnd && !utf8.FullRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}

		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
