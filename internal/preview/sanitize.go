package preview

// sanitize.go cleans decoded payloads before they reach encoding/csv:
//
//   - bomReader drops a leading UTF-8 BOM (0xEF 0xBB 0xBF) written by Excel.
//   - utf8Reader replaces invalid UTF-8 bytes with '?'.
//
// Both work on a stream so a gzip payload never has to be inflated twice.

import (
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// newCleanReader strips the BOM and then sanitizes UTF-8.
func newCleanReader(r io.Reader) io.Reader {
	return newUTF8Reader(&bomReader{r: r})
}

// bomReader skips a UTF-8 BOM at the start of the stream.
type bomReader struct {
	r       io.Reader
	checked bool
	head    []byte
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true

		var buf [3]byte
		n, err := io.ReadFull(b.r, buf[:])
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return 0, err
		}
		if n < 3 || !bytes.Equal(buf[:], utf8BOM) {
			b.head = append(b.head, buf[:n]...)
		}
	}

	if len(b.head) > 0 {
		n := copy(p, b.head)
		b.head = b.head[n:]
		return n, nil
	}
	return b.r.Read(p)
}

// utf8Reader rewrites invalid UTF-8. It reads into its own buffer, so
// callers may pass any size; bytes that may start a multi-byte sequence
// split across reads are held back until the next fill.
type utf8Reader struct {
	r       io.Reader
	buf     []byte
	out     []byte
	pending []byte
	err     error
}

func newUTF8Reader(r io.Reader) *utf8Reader {
	return &utf8Reader{
		r:       r,
		buf:     make([]byte, 4096),
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

func (u *utf8Reader) Read(p []byte) (int, error) {
	for len(u.out) == 0 {
		if u.err != nil {
			return 0, u.err
		}

		held := copy(u.buf, u.pending)
		u.pending = u.pending[:0]

		n, err := u.r.Read(u.buf[held:])
		data := u.buf[:held+n]
		u.err = err
		u.out = data[:u.clean(data, err != nil)]
	}

	n := copy(p, u.out)
	u.out = u.out[n:]
	return n, nil
}

// clean compacts data in place and returns the number of bytes to emit.
// Unless atEOF, a trailing partial rune moves to u.pending.
func (u *utf8Reader) clean(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		if data[read] < utf8.RuneSelf {
			data[write] = data[read]
			write++
			read++
			continue
		}

		rest := data[read:]
		if !atEOF && !utf8.FullRune(rest) {
			u.pending = append(u.pending, rest...)
			return write
		}

		r, size := utf8.DecodeRune(rest)
		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], rest[:size])
		write += size
		read += size
	}
	return write
}
