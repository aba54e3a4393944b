// Package framing splits a byte stream into newline-delimited messages.
package framing

import "bytes"

// DefaultMaxBuffer bounds the size of an unterminated line (1 MiB).
const DefaultMaxBuffer = 1 << 20

// LineFramer is an incremental line splitter. Feed it arbitrary chunks and it
// returns the complete lines seen so far, retaining any partial tail until the
// rest of it arrives. Not safe for concurrent use.
type LineFramer struct {
	buf       []byte
	max       int
	overflows int
	// discarding is set while the rest of an oversized line is being dropped.
	discarding bool
}

// Option configures a LineFramer.
type Option func(*LineFramer)

// WithMaxBuffer limits the retained partial line. Zero disables the limit.
func WithMaxBuffer(n int) Option {
	return func(f *LineFramer) {
		f.max = n
	}
}

// New creates a LineFramer.
func New(opts ...Option) *LineFramer {
	f := &LineFramer{max: DefaultMaxBuffer}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Feed appends chunk and returns every complete line, without its terminator.
// Blank lines are skipped and a trailing '\r' is trimmed.
func (f *LineFramer) Feed(chunk []byte) [][]byte {
	if f.discarding {
		i := bytes.IndexByte(chunk, '\n')
		if i < 0 {
			return nil
		}
		f.discarding = false
		chunk = chunk[i+1:]
	}
	f.buf = append(f.buf, chunk...)

	var lines [][]byte
	for {
		i := bytes.IndexByte(f.buf, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimSuffix(f.buf[:i], []byte{'\r'})
		if len(bytes.TrimSpace(line)) > 0 {
			// Copy out: f.buf is reused for the remainder.
			lines = append(lines, append([]byte(nil), line...))
		}
		f.buf = f.buf[i+1:]
	}

	if f.max > 0 && len(f.buf) > f.max {
		f.overflows++
		f.buf = nil
		f.discarding = true
	}
	if len(f.buf) == 0 {
		f.buf = nil
	}
	return lines
}

// Buffered returns the size of the retained partial line.
func (f *LineFramer) Buffered() int {
	return len(f.buf)
}

// Overflows returns how many partial lines were discarded for exceeding the limit.
func (f *LineFramer) Overflows() int {
	return f.overflows
}

// Reset drops any retained partial line.
func (f *LineFramer) Reset() {
	f.buf = nil
	f.discarding = false
}
