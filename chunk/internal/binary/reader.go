package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

// Reader errors. They are returned wrapped in a *ParseError.
var (
	ErrTruncated   = errors.New("unexpected end of chunk data")
	ErrInvalidText = errors.New("invalid UTF-8 text")
)

// Reader is a cursor over a fully resident chunk buffer.
// A failed read leaves the position unchanged.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, r.wrapError(r.pos, ErrTruncated)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes reads exactly n bytes. The result does not alias the buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	p, err := r.take(n)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	copy(buf, p)
	return buf, nil
}

// Skip advances past n bytes.
func (r *Reader) Skip(n int) error {
	_, err := r.take(n)
	return err
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, r.wrapError(r.pos, ErrTruncated)
	}
	p := r.data[r.pos : r.pos+n]
	r.pos += n
	return p, nil
}

// ReadU32 reads a little-endian uint32 (fixed 4 bytes).
func (r *Reader) ReadU32() (uint32, error) {
	p, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

// ReadU64 reads a little-endian uint64 (fixed 8 bytes).
func (r *Reader) ReadU64() (uint64, error) {
	p, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p), nil
}

// ReadI64 reads a little-endian two's complement int64.
func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

// ReadF64 reads 8 bytes and reinterprets them as an IEEE-754 double.
func (r *Reader) ReadF64() (float64, error) {
	v, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadCString reads bytes up to a zero terminator. The terminator is
// consumed but not returned.
func (r *Reader) ReadCString() (string, error) {
	start := r.pos
	for i := start; i < len(r.data); i++ {
		if r.data[i] != 0 {
			continue
		}
		s := r.data[start:i]
		if !utf8.Valid(s) {
			return "", r.wrapError(start, ErrInvalidText)
		}
		r.pos = i + 1
		return string(s), nil
	}
	return "", r.wrapError(start, ErrTruncated)
}

// ReadString reads a Lua 5.3 dump string: a size byte, or 0xff followed by
// a size_t, where size counts a trailing NUL that is not stored. Size 0 is
// the absent string and reads as "".
func (r *Reader) ReadString() (string, error) {
	start := r.pos
	b, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	size := uint64(b)
	if b == 0xff {
		size, err = r.ReadU64()
		if err != nil {
			r.pos = start
			return "", err
		}
	}
	if size == 0 {
		return "", nil
	}
	if size-1 > uint64(r.Len()) {
		r.pos = start
		return "", r.wrapError(start, ErrTruncated)
	}
	p, _ := r.take(int(size - 1))
	if !utf8.Valid(p) {
		r.pos = start
		return "", r.wrapError(start, ErrInvalidText)
	}
	return string(p), nil
}

// Sub returns a Reader over the next n bytes and advances past them.
// Positions reported by the sub-reader are relative to the parent buffer.
func (r *Reader) Sub(n int) (*Reader, error) {
	start := r.pos
	p, err := r.take(n)
	if err != nil {
		return nil, err
	}
	return &Reader{data: r.data[:start+len(p)], pos: start}, nil
}

func (r *Reader) wrapError(pos int, err error) error {
	return &ParseError{Position: pos, Err: err}
}

// ParseError represents an error during binary parsing with position information.
type ParseError struct {
	Err      error
	Position int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("chunk: at position %d: %v", e.Position, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
