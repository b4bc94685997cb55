package binary

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Writer provides buffered writing utilities for chunk encoding.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// WriteU32 writes a little-endian uint32 (fixed 4 bytes).
func (w *Writer) WriteU32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteU64 writes a little-endian uint64 (fixed 8 bytes).
func (w *Writer) WriteU64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteI64 writes a little-endian int64.
func (w *Writer) WriteI64(v int64) {
	w.WriteU64(uint64(v))
}

// WriteF64 writes the IEEE-754 bits of v.
func (w *Writer) WriteF64(v float64) {
	w.WriteU64(math.Float64bits(v))
}

// WriteCString writes s followed by a zero terminator.
func (w *Writer) WriteCString(s string) {
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
}

// WriteAbsent writes the absent string (size 0), which luac uses for
// sources a function shares with its parent.
func (w *Writer) WriteAbsent() {
	w.buf.WriteByte(0)
}

// WriteString writes s in the Lua 5.3 dump form. The size counts a
// trailing NUL that is not stored, so "" is written as size 1.
func (w *Writer) WriteString(s string) {
	size := uint64(len(s)) + 1
	if size < 0xff {
		w.buf.WriteByte(byte(size))
	} else {
		w.buf.WriteByte(0xff)
		w.WriteU64(size)
	}
	w.buf.WriteString(s)
}
