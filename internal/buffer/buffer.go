package buffer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrCursorOutOfRange is returned by SetCursor for positions past the end of the data.
var ErrCursorOutOfRange = errors.New("buffer: cursor out of range")

// Buffer is a growable byte buffer with a single read/write cursor.
// Writes past the end grow the buffer; reads past the end are truncated to
// what is available. Multi-byte helpers are little-endian.
type Buffer struct {
	data   []byte
	cursor int
}

func New() *Buffer {
	return &Buffer{data: make([]byte, 0, 64)}
}

// NewSize returns a zero-filled buffer of n bytes with the cursor at 0.
func NewSize(n int) *Buffer {
	return &Buffer{data: make([]byte, n)}
}

// FromBytes copies b into a new buffer with the cursor at 0.
func FromBytes(b []byte) *Buffer {
	data := make([]byte, len(b))
	copy(data, b)
	return &Buffer{data: data}
}

// Clone returns an independent copy, cursor included.
func (b *Buffer) Clone() *Buffer {
	c := FromBytes(b.data)
	c.cursor = b.cursor
	return c
}

// Write copies p at the cursor, growing the buffer when needed, and advances the cursor.
func (b *Buffer) Write(p []byte) (int, error) {
	if end := b.cursor + len(p); end > len(b.data) {
		if end > cap(b.data) {
			grown := make([]byte, end, max(end, 2*cap(b.data)))
			copy(grown, b.data)
			b.data = grown
		} else {
			b.data = b.data[:end]
		}
	}
	copy(b.data[b.cursor:], p)
	b.cursor += len(p)
	return len(p), nil
}

// Read copies up to len(p) bytes from the cursor and returns how many were copied.
// Reading at the end returns 0; it is not an error.
func (b *Buffer) Read(p []byte) int {
	n := copy(p, b.data[b.cursor:])
	b.cursor += n
	return n
}

func (b *Buffer) SetCursor(pos int) error {
	if pos < 0 || pos > len(b.data) {
		return fmt.Errorf("%w: cursor position (%d) cannot be greater than buffer size (%d)", ErrCursorOutOfRange, pos, len(b.data))
	}
	b.cursor = pos
	return nil
}

func (b *Buffer) Cursor() int    { return b.cursor }
func (b *Buffer) Size() int      { return len(b.data) }
func (b *Buffer) Remaining() int { return len(b.data) - b.cursor }

// Bytes returns the whole content. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte { return b.data }

func (b *Buffer) WriteU8(v uint8) {
	b.Write([]byte{v})
}

func (b *Buffer) WriteU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.Write(tmp[:])
}

func (b *Buffer) WriteF32(v float32) {
	b.WriteU32(math.Float32bits(v))
}

// WriteString writes a u32 length prefix followed by the raw bytes.
func (b *Buffer) WriteString(s string) {
	b.WriteU32(uint32(len(s)))
	b.Write([]byte(s))
}

// ReadU8 returns 0 when no byte is left.
func (b *Buffer) ReadU8() uint8 {
	var tmp [1]byte
	if b.Read(tmp[:]) < 1 {
		return 0
	}
	return tmp[0]
}

// ReadU32 returns 0 and consumes what is left when fewer than 4 bytes remain.
func (b *Buffer) ReadU32() uint32 {
	var tmp [4]byte
	if b.Read(tmp[:]) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(tmp[:])
}

func (b *Buffer) ReadF32() float32 {
	return math.Float32frombits(b.ReadU32())
}

// ReadString reads a length-prefixed string, truncated to the available bytes.
func (b *Buffer) ReadString() string {
	n := b.ReadU32()
	raw := make([]byte, min(int(n), b.Remaining()))
	b.Read(raw)
	return string(raw)
}
