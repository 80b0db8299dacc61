package otbuild

import (
	"bytes"

	"github.com/npillmayer/emojitext/core/font/opentype/ot"
)

// Writing of binary font data. All OpenType data is big-endian.

type buffer struct {
	bytes.Buffer
}

func (b *buffer) u8(v byte) {
	b.WriteByte(v)
}

func (b *buffer) u16(v uint16) {
	b.WriteByte(byte(v >> 8))
	b.WriteByte(byte(v))
}

func (b *buffer) s16(v int16) {
	b.u16(uint16(v))
}

func (b *buffer) u32(v uint32) {
	b.WriteByte(byte(v >> 24))
	b.WriteByte(byte(v >> 16))
	b.WriteByte(byte(v >> 8))
	b.WriteByte(byte(v))
}

func (b *buffer) tag(t ot.Tag) {
	b.u32(uint32(t))
}

func (b *buffer) raw(p []byte) {
	b.Write(p)
}

// pad4 pads the buffer with zero bytes to a 4-byte boundary.
func (b *buffer) pad4() {
	for b.Len()&3 != 0 {
		b.WriteByte(0)
	}
}

// checksum is the standard sfnt table checksum: the sum of all uint32 words,
// with the table zero-padded to a word boundary.
func checksum(data []byte) uint32 {
	var sum uint32
	n := len(data) &^ 3
	for i := 0; i < n; i += 4 {
		sum += u32(data[i:])
	}
	if rest := len(data) - n; rest > 0 {
		var tail [4]byte
		copy(tail[:], data[n:])
		sum += u32(tail[:])
	}
	return sum
}

func u32(b []byte) uint32 {
	_ = b[3]
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
