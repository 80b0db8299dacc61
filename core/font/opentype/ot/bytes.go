package ot

import (
	"errors"
	"fmt"
)

// Reading bytes from a font's binary representation

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

func errFontFormat(t string) error {
	return fmt.Errorf("OpenType font format: %s", t)
}

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// binarySegm is a segment of byte data.
type binarySegm []byte

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n <= 0 || offset+n > len(b) {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

func (b binarySegm) u16(i int) (uint16, error) {
	if i < 0 || i+2 > len(b) {
		return 0, errBufferBounds
	}
	return u16(b[i:]), nil
}

func (b binarySegm) u32(i int) (uint32, error) {
	if i < 0 || i+4 > len(b) {
		return 0, errBufferBounds
	}
	return u32(b[i:]), nil
}

// U16 is convenience access to 16 bit data at byte index i, 0 on bounds error.
func (b binarySegm) U16(i int) uint16 {
	n, err := b.u16(i)
	if err != nil {
		return 0
	}
	return n
}

// U32 is convenience access to 32 bit data at byte index i, 0 on bounds error.
func (b binarySegm) U32(i int) uint32 {
	n, err := b.u32(i)
	if err != nil {
		return 0
	}
	return n
}

// S16 is convenience access to signed 16 bit data at byte index i.
func (b binarySegm) S16(i int) int16 {
	return int16(b.U16(i))
}
