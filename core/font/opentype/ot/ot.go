/*
Package ot provides access to OpenType font tables at the byte level.

It is deliberately small: the generator needs to read just enough of a base
font to copy glyph outlines and metrics out of it: the table directory,
'head', 'hhea', 'maxp', 'hmtx', 'loca' and 'glyf'. Character-to-glyph lookup
on the base font goes through golang.org/x/image/font/sfnt instead and is not
replicated here. Writing of tables is the domain of package otbuild.

Only fonts with TrueType outlines are supported; outlines are copied
byte-wise and CFF charstrings cannot be re-fit.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2025 Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'emojitext.fonts'.
func tracer() tracing.Trace {
	return tracing.Select("emojitext.fonts")
}

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// --- Tag -------------------------------------------------------------------

// Tag is defined by the spec as:
// Array of four uint8s (length = 32 bits) used to identify a table, design-variation axis,
// script, language system, feature, or baseline
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
//
//	MakeTag([]byte("cmap"))
//
// If b is shorter or longer, it will be silently extended or cut as appropriate.
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate.
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}
