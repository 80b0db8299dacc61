package ot

import (
	"fmt"
)

// Code comments often will cite passages from the OpenType specification
// version 1.9; see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// Font represents the parts of an OpenType font needed to copy glyphs out
// of it. Its elements are assumed immutable while the Font remains in use.
type Font struct {
	FontType uint32
	tables   map[Tag]binarySegm
	Head     HeadInfo
	HHea     HHeaInfo
	numGlyph int
	hmtx     binarySegm
	loca     binarySegm
	glyf     binarySegm
}

// HeadInfo carries the fields of table 'head' the generator cares about.
type HeadInfo struct {
	Flags            uint16
	UnitsPerEm       uint16 // values 16 … 16384 are valid
	XMin, YMin       int16  // font-wide bounding box
	XMax, YMax       int16
	IndexToLocFormat uint16 // needed to interpret loca table: 0 short, 1 long
}

// HHeaInfo carries the vertical metrics and metric count of table 'hhea'.
type HHeaInfo struct {
	Ascender          int16
	Descender         int16
	LineGap           int16
	NumberOfHMetrics  uint16
	AdvanceWidthMax   uint16
	UnderlinePosition int16 // from 'post', stored here for convenience
	UnderlineThick    int16
}

// Required tables for glyph copying. cmap and name are required by the spec,
// too, but are read through x/image/font/sfnt by package font.
var requiredTables = []string{
	"head", "hhea", "hmtx", "maxp", "loca", "glyf",
}

// Parse parses an OpenType font from a byte slice. Only fonts with TrueType
// outlines are accepted; 'OTTO' (CFF) fonts are rejected.
func Parse(font []byte) (*Font, error) {
	src := binarySegm(font)
	if len(src) < 12 {
		return nil, errFontFormat("table directory")
	}
	fontType := src.U32(0)
	switch fontType {
	case 0x00010000, 0x74727565: // TrueType, 'true'
	case 0x4f54544f: // 'OTTO'
		return nil, errFontFormat("CFF outlines cannot be copied, need TrueType flavor")
	default:
		return nil, errFontFormat(fmt.Sprintf("font type not supported: %x", fontType))
	}
	tableCount := int(src.U16(4))
	otf := &Font{FontType: fontType, tables: make(map[Tag]binarySegm)}
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	buf, err := src.view(12, 16*tableCount)
	if err != nil {
		return nil, errFontFormat("table record entries")
	}
	for b, prevTag := buf, Tag(0); len(b) > 0; b = b[16:] {
		tag := MakeTag(b)
		if tag < prevTag {
			return nil, errFontFormat("table order")
		}
		prevTag = tag
		off, size := u32(b[8:12]), u32(b[12:16])
		if off&3 != 0 { // ignore checksums, but "all tables must begin on four byte boundries".
			return nil, errFontFormat("invalid table offset")
		}
		if int(off)+int(size) > len(src) {
			return nil, errFontFormat("table bounds")
		}
		otf.tables[tag] = src[off : off+size]
	}
	if err := otf.extractInfo(); err != nil {
		return nil, err
	}
	tracer().Debugf("parsed base font with %d tables, %d glyphs", tableCount, otf.numGlyph)
	return otf, nil
}

func (otf *Font) extractInfo() error {
	for _, tag := range requiredTables {
		if _, ok := otf.tables[T(tag)]; !ok {
			return errFontFormat("missing required table " + tag)
		}
	}
	head := otf.tables[T("head")]
	if len(head) < 54 {
		return errFontFormat("size of head table")
	}
	otf.Head.Flags = head.U16(16)
	otf.Head.UnitsPerEm = head.U16(18)
	otf.Head.XMin, otf.Head.YMin = head.S16(36), head.S16(38)
	otf.Head.XMax, otf.Head.YMax = head.S16(40), head.S16(42)
	otf.Head.IndexToLocFormat = head.U16(50)
	hhea := otf.tables[T("hhea")]
	if len(hhea) < 36 {
		return errFontFormat("size of hhea table")
	}
	otf.HHea.Ascender = hhea.S16(4)
	otf.HHea.Descender = hhea.S16(6)
	otf.HHea.LineGap = hhea.S16(8)
	otf.HHea.AdvanceWidthMax = hhea.U16(10)
	otf.HHea.NumberOfHMetrics = hhea.U16(34)
	maxp := otf.tables[T("maxp")]
	if len(maxp) < 6 {
		return errFontFormat("size of maxp table")
	}
	otf.numGlyph = int(maxp.U16(4))
	if post, ok := otf.tables[T("post")]; ok && len(post) >= 12 {
		otf.HHea.UnderlinePosition = post.S16(8)
		otf.HHea.UnderlineThick = post.S16(10)
	}
	otf.hmtx = otf.tables[T("hmtx")]
	otf.loca = otf.tables[T("loca")]
	otf.glyf = otf.tables[T("glyf")]
	return nil
}

// Table returns the raw bytes of the font table with the given tag.
func (otf *Font) Table(tag Tag) ([]byte, bool) {
	t, ok := otf.tables[tag]
	return t, ok
}

// TableTags returns a list of tags, one for each table contained in the font.
func (otf *Font) TableTags() []Tag {
	var tags = make([]Tag, 0, len(otf.tables))
	for tag := range otf.tables {
		tags = append(tags, tag)
	}
	return tags
}

// NumGlyphs returns the number of glyphs in the font, as stated by 'maxp'.
func (otf *Font) NumGlyphs() int {
	return otf.numGlyph
}

// Metrics returns the horizontal metrics for a glyph. Glyphs beyond
// hhea.numberOfHMetrics share the advance width of the last entry.
func (otf *Font) Metrics(gid GlyphIndex) (advance uint16, lsb int16) {
	n := int(otf.HHea.NumberOfHMetrics)
	if n == 0 {
		return 0, 0
	}
	if int(gid) < n {
		return otf.hmtx.U16(int(gid) * 4), otf.hmtx.S16(int(gid)*4 + 2)
	}
	advance = otf.hmtx.U16((n - 1) * 4)
	lsb = otf.hmtx.S16(n*4 + (int(gid)-n)*2)
	return advance, lsb
}

// GlyphData returns the raw 'glyf' record of a glyph. Empty glyphs (such as
// the space character) have a zero-length record; this is not an error.
func (otf *Font) GlyphData(gid GlyphIndex) (Glyph, error) {
	if int(gid) >= otf.numGlyph {
		return nil, errFontFormat(fmt.Sprintf("glyph ID %d out of range", gid))
	}
	var start, end uint32
	if otf.Head.IndexToLocFormat == 1 {
		start, end = otf.loca.U32(int(gid)*4), otf.loca.U32(int(gid)*4+4)
	} else {
		start = uint32(otf.loca.U16(int(gid)*2)) * 2
		end = uint32(otf.loca.U16(int(gid)*2+2)) * 2
	}
	if start > end || end > uint32(len(otf.glyf)) {
		return nil, errFontFormat(fmt.Sprintf("loca entry of glyph %d", gid))
	}
	return Glyph(otf.glyf[start:end]), nil
}
