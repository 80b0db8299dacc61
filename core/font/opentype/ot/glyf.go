package ot

// Access to records of the 'glyf' table. A glyph record starts with
//
//	int16  numberOfContours   // negative for composite glyphs
//	int16  xMin, yMin, xMax, yMax
//
// followed by contour data (simple glyphs) or component records (composite
// glyphs). See
// https://docs.microsoft.com/en-us/typography/opentype/spec/glyf

// Glyph is the raw record of a single glyph.
type Glyph []byte

// Component flags of composite glyphs.
const (
	argsAreWords       uint16 = 0x0001 // ARG_1_AND_2_ARE_WORDS
	argsAreXYValues    uint16 = 0x0002 // ARGS_ARE_XY_VALUES
	roundXYToGrid      uint16 = 0x0004 // ROUND_XY_TO_GRID
	weHaveAScale       uint16 = 0x0008 // WE_HAVE_A_SCALE
	moreComponents     uint16 = 0x0020 // MORE_COMPONENTS
	xAndYScale         uint16 = 0x0040 // WE_HAVE_AN_X_AND_Y_SCALE
	twoByTwo           uint16 = 0x0080 // WE_HAVE_A_TWO_BY_TWO
	weHaveInstructions uint16 = 0x0100 // WE_HAVE_INSTRUCTIONS
)

// Empty returns true for glyphs without outline (e.g. the space character).
func (g Glyph) Empty() bool {
	return len(g) == 0
}

// IsComposite returns true if the glyph is assembled from component glyphs.
func (g Glyph) IsComposite() bool {
	return len(g) >= 2 && int16(u16(g)) < 0
}

// NumContours returns the contour count of a simple glyph, 0 for empty and
// composite glyphs.
func (g Glyph) NumContours() int {
	if g.Empty() || g.IsComposite() {
		return 0
	}
	return int(int16(u16(g)))
}

// BBox returns the glyph's bounding box as stated in its header.
func (g Glyph) BBox() (xMin, yMin, xMax, yMax int16) {
	if len(g) < 10 {
		return 0, 0, 0, 0
	}
	b := binarySegm(g)
	return b.S16(2), b.S16(4), b.S16(6), b.S16(8)
}

// NumPoints returns the number of outline points of a simple glyph.
// The point count is the last entry of the endPtsOfContours array, plus one.
func (g Glyph) NumPoints() int {
	n := g.NumContours()
	if n == 0 {
		return 0
	}
	b := binarySegm(g)
	last, err := b.u16(10 + (n-1)*2)
	if err != nil {
		return 0
	}
	return int(last) + 1
}

// componentRecord locates one component reference within a composite glyph:
// the byte position of its glyph-index field, and the position of the
// following record.
type componentRecord struct {
	gid     GlyphIndex
	gidPos  int
	nextPos int
	last    bool
}

func (g Glyph) components() ([]componentRecord, error) {
	if !g.IsComposite() {
		return nil, nil
	}
	b := binarySegm(g)
	var recs []componentRecord
	pos := 10
	for {
		flags, err := b.u16(pos)
		if err != nil {
			return nil, errFontFormat("composite glyph component record")
		}
		rec := componentRecord{gid: GlyphIndex(b.U16(pos + 2)), gidPos: pos + 2}
		pos += 4
		if flags&argsAreWords != 0 {
			pos += 4
		} else {
			pos += 2
		}
		switch {
		case flags&weHaveAScale != 0:
			pos += 2
		case flags&xAndYScale != 0:
			pos += 4
		case flags&twoByTwo != 0:
			pos += 8
		}
		rec.nextPos = pos
		rec.last = flags&moreComponents == 0
		recs = append(recs, rec)
		if rec.last {
			return recs, nil
		}
	}
}

// ComponentGIDs returns the glyph indices referenced by a composite glyph,
// in record order. Simple glyphs yield nil.
func (g Glyph) ComponentGIDs() ([]GlyphIndex, error) {
	recs, err := g.components()
	if err != nil {
		return nil, err
	}
	gids := make([]GlyphIndex, len(recs))
	for i, rec := range recs {
		gids[i] = rec.gid
	}
	return gids, nil
}

// RemapComponents returns a copy of a composite glyph with every component's
// glyph index replaced according to remap. Simple glyphs are returned
// unchanged (not copied).
func (g Glyph) RemapComponents(remap func(GlyphIndex) (GlyphIndex, error)) (Glyph, error) {
	recs, err := g.components()
	if err != nil {
		return nil, err
	}
	if recs == nil {
		return g, nil
	}
	dup := make(Glyph, len(g))
	copy(dup, g)
	for _, rec := range recs {
		gid, err := remap(rec.gid)
		if err != nil {
			return nil, err
		}
		dup[rec.gidPos] = byte(gid >> 8)
		dup[rec.gidPos+1] = byte(gid)
	}
	return dup, nil
}
