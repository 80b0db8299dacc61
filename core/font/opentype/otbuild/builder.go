/*
Package otbuild constructs OpenType fonts whose glyphs are assembled from
glyphs of a base font.

The builder plays the role a font editor's scripting host would play
otherwise: clients create glyphs, map characters and register substitution
rules against an in-memory object model, then serialize the whole thing into
an sfnt binary. Outline data is never synthesized: glyph outlines enter the
font exclusively by copying records of the base font's 'glyf' table, or by
composing references to such copies.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2025 Norbert Pillmayer <norbert@pillmayer.com>
*/
package otbuild

import (
	"fmt"
	"math"

	"github.com/npillmayer/emojitext/core"
	"github.com/npillmayer/emojitext/core/font"
	"github.com/npillmayer/emojitext/core/font/opentype/ot"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'emojitext.fonts'.
func tracer() tracing.Trace {
	return tracing.Select("emojitext.fonts")
}

// GlyphID identifies a glyph of the font under construction.
type GlyphID = ot.GlyphIndex

// Metadata are the SFNT naming-table entries of the font under construction.
type Metadata struct {
	FontName     string // PostScript name, no spaces
	Family       string
	SubFamily    string // defaults to "Regular"
	FullName     string
	Version      string // bare version number, e.g. "1.0"
	Copyright    string
	UniqueID     string
	License      string
	LicenseURL   string
	Manufacturer string
	VendorURL    string
}

// glyph is one glyph of the font under construction.
type glyph struct {
	name       string
	data       ot.Glyph // raw 'glyf' record, possibly with remapped components
	advance    uint16
	lsb        int16
	components int // component count for composite glyphs
}

// Builder is an OpenType font under construction. The zero value is not
// usable; create instances with NewBuilder.
type Builder struct {
	base       *font.ScalableFont
	baseOT     *ot.Font
	glyphs     []*glyph
	byName     map[string]GlyphID
	byRune     map[rune]GlyphID
	baseCopied map[ot.GlyphIndex]GlyphID
	ligs       map[GlyphID][]ligature
	ligCount   int
	maxContext int
	truncated  int
	meta       Metadata
}

// NewBuilder starts a font build on top of a base font. The base font must
// carry TrueType outlines. Vertical metrics and units-per-em are inherited
// from the base font, and its .notdef glyph is copied as glyph 0.
func NewBuilder(base *font.ScalableFont) (*Builder, error) {
	baseOT, err := ot.Parse(base.Binary)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID,
			"base font %s unusable for glyph copying", base.Fontname)
	}
	b := &Builder{
		base:       base,
		baseOT:     baseOT,
		byName:     make(map[string]GlyphID),
		byRune:     make(map[rune]GlyphID),
		baseCopied: make(map[ot.GlyphIndex]GlyphID),
		ligs:       make(map[GlyphID][]ligature),
	}
	if _, err := b.copyBaseGID(0, ".notdef", 0); err != nil {
		return nil, err
	}
	return b, nil
}

// UnitsPerEm returns the design grid resolution, inherited from the base font.
func (b *Builder) UnitsPerEm() uint16 {
	return b.baseOT.Head.UnitsPerEm
}

// NumGlyphs returns the current number of glyphs.
func (b *Builder) NumGlyphs() int {
	return len(b.glyphs)
}

// TruncatedLabels returns the number of text glyphs which had to be cut short
// to honor the glyph metrics ceiling.
func (b *Builder) TruncatedLabels() int {
	return b.truncated
}

// LigatureCount returns the number of registered substitution rules.
func (b *Builder) LigatureCount() int {
	return b.ligCount
}

// SetMetadata sets the naming-table entries of the font.
func (b *Builder) SetMetadata(meta Metadata) {
	if meta.SubFamily == "" {
		meta.SubFamily = "Regular"
	}
	b.meta = meta
}

// GlyphFor returns the glyph a rune is mapped to, if any.
func (b *Builder) GlyphFor(r rune) (GlyphID, bool) {
	gid, ok := b.byRune[r]
	return gid, ok
}

// MapRune maps a character to a glyph in the font's character map.
// Re-mapping a character to a different glyph is an error.
func (b *Builder) MapRune(r rune, gid GlyphID) error {
	if prev, ok := b.byRune[r]; ok {
		if prev == gid {
			return nil
		}
		return core.Error(core.EINVALID, "character %#U already mapped to glyph %d", r, prev)
	}
	if int(gid) >= len(b.glyphs) {
		return core.Error(core.EINVALID, "cannot map %#U to non-existing glyph %d", r, gid)
	}
	b.byRune[r] = gid
	return nil
}

// CopyBaseGlyph copies the base font's glyph for rune r into the font,
// including outline and metrics, and maps r to the copy. Glyphs are copied
// at most once; repeated calls return the existing copy.
//
// Composite base glyphs are copied with their component glyphs, which get
// re-indexed for the new font.
func (b *Builder) CopyBaseGlyph(r rune) (GlyphID, error) {
	bgid := ot.GlyphIndex(b.base.GlyphIndex(r))
	if bgid == 0 {
		return 0, core.Error(core.EMISSING, "base font %s has no glyph for %#U",
			b.base.Fontname, r)
	}
	gid, err := b.copyBaseGID(bgid, uniName(r), 0)
	if err != nil {
		return 0, err
	}
	if err := b.MapRune(r, gid); err != nil {
		return 0, err
	}
	return gid, nil
}

const maxComponentDepth = 3

func (b *Builder) copyBaseGID(bgid ot.GlyphIndex, name string, depth int) (GlyphID, error) {
	if gid, ok := b.baseCopied[bgid]; ok {
		return gid, nil
	}
	if depth >= maxComponentDepth {
		return 0, core.Error(core.EINVALID, "base glyph %d: composite nesting too deep", bgid)
	}
	data, err := b.baseOT.GlyphData(bgid)
	if err != nil {
		return 0, core.WrapError(err, core.EINVALID, "base font glyph %d unreadable", bgid)
	}
	advance, lsb := b.baseOT.Metrics(bgid)
	gid := GlyphID(len(b.glyphs))
	g := &glyph{name: name, advance: advance, lsb: lsb}
	b.glyphs = append(b.glyphs, g)
	b.byName[name] = gid
	b.baseCopied[bgid] = gid
	if !data.IsComposite() {
		g.data = data
		return gid, nil
	}
	// pull in the components, then rewrite the copy's glyph indices
	g.data, err = data.RemapComponents(func(cgid ot.GlyphIndex) (ot.GlyphIndex, error) {
		ngid, err := b.copyBaseGID(cgid, fmt.Sprintf("glyph%05d", len(b.glyphs)), depth+1)
		return ot.GlyphIndex(ngid), err
	})
	if err != nil {
		return 0, err
	}
	gids, _ := g.data.ComponentGIDs()
	g.components = len(gids)
	return gid, nil
}

// component of a composite text glyph.
type component struct {
	gid GlyphID
	dx  int16
}

// TextGlyph creates a glyph which renders a text label, by composing
// references to the label characters' glyphs, advanced horizontally. Every
// label character must have been copied from the base font before.
//
// The glyph's advance width is the sum of the component advances. Since
// glyph metrics are 16-bit quantities, over-long labels are truncated at the
// ceiling rather than let the advance overflow silently.
//
// An empty label yields an empty glyph with zero advance.
func (b *Builder) TextGlyph(name string, label string) (GlyphID, error) {
	if _, ok := b.byName[name]; ok {
		return 0, core.Error(core.EINVALID, "glyph name %s already in use", name)
	}
	var comps []component
	x := 0
	for _, r := range label {
		cgid, ok := b.byRune[r]
		if !ok {
			return 0, core.Error(core.EMISSING, "no glyph for label character %#U", r)
		}
		advance := int(b.glyphs[cgid].advance)
		if x+advance > math.MaxInt16 {
			b.truncated++
			tracer().Infof("composed width of %s overflows glyph metrics, label truncated", name)
			break
		}
		comps = append(comps, component{gid: cgid, dx: int16(x)})
		x += advance
	}
	gid := GlyphID(len(b.glyphs))
	g := &glyph{name: name, advance: uint16(x), components: len(comps)}
	if len(comps) > 0 {
		bbox := b.bboxOf(comps)
		g.data = encodeComposite(comps, bbox)
		g.lsb = bbox[0]
	}
	b.glyphs = append(b.glyphs, g)
	b.byName[name] = gid
	return gid, nil
}

// bboxOf computes the bounding box of a composition from the components'
// boxes. Empty components contribute nothing.
func (b *Builder) bboxOf(comps []component) (bbox [4]int16) {
	first := true
	for _, c := range comps {
		g := b.glyphs[c.gid]
		if g.data.Empty() {
			continue
		}
		xMin, yMin, xMax, yMax := g.data.BBox()
		xMin += c.dx
		xMax += c.dx
		if first {
			bbox = [4]int16{xMin, yMin, xMax, yMax}
			first = false
			continue
		}
		if xMin < bbox[0] {
			bbox[0] = xMin
		}
		if yMin < bbox[1] {
			bbox[1] = yMin
		}
		if xMax > bbox[2] {
			bbox[2] = xMax
		}
		if yMax > bbox[3] {
			bbox[3] = yMax
		}
	}
	return bbox
}

// encodeComposite writes the 'glyf' record of a composite glyph.
func encodeComposite(comps []component, bbox [4]int16) ot.Glyph {
	var buf buffer
	buf.s16(-1) // numberOfContours: composite
	buf.s16(bbox[0])
	buf.s16(bbox[1])
	buf.s16(bbox[2])
	buf.s16(bbox[3])
	for i, c := range comps {
		flags := compArgsAreWords | compArgsAreXY | compRoundToGrid
		if i < len(comps)-1 {
			flags |= compMoreComponents
		}
		buf.u16(flags)
		buf.u16(uint16(c.gid))
		buf.s16(c.dx)
		buf.s16(0)
	}
	return ot.Glyph(buf.Bytes())
}

// Component flags, mirroring the 'glyf' spec.
const (
	compArgsAreWords   uint16 = 0x0001
	compArgsAreXY      uint16 = 0x0002
	compRoundToGrid    uint16 = 0x0004
	compMoreComponents uint16 = 0x0020
)

// uniName builds a glyph name in the conventional uniXXXX/uXXXXX form.
func uniName(r rune) string {
	if r <= 0xFFFF {
		return fmt.Sprintf("uni%04X", r)
	}
	return fmt.Sprintf("u%05X", r)
}
