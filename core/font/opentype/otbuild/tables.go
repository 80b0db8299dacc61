package otbuild

import (
	"math/bits"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/npillmayer/emojitext/core"
	"github.com/npillmayer/emojitext/core/font/opentype/ot"
)

// Serialization of the remaining sfnt tables and final font assembly.

// Seconds between the sfnt epoch (1904-01-01) and 2025-01-01, used as a
// fixed creation/modification date. Builds of identical input have to
// produce byte-identical fonts, so wall-clock time must not leak in.
const buildDate = 3818534400

// Build serializes the font under construction into an sfnt binary with
// TrueType outlines. The glyph set and all mappings are frozen at this
// point; the Builder should not be reused afterwards.
func (b *Builder) Build() ([]byte, error) {
	if len(b.byRune) == 0 {
		return nil, core.Error(core.EINVALID, "font has no character mappings")
	}
	glyf, loca := b.encodeGlyfLoca()
	stats := b.glyphStats()
	bbox := b.fontBBox()
	tables := map[ot.Tag][]byte{
		ot.T("cmap"): encodeCmap(b.byRune),
		ot.T("glyf"): glyf,
		ot.T("head"): b.encodeHead(bbox),
		ot.T("hhea"): b.encodeHhea(stats),
		ot.T("hmtx"): b.encodeHmtx(),
		ot.T("loca"): loca,
		ot.T("maxp"): b.encodeMaxp(stats),
		ot.T("name"): b.encodeName(),
		ot.T("OS/2"): b.encodeOS2(bbox),
		ot.T("post"): b.encodePost(),
	}
	if b.ligCount > 0 {
		tables[ot.T("GSUB")] = b.encodeGSUB()
	}
	font := assembleSfnt(tables)
	tracer().Infof("assembled font with %d glyphs, %d substitution rules, %d bytes",
		len(b.glyphs), b.ligCount, len(font))
	return font, nil
}

// encodeGlyfLoca writes the 'glyf' table with each glyph record padded to a
// 4-byte boundary, and the matching long-format 'loca' table.
func (b *Builder) encodeGlyfLoca() (glyf []byte, loca []byte) {
	var gbuf, lbuf buffer
	for _, g := range b.glyphs {
		lbuf.u32(uint32(gbuf.Len()))
		gbuf.raw(g.data)
		gbuf.pad4()
	}
	lbuf.u32(uint32(gbuf.Len()))
	return gbuf.Bytes(), lbuf.Bytes()
}

type glyphStats struct {
	maxPoints       int
	maxContours     int
	maxCompPoints   int
	maxCompContours int
	maxElements     int
	maxDepth        int
	advanceMax      uint16
	minLSB          int16
	minRSB          int16
	xMaxExtent      int16
}

// glyphStats gathers the outline statistics 'maxp' and 'hhea' report.
// Composite glyphs are resolved recursively to their flattened point and
// contour counts.
func (b *Builder) glyphStats() glyphStats {
	stats := glyphStats{}
	type resolved struct{ points, contours, depth int }
	memo := make(map[GlyphID]resolved)
	var resolve func(gid GlyphID) resolved
	resolve = func(gid GlyphID) resolved {
		if r, ok := memo[gid]; ok {
			return r
		}
		g := b.glyphs[gid]
		var r resolved
		if !g.data.IsComposite() {
			r = resolved{points: g.data.NumPoints(), contours: g.data.NumContours()}
		} else {
			gids, err := g.data.ComponentGIDs()
			if err == nil {
				for _, cgid := range gids {
					cr := resolve(cgid)
					r.points += cr.points
					r.contours += cr.contours
					if cr.depth+1 > r.depth {
						r.depth = cr.depth + 1
					}
				}
			}
		}
		memo[gid] = r
		return r
	}
	firstMetric := true
	for gid, g := range b.glyphs {
		if g.advance > stats.advanceMax {
			stats.advanceMax = g.advance
		}
		if g.data.IsComposite() {
			r := resolve(GlyphID(gid))
			if r.points > stats.maxCompPoints {
				stats.maxCompPoints = r.points
			}
			if r.contours > stats.maxCompContours {
				stats.maxCompContours = r.contours
			}
			if g.components > stats.maxElements {
				stats.maxElements = g.components
			}
			if r.depth > stats.maxDepth {
				stats.maxDepth = r.depth
			}
		} else {
			if p := g.data.NumPoints(); p > stats.maxPoints {
				stats.maxPoints = p
			}
			if c := g.data.NumContours(); c > stats.maxContours {
				stats.maxContours = c
			}
		}
		if g.data.Empty() {
			continue
		}
		_, _, xMax, _ := g.data.BBox()
		rsb := int16(g.advance) - xMax
		if firstMetric {
			stats.minLSB, stats.minRSB, stats.xMaxExtent = g.lsb, rsb, xMax
			firstMetric = false
			continue
		}
		if g.lsb < stats.minLSB {
			stats.minLSB = g.lsb
		}
		if rsb < stats.minRSB {
			stats.minRSB = rsb
		}
		if xMax > stats.xMaxExtent {
			stats.xMaxExtent = xMax
		}
	}
	return stats
}

// fontBBox is the union of all glyph bounding boxes.
func (b *Builder) fontBBox() (bbox [4]int16) {
	first := true
	for _, g := range b.glyphs {
		if g.data.Empty() {
			continue
		}
		xMin, yMin, xMax, yMax := g.data.BBox()
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

func (b *Builder) encodeHead(bbox [4]int16) []byte {
	var buf buffer
	buf.u32(0x00010000) // version
	buf.u32(versionFixed(b.meta.Version))
	buf.u32(0)          // checkSumAdjustment, patched during assembly
	buf.u32(0x5F0F3CF5) // magicNumber
	buf.u16(0x000B)     // baseline at y=0, LSB at x=0, integer ppem
	buf.u16(b.baseOT.Head.UnitsPerEm)
	buf.u32(0) // created, 64-bit timestamp
	buf.u32(buildDate)
	buf.u32(0) // modified
	buf.u32(buildDate)
	buf.s16(bbox[0])
	buf.s16(bbox[1])
	buf.s16(bbox[2])
	buf.s16(bbox[3])
	buf.u16(0) // macStyle
	buf.u16(8) // lowestRecPPEM
	buf.s16(2) // fontDirectionHint
	buf.s16(1) // indexToLocFormat: long
	buf.s16(0) // glyphDataFormat
	return buf.Bytes()
}

func (b *Builder) encodeHhea(stats glyphStats) []byte {
	var buf buffer
	buf.u32(0x00010000)
	buf.s16(b.baseOT.HHea.Ascender)
	buf.s16(b.baseOT.HHea.Descender)
	buf.s16(b.baseOT.HHea.LineGap)
	buf.u16(stats.advanceMax)
	buf.s16(stats.minLSB)
	buf.s16(stats.minRSB)
	buf.s16(stats.xMaxExtent)
	buf.s16(1) // caretSlopeRise: vertical caret
	buf.s16(0) // caretSlopeRun
	buf.s16(0) // caretOffset
	buf.s16(0) // 4 reserved fields
	buf.s16(0)
	buf.s16(0)
	buf.s16(0)
	buf.s16(0) // metricDataFormat
	buf.u16(uint16(len(b.glyphs)))
	return buf.Bytes()
}

// encodeHmtx writes full metrics for every glyph; hhea states
// numberOfHMetrics = numGlyphs, so there is no shared-advance tail.
func (b *Builder) encodeHmtx() []byte {
	var buf buffer
	for _, g := range b.glyphs {
		buf.u16(g.advance)
		buf.s16(g.lsb)
	}
	return buf.Bytes()
}

func (b *Builder) encodeMaxp(stats glyphStats) []byte {
	var buf buffer
	buf.u32(0x00010000)
	buf.u16(uint16(len(b.glyphs)))
	buf.u16(uint16(stats.maxPoints))
	buf.u16(uint16(stats.maxContours))
	buf.u16(uint16(stats.maxCompPoints))
	buf.u16(uint16(stats.maxCompContours))
	buf.u16(2) // maxZones
	buf.u16(0) // maxTwilightPoints
	buf.u16(0) // maxStorage
	buf.u16(0) // maxFunctionDefs
	buf.u16(0) // maxInstructionDefs
	buf.u16(0) // maxStackElements
	buf.u16(0) // maxSizeOfInstructions
	buf.u16(uint16(stats.maxElements))
	buf.u16(uint16(stats.maxDepth))
	return buf.Bytes()
}

// nameIDs in emission order; see
// https://docs.microsoft.com/en-us/typography/opentype/spec/name
func (b *Builder) nameStrings() []struct {
	id  uint16
	str string
} {
	meta := b.meta
	all := []struct {
		id  uint16
		str string
	}{
		{0, meta.Copyright},
		{1, meta.Family},
		{2, meta.SubFamily},
		{3, meta.UniqueID},
		{4, meta.FullName},
		{5, "Version " + meta.Version},
		{6, meta.FontName},
		{8, meta.Manufacturer},
		{11, meta.VendorURL},
		{13, meta.License},
		{14, meta.LicenseURL},
	}
	var names []struct {
		id  uint16
		str string
	}
	for _, n := range all {
		if n.str != "" && n.str != "Version " {
			names = append(names, n)
		}
	}
	return names
}

// encodeName writes a format 0 naming table with each entry present twice,
// as Macintosh Roman and as Windows Unicode BMP.
func (b *Builder) encodeName() []byte {
	names := b.nameStrings()
	count := 2 * len(names)
	var records, data buffer
	// Macintosh platform (1, 0, English); record order is (platform,
	// encoding, language, nameID), Mac sorts before Windows
	for _, n := range names {
		str := macRoman(n.str)
		records.u16(1)
		records.u16(0)
		records.u16(0)
		records.u16(n.id)
		records.u16(uint16(len(str)))
		records.u16(uint16(data.Len()))
		data.raw(str)
	}
	// Windows platform (3, 1, US English), UTF-16BE
	for _, n := range names {
		str := utf16BE(n.str)
		records.u16(3)
		records.u16(1)
		records.u16(0x0409)
		records.u16(n.id)
		records.u16(uint16(len(str)))
		records.u16(uint16(data.Len()))
		data.raw(str)
	}
	var buf buffer
	buf.u16(0) // format
	buf.u16(uint16(count))
	buf.u16(uint16(6 + 12*count)) // stringOffset
	buf.raw(records.Bytes())
	buf.raw(data.Bytes())
	return buf.Bytes()
}

// macRoman reduces a string to its ASCII subset; non-ASCII characters are
// replaced. The interesting name entries are ASCII anyway.
func macRoman(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r < 0x80 {
			out = append(out, byte(r))
		} else {
			out = append(out, '?')
		}
	}
	return out
}

func utf16BE(s string) []byte {
	codes := utf16.Encode([]rune(s))
	out := make([]byte, 0, 2*len(codes))
	for _, c := range codes {
		out = append(out, byte(c>>8), byte(c))
	}
	return out
}

func (b *Builder) encodeOS2(bbox [4]int16) []byte {
	upem := int(b.baseOT.Head.UnitsPerEm)
	var sum, n int
	for _, g := range b.glyphs {
		if g.advance > 0 {
			sum += int(g.advance)
			n++
		}
	}
	avgWidth := 0
	if n > 0 {
		avgWidth = sum / n
	}
	first, last := 0xFFFF, 0
	for r := range b.byRune {
		if int(r) < first {
			first = int(r)
		}
		if int(r) > last {
			last = int(r)
		}
	}
	if last > 0xFFFF {
		last = 0xFFFF
	}
	if first > 0xFFFF {
		first = 0xFFFF
	}
	var buf buffer
	buf.u16(4) // version
	buf.s16(int16(avgWidth))
	buf.u16(400) // usWeightClass: normal
	buf.u16(5)   // usWidthClass: medium
	buf.u16(0)   // fsType: installable embedding
	buf.s16(int16(upem * 65 / 100))
	buf.s16(int16(upem * 60 / 100))
	buf.s16(0)
	buf.s16(int16(upem * 14 / 100))
	buf.s16(int16(upem * 65 / 100))
	buf.s16(int16(upem * 60 / 100))
	buf.s16(0)
	buf.s16(int16(upem * 48 / 100))
	buf.s16(int16(upem * 5 / 100))
	buf.s16(int16(upem * 26 / 100))
	buf.s16(0) // sFamilyClass: no classification
	for i := 0; i < 10; i++ {
		buf.u8(0) // panose: any
	}
	buf.u32(1) // ulUnicodeRange1: Basic Latin
	buf.u32(0)
	buf.u32(0)
	buf.u32(0)
	buf.tag(ot.T("NONE")) // achVendID
	buf.u16(0x0040)       // fsSelection: REGULAR
	buf.u16(uint16(first))
	buf.u16(uint16(last))
	buf.s16(b.baseOT.HHea.Ascender)
	buf.s16(b.baseOT.HHea.Descender)
	buf.s16(b.baseOT.HHea.LineGap)
	winAscent := int(b.baseOT.HHea.Ascender)
	if int(bbox[3]) > winAscent {
		winAscent = int(bbox[3])
	}
	winDescent := -int(b.baseOT.HHea.Descender)
	if -int(bbox[1]) > winDescent {
		winDescent = -int(bbox[1])
	}
	if winDescent < 0 {
		winDescent = 0
	}
	buf.u16(uint16(winAscent))
	buf.u16(uint16(winDescent))
	buf.u32(1) // ulCodePageRange1: Latin 1
	buf.u32(0)
	buf.s16(0) // sxHeight: unknown
	buf.s16(0) // sCapHeight: unknown
	buf.u16(0) // usDefaultChar
	buf.u16(0x20)
	buf.u16(uint16(b.maxContext))
	return buf.Bytes()
}

// encodePost writes a version 3.0 'post' table; no glyph names are stored.
func (b *Builder) encodePost() []byte {
	var buf buffer
	buf.u32(0x00030000)
	buf.u32(0) // italicAngle
	buf.s16(b.baseOT.HHea.UnderlinePosition)
	buf.s16(b.baseOT.HHea.UnderlineThick)
	buf.u32(0) // isFixedPitch
	buf.u32(0) // minMemType42
	buf.u32(0)
	buf.u32(0) // minMemType1
	buf.u32(0)
	return buf.Bytes()
}

// versionFixed converts a "major.minor" version string into 16.16 fixed
// point for head.fontRevision.
func versionFixed(version string) uint32 {
	major, minor, _ := strings.Cut(version, ".")
	maj, err := strconv.Atoi(major)
	if err != nil {
		return 0x00010000
	}
	frac := 0.0
	if minor != "" {
		if f, err := strconv.ParseFloat("0."+minor, 64); err == nil {
			frac = f
		}
	}
	return uint32(maj)<<16 | uint32(frac*65536)
}

// assembleSfnt lays out the table directory and the tables (in tag order,
// 4-byte aligned) and patches head.checkSumAdjustment.
func assembleSfnt(tables map[ot.Tag][]byte) []byte {
	tags := make([]ot.Tag, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	n := len(tags)
	sel := bits.Len(uint(n)) - 1
	searchRange := 16 << sel
	var buf buffer
	buf.u32(0x00010000) // sfntVersion: TrueType outlines
	buf.u16(uint16(n))
	buf.u16(uint16(searchRange))
	buf.u16(uint16(sel))
	buf.u16(uint16(16*n - searchRange))
	offset := 12 + 16*n
	headOffset := 0
	for _, tag := range tags {
		table := tables[tag]
		if tag == ot.T("head") {
			headOffset = offset
		}
		buf.tag(tag)
		buf.u32(checksum(table))
		buf.u32(uint32(offset))
		buf.u32(uint32(len(table)))
		offset += (len(table) + 3) &^ 3
	}
	for _, tag := range tags {
		buf.raw(tables[tag])
		buf.pad4()
	}
	font := buf.Bytes()
	adjustment := 0xB1B0AFBA - checksum(font)
	font[headOffset+8] = byte(adjustment >> 24)
	font[headOffset+9] = byte(adjustment >> 16)
	font[headOffset+10] = byte(adjustment >> 8)
	font[headOffset+11] = byte(adjustment)
	return font
}
