package otbuild

import (
	"math/bits"
	"sort"
)

// Writing of the 'cmap' table. We emit two subtables, a format 4 subtable
// covering the Basic Multilingual Plane and a format 12 subtable covering
// the full character repertoire, and expose both under the Unicode and the
// Windows platform:
//
//	(0,3) Unicode BMP          -> format 4
//	(0,4) Unicode full         -> format 12
//	(3,1) Windows BMP          -> format 4
//	(3,10) Windows full        -> format 12
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/cmap

type cmapEntry struct {
	r   rune
	gid GlyphID
}

func encodeCmap(mapping map[rune]GlyphID) []byte {
	entries := make([]cmapEntry, 0, len(mapping))
	for r, gid := range mapping {
		entries = append(entries, cmapEntry{r, gid})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].r < entries[j].r })
	var bmp []cmapEntry
	for _, e := range entries {
		if e.r < 0xFFFF {
			bmp = append(bmp, e)
		}
	}
	fmt4 := encodeCmapFormat4(bmp)
	fmt12 := encodeCmapFormat12(entries)
	var buf buffer
	buf.u16(0) // version
	buf.u16(4) // numTables
	off4 := uint32(4 + 4*8)
	off12 := off4 + uint32(len(fmt4))
	for _, rec := range []struct {
		pltf, enc uint16
		offset    uint32
	}{
		{0, 3, off4}, {0, 4, off12}, {3, 1, off4}, {3, 10, off12},
	} {
		buf.u16(rec.pltf)
		buf.u16(rec.enc)
		buf.u32(rec.offset)
	}
	buf.raw(fmt4)
	buf.raw(fmt12)
	return buf.Bytes()
}

// cmapSegment is a run of consecutive character codes of a format 4 subtable.
// Segments where the glyph IDs are consecutive as well store a single delta;
// the others spill their glyph IDs into the trailing glyphIdArray.
type cmapSegment struct {
	first, last rune
	gids        []GlyphID // nil if delta-mapped
	delta       uint16
}

func segmentCmapEntries(entries []cmapEntry) []cmapSegment {
	var segments []cmapSegment
	for i := 0; i < len(entries); {
		j := i + 1
		for j < len(entries) && entries[j].r == entries[j-1].r+1 {
			j++
		}
		seg := cmapSegment{first: entries[i].r, last: entries[j-1].r}
		deltaMapped := true
		for k := i + 1; k < j; k++ {
			if entries[k].gid != entries[i].gid+GlyphID(k-i) {
				deltaMapped = false
				break
			}
		}
		if deltaMapped {
			// "idDelta … is added to the character code modulo 65536"
			seg.delta = uint16(entries[i].gid) - uint16(entries[i].r)
		} else {
			seg.gids = make([]GlyphID, j-i)
			for k := i; k < j; k++ {
				seg.gids[k-i] = entries[k].gid
			}
		}
		segments = append(segments, seg)
		i = j
	}
	// terminating segment, required by the spec
	segments = append(segments, cmapSegment{first: 0xFFFF, last: 0xFFFF, delta: 1})
	return segments
}

func encodeCmapFormat4(entries []cmapEntry) []byte {
	segments := segmentCmapEntries(entries)
	segCount := len(segments)
	glyphCount := 0
	for _, seg := range segments {
		glyphCount += len(seg.gids)
	}
	length := 16 + 8*segCount + 2*glyphCount
	var buf buffer
	buf.u16(4) // format
	buf.u16(uint16(length))
	buf.u16(0) // language
	buf.u16(uint16(2 * segCount))
	sel := bits.Len(uint(segCount)) - 1
	searchRange := 1 << (sel + 1)
	buf.u16(uint16(searchRange))
	buf.u16(uint16(sel))
	buf.u16(uint16(2*segCount - searchRange))
	for _, seg := range segments {
		buf.u16(uint16(seg.last))
	}
	buf.u16(0) // reservedPad
	for _, seg := range segments {
		buf.u16(uint16(seg.first))
	}
	for _, seg := range segments {
		buf.u16(seg.delta)
	}
	// idRangeOffset counts bytes from its own slot into glyphIdArray
	pos := 0
	for i, seg := range segments {
		if seg.gids == nil {
			buf.u16(0)
			continue
		}
		buf.u16(uint16(2 * (segCount - i + pos)))
		pos += len(seg.gids)
	}
	for _, seg := range segments {
		for _, gid := range seg.gids {
			buf.u16(uint16(gid))
		}
	}
	return buf.Bytes()
}

func encodeCmapFormat12(entries []cmapEntry) []byte {
	// sequential map groups: consecutive codes mapping to consecutive glyphs
	type group struct {
		first, last rune
		gid         GlyphID
	}
	var groups []group
	for _, e := range entries {
		if n := len(groups); n > 0 {
			g := &groups[n-1]
			if e.r == g.last+1 && e.gid == g.gid+GlyphID(g.last-g.first)+1 {
				g.last = e.r
				continue
			}
		}
		groups = append(groups, group{first: e.r, last: e.r, gid: e.gid})
	}
	var buf buffer
	buf.u16(12) // format
	buf.u16(0)  // reserved
	buf.u32(uint32(16 + 12*len(groups)))
	buf.u32(0) // language
	buf.u32(uint32(len(groups)))
	for _, g := range groups {
		buf.u32(uint32(g.first))
		buf.u32(uint32(g.last))
		buf.u32(uint32(g.gid))
	}
	return buf.Bytes()
}
