package otbuild

import (
	"sort"

	"github.com/npillmayer/emojitext/core"
	"github.com/npillmayer/emojitext/core/font/opentype/ot"
)

// Writing of the 'GSUB' table. All substitution rules of the font are
// many-to-one ligature substitutions (GSUB lookup type 4), collected in a
// single lookup which is activated by feature 'ccmp' for the default script
// and for 'latn'.
//
// Offsets within a lookup subtable are 16-bit quantities, which puts a hard
// ceiling on subtable size. Fonts with thousands of rules would overflow it,
// therefore the ligature subtables are size-chunked and wrapped in Extension
// Substitution subtables (lookup type 7), which address their payload with
// 32-bit offsets.
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/gsub

// ligature is one substitution rule, keyed by the first glyph of its input
// sequence (the map key of Builder.ligs).
type ligature struct {
	rest   []GlyphID // input sequence without the first glyph
	target GlyphID
}

// AddLigature registers a substitution rule: an input sequence of at least
// two glyphs is replaced by a single target glyph. Registering the same
// input sequence twice is not an error; the first rule wins and the
// duplicate is dropped with a trace message.
func (b *Builder) AddLigature(seq []GlyphID, target GlyphID) error {
	if len(seq) < 2 {
		return core.Error(core.EINVALID, "substitution input needs at least 2 glyphs, have %d",
			len(seq))
	}
	for _, gid := range seq {
		if int(gid) >= len(b.glyphs) {
			return core.Error(core.EINVALID, "substitution references non-existing glyph %d", gid)
		}
	}
	if int(target) >= len(b.glyphs) {
		return core.Error(core.EINVALID, "substitution references non-existing glyph %d", target)
	}
	first, rest := seq[0], seq[1:]
	for _, lig := range b.ligs[first] {
		if equalGIDs(lig.rest, rest) {
			tracer().Infof("duplicate substitution rule for glyph %s, keeping first",
				b.glyphs[target].name)
			return nil
		}
	}
	b.ligs[first] = append(b.ligs[first], ligature{
		rest:   append([]GlyphID(nil), rest...),
		target: target,
	})
	b.ligCount++
	if len(seq) > b.maxContext {
		b.maxContext = len(seq)
	}
	return nil
}

func equalGIDs(a, b []GlyphID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// encodeGSUB assembles the complete GSUB table from the registered rules.
// Must not be called with an empty rule set.
func (b *Builder) encodeGSUB() []byte {
	firsts := make([]GlyphID, 0, len(b.ligs))
	for gid := range b.ligs {
		firsts = append(firsts, gid)
	}
	sort.Slice(firsts, func(i, j int) bool { return firsts[i] < firsts[j] })
	chunks := chunkLigatureSets(firsts, b.ligs)
	subtables := make([][]byte, len(chunks))
	for i, chunk := range chunks {
		subtables[i] = encodeLigatureSubtable(chunk, b.ligs)
	}
	n := len(subtables)
	scriptList := encodeScriptList()
	featureList := encodeFeatureList()
	scriptOff := 10 // GSUB header size
	featureOff := scriptOff + len(scriptList)
	lookupListOff := featureOff + len(featureList)
	lookupOff := lookupListOff + 4
	lookupHdrSize := 6 + 2*n
	subtableBase := lookupOff + lookupHdrSize + 8*n
	var buf buffer
	buf.u16(1) // version 1.0
	buf.u16(0)
	buf.u16(uint16(scriptOff))
	buf.u16(uint16(featureOff))
	buf.u16(uint16(lookupListOff))
	buf.raw(scriptList)
	buf.raw(featureList)
	buf.u16(1) // lookupCount
	buf.u16(4) // offset of the single lookup, from LookupList
	buf.u16(7) // lookupType: Extension Substitution
	buf.u16(0) // lookupFlag
	buf.u16(uint16(n))
	for i := 0; i < n; i++ {
		buf.u16(uint16(lookupHdrSize + 8*i))
	}
	// extension subtables, each pointing at its ligature subtable payload
	pos := subtableBase
	for i, st := range subtables {
		extPos := lookupOff + lookupHdrSize + 8*i
		buf.u16(1) // substFormat
		buf.u16(4) // extensionLookupType: Ligature Substitution
		buf.u32(uint32(pos - extPos))
		pos += len(st)
	}
	for _, st := range subtables {
		buf.raw(st)
	}
	return buf.Bytes()
}

// encodeScriptList writes a ScriptList with scripts 'DFLT' and 'latn', both
// sharing a single default LangSys which activates feature index 0.
func encodeScriptList() []byte {
	var buf buffer
	buf.u16(2) // scriptCount
	buf.tag(ot.T("DFLT"))
	buf.u16(14)
	buf.tag(ot.T("latn"))
	buf.u16(14)
	// Script table
	buf.u16(4) // defaultLangSysOffset
	buf.u16(0) // langSysCount
	// LangSys table
	buf.u16(0)      // lookupOrderOffset, reserved
	buf.u16(0xFFFF) // requiredFeatureIndex: none
	buf.u16(1)      // featureIndexCount
	buf.u16(0)
	return buf.Bytes()
}

// encodeFeatureList writes a FeatureList with the single feature 'ccmp',
// referencing lookup index 0.
func encodeFeatureList() []byte {
	var buf buffer
	buf.u16(1) // featureCount
	buf.tag(ot.T("ccmp"))
	buf.u16(8)
	// Feature table
	buf.u16(0) // featureParamsOffset
	buf.u16(1) // lookupIndexCount
	buf.u16(0)
	return buf.Bytes()
}

// maxSubtableSize keeps ligature subtables well below the 64K limit imposed
// by their internal 16-bit offsets.
const maxSubtableSize = 48 * 1024

// chunkLigatureSets partitions the (sorted) first-glyphs into chunks such
// that each chunk's ligature subtable stays below maxSubtableSize.
func chunkLigatureSets(firsts []GlyphID, ligs map[GlyphID][]ligature) [][]GlyphID {
	var chunks [][]GlyphID
	var chunk []GlyphID
	size := 0
	for _, first := range firsts {
		setSize := 2 // ligatureCount
		for _, lig := range ligs[first] {
			setSize += 2 + 4 + 2*len(lig.rest) // offset + ligature record
		}
		// per-set cost in the subtable header and coverage: offset + glyph ID
		if size+setSize+4 > maxSubtableSize && len(chunk) > 0 {
			chunks = append(chunks, chunk)
			chunk = nil
			size = 0
		}
		chunk = append(chunk, first)
		size += setSize + 4
	}
	if len(chunk) > 0 {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// encodeLigatureSubtable writes a LigatureSubst format 1 subtable for the
// given first-glyphs. Within a LigatureSet, longer input sequences come
// first, so that greedy matching prefers the longest rule.
func encodeLigatureSubtable(firsts []GlyphID, ligs map[GlyphID][]ligature) []byte {
	n := len(firsts)
	headerSize := 6 + 2*n
	setBlobs := make([][]byte, n)
	setsSize := 0
	for i, first := range firsts {
		set := append([]ligature(nil), ligs[first]...)
		sort.SliceStable(set, func(a, b int) bool { return len(set[a].rest) > len(set[b].rest) })
		var sb buffer
		sb.u16(uint16(len(set)))
		off := 2 + 2*len(set)
		for _, lig := range set {
			sb.u16(uint16(off))
			off += 4 + 2*len(lig.rest)
		}
		for _, lig := range set {
			sb.u16(uint16(lig.target))
			sb.u16(uint16(len(lig.rest) + 1)) // componentCount includes the first glyph
			for _, gid := range lig.rest {
				sb.u16(uint16(gid))
			}
		}
		setBlobs[i] = sb.Bytes()
		setsSize += sb.Len()
	}
	var buf buffer
	buf.u16(1) // substFormat
	buf.u16(uint16(headerSize + setsSize))
	buf.u16(uint16(n))
	off := headerSize
	for _, blob := range setBlobs {
		buf.u16(uint16(off))
		off += len(blob)
	}
	for _, blob := range setBlobs {
		buf.raw(blob)
	}
	// coverage format 1: the sorted first-glyphs
	buf.u16(1)
	buf.u16(uint16(n))
	for _, gid := range firsts {
		buf.u16(uint16(gid))
	}
	return buf.Bytes()
}
